package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhotheone/discordmusicbot/internal/domain/entities"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// Kind identifies a playback lifecycle event
type Kind string

const (
	KindNowPlaying    Kind = "now_playing"
	KindSkipped       Kind = "skipped"
	KindFinished      Kind = "finished"
	KindPaused        Kind = "paused"
	KindResumed       Kind = "resumed"
	KindVolumeChanged Kind = "volume_changed"
	KindQueueFinished Kind = "queue_finished"
	KindTrackFailed   Kind = "track_failed"
)

// Event is an ephemeral notification published by a playback session. Events
// are not persisted by the core; subscribers decide what to do with them.
type Event struct {
	GuildID string
	Kind    Kind
	Track   *entities.Track // set for track-related kinds
	Volume  int             // set for volume-changed
	Reason  string          // set for track-failed
	At      time.Time
}

// Predicate filters events before delivery to a subscriber
type Predicate func(Event) bool

// Handler processes a delivered event
type Handler func(Event)

// ForGuild matches events for a single guild
func ForGuild(guildID string) Predicate {
	return func(ev Event) bool { return ev.GuildID == guildID }
}

// ForKinds matches events of any of the given kinds
func ForKinds(kinds ...Kind) Predicate {
	return func(ev Event) bool {
		for _, k := range kinds {
			if ev.Kind == k {
				return true
			}
		}
		return false
	}
}

// subscriber owns a bounded buffer and a dispatch goroutine so a slow handler
// never blocks a publishing session
type subscriber struct {
	id      string
	pred    Predicate
	handler Handler
	ch      chan Event
	quit    chan struct{}
}

// Bus fans playback events out to subscribers. Publishing is fire-and-forget:
// when a subscriber's buffer is full the event is dropped for that subscriber
// and logged, never blocking the publisher.
type Bus struct {
	logger     *logger.Logger
	bufferSize int

	mu     sync.RWMutex
	subs   map[string]*subscriber
	closed bool
	wg     sync.WaitGroup
}

// NewBus creates an event bus with the given per-subscriber buffer size
func NewBus(bufferSize int, log *logger.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Bus{
		logger:     log,
		bufferSize: bufferSize,
		subs:       make(map[string]*subscriber),
	}
}

// Subscribe registers a handler for events matching the predicate. A nil
// predicate matches everything. Returns a subscription id for Unsubscribe.
// Subscription lifecycle is independent of any session's lifecycle.
func (b *Bus) Subscribe(pred Predicate, handler Handler) string {
	sub := &subscriber{
		id:      uuid.New().String(),
		pred:    pred,
		handler: handler,
		ch:      make(chan Event, b.bufferSize),
		quit:    make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return sub.id
	}
	b.subs[sub.id] = sub
	b.wg.Add(1)
	b.mu.Unlock()

	go b.dispatch(sub)
	return sub.id
}

// Unsubscribe removes a subscription. Unknown ids are a no-op.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	sub, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()

	if ok {
		close(sub.quit)
	}
}

// Publish delivers an event to all matching subscribers without blocking
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, sub := range b.subs {
		if sub.pred != nil && !sub.pred(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.logger.WithFields(map[string]interface{}{
				"guild": ev.GuildID,
				"kind":  ev.Kind,
				"sub":   sub.id,
			}).Warn("Subscriber buffer full, dropping event")
		}
	}
}

// Close stops all dispatch goroutines and rejects further publishes
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.quit)
		delete(b.subs, id)
	}
	b.mu.Unlock()

	b.wg.Wait()
}

// dispatch drains one subscriber's buffer until it is unsubscribed
func (b *Bus) dispatch(sub *subscriber) {
	defer b.wg.Done()

	for {
		select {
		case ev := <-sub.ch:
			sub.handler(ev)
		case <-sub.quit:
			// Drain what is already buffered, then exit
			for {
				select {
				case ev := <-sub.ch:
					sub.handler(ev)
				default:
					return
				}
			}
		}
	}
}
