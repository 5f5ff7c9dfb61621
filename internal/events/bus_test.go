package events_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zhotheone/discordmusicbot/internal/events"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPublishDeliversToMatchingSubscribers(t *testing.T) {
	bus := events.NewBus(8, logger.Discard())
	defer bus.Close()

	var guildA, guildB atomic.Int64
	bus.Subscribe(events.ForGuild("a"), func(ev events.Event) { guildA.Add(1) })
	bus.Subscribe(events.ForGuild("b"), func(ev events.Event) { guildB.Add(1) })

	bus.Publish(events.Event{GuildID: "a", Kind: events.KindNowPlaying})
	bus.Publish(events.Event{GuildID: "a", Kind: events.KindQueueFinished})
	bus.Publish(events.Event{GuildID: "b", Kind: events.KindNowPlaying})

	waitFor(t, func() bool { return guildA.Load() == 2 && guildB.Load() == 1 })
}

func TestForKindsPredicate(t *testing.T) {
	bus := events.NewBus(8, logger.Discard())
	defer bus.Close()

	var got atomic.Int64
	bus.Subscribe(events.ForKinds(events.KindPaused, events.KindResumed), func(ev events.Event) {
		got.Add(1)
	})

	bus.Publish(events.Event{GuildID: "g", Kind: events.KindPaused})
	bus.Publish(events.Event{GuildID: "g", Kind: events.KindNowPlaying})
	bus.Publish(events.Event{GuildID: "g", Kind: events.KindResumed})

	waitFor(t, func() bool { return got.Load() == 2 })
	if got.Load() != 2 {
		t.Errorf("Expected 2 matching events, got %d", got.Load())
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := events.NewBus(8, logger.Discard())
	defer bus.Close()

	var count atomic.Int64
	id := bus.Subscribe(nil, func(ev events.Event) { count.Add(1) })

	bus.Publish(events.Event{GuildID: "g", Kind: events.KindNowPlaying})
	waitFor(t, func() bool { return count.Load() == 1 })

	bus.Unsubscribe(id)
	bus.Publish(events.Event{GuildID: "g", Kind: events.KindNowPlaying})

	time.Sleep(50 * time.Millisecond)
	if count.Load() != 1 {
		t.Errorf("Expected no delivery after unsubscribe, got %d", count.Load())
	}
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	bus := events.NewBus(1, logger.Discard())
	defer bus.Close()

	block := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	once := sync.Once{}
	bus.Subscribe(nil, func(ev events.Event) {
		once.Do(wg.Done)
		<-block
	})

	done := make(chan struct{})
	go func() {
		// Flood well past the buffer size; Publish must never block
		for i := 0; i < 100; i++ {
			bus.Publish(events.Event{GuildID: "g", Kind: events.KindNowPlaying})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
	close(block)
	wg.Wait()
}

func TestEventGetsTimestamp(t *testing.T) {
	bus := events.NewBus(8, logger.Discard())
	defer bus.Close()

	got := make(chan events.Event, 1)
	bus.Subscribe(nil, func(ev events.Event) { got <- ev })

	bus.Publish(events.Event{GuildID: "g", Kind: events.KindNowPlaying})

	select {
	case ev := <-got:
		if ev.At.IsZero() {
			t.Error("Publish should stamp events that lack a timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}
