package session

import (
	"context"
	goerrors "errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/zhotheone/discordmusicbot/internal/domain/entities"
	"github.com/zhotheone/discordmusicbot/internal/domain/valueobjects"
	apperrors "github.com/zhotheone/discordmusicbot/internal/errors"
	"github.com/zhotheone/discordmusicbot/internal/events"
	"github.com/zhotheone/discordmusicbot/internal/filters"
	"github.com/zhotheone/discordmusicbot/internal/pipeline"
	"github.com/zhotheone/discordmusicbot/internal/voice"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// maxConsecutiveFailures is the number of back-to-back pipeline failures after
// which a session gives up and goes Idle instead of spinning through the queue
const maxConsecutiveFailures = 3

const connectTimeout = 10 * time.Second

// Config is the per-guild playback configuration supplied by the settings
// provider. The session never reads environment variables itself.
type Config struct {
	MaxQueueSize  int
	DefaultVolume int // percent, 0-150
	IdleTimeout   time.Duration
}

// Deps are the external collaborators a session drives
type Deps struct {
	Pipeline pipeline.Pipeline
	Voice    voice.Transport
	Bus      *events.Bus
	Logger   *logger.Logger
}

// Status is a point-in-time snapshot of a session for display
type Status struct {
	State   valueobjects.SessionState
	Current *entities.Track
	Queue   []*entities.Track
	Repeat  valueobjects.RepeatMode
	Volume  int
	Filters []filters.Kind
}

// command is one unit of work for the session loop
type command struct {
	run   func() error
	reply chan error
}

// Session is the per-guild playback state machine. It is a single-threaded
// actor: every externally invoked operation is enqueued onto the private
// command channel and the run loop applies them strictly one at a time in
// arrival order. All playback state below the cmds channel is owned by the
// loop goroutine and never touched from outside it.
type Session struct {
	guildID string
	cfg     Config
	deps    Deps
	logger  *logger.Logger

	cmds     chan command
	loopDone chan struct{}

	idleSince atomic.Int64 // unix nanos; 0 while not Idle

	onTerminate func(guildID string)

	// loop-owned state
	state      valueobjects.SessionState
	queue      *entities.Queue
	current    *entities.Track
	repeat     valueobjects.RepeatMode
	volume     int
	chain      *filters.Chain
	conn       voice.Connection
	handle     pipeline.Handle
	playCancel context.CancelFunc
	failStreak int
}

// newSession constructs an Idle session and starts its command loop. Sessions
// are created through the Registry, never directly.
func newSession(guildID string, cfg Config, deps Deps, onTerminate func(string)) *Session {
	s := &Session{
		guildID:     guildID,
		cfg:         cfg,
		deps:        deps,
		logger:      deps.Logger,
		cmds:        make(chan command),
		loopDone:    make(chan struct{}),
		onTerminate: onTerminate,
		state:       valueobjects.SessionIdle,
		queue:       entities.NewQueue(),
		repeat:      valueobjects.RepeatModeOff,
		volume:      cfg.DefaultVolume,
		chain:       filters.NewChain(),
	}
	s.idleSince.Store(time.Now().UnixNano())

	go s.run()
	return s
}

// GuildID returns the guild this session belongs to
func (s *Session) GuildID() string {
	return s.guildID
}

// IdleFor reports how long the session has been Idle with no intervening
// command, or 0 when it is not Idle. Safe to call from the sweep goroutine.
func (s *Session) IdleFor() time.Duration {
	since := s.idleSince.Load()
	if since == 0 {
		return 0
	}
	return time.Since(time.Unix(0, since))
}

// Terminated reports whether the session loop has exited
func (s *Session) Terminated() bool {
	select {
	case <-s.loopDone:
		return true
	default:
		return false
	}
}

// do submits a command and waits for the loop to apply it. Commands submitted
// by concurrent callers are applied in channel arrival order (FIFO per guild).
func (s *Session) do(fn func() error) error {
	cmd := command{run: fn, reply: make(chan error, 1)}
	select {
	case s.cmds <- cmd:
		return <-cmd.reply
	case <-s.loopDone:
		return apperrors.ErrSessionClosed
	}
}

// run is the session's single-threaded command loop. It also owns the wait on
// the current stream handle, so skip/stop can interrupt it immediately.
func (s *Session) run() {
	defer func() {
		close(s.loopDone)
		if s.onTerminate != nil {
			s.onTerminate(s.guildID)
		}
		// Reply to commands that raced with shutdown
		for {
			select {
			case cmd := <-s.cmds:
				cmd.reply <- apperrors.ErrSessionClosed
			default:
				return
			}
		}
	}()

	for {
		var trackDone <-chan error
		if s.handle != nil {
			trackDone = s.handle.Done()
		}

		select {
		case cmd := <-s.cmds:
			cmd.reply <- cmd.run()
			if s.state == valueobjects.SessionTerminated {
				return
			}
		case err := <-trackDone:
			s.onTrackEnd(err)
		}

		s.touchIdle()
	}
}

func (s *Session) touchIdle() {
	if s.state == valueobjects.SessionIdle {
		s.idleSince.Store(time.Now().UnixNano())
	} else {
		s.idleSince.Store(0)
	}
}

// --- public operations, all funneled through the command loop ---

// Enqueue appends a track to the queue. If the session is Idle this connects
// to the requester's voice channel and starts playback. Returns the 1-indexed
// queue position.
func (s *Session) Enqueue(ctx context.Context, track *entities.Track, channelID string) (int, error) {
	var pos int
	err := s.do(func() error {
		var err error
		pos, err = s.enqueue(ctx, track, channelID)
		return err
	})
	return pos, err
}

// Skip stops the current track immediately and advances per repeat mode
func (s *Session) Skip() error {
	return s.do(s.skip)
}

// Stop clears the queue, releases the voice connection and terminates the
// session. Stopping an already terminated session is a no-op.
func (s *Session) Stop() error {
	err := s.do(s.stop)
	if goerrors.Is(err, apperrors.ErrSessionClosed) {
		return nil
	}
	return err
}

// Pause suspends playback. Valid only while Playing.
func (s *Session) Pause() error {
	return s.do(s.pause)
}

// Resume continues playback. Valid only while Paused.
func (s *Session) Resume() error {
	return s.do(s.resume)
}

// SetRepeatMode changes the advancement policy for future track endings. It
// has no immediate effect on the currently playing track.
func (s *Session) SetRepeatMode(mode valueobjects.RepeatMode) error {
	return s.do(func() error {
		if !mode.IsValid() {
			return fmt.Errorf("%w: repeat mode %q", apperrors.ErrParameterOutOfRange, mode)
		}
		s.repeat = mode
		return nil
	})
}

// SetVolume sets the playback volume in percent (0-150). When the pipeline
// supports live gain it applies to the playing stream, otherwise it takes
// effect with the next track.
func (s *Session) SetVolume(percent int) error {
	return s.do(func() error { return s.setVolume(percent) })
}

// EnableFilter turns on an audio filter for streams built from now on
func (s *Session) EnableFilter(kind filters.Kind, params filters.Params) error {
	return s.do(func() error { return s.chain.Enable(kind, params) })
}

// DisableFilter turns off an audio filter; inactive filters are a no-op
func (s *Session) DisableFilter(kind filters.Kind) error {
	return s.do(func() error {
		s.chain.Disable(kind)
		return nil
	})
}

// ClearFilters removes all active filters
func (s *Session) ClearFilters() error {
	return s.do(func() error {
		s.chain.Clear()
		return nil
	})
}

// ApplyPreset atomically replaces the filter chain with a named preset
func (s *Session) ApplyPreset(name string) error {
	return s.do(func() error { return s.chain.ApplyPreset(name) })
}

// Status returns a snapshot of the session for display
func (s *Session) Status() (Status, error) {
	var st Status
	err := s.do(func() error {
		st = Status{
			State:   s.state,
			Current: s.current,
			Queue:   s.queue.Snapshot(),
			Repeat:  s.repeat,
			Volume:  s.volume,
			Filters: s.chain.Enabled(),
		}
		return nil
	})
	return st, err
}

// ChannelID returns the voice channel the session is connected to, or ""
// when there is no connection.
func (s *Session) ChannelID() string {
	var id string
	_ = s.do(func() error {
		if s.conn != nil {
			id = s.conn.ChannelID()
		}
		return nil
	})
	return id
}

// --- loop-side implementations ---

func (s *Session) enqueue(ctx context.Context, track *entities.Track, channelID string) (int, error) {
	if s.queue.Len() >= s.cfg.MaxQueueSize {
		return 0, fmt.Errorf("%w: limit %d", apperrors.ErrQueueFull, s.cfg.MaxQueueSize)
	}

	pos := s.queue.PushBack(track)
	s.logger.WithFields(map[string]interface{}{
		"guild":    s.guildID,
		"track":    track.DisplayName(),
		"position": pos,
	}).Info("Track queued")

	if s.state == valueobjects.SessionIdle {
		if err := s.startSession(ctx, channelID); err != nil {
			// The enqueue that triggered the failed connect is aborted
			s.queue.PopBack()
			return 0, err
		}
	}

	return pos, nil
}

// startSession acquires the voice connection and starts the first track. On
// connection failure the session reverts to Idle instead of sticking in
// Connecting.
func (s *Session) startSession(ctx context.Context, channelID string) error {
	s.state = valueobjects.SessionConnecting

	if s.conn == nil {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		conn, err := s.deps.Voice.Connect(connectCtx, s.guildID, channelID)
		cancel()
		if err != nil {
			s.logger.WithGuild(s.guildID).WithError(err).Error("Voice connection failed")
			s.state = valueobjects.SessionIdle
			return err
		}
		s.conn = conn
	}

	s.advance(nil, false)
	return nil
}

func (s *Session) skip() error {
	if s.state != valueobjects.SessionPlaying && s.state != valueobjects.SessionPaused {
		return apperrors.ErrNothingPlaying
	}

	skipped := s.current
	s.stopCurrent()
	s.publish(events.KindSkipped, skipped)

	s.advance(skipped, false)
	return nil
}

func (s *Session) stop() error {
	if s.state == valueobjects.SessionTerminated {
		return nil
	}

	wasPlaying := s.current != nil
	s.stopCurrent()
	s.queue.Clear()

	if s.conn != nil {
		if err := s.conn.Disconnect(); err != nil {
			s.logger.WithGuild(s.guildID).WithError(err).Warn("Failed to disconnect voice")
		}
		s.conn = nil
	}

	s.state = valueobjects.SessionTerminated
	s.logger.WithGuild(s.guildID).Info("Session terminated")

	if wasPlaying {
		s.publish(events.KindQueueFinished, nil)
	}
	return nil
}

func (s *Session) pause() error {
	if s.state != valueobjects.SessionPlaying {
		return fmt.Errorf("%w: pause while %s", apperrors.ErrInvalidState, s.state)
	}

	s.handle.Pause(true)
	s.state = valueobjects.SessionPaused
	if err := s.conn.Speaking(false); err != nil {
		s.logger.WithError(err).Debug("Failed to update speaking state on pause")
	}
	s.publish(events.KindPaused, s.current)
	return nil
}

func (s *Session) resume() error {
	if s.state != valueobjects.SessionPaused {
		return fmt.Errorf("%w: resume while %s", apperrors.ErrInvalidState, s.state)
	}

	s.handle.Pause(false)
	s.state = valueobjects.SessionPlaying
	if err := s.conn.Speaking(true); err != nil {
		s.logger.WithError(err).Debug("Failed to update speaking state on resume")
	}
	s.publish(events.KindResumed, s.current)
	return nil
}

func (s *Session) setVolume(percent int) error {
	if percent < 0 || percent > 150 {
		return fmt.Errorf("%w: volume %d (valid 0-150)", apperrors.ErrParameterOutOfRange, percent)
	}

	s.volume = percent
	if s.handle != nil && s.deps.Pipeline.SupportsLiveGain() {
		s.handle.SetVolume(percent)
	}

	ev := events.Event{GuildID: s.guildID, Kind: events.KindVolumeChanged, Volume: percent}
	s.deps.Bus.Publish(ev)
	return nil
}

// onTrackEnd handles the current stream resolving on its own (natural end or
// stream failure). Skip and stop drain the handle synchronously, so a
// cancellation never reaches here in normal operation.
func (s *Session) onTrackEnd(err error) {
	finished := s.current
	s.clearPlayback()

	if err != nil {
		if goerrors.Is(err, context.Canceled) {
			return
		}
		s.publishFailed(finished, err)
		s.failStreak++
		if s.failStreak >= maxConsecutiveFailures {
			s.becomeIdle(true)
			return
		}
		s.advance(finished, true)
		return
	}

	s.failStreak = 0
	s.publish(events.KindFinished, finished)
	s.advance(finished, false)
}

// advance applies the repeat policy to the just-finished track, then starts
// the next queued track. A failed track is never re-queued, regardless of
// repeat mode.
func (s *Session) advance(finished *entities.Track, failed bool) {
	if finished != nil && !failed {
		switch s.repeat {
		case valueobjects.RepeatModeTrack:
			s.queue.PushFront(finished)
		case valueobjects.RepeatModeQueue:
			s.queue.PushBack(finished)
		}
	}

	for {
		next := s.queue.PopFront()
		if next == nil {
			s.becomeIdle(true)
			return
		}

		err := s.startTrack(next)
		if err == nil {
			// A successful build is a pipeline success; consecutive-failure
			// counting starts over
			s.failStreak = 0
			return
		}

		s.publishFailed(next, err)
		s.failStreak++
		if s.failStreak >= maxConsecutiveFailures {
			s.becomeIdle(true)
			return
		}
	}
}

// startTrack builds a fresh stream for the track with the current filter
// chain spec and volume
func (s *Session) startTrack(track *entities.Track) error {
	spec := s.chain.Spec()

	ctx, cancel := context.WithCancel(context.Background())
	handle, err := s.deps.Pipeline.BuildStream(ctx, track, spec, pipeline.Options{
		Volume: s.volume,
		Sink:   s.conn.OpusSend(),
	})
	if err != nil {
		cancel()
		return err
	}

	s.handle = handle
	s.playCancel = cancel
	s.current = track
	s.state = valueobjects.SessionPlaying

	if err := s.conn.Speaking(true); err != nil {
		s.logger.WithError(err).Debug("Failed to set speaking state")
	}

	s.logger.WithFields(map[string]interface{}{
		"guild":   s.guildID,
		"track":   track.DisplayName(),
		"filters": spec.Names(),
		"volume":  s.volume,
	}).Info("▶️ Now playing")

	s.publish(events.KindNowPlaying, track)
	return nil
}

// stopCurrent cancels the in-flight stream, if any, and waits for the handle
// to resolve. The pipeline contract guarantees prompt resolution on cancel.
func (s *Session) stopCurrent() {
	if s.playCancel != nil {
		s.playCancel()
	}
	if s.handle != nil {
		<-s.handle.Done()
	}
	s.clearPlayback()
}

func (s *Session) clearPlayback() {
	if s.playCancel != nil {
		s.playCancel()
		s.playCancel = nil
	}
	s.handle = nil
	s.current = nil
}

func (s *Session) becomeIdle(publishFinished bool) {
	s.state = valueobjects.SessionIdle
	s.current = nil
	s.failStreak = 0
	s.queue.Clear()

	if s.conn != nil {
		if err := s.conn.Speaking(false); err != nil {
			s.logger.WithError(err).Debug("Failed to clear speaking state")
		}
	}

	s.logger.WithGuild(s.guildID).Info("Queue finished, session idle")
	if publishFinished {
		s.publish(events.KindQueueFinished, nil)
	}
}

func (s *Session) publish(kind events.Kind, track *entities.Track) {
	s.deps.Bus.Publish(events.Event{
		GuildID: s.guildID,
		Kind:    kind,
		Track:   track,
	})
}

func (s *Session) publishFailed(track *entities.Track, err error) {
	s.logger.WithError(err).WithFields(map[string]interface{}{
		"guild": s.guildID,
		"track": track.DisplayName(),
	}).Warn("Track failed, advancing")

	s.deps.Bus.Publish(events.Event{
		GuildID: s.guildID,
		Kind:    events.KindTrackFailed,
		Track:   track,
		Reason:  err.Error(),
	})
}
