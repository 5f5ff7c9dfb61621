package session_test

import (
	"context"
	goerrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/zhotheone/discordmusicbot/internal/domain/entities"
	"github.com/zhotheone/discordmusicbot/internal/domain/valueobjects"
	apperrors "github.com/zhotheone/discordmusicbot/internal/errors"
	"github.com/zhotheone/discordmusicbot/internal/events"
	"github.com/zhotheone/discordmusicbot/internal/filters"
	"github.com/zhotheone/discordmusicbot/internal/pipeline"
	"github.com/zhotheone/discordmusicbot/internal/session"
	"github.com/zhotheone/discordmusicbot/internal/voice"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// --- fakes ---

type fakeConn struct {
	sink         chan []byte
	mu           sync.Mutex
	disconnected bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{sink: make(chan []byte, 16)}
}

func (c *fakeConn) OpusSend() chan<- []byte { return c.sink }
func (c *fakeConn) Speaking(on bool) error  { return nil }
func (c *fakeConn) ChannelID() string       { return "voice-channel" }
func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
	return nil
}

func (c *fakeConn) Disconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

type fakeTransport struct {
	mu         sync.Mutex
	conns      []*fakeConn
	connectErr error
}

func (t *fakeTransport) Connect(ctx context.Context, guildID, channelID string) (voice.Connection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.connectErr != nil {
		return nil, t.connectErr
	}
	conn := newFakeConn()
	t.conns = append(t.conns, conn)
	return conn, nil
}

func (t *fakeTransport) connCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

type fakeHandle struct {
	done    chan error
	once    sync.Once
	mu      sync.Mutex
	paused  bool
	volumes []int
	live    bool
}

func (h *fakeHandle) Done() <-chan error { return h.done }

func (h *fakeHandle) Pause(paused bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = paused
}

func (h *fakeHandle) SetVolume(percent int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.live {
		return false
	}
	h.volumes = append(h.volumes, percent)
	return true
}

func (h *fakeHandle) resolve(err error) {
	h.once.Do(func() { h.done <- err })
}

type buildRecord struct {
	track  *entities.Track
	spec   filters.Spec
	volume int
}

type fakePipeline struct {
	mu       sync.Mutex
	builds   []buildRecord
	failFor  map[string]error // track title -> build error
	current  *fakeHandle
	liveGain bool
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{failFor: make(map[string]error)}
}

func (p *fakePipeline) SupportsLiveGain() bool { return p.liveGain }

func (p *fakePipeline) BuildStream(ctx context.Context, track *entities.Track, spec filters.Spec, opts pipeline.Options) (pipeline.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.builds = append(p.builds, buildRecord{track: track, spec: spec, volume: opts.Volume})
	if err := p.failFor[track.Title]; err != nil {
		return nil, err
	}

	h := &fakeHandle{done: make(chan error, 1), live: p.liveGain}
	go func() {
		<-ctx.Done()
		h.resolve(ctx.Err())
	}()
	p.current = h
	return h, nil
}

// finishPlaying resolves the current stream as a natural end (or failure)
func (p *fakePipeline) finishPlaying(err error) {
	p.mu.Lock()
	h := p.current
	p.mu.Unlock()
	if h != nil {
		h.resolve(err)
	}
}

func (p *fakePipeline) buildCount(title string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.builds {
		if b.track.Title == title {
			n++
		}
	}
	return n
}

func (p *fakePipeline) lastBuild() buildRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.builds[len(p.builds)-1]
}

type fakeSettings struct {
	cfg session.Config
}

func (f *fakeSettings) GuildConfig(ctx context.Context, guildID string) (session.Config, error) {
	return f.cfg, nil
}

// eventLog records bus events for assertions
type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) record(ev events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) kinds() []events.Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	kinds := make([]events.Kind, len(l.events))
	for i, ev := range l.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func (l *eventLog) count(kind events.Kind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ev := range l.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (l *eventLog) titles(kind events.Kind) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var titles []string
	for _, ev := range l.events {
		if ev.Kind == kind && ev.Track != nil {
			titles = append(titles, ev.Track.Title)
		}
	}
	return titles
}

// --- harness ---

type harness struct {
	registry  *session.Registry
	pipe      *fakePipeline
	transport *fakeTransport
	bus       *events.Bus
	log       *eventLog
}

func newHarness(t *testing.T, cfg session.Config) *harness {
	t.Helper()
	if cfg.MaxQueueSize == 0 {
		cfg.MaxQueueSize = 10
	}
	if cfg.DefaultVolume == 0 {
		cfg.DefaultVolume = 50
	}

	bus := events.NewBus(64, logger.Discard())
	t.Cleanup(bus.Close)

	pipe := newFakePipeline()
	transport := &fakeTransport{}
	log := &eventLog{}
	bus.Subscribe(nil, log.record)

	registry := session.NewRegistry(session.Deps{
		Pipeline: pipe,
		Voice:    transport,
		Bus:      bus,
		Logger:   logger.Discard(),
	}, &fakeSettings{cfg: cfg})
	t.Cleanup(registry.Shutdown)

	return &harness{registry: registry, pipe: pipe, transport: transport, bus: bus, log: log}
}

func (h *harness) session(t *testing.T, guildID string) *session.Session {
	t.Helper()
	s, err := h.registry.GetOrCreate(context.Background(), guildID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	return s
}

func track(title string) *entities.Track {
	return entities.NewTrack(title, "https://youtu.be/"+title, 3*time.Minute, valueobjects.SourceTypeYouTube, "user1", "guild1")
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitState(t *testing.T, s *session.Session, want valueobjects.SessionState) {
	t.Helper()
	waitFor(t, "state "+want.String(), func() bool {
		st, err := s.Status()
		return err == nil && st.State == want
	})
}

// --- tests ---

func TestEnqueueStartsPlayback(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	a := track("a")
	pos, err := s.Enqueue(context.Background(), a, "vc")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if pos != 1 {
		t.Errorf("Expected position 1, got %d", pos)
	}

	waitState(t, s, valueobjects.SessionPlaying)
	st, _ := s.Status()
	if st.Current == nil || st.Current.ID != a.ID {
		t.Error("Current track should be the enqueued track")
	}
	if len(st.Queue) != 0 {
		t.Errorf("Queue should be empty while the only track plays, got %d", len(st.Queue))
	}

	waitFor(t, "now-playing event", func() bool { return h.log.count(events.KindNowPlaying) == 1 })
}

func TestVolumeBoundaries(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	for _, v := range []int{0, 150} {
		if err := s.SetVolume(v); err != nil {
			t.Errorf("SetVolume(%d) should succeed: %v", v, err)
		}
	}
	for _, v := range []int{-1, 151} {
		err := s.SetVolume(v)
		if !goerrors.Is(err, apperrors.ErrParameterOutOfRange) {
			t.Errorf("SetVolume(%d) should fail with ErrParameterOutOfRange, got %v", v, err)
		}
	}

	waitFor(t, "volume-changed events", func() bool { return h.log.count(events.KindVolumeChanged) == 2 })
}

func TestPauseResumeStateChecks(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	// Idle: both must be rejected, not silently ignored
	if err := s.Pause(); !goerrors.Is(err, apperrors.ErrInvalidState) {
		t.Errorf("Pause while Idle should fail with ErrInvalidState, got %v", err)
	}
	if err := s.Resume(); !goerrors.Is(err, apperrors.ErrInvalidState) {
		t.Errorf("Resume while Idle should fail with ErrInvalidState, got %v", err)
	}

	if _, err := s.Enqueue(context.Background(), track("a"), "vc"); err != nil {
		t.Fatal(err)
	}
	waitState(t, s, valueobjects.SessionPlaying)

	if err := s.Resume(); !goerrors.Is(err, apperrors.ErrInvalidState) {
		t.Error("Resume while Playing should fail")
	}
	if err := s.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	waitState(t, s, valueobjects.SessionPaused)
	if err := s.Pause(); !goerrors.Is(err, apperrors.ErrInvalidState) {
		t.Error("Pause while Paused should fail")
	}
	if err := s.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	waitState(t, s, valueobjects.SessionPlaying)

	waitFor(t, "paused/resumed events", func() bool {
		return h.log.count(events.KindPaused) == 1 && h.log.count(events.KindResumed) == 1
	})
}

func TestSkipWithNothingPlaying(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	if err := s.Skip(); !goerrors.Is(err, apperrors.ErrNothingPlaying) {
		t.Errorf("Skip while Idle should fail with ErrNothingPlaying, got %v", err)
	}
}

func TestRepeatQueueIsCyclic(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	if err := s.SetRepeatMode(valueobjects.RepeatModeQueue); err != nil {
		t.Fatal(err)
	}

	a, b := track("a"), track("b")
	if _, err := s.Enqueue(context.Background(), a, "vc"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Enqueue(context.Background(), b, "vc"); err != nil {
		t.Fatal(err)
	}
	waitState(t, s, valueobjects.SessionPlaying)

	// a finishes naturally -> b plays; b finishes -> a plays again
	h.pipe.finishPlaying(nil)
	waitFor(t, "b playing", func() bool {
		st, _ := s.Status()
		return st.Current != nil && st.Current.ID == b.ID
	})
	h.pipe.finishPlaying(nil)
	waitFor(t, "a playing again", func() bool {
		st, _ := s.Status()
		return st.Current != nil && st.Current.ID == a.ID
	})

	want := []string{"a", "b", "a"}
	waitFor(t, "now-playing sequence a,b,a", func() bool {
		titles := h.log.titles(events.KindNowPlaying)
		if len(titles) != len(want) {
			return false
		}
		for i := range want {
			if titles[i] != want[i] {
				return false
			}
		}
		return true
	})

	st, _ := s.Status()
	if len(st.Queue) != 1 || st.Queue[0].ID != b.ID {
		t.Error("With repeat=queue the finished track must rotate to the back")
	}
}

func TestRepeatTrackReplaysSameTrack(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	if err := s.SetRepeatMode(valueobjects.RepeatModeTrack); err != nil {
		t.Fatal(err)
	}
	a := track("a")
	if _, err := s.Enqueue(context.Background(), a, "vc"); err != nil {
		t.Fatal(err)
	}
	waitState(t, s, valueobjects.SessionPlaying)

	h.pipe.finishPlaying(nil)
	waitFor(t, "a rebuilt", func() bool { return h.pipe.buildCount("a") == 2 })

	st, _ := s.Status()
	if st.Current == nil || st.Current.ID != a.ID {
		t.Error("With repeat=track the same track must play again")
	}
}

func TestSkipDuringPausedAdvances(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	a, b := track("a"), track("b")
	if _, err := s.Enqueue(context.Background(), a, "vc"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Enqueue(context.Background(), b, "vc"); err != nil {
		t.Fatal(err)
	}
	waitState(t, s, valueobjects.SessionPlaying)

	if err := s.Pause(); err != nil {
		t.Fatal(err)
	}
	waitState(t, s, valueobjects.SessionPaused)

	if err := s.Skip(); err != nil {
		t.Fatalf("Skip while Paused: %v", err)
	}

	waitFor(t, "b playing after skip", func() bool {
		st, _ := s.Status()
		return st.State == valueobjects.SessionPlaying && st.Current != nil && st.Current.ID == b.ID
	})

	waitFor(t, "skipped event", func() bool { return h.log.count(events.KindSkipped) == 1 })
}

func TestQueueFullRejectsEntirely(t *testing.T) {
	h := newHarness(t, session.Config{MaxQueueSize: 1})
	s := h.session(t, "guild1")

	// a starts playing immediately and leaves the queue
	if _, err := s.Enqueue(context.Background(), track("a"), "vc"); err != nil {
		t.Fatal(err)
	}
	waitState(t, s, valueobjects.SessionPlaying)

	if _, err := s.Enqueue(context.Background(), track("b"), "vc"); err != nil {
		t.Fatal(err)
	}
	_, err := s.Enqueue(context.Background(), track("c"), "vc")
	if !goerrors.Is(err, apperrors.ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}

	st, _ := s.Status()
	if len(st.Queue) != 1 {
		t.Errorf("Rejected enqueue must not change the queue, got len %d", len(st.Queue))
	}
}

func TestPipelineFailureCascade(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	h.pipe.failFor["a"] = apperrors.ErrPipelineFailure
	h.pipe.failFor["b"] = apperrors.ErrPipelineFailure

	for _, title := range []string{"ok", "a", "b", "c"} {
		if _, err := s.Enqueue(context.Background(), track(title), "vc"); err != nil {
			t.Fatal(err)
		}
	}
	waitState(t, s, valueobjects.SessionPlaying)

	// ok ends naturally; a and b refuse to build and must be skipped over
	h.pipe.finishPlaying(nil)
	waitFor(t, "c playing", func() bool {
		st, _ := s.Status()
		return st.State == valueobjects.SessionPlaying && st.Current != nil && st.Current.Title == "c"
	})

	waitFor(t, "two track-failed events", func() bool { return h.log.count(events.KindTrackFailed) == 2 })
	if h.pipe.buildCount("a") != 1 || h.pipe.buildCount("b") != 1 {
		t.Error("Failed tracks must never be re-attempted")
	}
}

func TestFailedTrackNotRequeuedUnderRepeat(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	if err := s.SetRepeatMode(valueobjects.RepeatModeTrack); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Enqueue(context.Background(), track("a"), "vc"); err != nil {
		t.Fatal(err)
	}
	waitState(t, s, valueobjects.SessionPlaying)

	// a fails mid-stream; even under repeat=track it must not come back
	h.pipe.finishPlaying(apperrors.ErrPipelineFailure)
	waitState(t, s, valueobjects.SessionIdle)

	if h.pipe.buildCount("a") != 1 {
		t.Error("A failing track must not be re-queued under repeat=track")
	}
}

func TestThreeConsecutiveFailuresGoIdle(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	for _, title := range []string{"a", "b", "c", "d"} {
		h.pipe.failFor[title] = apperrors.ErrPipelineFailure
	}
	for _, title := range []string{"ok", "a", "b", "c", "d"} {
		if _, err := s.Enqueue(context.Background(), track(title), "vc"); err != nil {
			t.Fatal(err)
		}
	}
	waitState(t, s, valueobjects.SessionPlaying)

	h.pipe.finishPlaying(nil)
	waitState(t, s, valueobjects.SessionIdle)
	waitFor(t, "queue-finished", func() bool { return h.log.count(events.KindQueueFinished) == 1 })

	// The fourth track is abandoned with the rest of the queue
	if h.pipe.buildCount("d") != 0 {
		t.Error("Session must stop advancing after three consecutive failures")
	}
	st, _ := s.Status()
	if len(st.Queue) != 0 {
		t.Error("Aborting the queue must discard the remaining tracks")
	}
}

func TestSuccessfulBuildResetsFailureStreak(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	for _, title := range []string{"a", "c", "d"} {
		h.pipe.failFor[title] = apperrors.ErrPipelineFailure
	}
	for _, title := range []string{"ok", "a", "b", "c", "d", "e"} {
		if _, err := s.Enqueue(context.Background(), track(title), "vc"); err != nil {
			t.Fatal(err)
		}
	}
	waitState(t, s, valueobjects.SessionPlaying)

	// ok ends naturally, a fails to build, b plays
	h.pipe.finishPlaying(nil)
	waitFor(t, "b playing", func() bool {
		st, _ := s.Status()
		return st.Current != nil && st.Current.Title == "b"
	})

	// b built successfully, so c and d are only two failures in a row
	// and e must still play
	if err := s.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	waitFor(t, "e playing", func() bool {
		st, _ := s.Status()
		return st.State == valueobjects.SessionPlaying && st.Current != nil && st.Current.Title == "e"
	})

	waitFor(t, "three track-failed events", func() bool { return h.log.count(events.KindTrackFailed) == 3 })
	if h.log.count(events.KindQueueFinished) != 0 {
		t.Error("The queue must not be aborted while failures are not consecutive")
	}
}

func TestStopTerminatesAndIsIdempotent(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	if _, err := s.Enqueue(context.Background(), track("a"), "vc"); err != nil {
		t.Fatal(err)
	}
	waitState(t, s, valueobjects.SessionPlaying)

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	waitFor(t, "session removed from registry", func() bool {
		return h.registry.Get("guild1") == nil
	})

	if h.transport.conns[0].Disconnected() != true {
		t.Error("Stop must release the voice connection")
	}
	waitFor(t, "queue-finished marker", func() bool { return h.log.count(events.KindQueueFinished) == 1 })

	// Stop on a terminated session is a no-op, not an error
	if err := s.Stop(); err != nil {
		t.Errorf("Second Stop should be a no-op, got %v", err)
	}

	if _, err := s.Enqueue(context.Background(), track("b"), "vc"); !goerrors.Is(err, apperrors.ErrSessionClosed) {
		t.Errorf("Enqueue after Stop should fail with ErrSessionClosed, got %v", err)
	}
}

func TestConnectFailureRevertsToIdleAndAbortsEnqueue(t *testing.T) {
	h := newHarness(t, session.Config{})
	h.transport.connectErr = apperrors.ErrConnectionFailed
	s := h.session(t, "guild1")

	_, err := s.Enqueue(context.Background(), track("a"), "vc")
	if !goerrors.Is(err, apperrors.ErrConnectionFailed) {
		t.Fatalf("Expected ErrConnectionFailed, got %v", err)
	}

	st, _ := s.Status()
	if st.State != valueobjects.SessionIdle {
		t.Errorf("Session must revert to Idle after connect failure, got %s", st.State)
	}
	if len(st.Queue) != 0 {
		t.Error("The enqueue that triggered the failed connect must be aborted")
	}

	// A later enqueue works once the transport recovers
	h.transport.connectErr = nil
	if _, err := s.Enqueue(context.Background(), track("b"), "vc"); err != nil {
		t.Fatalf("Enqueue after recovery: %v", err)
	}
	waitState(t, s, valueobjects.SessionPlaying)
}

func TestVolumeAppliesToNextTrackWithoutLiveGain(t *testing.T) {
	h := newHarness(t, session.Config{DefaultVolume: 50})
	s := h.session(t, "guild1")

	if _, err := s.Enqueue(context.Background(), track("a"), "vc"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Enqueue(context.Background(), track("b"), "vc"); err != nil {
		t.Fatal(err)
	}
	waitState(t, s, valueobjects.SessionPlaying)

	if err := s.SetVolume(120); err != nil {
		t.Fatal(err)
	}

	if h.pipe.lastBuild().volume != 50 {
		t.Error("Without live gain the running stream keeps its build volume")
	}

	h.pipe.finishPlaying(nil)
	waitFor(t, "b built with new volume", func() bool {
		return h.pipe.buildCount("b") == 1 && h.pipe.lastBuild().volume == 120
	})
}

func TestVolumeAppliesLiveWhenSupported(t *testing.T) {
	h := newHarness(t, session.Config{DefaultVolume: 50})
	h.pipe.liveGain = true
	s := h.session(t, "guild1")

	if _, err := s.Enqueue(context.Background(), track("a"), "vc"); err != nil {
		t.Fatal(err)
	}
	waitState(t, s, valueobjects.SessionPlaying)

	if err := s.SetVolume(80); err != nil {
		t.Fatal(err)
	}

	h.pipe.mu.Lock()
	handle := h.pipe.current
	h.pipe.mu.Unlock()

	handle.mu.Lock()
	defer handle.mu.Unlock()
	if len(handle.volumes) != 1 || handle.volumes[0] != 80 {
		t.Errorf("Expected live gain adjustment to 80, got %v", handle.volumes)
	}
}

func TestFilterChangeAppliesToNextStream(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	if _, err := s.Enqueue(context.Background(), track("a"), "vc"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Enqueue(context.Background(), track("b"), "vc"); err != nil {
		t.Fatal(err)
	}
	waitState(t, s, valueobjects.SessionPlaying)

	if len(h.pipe.lastBuild().spec) != 0 {
		t.Fatal("First stream should have no filters")
	}

	if err := s.EnableFilter(filters.KindBassBoost, nil); err != nil {
		t.Fatal(err)
	}

	h.pipe.finishPlaying(nil)
	waitFor(t, "b built with filter", func() bool {
		if h.pipe.buildCount("b") != 1 {
			return false
		}
		spec := h.pipe.lastBuild().spec
		return len(spec) == 1 && spec[0].Kind == filters.KindBassBoost
	})
}

func TestFilterValidationSurfacesThroughSession(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	err := s.EnableFilter(filters.KindBassBoost, filters.Params{"gain": 35})
	if !goerrors.Is(err, apperrors.ErrParameterOutOfRange) {
		t.Errorf("Expected ErrParameterOutOfRange, got %v", err)
	}

	st, _ := s.Status()
	if len(st.Filters) != 0 {
		t.Error("Failed enable must leave the chain unchanged")
	}
}

func TestQueueDrainedGoesIdleAndPublishesFinish(t *testing.T) {
	h := newHarness(t, session.Config{})
	s := h.session(t, "guild1")

	if _, err := s.Enqueue(context.Background(), track("a"), "vc"); err != nil {
		t.Fatal(err)
	}
	waitState(t, s, valueobjects.SessionPlaying)

	h.pipe.finishPlaying(nil)
	waitState(t, s, valueobjects.SessionIdle)

	waitFor(t, "finished + queue-finished", func() bool {
		return h.log.count(events.KindFinished) == 1 && h.log.count(events.KindQueueFinished) == 1
	})
}
