package session

import (
	"context"
	"sync"
	"time"
)

// SettingsProvider supplies per-guild playback configuration. Implemented by
// the storage layer; the core never reads configuration sources directly.
type SettingsProvider interface {
	GuildConfig(ctx context.Context, guildID string) (Config, error)
}

// Registry is the process-wide map from guild id to playback session. It is
// the only state shared across guild workers; sessions themselves are actors
// and never share anything.
type Registry struct {
	deps     Deps
	settings SettingsProvider

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry(deps Deps, settings SettingsProvider) *Registry {
	return &Registry{
		deps:     deps,
		settings: settings,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the guild's session, constructing an Idle one if none
// exists. Concurrent calls for the same unseen guild observe exactly one
// session: the settings lookup happens outside the lock, the create-if-absent
// check inside it.
func (r *Registry) GetOrCreate(ctx context.Context, guildID string) (*Session, error) {
	r.mu.Lock()
	if s, ok := r.sessions[guildID]; ok {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	cfg, err := r.settings.GuildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have won the race while we fetched settings
	if s, ok := r.sessions[guildID]; ok {
		return s, nil
	}

	s := newSession(guildID, cfg, r.deps, r.Remove)
	r.sessions[guildID] = s

	r.deps.Logger.WithGuild(guildID).Info("Playback session created")
	return s, nil
}

// Get returns the guild's session or nil
func (r *Registry) Get(guildID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[guildID]
}

// Remove deregisters a terminated session. Safe to call redundantly; also
// installed as every session's termination hook.
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, guildID)
}

// ListActive returns a snapshot of all registered sessions
func (r *Registry) ListActive() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if !s.Terminated() {
			active = append(active, s)
		}
	}
	return active
}

// Sweep terminates sessions that have been Idle longer than their configured
// idle timeout. Called periodically by RunSweeper.
func (r *Registry) Sweep() {
	for _, s := range r.ListActive() {
		timeout := s.cfg.IdleTimeout
		if timeout <= 0 {
			continue
		}
		if idle := s.IdleFor(); idle > timeout {
			r.deps.Logger.WithFields(map[string]interface{}{
				"guild": s.GuildID(),
				"idle":  idle.Round(time.Second),
			}).Info("Terminating idle session")
			if err := s.Stop(); err != nil {
				r.deps.Logger.WithGuild(s.GuildID()).WithError(err).Warn("Idle sweep stop failed")
			}
		}
	}
}

// RunSweeper runs the idle sweep on a timer until ctx is cancelled
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Shutdown stops every session, releasing all voice connections
func (r *Registry) Shutdown() {
	for _, s := range r.ListActive() {
		if err := s.Stop(); err != nil {
			r.deps.Logger.WithGuild(s.GuildID()).WithError(err).Warn("Shutdown stop failed")
		}
	}
}
