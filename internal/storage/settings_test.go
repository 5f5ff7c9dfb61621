package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/zhotheone/discordmusicbot/internal/database"
	"github.com/zhotheone/discordmusicbot/internal/session"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

type fakeSettingsQueries struct {
	mu      sync.Mutex
	rows    map[string]database.GuildSettings
	gets    int
	upserts int
	err     error
}

func newFakeSettingsQueries() *fakeSettingsQueries {
	return &fakeSettingsQueries{rows: make(map[string]database.GuildSettings)}
}

func (f *fakeSettingsQueries) GetGuildSettings(ctx context.Context, guildID string) (database.GuildSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.err != nil {
		return database.GuildSettings{}, f.err
	}
	row, ok := f.rows[guildID]
	if !ok {
		return database.GuildSettings{}, pgx.ErrNoRows
	}
	return row, nil
}

func (f *fakeSettingsQueries) UpsertGuildSettings(ctx context.Context, s database.GuildSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.err != nil {
		return f.err
	}
	f.rows[s.GuildID] = s
	return nil
}

var testDefaults = session.Config{
	MaxQueueSize:  100,
	DefaultVolume: 50,
	IdleTimeout:   5 * time.Minute,
}

func newTestStore(q settingsQueries) *SettingsStore {
	return &SettingsStore{
		queries:  q,
		defaults: testDefaults,
		ttl:      time.Minute,
		logger:   logger.Discard(),
		cache:    make(map[string]cachedConfig),
	}
}

func TestGuildConfigFromStoredRow(t *testing.T) {
	q := newFakeSettingsQueries()
	q.rows["guild1"] = database.GuildSettings{
		GuildID:            "guild1",
		Volume:             80,
		MaxQueueSize:       25,
		IdleTimeoutSeconds: 600,
	}
	store := newTestStore(q)

	cfg, err := store.GuildConfig(context.Background(), "guild1")
	if err != nil {
		t.Fatalf("GuildConfig: %v", err)
	}
	if cfg.DefaultVolume != 80 || cfg.MaxQueueSize != 25 || cfg.IdleTimeout != 10*time.Minute {
		t.Errorf("Stored settings not mapped, got %+v", cfg)
	}
}

func TestGuildConfigDefaultsWhenMissing(t *testing.T) {
	store := newTestStore(newFakeSettingsQueries())

	cfg, err := store.GuildConfig(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("GuildConfig: %v", err)
	}
	if cfg != testDefaults {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestGuildConfigDefaultsOnQueryError(t *testing.T) {
	q := newFakeSettingsQueries()
	q.err = context.DeadlineExceeded
	store := newTestStore(q)

	cfg, err := store.GuildConfig(context.Background(), "guild1")
	if err != nil {
		t.Fatalf("Lookup failure must not surface, got %v", err)
	}
	if cfg != testDefaults {
		t.Errorf("Expected defaults on error, got %+v", cfg)
	}
}

func TestGuildConfigIsCached(t *testing.T) {
	q := newFakeSettingsQueries()
	q.rows["guild1"] = database.GuildSettings{GuildID: "guild1", Volume: 80, MaxQueueSize: 25, IdleTimeoutSeconds: 600}
	store := newTestStore(q)

	for i := 0; i < 3; i++ {
		if _, err := store.GuildConfig(context.Background(), "guild1"); err != nil {
			t.Fatal(err)
		}
	}

	if q.gets != 1 {
		t.Errorf("Expected a single database fetch, got %d", q.gets)
	}
}

func TestSetVolumePersistsAndInvalidates(t *testing.T) {
	q := newFakeSettingsQueries()
	store := newTestStore(q)

	// Populate the cache with the defaults path first
	if _, err := store.GuildConfig(context.Background(), "guild1"); err != nil {
		t.Fatal(err)
	}

	if err := store.SetVolume(context.Background(), "guild1", 120); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}

	row := q.rows["guild1"]
	if row.Volume != 120 {
		t.Errorf("Expected persisted volume 120, got %d", row.Volume)
	}
	// Unrelated settings keep the defaults
	if row.MaxQueueSize != testDefaults.MaxQueueSize {
		t.Errorf("Expected default queue size, got %d", row.MaxQueueSize)
	}

	cfg, err := store.GuildConfig(context.Background(), "guild1")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultVolume != 120 {
		t.Errorf("Expected fresh read after invalidation, got %d", cfg.DefaultVolume)
	}
}

func TestSetActivePreset(t *testing.T) {
	q := newFakeSettingsQueries()
	store := newTestStore(q)

	if err := store.SetActivePreset(context.Background(), "guild1", "nightcore"); err != nil {
		t.Fatalf("SetActivePreset: %v", err)
	}
	row := q.rows["guild1"]
	if row.ActivePreset == nil || *row.ActivePreset != "nightcore" {
		t.Errorf("Expected persisted preset, got %v", row.ActivePreset)
	}

	if err := store.SetActivePreset(context.Background(), "guild1", ""); err != nil {
		t.Fatal(err)
	}
	if q.rows["guild1"].ActivePreset != nil {
		t.Error("Clearing the preset should store NULL")
	}
}

func TestNilQueriesAlwaysReturnsDefaults(t *testing.T) {
	store := NewSettingsStore(nil, testDefaults, time.Minute, logger.Discard())

	cfg, err := store.GuildConfig(context.Background(), "guild1")
	if err != nil || cfg != testDefaults {
		t.Errorf("Expected defaults without a database, got %+v, %v", cfg, err)
	}
	if err := store.SetVolume(context.Background(), "guild1", 120); err != nil {
		t.Errorf("SetVolume without a database is a no-op, got %v", err)
	}
}
