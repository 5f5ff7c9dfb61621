package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/zhotheone/discordmusicbot/internal/database"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

type fakeUserQueries struct {
	rows    map[string]database.UserSettings
	getErr  error
	upserts []database.UserSettings
}

func (f *fakeUserQueries) GetUserSettings(ctx context.Context, userID string) (database.UserSettings, error) {
	if f.getErr != nil {
		return database.UserSettings{}, f.getErr
	}
	row, ok := f.rows[userID]
	if !ok {
		return database.UserSettings{}, pgx.ErrNoRows
	}
	return row, nil
}

func (f *fakeUserQueries) UpsertUserSettings(ctx context.Context, s database.UserSettings) error {
	f.upserts = append(f.upserts, s)
	if f.rows == nil {
		f.rows = make(map[string]database.UserSettings)
	}
	f.rows[s.UserID] = s
	return nil
}

func TestPreferencesReturnsStoredRow(t *testing.T) {
	queries := &fakeUserQueries{rows: map[string]database.UserSettings{
		"u1": {UserID: "u1", Volume: 80, RepeatMode: "queue"},
	}}
	store := &UserStore{queries: queries, logger: logger.Discard()}

	row, ok := store.Preferences(context.Background(), "u1")
	if !ok {
		t.Fatal("expected stored preferences")
	}
	if row.Volume != 80 || row.RepeatMode != "queue" {
		t.Errorf("unexpected row: %+v", row)
	}
}

func TestPreferencesMissingRow(t *testing.T) {
	store := &UserStore{queries: &fakeUserQueries{}, logger: logger.Discard()}

	if _, ok := store.Preferences(context.Background(), "nobody"); ok {
		t.Error("expected no preferences for unknown user")
	}
}

func TestPreferencesQueryErrorTreatedAsMissing(t *testing.T) {
	queries := &fakeUserQueries{getErr: errors.New("connection refused")}
	store := &UserStore{queries: queries, logger: logger.Discard()}

	if _, ok := store.Preferences(context.Background(), "u1"); ok {
		t.Error("expected lookup failure to read as no preferences")
	}
}

func TestSetPreferencesPersists(t *testing.T) {
	queries := &fakeUserQueries{}
	store := &UserStore{queries: queries, logger: logger.Discard()}

	if err := store.SetPreferences(context.Background(), "u1", 95, "track"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries.upserts) != 1 {
		t.Fatalf("expected one upsert, got %d", len(queries.upserts))
	}
	if queries.upserts[0].Volume != 95 || queries.upserts[0].RepeatMode != "track" {
		t.Errorf("unexpected upsert: %+v", queries.upserts[0])
	}
}

func TestUserStoreWithoutDatabase(t *testing.T) {
	store := NewUserStore(nil, logger.Discard())

	if _, ok := store.Preferences(context.Background(), "u1"); ok {
		t.Error("expected no preferences without a database")
	}
	if err := store.SetPreferences(context.Background(), "u1", 50, "off"); err != nil {
		t.Errorf("expected nil-database writes to be a no-op, got %v", err)
	}
}
