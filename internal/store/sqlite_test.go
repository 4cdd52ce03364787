package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/disposition-engine/internal/mood"
)

func tempStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleState(entityID string) *mood.EntityState {
	entered := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &mood.EntityState{
		EntityID:          entityID,
		Current:           mood.StatePlayful,
		Previous:          mood.StateGuarded,
		EnteredAt:         entered,
		TransitionCount:   3,
		InteractionCount:  11,
		Intensity:         0.7,
		Context:           map[string]any{"sentiment": 0.4, "topic": "music"},
		LastInteractionAt: entered.Add(10 * time.Minute),
	}
}

func TestLoadUnseenEntity(t *testing.T) {
	s := tempStore(t)
	st, err := s.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st != nil {
		t.Fatalf("expected nil for unseen entity, got %+v", st)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	want := sampleState("u-1")

	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, "u-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil for saved entity")
	}

	if got.EntityID != want.EntityID {
		t.Errorf("entity id: %s != %s", got.EntityID, want.EntityID)
	}
	if got.Current != want.Current || got.Previous != want.Previous {
		t.Errorf("states: (%s, %s) != (%s, %s)", got.Current, got.Previous, want.Current, want.Previous)
	}
	if !got.EnteredAt.Equal(want.EnteredAt) {
		t.Errorf("entered at: %v != %v", got.EnteredAt, want.EnteredAt)
	}
	if !got.LastInteractionAt.Equal(want.LastInteractionAt) {
		t.Errorf("last interaction: %v != %v", got.LastInteractionAt, want.LastInteractionAt)
	}
	if got.TransitionCount != want.TransitionCount || got.InteractionCount != want.InteractionCount {
		t.Errorf("counters: (%d, %d) != (%d, %d)",
			got.TransitionCount, got.InteractionCount, want.TransitionCount, want.InteractionCount)
	}
	if got.Intensity != want.Intensity {
		t.Errorf("intensity: %f != %f", got.Intensity, want.Intensity)
	}
	if got.Context["sentiment"] != 0.4 || got.Context["topic"] != "music" {
		t.Errorf("context: %v", got.Context)
	}
}

func TestSaveLoadRoundTripEmptyContext(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	want := mood.NewEntityState("u-2", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, "u-2")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Previous != "" {
		t.Errorf("previous: %q, want empty", got.Previous)
	}
	if got.Context == nil || len(got.Context) != 0 {
		t.Errorf("context: %v, want empty non-nil map", got.Context)
	}
}

func TestSaveUpsert(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	st := sampleState("u-3")
	if err := s.Save(ctx, st); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	st.Current = mood.StateAnalytical
	st.TransitionCount = 4
	if err := s.Save(ctx, st); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := s.Load(ctx, "u-3")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Current != mood.StateAnalytical || got.TransitionCount != 4 {
		t.Errorf("upsert did not apply: state=%s count=%d", got.Current, got.TransitionCount)
	}
}

func TestListEntities(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		st := sampleState(id)
		if err := s.Save(ctx, st); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	states, err := s.ListEntities(ctx, 10)
	if err != nil {
		t.Fatalf("ListEntities: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(states))
	}
}

func TestSaveOnClosedDB(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	s.Close()

	if err := s.Save(context.Background(), sampleState("u-4")); err == nil {
		t.Fatal("expected error on closed DB")
	}
}

func TestLoadOnClosedDB(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	s.Close()

	if _, err := s.Load(context.Background(), "u-5"); err == nil {
		t.Fatal("expected error on closed DB")
	}
}

func TestLoadBadContextJSON(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	s := NewSQLiteWithDB(db)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = db.Exec(
		`INSERT INTO entity_states
		 (entity_id, current_state, entered_at, transition_count, interaction_count,
		  intensity, context_json, last_interaction_at, updated_at)
		 VALUES (?, ?, ?, 0, 0, 0.5, ?, ?, ?)`,
		"bad", "guarded", now, "%%%not-json", now, now,
	)
	if err != nil {
		t.Fatalf("seed row: %v", err)
	}

	if _, err := s.Load(context.Background(), "bad"); err == nil {
		t.Fatal("expected unmarshal error for bad context JSON")
	}
}

func TestNewSQLiteInvalidPath(t *testing.T) {
	_, err := NewSQLite(filepath.Join(string(filepath.Separator), "nonexistent", "deep", "path", "test.db"))
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
}
