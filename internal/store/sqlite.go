package store

// #region imports
import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/disposition-engine/internal/mood"
)

// #endregion

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS entity_states (
	entity_id           TEXT PRIMARY KEY,
	current_state       TEXT NOT NULL,
	previous_state      TEXT,
	entered_at          TEXT NOT NULL,
	transition_count    INTEGER NOT NULL DEFAULT 0,
	interaction_count   INTEGER NOT NULL DEFAULT 0,
	intensity           REAL NOT NULL DEFAULT 0,
	context_json        TEXT,
	last_interaction_at TEXT NOT NULL,
	updated_at          TEXT NOT NULL
);
`

// #endregion schema

// #region sqlite-struct

// SQLite persists entity states in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at dbPath and runs migrations.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

// NewSQLiteWithDB wraps an existing connection. The caller owns migrations.
func NewSQLiteWithDB(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. audit).
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// #endregion sqlite-struct

// #region load

// Load reads one entity snapshot. A missing row is (nil, nil).
func (s *SQLite) Load(ctx context.Context, entityID string) (*mood.EntityState, error) {
	var (
		st          mood.EntityState
		prev        sql.NullString
		enteredStr  string
		ctxJSON     sql.NullString
		lastStr     string
		transitions int64
		interacts   int64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT entity_id, current_state, previous_state, entered_at,
		        transition_count, interaction_count, intensity, context_json,
		        last_interaction_at
		 FROM entity_states WHERE entity_id = ?`, entityID,
	).Scan(&st.EntityID, &st.Current, &prev, &enteredStr,
		&transitions, &interacts, &st.Intensity, &ctxJSON, &lastStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", entityID, err)
	}

	if prev.Valid {
		st.Previous = mood.State(prev.String)
	}
	st.TransitionCount = uint64(transitions)
	st.InteractionCount = uint64(interacts)

	st.EnteredAt, err = time.Parse(time.RFC3339Nano, enteredStr)
	if err != nil {
		return nil, fmt.Errorf("parse entered_at for %s: %w", entityID, err)
	}
	st.LastInteractionAt, err = time.Parse(time.RFC3339Nano, lastStr)
	if err != nil {
		return nil, fmt.Errorf("parse last_interaction_at for %s: %w", entityID, err)
	}

	st.Context = map[string]any{}
	if ctxJSON.Valid && ctxJSON.String != "" {
		if err := json.Unmarshal([]byte(ctxJSON.String), &st.Context); err != nil {
			return nil, fmt.Errorf("unmarshal context for %s: %w", entityID, err)
		}
	}

	return &st, nil
}

// #endregion load

// #region save

// Save upserts one entity snapshot. Last write wins within a process.
func (s *SQLite) Save(ctx context.Context, st *mood.EntityState) error {
	ctxJSON, err := json.Marshal(st.Context)
	if err != nil {
		return fmt.Errorf("marshal context for %s: %w", st.EntityID, err)
	}

	var prevPtr interface{}
	if st.Previous != "" {
		prevPtr = string(st.Previous)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entity_states
		 (entity_id, current_state, previous_state, entered_at,
		  transition_count, interaction_count, intensity, context_json,
		  last_interaction_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(entity_id) DO UPDATE SET
		  current_state = excluded.current_state,
		  previous_state = excluded.previous_state,
		  entered_at = excluded.entered_at,
		  transition_count = excluded.transition_count,
		  interaction_count = excluded.interaction_count,
		  intensity = excluded.intensity,
		  context_json = excluded.context_json,
		  last_interaction_at = excluded.last_interaction_at,
		  updated_at = excluded.updated_at`,
		st.EntityID, string(st.Current), prevPtr,
		st.EnteredAt.UTC().Format(time.RFC3339Nano),
		int64(st.TransitionCount), int64(st.InteractionCount),
		st.Intensity, string(ctxJSON),
		st.LastInteractionAt.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", st.EntityID, err)
	}
	return nil
}

// #endregion save

// #region list

// ListEntities returns every persisted entity snapshot, most recently
// updated first. Used by the inspect command.
func (s *SQLite) ListEntities(ctx context.Context, limit int) ([]*mood.EntityState, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entity_id FROM entity_states ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	states := make([]*mood.EntityState, 0, len(ids))
	for _, id := range ids {
		st, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if st != nil {
			states = append(states, st)
		}
	}
	return states, nil
}

// #endregion list
