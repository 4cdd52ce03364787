// Package audit records cascade outcomes in a SQLite trail, one row per
// event the audit listener observes, correlated by stimulus id.
package audit

// #region imports
import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// #endregion

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	stimulus_id  TEXT,
	entity_id    TEXT NOT NULL,
	kind         TEXT NOT NULL,
	detail_json  TEXT,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_entity
ON audit_log(entity_id, created_at);
`

// #endregion schema

// #region entry

// Entry is one audit row.
type Entry struct {
	StimulusID string
	EntityID   string
	Kind       string
	DetailJSON string
	CreatedAt  time.Time
}

// #endregion entry

// #region trail

// Trail writes audit entries to a shared SQLite connection.
type Trail struct {
	db *sql.DB
}

// NewTrail initializes the audit_log table on db.
func NewTrail(db *sql.DB) (*Trail, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate audit_log: %w", err)
	}
	return &Trail{db: db}, nil
}

// Record inserts one entry. A zero CreatedAt is filled with the current time.
func (t *Trail) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO audit_log (stimulus_id, entity_id, kind, detail_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		nullIfEmpty(e.StimulusID), e.EntityID, e.Kind,
		nullIfEmpty(e.DetailJSON),
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Recent returns the most recent entries for one entity ("" for all).
func (t *Trail) Recent(ctx context.Context, entityID string, limit int) ([]Entry, error) {
	query := `SELECT stimulus_id, entity_id, kind, detail_json, created_at
	          FROM audit_log`
	args := []any{}
	if entityID != "" {
		query += ` WHERE entity_id = ?`
		args = append(args, entityID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit_log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			stimID     sql.NullString
			detail     sql.NullString
			createdStr string
		)
		if err := rows.Scan(&stimID, &e.EntityID, &e.Kind, &detail, &createdStr); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		e.StimulusID = stimID.String
		e.DetailJSON = detail.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion trail

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
