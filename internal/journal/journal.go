// Package journal persists combat history in SQLite.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"chosenoffset.com/battlefx/turn"
)

// ErrNotConfigured is returned when no journal path is set.
var ErrNotConfigured = errors.New("journal is not configured")

const schema = `
CREATE TABLE IF NOT EXISTS combat_records (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  session     TEXT    NOT NULL,
  kind        TEXT    NOT NULL,
  round       INTEGER NOT NULL,
  event       INTEGER NOT NULL,
  at          INTEGER NOT NULL,
  action_id   TEXT    NOT NULL DEFAULT '',
  template_id TEXT    NOT NULL DEFAULT '',
  source_id   TEXT    NOT NULL DEFAULT '',
  targets     TEXT    NOT NULL DEFAULT '[]',
  effect_ids  TEXT    NOT NULL DEFAULT '[]',
  total       INTEGER NOT NULL DEFAULT 0,
  detail      TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS combat_records_session ON combat_records(session, id);
`

// Journal appends combat records for one session
type Journal struct {
	db      *sql.DB
	session string
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens or creates the journal at path and starts a new session.
// ":memory:" opens a private in-memory journal.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNotConfigured
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Journal{db: db, session: ulid.Make().String()}, nil
}

// Close closes the SQLite handle.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Session returns the id records are written under.
func (j *Journal) Session() string {
	return j.session
}

// Record appends one record to the current session.
func (j *Journal) Record(ctx context.Context, rec turn.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if j == nil || j.db == nil {
		return ErrNotConfigured
	}

	targets, err := json.Marshal(nonNil(rec.Targets))
	if err != nil {
		return fmt.Errorf("encode targets: %w", err)
	}
	effects, err := json.Marshal(nonNil(rec.EffectIDs))
	if err != nil {
		return fmt.Errorf("encode effect ids: %w", err)
	}

	_, err = j.db.ExecContext(
		ctx,
		`INSERT INTO combat_records (
		   session, kind, round, event, at,
		   action_id, template_id, source_id, targets, effect_ids, total, detail
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.session,
		string(rec.Kind),
		rec.Round,
		rec.Event,
		toMillis(rec.At),
		rec.ActionID,
		rec.TemplateID,
		rec.SourceID,
		string(targets),
		string(effects),
		rec.Total,
		rec.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert combat record: %w", err)
	}
	return nil
}

// History returns the current session's records in the order written.
func (j *Journal) History(ctx context.Context) ([]turn.Record, error) {
	return j.SessionHistory(ctx, j.session)
}

// SessionHistory returns one session's records in the order written.
func (j *Journal) SessionHistory(ctx context.Context, session string) ([]turn.Record, error) {
	if j == nil || j.db == nil {
		return nil, ErrNotConfigured
	}

	rows, err := j.db.QueryContext(
		ctx,
		`SELECT kind, round, event, at, action_id, template_id, source_id, targets, effect_ids, total, detail
		   FROM combat_records
		  WHERE session = ?
		  ORDER BY id`,
		session,
	)
	if err != nil {
		return nil, fmt.Errorf("query combat records: %w", err)
	}
	defer rows.Close()

	var out []turn.Record
	for rows.Next() {
		var (
			rec             turn.Record
			kind            string
			at              int64
			targets, effect string
		)
		if err := rows.Scan(&kind, &rec.Round, &rec.Event, &at, &rec.ActionID, &rec.TemplateID,
			&rec.SourceID, &targets, &effect, &rec.Total, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scan combat record: %w", err)
		}
		rec.Kind = turn.RecordKind(kind)
		rec.At = fromMillis(at)
		if err := json.Unmarshal([]byte(targets), &rec.Targets); err != nil {
			return nil, fmt.Errorf("decode targets: %w", err)
		}
		if err := json.Unmarshal([]byte(effect), &rec.EffectIDs); err != nil {
			return nil, fmt.Errorf("decode effect ids: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate combat records: %w", err)
	}
	return out, nil
}

// Sessions lists every session id in the journal, oldest first.
func (j *Journal) Sessions(ctx context.Context) ([]string, error) {
	if j == nil || j.db == nil {
		return nil, ErrNotConfigured
	}
	rows, err := j.db.QueryContext(ctx, `SELECT session FROM combat_records GROUP BY session ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
