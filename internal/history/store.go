package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	host       TEXT NOT NULL DEFAULT '',
	note       TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS samples (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	series     TEXT NOT NULL,
	kind       TEXT NOT NULL DEFAULT '',
	value      REAL NOT NULL,
	time       REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS samples_session_time ON samples(session_id, time);
`

// Latest resolves to the most recently started session.
const Latest = "latest"

type Session struct {
	ID        string
	StartedAt time.Time
	Host      string
	Note      string
	Samples   int
	// First and Last bound the sample times in Unix milliseconds.
	First float64
	Last  float64
}

// Store records chart sessions in a sqlite file.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errdef.Wrap(errdef.CodeFilesystem, err, "create history dir")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "open %s", path)
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, errdef.Wrap(errdef.CodeHistory, err, "init schema")
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "close")
	}
	return nil
}

func (s *Store) BeginSession(ctx context.Context, host, note string, started time.Time) (Session, error) {
	sess := Session{
		ID:        uuid.NewString(),
		StartedAt: started.UTC().Truncate(time.Millisecond),
		Host:      host,
		Note:      note,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, host, note) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.StartedAt.UnixMilli(), host, note)
	if err != nil {
		return Session{}, errdef.Wrap(errdef.CodeHistory, err, "begin session")
	}
	return sess, nil
}

// Append stores one batch of readings in a single transaction.
func (s *Store) Append(ctx context.Context, sessionID string, readings []collect.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "begin append")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (session_id, series, kind, value, time) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "prepare append")
	}
	defer stmt.Close()

	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx, sessionID, r.Series, string(r.Kind), r.Value, r.Time); err != nil {
			return errdef.Wrap(errdef.CodeHistory, err, "append %s", r.Series)
		}
	}
	if err := tx.Commit(); err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "commit append")
	}
	return nil
}

// Sessions lists sessions newest first with their sample counts.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.started_at, s.host, s.note,
		       COUNT(p.series), COALESCE(MIN(p.time), 0), COALESCE(MAX(p.time), 0)
		FROM sessions s
		LEFT JOIN samples p ON p.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC, s.id DESC`)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "list sessions")
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess    Session
			started int64
		)
		if err := rows.Scan(&sess.ID, &started, &sess.Host, &sess.Note, &sess.Samples, &sess.First, &sess.Last); err != nil {
			return nil, errdef.Wrap(errdef.CodeHistory, err, "scan session")
		}
		sess.StartedAt = time.UnixMilli(started).UTC()
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "list sessions")
	}
	return out, nil
}

// Resolve finds a session by Latest, full id or unique id prefix.
func (s *Store) Resolve(ctx context.Context, ref string) (Session, error) {
	sessions, err := s.Sessions(ctx)
	if err != nil {
		return Session{}, err
	}
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == Latest {
		if len(sessions) == 0 {
			return Session{}, errdef.New(errdef.CodeHistory, "no recorded sessions")
		}
		return sessions[0], nil
	}
	var match []Session
	for _, sess := range sessions {
		if sess.ID == ref {
			return sess, nil
		}
		if strings.HasPrefix(sess.ID, ref) {
			match = append(match, sess)
		}
	}
	switch len(match) {
	case 0:
		return Session{}, errdef.New(errdef.CodeHistory, "no session matches %q", ref)
	case 1:
		return match[0], nil
	default:
		return Session{}, errdef.New(errdef.CodeHistory, "%q matches %d sessions", ref, len(match))
	}
}

// Samples returns a session's readings in time order; equal times keep
// insertion order.
func (s *Store) Samples(ctx context.Context, sessionID string) ([]collect.Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT series, kind, value, time FROM samples WHERE session_id = ? ORDER BY time, rowid`,
		sessionID)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "query samples")
	}
	defer rows.Close()

	var out []collect.Reading
	for rows.Next() {
		var (
			r    collect.Reading
			kind string
		)
		if err := rows.Scan(&r.Series, &kind, &r.Value, &r.Time); err != nil {
			return nil, errdef.Wrap(errdef.CodeHistory, err, "scan sample")
		}
		r.Kind = collect.Kind(kind)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "query samples")
	}
	return out, nil
}

// Delete removes a session and its samples, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, sessionID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return false, errdef.Wrap(errdef.CodeHistory, err, "delete session")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errdef.Wrap(errdef.CodeHistory, err, "delete session")
	}
	return n > 0, nil
}
