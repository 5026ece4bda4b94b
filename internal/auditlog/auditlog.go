// Package auditlog persists a record of every invalidation the cache
// engine processes, for operator introspection via the admin API (spec
// §10 "Supplemented features": invalidation audit log). It is not part of
// the original specification's cache engine; it is a new feature,
// grounded on the teacher's use of modernc.org/sqlite as its embedded
// datastore rather than any carried-over teacher schema.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record is a single logged invalidation.
type Record struct {
	ID              int64
	ReceivedAt      time.Time
	EventType       string
	Bucket          string
	ObjectKey       string
	VersionID       string
	KeysInvalidated int
	Source          string
}

// Log is a sqlite-backed append-only log of invalidation events.
type Log struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening audit log database: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; avoid lock contention

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit log schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the underlying database handle.
func (l *Log) Close() error {
	return l.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS invalidations (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	received_at      TEXT NOT NULL,
	event_type       TEXT NOT NULL,
	bucket           TEXT NOT NULL,
	object_key       TEXT NOT NULL,
	version_id       TEXT NOT NULL,
	keys_invalidated INTEGER NOT NULL,
	source           TEXT NOT NULL
);
`

// Append records a new invalidation.
func (l *Log) Append(ctx context.Context, rec Record) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO invalidations (received_at, event_type, bucket, object_key, version_id, keys_invalidated, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ReceivedAt.UTC().Format(time.RFC3339Nano), rec.EventType, rec.Bucket, rec.ObjectKey, rec.VersionID, rec.KeysInvalidated, rec.Source,
	)
	if err != nil {
		return fmt.Errorf("appending invalidation record: %w", err)
	}
	return nil
}

// Recent returns the most recent limit invalidation records, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, received_at, event_type, bucket, object_key, version_id, keys_invalidated, source
		 FROM invalidations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying invalidation records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var receivedAt string
		if err := rows.Scan(&rec.ID, &receivedAt, &rec.EventType, &rec.Bucket, &rec.ObjectKey, &rec.VersionID, &rec.KeysInvalidated, &rec.Source); err != nil {
			return nil, fmt.Errorf("scanning invalidation record: %w", err)
		}
		rec.ReceivedAt, _ = time.Parse(time.RFC3339Nano, receivedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}
