package auditlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndRecent(t *testing.T) {
	dir := t.TempDir()
	log, err := Open(filepath.Join(dir, "invalidations.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer log.Close()

	ctx := context.Background()
	rec := Record{
		ReceivedAt:      time.Now(),
		EventType:       "ObjectRemoved:Delete",
		Bucket:          "b",
		ObjectKey:       "o",
		KeysInvalidated: 2,
		Source:          "webhook",
	}
	if err := log.Append(ctx, rec); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	recent, err := log.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("got %d records, want 1", len(recent))
	}
	if recent[0].Bucket != "b" || recent[0].EventType != "ObjectRemoved:Delete" {
		t.Fatalf("unexpected record: %+v", recent[0])
	}
}

func TestRecentDefaultsLimitWhenNonPositive(t *testing.T) {
	dir := t.TempDir()
	log, err := Open(filepath.Join(dir, "invalidations.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer log.Close()

	if _, err := log.Recent(context.Background(), 0); err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
}
