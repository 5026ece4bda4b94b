package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bleepstore/s3cacheproxy/internal/auditlog"
	"github.com/bleepstore/s3cacheproxy/internal/webhook"
)

// Invalidation is the element type of each subscription's stop channel.
// No values are sent on that channel; Unsubscribe closes it to stop the
// worker.
type Invalidation struct {
	Keys   []string
	Source string
}

// Subscribe attaches the cache engine to a broadcast receiver, spawning a
// goroutine that drains events until the receiver is closed (spec §4.5
// "Invalidation worker"). Each call adds its own stop channel and starts
// another worker goroutine; earlier subscriptions keep running until
// Unsubscribe, which stops all of them.
func (e *Engine) Subscribe(recv *webhook.Receiver) {
	ch := make(chan Invalidation, 1)
	e.mu.Lock()
	e.subscribers = append(e.subscribers, ch)
	e.mu.Unlock()

	go e.runInvalidationWorker(recv, ch)
}

// Unsubscribe detaches all subscriber channels and closes them. A worker
// checks its channel after processing each event, so it exits once its
// next event has been handled, or as soon as its receiver is closed.
func (e *Engine) Unsubscribe() {
	e.mu.Lock()
	subs := e.subscribers
	e.subscribers = nil
	e.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
}

// runInvalidationWorker is the goroutine body started by Subscribe. It
// reads S3 event notifications from recv until the channel is closed,
// logging and continuing past lag (dropped/overflowed) notifications
// rather than treating them as fatal (spec §4.5: "Drop overflow gaps with
// a logged warning and continue").
func (e *Engine) runInvalidationWorker(recv *webhook.Receiver, done <-chan Invalidation) {
	for {
		event, lagged, ok := recv.Recv()
		if !ok {
			return
		}
		if lagged > 0 {
			slog.Warn("invalidation worker dropped events due to lag", "dropped", lagged)
			continue
		}
		e.processEvent(event)

		select {
		case <-done:
			return
		default:
		}
	}
}

// processEvent maps a single S3 event notification to the set of cache
// keys to invalidate, processing the event's records concurrently (spec
// §4.5: "records from a single event are processed concurrently").
func (e *Engine) processEvent(event webhook.S3Event) {
	var wg sync.WaitGroup
	for _, rec := range event.Records {
		rec := rec
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.invalidateRecord(rec)
		}()
	}
	wg.Wait()
}

func (e *Engine) invalidateRecord(rec webhook.S3EventRecord) {
	if !invalidatingEventName(rec.EventName) {
		return
	}
	keys := ObjectKeys(rec.Bucket, rec.ObjectKey, rec.VersionID)
	for _, key := range keys {
		e.store.delete(key)
	}

	if e.auditLog != nil {
		_ = e.auditLog.Append(context.Background(), auditlog.Record{
			ReceivedAt:      time.Now(),
			EventType:       rec.EventName,
			Bucket:          rec.Bucket,
			ObjectKey:       rec.ObjectKey,
			VersionID:       rec.VersionID,
			KeysInvalidated: len(keys),
			Source:          "webhook",
		})
	}
}

// invalidatingEventName reports whether an S3 event name triggers
// invalidation of the GetObject/HeadObject cache entries for its object
// (spec §4.5 "Invalidation worker" event table). Updates to list results
// (ObjectList/ObjectVersionList) are a known gap, not implemented here.
func invalidatingEventName(name string) bool {
	switch name {
	case "ObjectCreated:Put", "ObjectCreated:Copy", "ObjectCreated:CompleteMultipartUpload", "ObjectCreated:Post", "ObjectCreated:*",
		"ObjectRemoved:Delete", "ObjectRemoved:*",
		"LifecycleExpiration:Delete",
		"ObjectRestore:Completed", "ObjectRestore:Post", "ObjectRestore:Delete", "ObjectRestore:*":
		return true
	default:
		return false
	}
}
