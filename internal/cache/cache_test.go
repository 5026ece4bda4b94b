package cache

import (
	"net/http"
	"testing"
	"time"

	"github.com/bleepstore/s3cacheproxy/internal/envelope"
	"github.com/bleepstore/s3cacheproxy/internal/pipeline"
	"github.com/bleepstore/s3cacheproxy/internal/s3ops"
)

func allOpsEnabled() map[s3ops.Operation]OpConfig {
	return map[s3ops.Operation]OpConfig{
		s3ops.OpGetObject:           {Enabled: true},
		s3ops.OpHeadObject:          {Enabled: true},
		s3ops.OpListObjects:         {Enabled: true},
		s3ops.OpListObjectsV2:       {Enabled: true},
		s3ops.OpListObjectVersions:  {Enabled: true},
		s3ops.OpHeadBucket:          {Enabled: true},
		s3ops.OpListBuckets:         {Enabled: true},
	}
}

func newTestEngine() *Engine {
	return New(Config{CacheSize: 10 << 20, Ops: allOpsEnabled()})
}

func reqFor(op s3ops.Operation, bucket, key, rawQuery string) *envelope.Request {
	hdr := http.Header{}
	return &envelope.Request{
		Header: hdr,
		Ext: envelope.Extension{
			OperationTag: op,
			Bucket:       bucket,
			Key:          key,
			QuerySet:     s3ops.ParseQuerySet(rawQuery),
		},
	}
}

func TestCacheMissThenHit(t *testing.T) {
	e := newTestEngine()
	calls := 0
	next := func(req *envelope.Request) (*envelope.Response, error) {
		calls++
		return &envelope.Response{StatusCode: 200, Header: http.Header{}, Body: []byte("payload")}, nil
	}

	req := reqFor(s3ops.OpGetObject, "b", "o", "")
	resp1, err := e.Call(req, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Body) != "payload" {
		t.Fatalf("unexpected body: %s", resp1.Body)
	}

	req2 := reqFor(s3ops.OpGetObject, "b", "o", "")
	resp2, err := e.Call(req2, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Body) != "payload" {
		t.Fatalf("unexpected body on second call: %s", resp2.Body)
	}
	if calls != 1 {
		t.Fatalf("next called %d times, want 1 (second request should hit cache)", calls)
	}
}

func TestCacheBypassesOnRangeRequest(t *testing.T) {
	e := newTestEngine()
	calls := 0
	next := func(req *envelope.Request) (*envelope.Response, error) {
		calls++
		return &envelope.Response{StatusCode: 200, Header: http.Header{}, Body: []byte("payload")}, nil
	}

	req := reqFor(s3ops.OpGetObject, "b", "o", "")
	req.Header.Set("Range", "bytes=0-10")
	if _, err := e.Call(req, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req2 := reqFor(s3ops.OpGetObject, "b", "o", "")
	req2.Header.Set("Range", "bytes=0-10")
	if _, err := e.Call(req2, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 2 {
		t.Fatalf("next called %d times, want 2 (range requests must always bypass the cache)", calls)
	}
}

func TestCacheBypassesWhenOperationDisabled(t *testing.T) {
	e := New(Config{CacheSize: 10 << 20, Ops: map[s3ops.Operation]OpConfig{
		s3ops.OpGetObject: {Enabled: false},
	}})
	calls := 0
	next := func(req *envelope.Request) (*envelope.Response, error) {
		calls++
		return &envelope.Response{StatusCode: 200, Header: http.Header{}, Body: []byte("payload")}, nil
	}

	req := reqFor(s3ops.OpGetObject, "b", "o", "")
	e.Call(req, next)
	req2 := reqFor(s3ops.OpGetObject, "b", "o", "")
	e.Call(req2, next)

	if calls != 2 {
		t.Fatalf("next called %d times, want 2 (disabled op must never cache)", calls)
	}
}

func TestCacheSkipsNonCacheableOperations(t *testing.T) {
	e := newTestEngine()
	calls := 0
	next := func(req *envelope.Request) (*envelope.Response, error) {
		calls++
		return &envelope.Response{StatusCode: 200, Header: http.Header{}}, nil
	}

	req := reqFor(s3ops.OpPutObject, "b", "o", "")
	e.Call(req, next)
	if calls != 1 {
		t.Fatalf("PutObject should always forward, never cache")
	}
}

func TestBuildKeyRecipes(t *testing.T) {
	cases := []struct {
		op   s3ops.Operation
		meta InputMeta
		want string
	}{
		{s3ops.OpGetObject, InputMeta{Bucket: "b", Object: "o", VersionID: "v1"}, "GetObject b, o, v1"},
		{s3ops.OpHeadObject, InputMeta{Bucket: "b", Object: "o"}, "HeadObject b, o, "},
		{s3ops.OpListObjects, InputMeta{Bucket: "b", Prefix: "p", Delimiter: "/"}, "ObjectList b, p, /"},
		{s3ops.OpListObjectsV2, InputMeta{Bucket: "b", Prefix: "p", Delimiter: "/"}, "ObjectList b, p, "},
		{s3ops.OpListObjectVersions, InputMeta{Bucket: "b"}, "ObjectVersionList b, , "},
		{s3ops.OpHeadBucket, InputMeta{Bucket: "b"}, "Bucket b"},
		{s3ops.OpListBuckets, InputMeta{}, "BucketList"},
	}
	for _, tc := range cases {
		got, ok := BuildKey(tc.op, tc.meta)
		if !ok {
			t.Fatalf("BuildKey(%s) not ok", tc.op)
		}
		if got != tc.want {
			t.Fatalf("BuildKey(%s) = %q, want %q", tc.op, got, tc.want)
		}
	}
}

func TestEntryExpirationTTL(t *testing.T) {
	now := time.Now()
	ttl := 10 * time.Millisecond
	next := onCreate(now, &ttl)
	if next.IsZero() {
		t.Fatalf("expected non-zero expiry with TTL set")
	}

	e := &Entry{NextExpiry: next}
	if e.expired(now) {
		t.Fatalf("entry should not be expired immediately")
	}
	if !e.expired(now.Add(20 * time.Millisecond)) {
		t.Fatalf("entry should be expired after TTL elapses")
	}
}

func TestInvalidatingEventNameTable(t *testing.T) {
	invalidating := []string{
		"ObjectCreated:Put", "ObjectCreated:Copy", "ObjectCreated:CompleteMultipartUpload", "ObjectCreated:Post",
		"ObjectRemoved:Delete", "ObjectRemoved:*", "LifecycleExpiration:Delete", "ObjectRestore:Completed",
		"ObjectRestore:*",
	}
	for _, name := range invalidating {
		if !invalidatingEventName(name) {
			t.Fatalf("%s should trigger invalidation", name)
		}
	}
	if invalidatingEventName("ObjectCreated:UnknownVariant") {
		t.Fatalf("unrecognized event names should not trigger invalidation")
	}
}

// seedStaleEntry inserts an entry directly into e's store, backdated far
// enough past its own max-age that a lookup will evaluate it as stale, with
// an ETag so it qualifies for DispositionStaleMatch rather than eviction.
func seedStaleEntry(e *Engine, key string, body []byte) {
	hdr := http.Header{}
	hdr.Set("ETag", `"abc123"`)
	hdr.Set("Cache-Control", "max-age=1")
	e.store.put(key, &Entry{
		Key:        key,
		StatusCode: 200,
		Header:     hdr,
		Body:       body,
		Weight:     int64(len(body)),
		CreatedAt:  time.Now().Add(-10 * time.Second),
	})
}

// TestCacheStaleRevalidationNoClientConditional covers scenario 2 (spec §8):
// a stale entry revalidates against upstream, upstream answers 304, and the
// client sent no conditional header of its own — the cached 200 body is
// returned rather than the bare 304.
func TestCacheStaleRevalidationNoClientConditional(t *testing.T) {
	e := newTestEngine()
	key, _ := BuildKey(s3ops.OpGetObject, InputMeta{Bucket: "b", Object: "o"})
	seedStaleEntry(e, key, []byte("cached-body"))

	next := func(req *envelope.Request) (*envelope.Response, error) {
		if req.Header.Get("If-None-Match") == "" {
			t.Fatalf("revalidation request should carry If-None-Match from the cached entry")
		}
		resp := &envelope.Response{StatusCode: http.StatusNotModified, Header: http.Header{}}
		return resp, pipeline.NewResponseError(http.ErrNotSupported)
	}

	req := reqFor(s3ops.OpGetObject, "b", "o", "")
	resp, err := e.Call(req, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != "cached-body" {
		t.Fatalf("got status=%d body=%q, want the cached 200 body", resp.StatusCode, resp.Body)
	}
}

// TestCacheStaleRevalidationClientConditional covers scenario 3 (spec §8):
// the client's own request already carries a conditional header, so a 304
// from upstream must be passed through verbatim rather than substituted
// with the cached body.
func TestCacheStaleRevalidationClientConditional(t *testing.T) {
	e := newTestEngine()
	key, _ := BuildKey(s3ops.OpGetObject, InputMeta{Bucket: "b", Object: "o"})
	seedStaleEntry(e, key, []byte("cached-body"))

	next := func(req *envelope.Request) (*envelope.Response, error) {
		resp := &envelope.Response{StatusCode: http.StatusNotModified, Header: http.Header{}}
		return resp, pipeline.NewResponseError(http.ErrNotSupported)
	}

	req := reqFor(s3ops.OpGetObject, "b", "o", "")
	req.Header.Set("If-None-Match", `"client-etag"`)
	resp, err := e.Call(req, next)
	if err == nil {
		t.Fatalf("expected the 304 to surface as a ResponseErr, got nil error")
	}
	perr, ok := err.(*pipeline.Error)
	if !ok || perr.Kind != pipeline.ResponseErr {
		t.Fatalf("expected a ResponseErr, got %v", err)
	}
	if resp.StatusCode != http.StatusNotModified {
		t.Fatalf("got status=%d, want verbatim 304 passthrough", resp.StatusCode)
	}
}

func TestStoreEvictsUnderWeightPressure(t *testing.T) {
	s := newStore(10)
	for i := 0; i < 20; i++ {
		key := string(rune('a' + i))
		s.put(key, &Entry{Key: key, Weight: 1})
	}
	if s.weight() > 10 {
		t.Fatalf("store weight %d exceeds budget 10", s.weight())
	}
}

var _ pipeline.Layer = (*Engine)(nil)
