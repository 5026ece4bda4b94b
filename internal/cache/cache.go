package cache

import (
	"net/http"
	"sync"
	"time"

	"github.com/bleepstore/s3cacheproxy/internal/auditlog"
	"github.com/bleepstore/s3cacheproxy/internal/envelope"
	"github.com/bleepstore/s3cacheproxy/internal/pipeline"
	"github.com/bleepstore/s3cacheproxy/internal/s3ops"
)

// OpConfig is the per-operation enable flag and TTL/TTI override, mirroring
// config.CacheOpConfig without importing the config package (the cache
// engine should not need to know about YAML).
type OpConfig struct {
	Enabled bool
	TTL     *time.Duration
	TTI     *time.Duration
}

// Config is the cache engine's runtime configuration (spec §4.5
// "Configuration").
type Config struct {
	CacheSize int64
	TTL       *time.Duration
	TTI       *time.Duration
	Ops       map[s3ops.Operation]OpConfig
}

// Engine is the cache middleware layer (spec §4.5). It implements
// pipeline.Layer so it can be slotted into the middleware chain like any
// other stage.
type Engine struct {
	cfg      Config
	store    *store
	auditLog *auditlog.Log

	mu          sync.Mutex
	subscribers []chan<- Invalidation
}

// New constructs a cache Engine from cfg.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, store: newStore(cfg.CacheSize)}
}

// SetAuditLog attaches an audit log that every future invalidation is
// additionally appended to (spec §10).
func (e *Engine) SetAuditLog(log *auditlog.Log) {
	e.auditLog = log
}

// Stats is a point-in-time snapshot of the cache engine's size, exposed
// for operator introspection via the admin API (spec §10).
type Stats struct {
	WeightBytes int64
	MaxWeight   int64
}

// Stats returns the cache engine's current weight against its configured
// budget.
func (e *Engine) Stats() Stats {
	return Stats{WeightBytes: e.store.weight(), MaxWeight: e.cfg.CacheSize}
}

// opConfig returns the effective per-operation config, falling back to
// engine-wide TTL/TTI when the operation doesn't override them.
func (e *Engine) opConfig(op s3ops.Operation) (OpConfig, bool) {
	oc, ok := e.cfg.Ops[op]
	if !ok {
		return OpConfig{}, false
	}
	if oc.TTL == nil {
		oc.TTL = e.cfg.TTL
	}
	if oc.TTI == nil {
		oc.TTI = e.cfg.TTI
	}
	return oc, true
}

// Call implements pipeline.Layer: the caching request path (spec §4.5
// "Request path").
func (e *Engine) Call(req *envelope.Request, next pipeline.Next) (*envelope.Response, error) {
	op := req.Ext.OperationTag
	if !op.Cacheable() {
		return next(req)
	}

	oc, enabled := e.opConfig(op)
	if !enabled || !oc.Enabled {
		return next(req)
	}

	meta := inputMetaFromRequest(req)
	key, ok := BuildKey(op, meta)
	if !ok {
		return next(req)
	}

	bypass := bypassFieldsFromRequest(req)
	if bypass.AnySet() {
		return next(req)
	}

	clientConditional := req.Header.Get("If-None-Match") != "" || req.Header.Get("If-Match") != ""

	now := time.Now()
	cached, disp := e.lookup(key, now)

	switch disp {
	case DispositionFresh:
		if cached != nil {
			return responseFromEntry(cached), nil
		}
	case DispositionStaleMatch:
		p := buildPolicy(cached.Header, cached.CreatedAt)
		p.applyConditionalHeaders(req.Header)
	case DispositionStaleMismatch:
		// handled inside lookup via deletion; fall through to forward.
	}

	resp, err := next(req)
	if err != nil {
		if perr, ok := err.(*pipeline.Error); ok && perr.Kind == pipeline.ResponseErr && disp == DispositionStaleMatch {
			if resp != nil && resp.StatusCode == http.StatusNotModified && !clientConditional {
				return responseFromEntry(cached), nil
			}
		}
		return resp, err
	}

	if resp != nil && resp.StatusCode == http.StatusOK {
		e.store.put(key, entryFromResponse(key, op, resp, now, oc, cached))
	}

	return resp, nil
}

// lookup implements spec §4.5 "Lookup protocol".
func (e *Engine) lookup(key string, now time.Time) (*Entry, Disposition) {
	ent, ok := e.store.get(key, now)
	if !ok {
		return nil, DispositionStaleMismatch // treated as "None" by the caller checking entry==nil
	}

	p := buildPolicy(ent.Header, ent.CreatedAt)
	if p.computedTTL() == 0 {
		return ent, DispositionFresh
	}

	disp := p.beforeRequest(now)
	if disp == DispositionStaleMismatch {
		e.store.delete(key)
		return nil, DispositionStaleMismatch
	}
	return ent, disp
}

func responseFromEntry(e *Entry) *envelope.Response {
	hdr := e.Header.Clone()
	return &envelope.Response{
		StatusCode:  e.StatusCode,
		Header:      hdr,
		Body:        e.Body,
		CacheStatus: "hit",
	}
}

// entryFromResponse builds the Entry to store for resp. prior is the
// entry it replaces, if any (nil on a plain cache miss): revalidating a
// StaleMatch entry resets its expiry from now via onUpdate rather than
// treating the replacement as a brand new insert.
func entryFromResponse(key string, op s3ops.Operation, resp *envelope.Response, now time.Time, oc OpConfig, prior *Entry) *Entry {
	body := resp.Body
	e := &Entry{
		Key:        key,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		Weight:     weightOf(op == s3ops.OpGetObject, len(body)),
		CreatedAt:  now,
		TTL:        oc.TTL,
		TTI:        oc.TTI,
	}
	if prior != nil {
		e.NextExpiry = onUpdate(now, e.TTL, prior.NextExpiry)
	} else {
		e.NextExpiry = onCreate(now, e.TTL)
	}
	return e
}

func inputMetaFromRequest(req *envelope.Request) InputMeta {
	prefix, _ := req.Ext.QuerySet.Get("prefix")
	delimiter, _ := req.Ext.QuerySet.Get("delimiter")
	versionID, _ := req.Ext.QuerySet.Get("versionId")
	return InputMeta{
		Bucket:    req.Ext.Bucket,
		Object:    req.Ext.Key,
		VersionID: versionID,
		Prefix:    prefix,
		Delimiter: delimiter,
	}
}

func bypassFieldsFromRequest(req *envelope.Request) BypassFields {
	qs := req.Ext.QuerySet
	b := BypassFields{
		Range:               req.Header.Get("Range") != "",
		PartNumber:          qs.Has("partNumber"),
		ExpectedBucketOwner: req.Header.Get("x-amz-expected-bucket-owner") != "",
		KeyMarker:           qs.Has("key-marker"),
		MaxKeys:             qs.Has("max-keys"),
		StartAfter:          qs.Has("start-after"),
	}
	switch req.Ext.OperationTag {
	case s3ops.OpGetObject:
		b.ExpectedBucketOwner, b.KeyMarker, b.MaxKeys, b.StartAfter = false, false, false, false
	case s3ops.OpHeadBucket:
		b.Range, b.PartNumber, b.KeyMarker, b.MaxKeys, b.StartAfter = false, false, false, false, false
	case s3ops.OpHeadObject:
		b.PartNumber, b.KeyMarker, b.MaxKeys, b.StartAfter = false, false, false, false
	case s3ops.OpListObjects, s3ops.OpListObjectsV2:
		b.Range, b.PartNumber, b.KeyMarker = false, false, false
	case s3ops.OpListObjectVersions:
		b.Range, b.PartNumber = false, false
	case s3ops.OpListBuckets:
		b = BypassFields{}
	}
	return b
}
