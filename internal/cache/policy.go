package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Disposition is the result of evaluating a cache policy against the
// current time (spec §4.5 "Lookup protocol" step 4).
type Disposition int

const (
	// DispositionFresh means the cached response may be returned as-is.
	DispositionFresh Disposition = iota
	// DispositionStaleMatch means the cached response is stale but the
	// request is compatible with it: forward a conditional revalidation.
	DispositionStaleMatch
	// DispositionStaleMismatch means the cached response is stale and the
	// new request is not compatible with it (e.g. different Vary-relevant
	// headers): discard the entry and treat as uncached.
	DispositionStaleMismatch
)

// policy captures the subset of RFC 7234 freshness calculation this proxy
// needs: max-age from Cache-Control or Expires, and ETag/Last-Modified for
// building a conditional revalidation request. There is no Go-ecosystem
// equivalent among the example repos' dependencies for HTTP cache-policy
// semantics, so this is a direct, minimal reimplementation of the relevant
// RFC rules rather than a borrowed library (see DESIGN.md).
type policy struct {
	createdAt time.Time
	etag      string
	lastMod   string
	maxAge    time.Duration
	hasMaxAge bool
	noStore   bool
	noCache   bool
}

// buildPolicy derives a policy from a cached response's headers and the
// time it was stored.
func buildPolicy(header http.Header, createdAt time.Time) policy {
	p := policy{createdAt: createdAt, etag: header.Get("ETag"), lastMod: header.Get("Last-Modified")}

	cc := header.Get("Cache-Control")
	for _, directive := range strings.Split(cc, ",") {
		directive = strings.TrimSpace(strings.ToLower(directive))
		switch {
		case directive == "no-store":
			p.noStore = true
		case directive == "no-cache":
			p.noCache = true
		case strings.HasPrefix(directive, "max-age="):
			if secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age=")); err == nil {
				p.maxAge = time.Duration(secs) * time.Second
				p.hasMaxAge = true
			}
		}
	}

	if !p.hasMaxAge {
		if exp := header.Get("Expires"); exp != "" {
			if t, err := http.ParseTime(exp); err == nil {
				p.maxAge = t.Sub(createdAt)
				p.hasMaxAge = true
			}
		}
	}

	return p
}

// computedTTL returns the freshness lifetime this policy assigns to the
// response. It is zero when the origin sent neither max-age nor Expires,
// and also for no-store, no-cache and max-age=0; beforeRequest treats
// every zero as fresh (spec §4.5 step 3: "treat as fresh, the proxy owns
// the freshness window via its own TTL").
func (p policy) computedTTL() time.Duration {
	if p.noStore || p.noCache {
		return 0
	}
	if p.hasMaxAge {
		return p.maxAge
	}
	return 0
}

// beforeRequest evaluates the policy against now, returning a Disposition
// (spec §4.5 step 4). This proxy only caches full-object responses, so
// staleness always resolves to StaleMatch unless the response has neither
// an ETag nor a Last-Modified, in which case revalidation cannot be
// constructed and the entry is dropped (StaleMismatch).
func (p policy) beforeRequest(now time.Time) Disposition {
	ttl := p.computedTTL()
	if ttl == 0 {
		return DispositionFresh
	}
	if now.Before(p.createdAt.Add(ttl)) {
		return DispositionFresh
	}
	if p.etag == "" && p.lastMod == "" {
		return DispositionStaleMismatch
	}
	return DispositionStaleMatch
}

// applyConditionalHeaders adds the proxy's own revalidation headers to an
// outgoing forwarded request, derived from the cached response's
// validators.
func (p policy) applyConditionalHeaders(header http.Header) {
	if p.etag != "" {
		header.Set("If-None-Match", p.etag)
	}
	if p.lastMod != "" {
		header.Set("If-Modified-Since", p.lastMod)
	}
}
