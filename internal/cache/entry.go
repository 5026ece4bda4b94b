package cache

import (
	"net/http"
	"time"
)

// Entry is a single cached response together with the bookkeeping the
// engine needs for expiration and eviction (spec §4.5 "Storage",
// "Per-item expiration policy").
type Entry struct {
	Key        string
	StatusCode int
	Header     http.Header
	Body       []byte

	Weight     int64
	CreatedAt  time.Time
	NextExpiry time.Time // zero value means "no expiry"

	TTL *time.Duration
	TTI *time.Duration

	lastAccess time.Time
}

// weightOf computes an entry's weight against cache_size: GetObject
// responses are weighted by body byte size, every other cacheable
// operation costs a flat 1 (spec §4.5 configuration: "bytes for
// GetObject, 1 per entry otherwise").
func weightOf(isGetObject bool, bodyLen int) int64 {
	if isGetObject {
		return int64(bodyLen)
	}
	return 1
}

// onCreate computes the initial NextExpiry for a freshly inserted entry.
func onCreate(now time.Time, ttl *time.Duration) time.Time {
	if ttl == nil {
		return time.Time{}
	}
	return now.Add(*ttl)
}

// onUpdate computes the new NextExpiry when an existing entry is
// overwritten: reset from now if ttl is set, else preserve the prior value.
func onUpdate(now time.Time, ttl *time.Duration, prior time.Time) time.Time {
	if ttl == nil {
		return prior
	}
	return now.Add(*ttl)
}

// onRead computes the NextExpiry to apply after a cache read: slide the
// window from now if tti is set, else preserve the prior value.
func onRead(now time.Time, tti *time.Duration, prior time.Time) time.Time {
	if tti == nil {
		return prior
	}
	return now.Add(*tti)
}

// expired reports whether the entry's NextExpiry has passed as of now. A
// zero NextExpiry means the entry never expires from TTL/TTI alone.
func (e *Entry) expired(now time.Time) bool {
	if e.NextExpiry.IsZero() {
		return false
	}
	return now.After(e.NextExpiry)
}
