// Package envelope defines the request/response wrapper that flows through
// the pipeline (spec §4.1). It carries the raw wire data plus an S3-specific
// extension recording everything the router and cache engine derive from a
// request, computed at most once per request.
package envelope

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bleepstore/s3cacheproxy/internal/s3ops"
)

// Credential identifies the access key a request was signed with. It is
// carried on Extension.Credentials; nothing in the proxy sets or reads it,
// and cache keys and audit log records are not partitioned by caller.
type Credential struct {
	AccessKey string
}

// Extension holds the S3-specific data derived from a wire request (spec
// §4.1 "S3 extension"): the path shape, the canonicalized query set, the
// resolved operation tag, and a write-once cache for the decoded request
// body. FromWire fills the shape, query set, bucket and key up front; only
// the decoded body is computed lazily, by DecodedInput.
type Extension struct {
	PathShape s3ops.PathShape
	QuerySet  s3ops.QuerySet
	Bucket    string
	Key       string

	Multipart     bool
	BufferedBody  []byte
	Credentials   *Credential
	OperationTag  s3ops.Operation

	decodedOnce  sync.Once
	decodedValue any
	decodedErr   error
}

// Request is the envelope wrapping an inbound HTTP request as it travels
// through the pipeline.
type Request struct {
	Method    string
	Path      string
	RawQuery  string
	Header    http.Header
	Body      io.ReadCloser
	ReceivedAt time.Time

	Ext Extension
}

// Response is the envelope wrapping an outbound HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// CacheStatus is set by the cache layer for observability; it does not
	// affect how the response is written to the wire.
	CacheStatus string
}

// FromWire builds a Request envelope from a live *http.Request, splitting
// the path into bucket/key and classifying its shape (spec §4.1
// "from_wire").
func FromWire(r *http.Request) *Request {
	bucket, key := s3ops.SplitPath(r.URL.Path)
	shape := s3ops.ClassifyShape(bucket, key)
	qs := s3ops.ParseQuerySet(r.URL.RawQuery)

	return &Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		RawQuery:   r.URL.RawQuery,
		Header:     r.Header.Clone(),
		Body:       r.Body,
		ReceivedAt: time.Now(),
		Ext: Extension{
			PathShape: shape,
			QuerySet:  qs,
			Bucket:    bucket,
			Key:       key,
		},
	}
}

// ToWire copies the envelope's response fields onto a live
// http.ResponseWriter (spec §4.1 "to_wire").
func (resp *Response) ToWire(w http.ResponseWriter) {
	hdr := w.Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			hdr.Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		w.Write(resp.Body)
	}
}

// TryAsMetadataOnly returns a copy of resp for serving a HEAD request
// (spec §4.1 "try_as_metadata_only"): same headers and status, nil body.
func (resp *Response) TryAsMetadataOnly() *Response {
	cp := *resp
	cp.Body = nil
	return &cp
}

// DecodedInput returns the lazily-decoded request body, computing it at
// most once via decode and caching both the value and any error for the
// lifetime of the envelope (spec §4.1 "decoded_input_cache" — a
// write-once memoization cell, analogous to a sync.Once-guarded field).
func (e *Extension) DecodedInput(decode func() (any, error)) (any, error) {
	e.decodedOnce.Do(func() {
		e.decodedValue, e.decodedErr = decode()
	})
	return e.decodedValue, e.decodedErr
}
