package cache

import (
	"fmt"

	"github.com/bleepstore/s3cacheproxy/internal/s3ops"
)

// InputMeta is the decoded-input metadata the router/codec layer extracts
// from a request, sufficient to build a cache key without touching the
// response body (spec §4.5 "Key construction").
type InputMeta struct {
	Bucket    string
	Object    string
	VersionID string
	Prefix    string
	Delimiter string
}

// BypassFields are the per-operation query/header presence checks that
// force a request to skip the cache entirely (spec §4.5 "Cacheability"),
// grounded on the original's per-operation bypass-field table.
type BypassFields struct {
	Range                bool
	PartNumber           bool
	ExpectedBucketOwner  bool
	KeyMarker            bool
	MaxKeys              bool
	StartAfter           bool
}

// AnySet reports whether any bypass-triggering field was present on the
// request.
func (b BypassFields) AnySet() bool {
	return b.Range || b.PartNumber || b.ExpectedBucketOwner || b.KeyMarker || b.MaxKeys || b.StartAfter
}

// BuildKey constructs the deterministic cache key for a cacheable
// operation, following the exact per-operation recipe (spec §4.5). It
// returns ok=false for any operation outside the six cacheable kinds.
func BuildKey(op s3ops.Operation, meta InputMeta) (string, bool) {
	switch op {
	case s3ops.OpGetObject:
		return fmt.Sprintf("GetObject %s, %s, %s", meta.Bucket, meta.Object, meta.VersionID), true
	case s3ops.OpHeadObject:
		return fmt.Sprintf("HeadObject %s, %s, %s", meta.Bucket, meta.Object, meta.VersionID), true
	case s3ops.OpListObjects:
		return fmt.Sprintf("ObjectList %s, %s, %s", meta.Bucket, meta.Prefix, meta.Delimiter), true
	case s3ops.OpListObjectsV2:
		// V2 always keys on an empty delimiter component (spec §4.5).
		return fmt.Sprintf("ObjectList %s, %s, %s", meta.Bucket, meta.Prefix, ""), true
	case s3ops.OpListObjectVersions:
		return fmt.Sprintf("ObjectVersionList %s, %s, %s", meta.Bucket, meta.Prefix, meta.Delimiter), true
	case s3ops.OpHeadBucket:
		return fmt.Sprintf("Bucket %s", meta.Bucket), true
	case s3ops.OpListBuckets:
		return "BucketList", true
	default:
		return "", false
	}
}

// ObjectKeys returns the GetObject and HeadObject cache keys for a given
// (bucket, object, version) triple, used by the invalidation worker (spec
// §4.5 "Invalidation worker").
func ObjectKeys(bucket, object, versionID string) []string {
	meta := InputMeta{Bucket: bucket, Object: object, VersionID: versionID}
	getKey, _ := BuildKey(s3ops.OpGetObject, meta)
	headKey, _ := BuildKey(s3ops.OpHeadObject, meta)
	return []string{getKey, headKey}
}
