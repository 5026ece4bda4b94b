package s3ops

import (
	"net/http"
	"testing"
)

func TestResolveCacheableOps(t *testing.T) {
	cases := []struct {
		name   string
		method string
		bucket string
		key    string
		query  string
		want   Operation
	}{
		{"list buckets", http.MethodGet, "", "", "", OpListBuckets},
		{"head bucket", http.MethodHead, "b", "", "", OpHeadBucket},
		{"list objects v1", http.MethodGet, "b", "", "", OpListObjects},
		{"list objects v2", http.MethodGet, "b", "", "list-type=2", OpListObjectsV2},
		{"list object versions", http.MethodGet, "b", "", "versions", OpListObjectVersions},
		{"head object", http.MethodHead, "b", "k", "", OpHeadObject},
		{"get object", http.MethodGet, "b", "k", "", OpGetObject},
		{"get object with response override query", http.MethodGet, "b", "k", "response-content-type=text/plain", OpGetObject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shape := ClassifyShape(tc.bucket, tc.key)
			op, _, ok := Resolve(tc.method, shape, tc.query, http.Header{})
			if !ok {
				t.Fatalf("Resolve() returned ok=false, want match for %s", tc.want)
			}
			if op != tc.want {
				t.Fatalf("Resolve() = %s, want %s", op, tc.want)
			}
			if !op.Cacheable() {
				t.Fatalf("%s should be cacheable", op)
			}
		})
	}
}

// TestResolveUploadPartDisambiguation verifies the priority-tuple sort
// correctly separates three operations that all match PUT /{bucket}/{key}:
// UploadPartCopy (2 required queries + copy-source header), CopyObject
// (copy-source header only) and UploadPart (2 required queries only).
func TestResolveUploadPartDisambiguation(t *testing.T) {
	shape := ShapeObject

	hdr := http.Header{}
	hdr.Set("x-amz-copy-source", "/src-bucket/src-key")

	op, _, ok := Resolve(http.MethodPut, shape, "partNumber=1&uploadId=abc", hdr)
	if !ok || op != OpUploadPartCopy {
		t.Fatalf("expected UploadPartCopy, got %s (ok=%v)", op, ok)
	}

	op, _, ok = Resolve(http.MethodPut, shape, "", hdr)
	if !ok || op != OpCopyObject {
		t.Fatalf("expected CopyObject, got %s (ok=%v)", op, ok)
	}

	op, needsBody, ok := Resolve(http.MethodPut, shape, "partNumber=1&uploadId=abc", http.Header{})
	if !ok || op != OpUploadPart {
		t.Fatalf("expected UploadPart, got %s (ok=%v)", op, ok)
	}
	if needsBody {
		t.Fatalf("UploadPart should not require full-body buffering")
	}
}

func TestResolveSubresourceRoutes(t *testing.T) {
	cases := []struct {
		method string
		shape  PathShape
		query  string
		want   Operation
	}{
		{http.MethodGet, ShapeBucket, "acl", OpGetBucketAcl},
		{http.MethodGet, ShapeBucket, "policy", OpGetBucketPolicy},
		{http.MethodPut, ShapeBucket, "versioning", OpPutBucketVersioning},
		{http.MethodDelete, ShapeBucket, "lifecycle", OpDeleteBucketLifecycle},
		{http.MethodGet, ShapeObject, "tagging", OpGetObjectTagging},
		{http.MethodPost, ShapeObject, "uploads", OpCreateMultipartUpload},
		{http.MethodPost, ShapeObject, "uploadId=xyz", OpCompleteMultipartUpload},
		{http.MethodDelete, ShapeObject, "uploadId=xyz", OpAbortMultipartUpload},
	}
	for _, tc := range cases {
		op, _, ok := Resolve(tc.method, tc.shape, tc.query, http.Header{})
		if !ok || op != tc.want {
			t.Fatalf("Resolve(%s, %s, %q) = %s (ok=%v), want %s", tc.method, tc.shape, tc.query, op, ok, tc.want)
		}
	}
}

func TestResolveUnknownReturnsNotOK(t *testing.T) {
	_, _, ok := Resolve(http.MethodPatch, ShapeObject, "", http.Header{})
	if ok {
		t.Fatalf("expected no match for an unsupported method")
	}
}

func TestSplitPath(t *testing.T) {
	cases := []struct {
		path       string
		wantBucket string
		wantKey    string
	}{
		{"/", "", ""},
		{"/bucket", "bucket", ""},
		{"/bucket/", "bucket", ""},
		{"/bucket/key", "bucket", "key"},
		{"/bucket/path/to/key", "bucket", "path/to/key"},
	}
	for _, tc := range cases {
		b, k := SplitPath(tc.path)
		if b != tc.wantBucket || k != tc.wantKey {
			t.Fatalf("SplitPath(%q) = (%q, %q), want (%q, %q)", tc.path, b, k, tc.wantBucket, tc.wantKey)
		}
	}
}

func TestQuerySetCanonicalOrdering(t *testing.T) {
	a := ParseQuerySet("b=2&a=1")
	b := ParseQuerySet("a=1&b=2")
	if a.Len() != b.Len() {
		t.Fatalf("query sets should have equal length")
	}
	for _, k := range a.Keys() {
		av, _ := a.Get(k)
		bv, _ := b.Get(k)
		if av != bv {
			t.Fatalf("key %s: %s != %s", k, av, bv)
		}
	}
}
