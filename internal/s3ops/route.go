package s3ops

import "net/http"

// PathShape classifies a request path by how many S3 path segments it
// carries (spec §3 "Path shape"): the service root, a bucket-only path, or
// an object path (bucket plus key, the key itself may contain slashes).
type PathShape string

const (
	ShapeService PathShape = "service"
	ShapeBucket  PathShape = "bucket"
	ShapeObject  PathShape = "object"
)

// Route is a single entry in the route catalog: an operation together with
// the predicate that must hold for a request to match it (spec §4.2
// "Route entry").
type Route struct {
	Operation Operation
	Method    string
	Shape     PathShape

	// RequiredQueries are query-string keys that must ALL be present for
	// this route to match.
	RequiredQueries []string

	// RequiredHeaders are HTTP header names that must ALL be present for
	// this route to match.
	RequiredHeaders []string

	// QueryPatterns lists alternate sets of query keys, any one of which
	// alone is sufficient to identify this route. No catalog entry sets
	// it; subresource operations like ?acl, ?tagging and ?policy are
	// matched through RequiredQueries. A route
	// matches if RequiredQueries all hold AND (QueryPatterns is empty OR
	// at least one pattern's keys are all present).
	QueryPatterns [][]string

	// NeedsFullBody marks operations whose semantics require the codec
	// layer to read and decode the entire request body before the pipeline
	// can proceed (e.g. CompleteMultipartUpload, PutBucketTagging).
	NeedsFullBody bool
}

// priorityTuple feeds the tuple sort in buildGroups: routes are
// ordered most-specific first by (len(QueryPatterns) desc,
// len(RequiredQueries) desc, len(RequiredHeaders) desc, Operation asc) so
// that, e.g., UploadPartCopy (2 required queries, 1 required header)
// outranks both CopyObject (0 required queries, 1 required header) and
// plain UploadPart (2 required queries, 0 required headers) on the same
// PUT /{bucket}/{key} shape.
func (r Route) priorityTuple() (int, int, int, string) {
	return len(r.QueryPatterns), len(r.RequiredQueries), len(r.RequiredHeaders), string(r.Operation)
}

// matches reports whether req satisfies r's predicate, given the parsed
// query set and the raw request headers.
func (r Route) matches(method string, shape PathShape, qs QuerySet, hdr http.Header) bool {
	if r.Method != method || r.Shape != shape {
		return false
	}
	if !qs.CheckPattern(r.RequiredQueries) {
		return false
	}
	for _, h := range r.RequiredHeaders {
		if hdr.Get(h) == "" {
			return false
		}
	}
	if len(r.QueryPatterns) > 0 {
		matchedAny := false
		for _, pat := range r.QueryPatterns {
			if qs.CheckPattern(pat) {
				matchedAny = true
				break
			}
		}
		if !matchedAny {
			return false
		}
	}
	return true
}

// catalog is the full, fixed table of routes this proxy recognizes (spec
// §4.2). Cacheable read operations are listed first for readability; the
// remainder are forwarded to the upstream client opaquely and only need a
// correct method/shape/query/header match, never body decoding (except
// where NeedsFullBody is set).
var catalog = buildCatalog()

func buildCatalog() []Route {
	return []Route{
		// --- Cacheable operations (spec §4.5) ---
		{Operation: OpListBuckets, Method: http.MethodGet, Shape: ShapeService},
		{Operation: OpHeadBucket, Method: http.MethodHead, Shape: ShapeBucket},
		{Operation: OpListObjectsV2, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"list-type"}},
		{Operation: OpListObjectVersions, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"versions"}},
		{Operation: OpListObjects, Method: http.MethodGet, Shape: ShapeBucket},
		{Operation: OpHeadObject, Method: http.MethodHead, Shape: ShapeObject},
		{Operation: OpGetObject, Method: http.MethodGet, Shape: ShapeObject},

		// --- Bucket subresource reads ---
		{Operation: OpGetBucketLocation, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"location"}},
		{Operation: OpGetBucketAcl, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"acl"}},
		{Operation: OpGetBucketCors, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"cors"}},
		{Operation: OpGetBucketLifecycleConfiguration, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"lifecycle"}},
		{Operation: OpGetBucketPolicy, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"policy"}},
		{Operation: OpGetBucketPolicyStatus, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"policyStatus"}},
		{Operation: OpGetBucketNotificationConfiguration, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"notification"}},
		{Operation: OpGetBucketReplication, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"replication"}},
		{Operation: OpGetBucketTagging, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"tagging"}},
		{Operation: OpGetBucketVersioning, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"versioning"}},
		{Operation: OpGetBucketWebsite, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"website"}},
		{Operation: OpGetBucketLogging, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"logging"}},
		{Operation: OpGetBucketRequestPayment, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"requestPayment"}},
		{Operation: OpGetBucketAccelerateConfiguration, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"accelerate"}},
		{Operation: OpGetBucketAnalyticsConfiguration, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"analytics"}},
		{Operation: OpGetBucketEncryption, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"encryption"}},
		{Operation: OpGetBucketInventoryConfiguration, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"inventory"}},
		{Operation: OpGetBucketMetricsConfiguration, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"metrics"}},
		{Operation: OpGetObjectLockConfiguration, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"object-lock"}},
		{Operation: OpGetBucketOwnershipControls, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"ownershipControls"}},
		{Operation: OpGetPublicAccessBlock, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"publicAccessBlock"}},
		{Operation: OpGetBucketIntelligentTieringConfiguration, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"intelligent-tiering"}},
		{Operation: OpListMultipartUploads, Method: http.MethodGet, Shape: ShapeBucket, RequiredQueries: []string{"uploads"}},

		// --- Bucket-level writes ---
		{Operation: OpCreateBucket, Method: http.MethodPut, Shape: ShapeBucket},
		{Operation: OpPutBucketAcl, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"acl"}},
		{Operation: OpPutBucketCors, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"cors"}},
		{Operation: OpPutBucketLifecycleConfiguration, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"lifecycle"}},
		{Operation: OpPutBucketPolicy, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"policy"}},
		{Operation: OpPutBucketNotificationConfiguration, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"notification"}},
		{Operation: OpPutBucketReplication, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"replication"}},
		{Operation: OpPutBucketTagging, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"tagging"}, NeedsFullBody: true},
		{Operation: OpPutBucketVersioning, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"versioning"}},
		{Operation: OpPutBucketWebsite, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"website"}},
		{Operation: OpPutBucketLogging, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"logging"}},
		{Operation: OpPutBucketRequestPayment, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"requestPayment"}},
		{Operation: OpPutBucketAccelerateConfiguration, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"accelerate"}},
		{Operation: OpPutBucketAnalyticsConfiguration, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"analytics"}},
		{Operation: OpPutBucketEncryption, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"encryption"}},
		{Operation: OpPutBucketInventoryConfiguration, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"inventory"}},
		{Operation: OpPutBucketMetricsConfiguration, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"metrics"}},
		{Operation: OpPutObjectLockConfiguration, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"object-lock"}},
		{Operation: OpPutBucketOwnershipControls, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"ownershipControls"}},
		{Operation: OpPutPublicAccessBlock, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"publicAccessBlock"}},
		{Operation: OpPutBucketIntelligentTieringConfiguration, Method: http.MethodPut, Shape: ShapeBucket, RequiredQueries: []string{"intelligent-tiering"}},
		{Operation: OpDeleteBucket, Method: http.MethodDelete, Shape: ShapeBucket},
		{Operation: OpDeleteBucketCors, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"cors"}},
		{Operation: OpDeleteBucketLifecycle, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"lifecycle"}},
		{Operation: OpDeleteBucketPolicy, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"policy"}},
		{Operation: OpDeleteBucketReplication, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"replication"}},
		{Operation: OpDeleteBucketTagging, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"tagging"}},
		{Operation: OpDeleteBucketWebsite, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"website"}},
		{Operation: OpDeleteBucketAnalyticsConfiguration, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"analytics"}},
		{Operation: OpDeleteBucketEncryption, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"encryption"}},
		{Operation: OpDeleteBucketInventoryConfiguration, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"inventory"}},
		{Operation: OpDeleteBucketMetricsConfiguration, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"metrics"}},
		{Operation: OpDeleteBucketOwnershipControls, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"ownershipControls"}},
		{Operation: OpDeleteBucketIntelligentTieringConfiguration, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"intelligent-tiering"}},
		{Operation: OpDeletePublicAccessBlock, Method: http.MethodDelete, Shape: ShapeBucket, RequiredQueries: []string{"publicAccessBlock"}},
		{Operation: OpDeleteObjects, Method: http.MethodPost, Shape: ShapeBucket, RequiredQueries: []string{"delete"}, NeedsFullBody: true},
		{Operation: OpPostObject, Method: http.MethodPost, Shape: ShapeBucket, NeedsFullBody: true},

		// --- Object-level reads ---
		{Operation: OpGetObjectAcl, Method: http.MethodGet, Shape: ShapeObject, RequiredQueries: []string{"acl"}},
		{Operation: OpGetObjectAttributes, Method: http.MethodGet, Shape: ShapeObject, RequiredQueries: []string{"attributes"}},
		{Operation: OpGetObjectLegalHold, Method: http.MethodGet, Shape: ShapeObject, RequiredQueries: []string{"legal-hold"}},
		{Operation: OpGetObjectRetention, Method: http.MethodGet, Shape: ShapeObject, RequiredQueries: []string{"retention"}},
		{Operation: OpGetObjectTagging, Method: http.MethodGet, Shape: ShapeObject, RequiredQueries: []string{"tagging"}},
		{Operation: OpGetObjectTorrent, Method: http.MethodGet, Shape: ShapeObject, RequiredQueries: []string{"torrent"}},
		{Operation: OpListParts, Method: http.MethodGet, Shape: ShapeObject, RequiredQueries: []string{"uploadId"}},
		{Operation: OpSelectObjectContent, Method: http.MethodPost, Shape: ShapeObject, RequiredQueries: []string{"select", "select-type"}, NeedsFullBody: true},

		// --- Object-level writes/deletes ---
		// UploadPartCopy: PUT with partNumber+uploadId queries AND an
		// x-amz-copy-source header. Two required queries plus one required
		// header outranks both CopyObject (header only) and UploadPart
		// (queries only) on the same method/shape.
		{Operation: OpUploadPartCopy, Method: http.MethodPut, Shape: ShapeObject, RequiredQueries: []string{"partNumber", "uploadId"}, RequiredHeaders: []string{"x-amz-copy-source"}},
		{Operation: OpCopyObject, Method: http.MethodPut, Shape: ShapeObject, RequiredHeaders: []string{"x-amz-copy-source"}},
		{Operation: OpUploadPart, Method: http.MethodPut, Shape: ShapeObject, RequiredQueries: []string{"partNumber", "uploadId"}},
		{Operation: OpPutObjectAcl, Method: http.MethodPut, Shape: ShapeObject, RequiredQueries: []string{"acl"}},
		{Operation: OpPutObjectLegalHold, Method: http.MethodPut, Shape: ShapeObject, RequiredQueries: []string{"legal-hold"}},
		{Operation: OpPutObjectRetention, Method: http.MethodPut, Shape: ShapeObject, RequiredQueries: []string{"retention"}},
		{Operation: OpPutObjectTagging, Method: http.MethodPut, Shape: ShapeObject, RequiredQueries: []string{"tagging"}, NeedsFullBody: true},
		{Operation: OpPutObject, Method: http.MethodPut, Shape: ShapeObject},
		{Operation: OpDeleteObject, Method: http.MethodDelete, Shape: ShapeObject},
		{Operation: OpDeleteObjectTagging, Method: http.MethodDelete, Shape: ShapeObject, RequiredQueries: []string{"tagging"}},
		{Operation: OpAbortMultipartUpload, Method: http.MethodDelete, Shape: ShapeObject, RequiredQueries: []string{"uploadId"}},
		{Operation: OpCreateMultipartUpload, Method: http.MethodPost, Shape: ShapeObject, RequiredQueries: []string{"uploads"}},
		{Operation: OpCompleteMultipartUpload, Method: http.MethodPost, Shape: ShapeObject, RequiredQueries: []string{"uploadId"}, NeedsFullBody: true},
		{Operation: OpRestoreObject, Method: http.MethodPost, Shape: ShapeObject, RequiredQueries: []string{"restore"}, NeedsFullBody: true},
	}
}
