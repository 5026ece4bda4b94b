// Package s3ops identifies the S3 REST operation an incoming request names
// and constructs the canonical path-shape/query-set data the rest of the
// pipeline reasons about (spec §3, §4.2).
package s3ops

// Operation is the closed set of identifiers for every S3 REST operation
// this proxy recognizes. Each variant is a zero-sized marker: the only
// thing that varies per operation is which row of the route catalog and
// which cache/codec table entry it selects.
type Operation string

// Unknown is returned by Resolve when no route matches; it is never a
// member of the route catalog itself.
const Unknown Operation = ""

// Service / bucket-level read operations.
const (
	OpListBuckets                              Operation = "ListBuckets"
	OpListObjects                               Operation = "ListObjects"
	OpListObjectsV2                             Operation = "ListObjectsV2"
	OpListObjectVersions                        Operation = "ListObjectVersions"
	OpGetBucketLocation                         Operation = "GetBucketLocation"
	OpGetBucketAcl                              Operation = "GetBucketAcl"
	OpGetBucketCors                             Operation = "GetBucketCors"
	OpGetBucketLifecycleConfiguration           Operation = "GetBucketLifecycleConfiguration"
	OpGetBucketPolicy                           Operation = "GetBucketPolicy"
	OpGetBucketPolicyStatus                     Operation = "GetBucketPolicyStatus"
	OpGetBucketNotificationConfiguration        Operation = "GetBucketNotificationConfiguration"
	OpGetBucketReplication                      Operation = "GetBucketReplication"
	OpGetBucketTagging                          Operation = "GetBucketTagging"
	OpGetBucketVersioning                       Operation = "GetBucketVersioning"
	OpGetBucketWebsite                          Operation = "GetBucketWebsite"
	OpGetBucketLogging                          Operation = "GetBucketLogging"
	OpGetBucketRequestPayment                   Operation = "GetBucketRequestPayment"
	OpGetBucketAccelerateConfiguration          Operation = "GetBucketAccelerateConfiguration"
	OpGetBucketAnalyticsConfiguration           Operation = "GetBucketAnalyticsConfiguration"
	OpGetBucketEncryption                       Operation = "GetBucketEncryption"
	OpGetBucketInventoryConfiguration           Operation = "GetBucketInventoryConfiguration"
	OpGetBucketMetricsConfiguration             Operation = "GetBucketMetricsConfiguration"
	OpGetObjectLockConfiguration                Operation = "GetObjectLockConfiguration"
	OpGetBucketOwnershipControls                Operation = "GetBucketOwnershipControls"
	OpGetPublicAccessBlock                      Operation = "GetPublicAccessBlock"
	OpGetBucketIntelligentTieringConfiguration  Operation = "GetBucketIntelligentTieringConfiguration"
	OpHeadBucket                                Operation = "HeadBucket"
	OpListMultipartUploads                      Operation = "ListMultipartUploads"
)

// Bucket-level write/delete operations.
const (
	OpCreateBucket                              Operation = "CreateBucket"
	OpPutBucketAcl                              Operation = "PutBucketAcl"
	OpPutBucketCors                             Operation = "PutBucketCors"
	OpPutBucketLifecycleConfiguration           Operation = "PutBucketLifecycleConfiguration"
	OpPutBucketPolicy                           Operation = "PutBucketPolicy"
	OpPutBucketNotificationConfiguration        Operation = "PutBucketNotificationConfiguration"
	OpPutBucketReplication                      Operation = "PutBucketReplication"
	OpPutBucketTagging                          Operation = "PutBucketTagging"
	OpPutBucketVersioning                       Operation = "PutBucketVersioning"
	OpPutBucketWebsite                          Operation = "PutBucketWebsite"
	OpPutBucketLogging                          Operation = "PutBucketLogging"
	OpPutBucketRequestPayment                   Operation = "PutBucketRequestPayment"
	OpPutBucketAccelerateConfiguration          Operation = "PutBucketAccelerateConfiguration"
	OpPutBucketAnalyticsConfiguration           Operation = "PutBucketAnalyticsConfiguration"
	OpPutBucketEncryption                       Operation = "PutBucketEncryption"
	OpPutBucketInventoryConfiguration           Operation = "PutBucketInventoryConfiguration"
	OpPutBucketMetricsConfiguration             Operation = "PutBucketMetricsConfiguration"
	OpPutObjectLockConfiguration                Operation = "PutObjectLockConfiguration"
	OpPutBucketOwnershipControls                Operation = "PutBucketOwnershipControls"
	OpPutPublicAccessBlock                      Operation = "PutPublicAccessBlock"
	OpPutBucketIntelligentTieringConfiguration  Operation = "PutBucketIntelligentTieringConfiguration"
	OpDeleteBucket                              Operation = "DeleteBucket"
	OpDeleteBucketCors                          Operation = "DeleteBucketCors"
	OpDeleteBucketLifecycle                     Operation = "DeleteBucketLifecycle"
	OpDeleteBucketPolicy                        Operation = "DeleteBucketPolicy"
	OpDeleteBucketReplication                   Operation = "DeleteBucketReplication"
	OpDeleteBucketTagging                       Operation = "DeleteBucketTagging"
	OpDeleteBucketWebsite                       Operation = "DeleteBucketWebsite"
	OpDeleteBucketAnalyticsConfiguration        Operation = "DeleteBucketAnalyticsConfiguration"
	OpDeleteBucketEncryption                    Operation = "DeleteBucketEncryption"
	OpDeleteBucketInventoryConfiguration        Operation = "DeleteBucketInventoryConfiguration"
	OpDeleteBucketMetricsConfiguration          Operation = "DeleteBucketMetricsConfiguration"
	OpDeleteBucketOwnershipControls             Operation = "DeleteBucketOwnershipControls"
	OpDeleteBucketIntelligentTieringConfiguration Operation = "DeleteBucketIntelligentTieringConfiguration"
	OpDeletePublicAccessBlock                   Operation = "DeletePublicAccessBlock"
	OpDeleteObjects                             Operation = "DeleteObjects"
	OpPostObject                                Operation = "PostObject"
)

// Object-level operations.
const (
	OpGetObject             Operation = "GetObject"
	OpGetObjectAcl          Operation = "GetObjectAcl"
	OpGetObjectAttributes   Operation = "GetObjectAttributes"
	OpGetObjectLegalHold    Operation = "GetObjectLegalHold"
	OpGetObjectRetention    Operation = "GetObjectRetention"
	OpGetObjectTagging      Operation = "GetObjectTagging"
	OpGetObjectTorrent      Operation = "GetObjectTorrent"
	OpListParts             Operation = "ListParts"
	OpSelectObjectContent   Operation = "SelectObjectContent"
	OpHeadObject            Operation = "HeadObject"
	OpPutObject             Operation = "PutObject"
	OpPutObjectAcl          Operation = "PutObjectAcl"
	OpPutObjectLegalHold    Operation = "PutObjectLegalHold"
	OpPutObjectRetention    Operation = "PutObjectRetention"
	OpPutObjectTagging      Operation = "PutObjectTagging"
	OpCopyObject            Operation = "CopyObject"
	OpUploadPart            Operation = "UploadPart"
	OpUploadPartCopy        Operation = "UploadPartCopy"
	OpDeleteObject          Operation = "DeleteObject"
	OpDeleteObjectTagging   Operation = "DeleteObjectTagging"
	OpAbortMultipartUpload  Operation = "AbortMultipartUpload"
	OpCreateMultipartUpload Operation = "CreateMultipartUpload"
	OpCompleteMultipartUpload Operation = "CompleteMultipartUpload"
	OpRestoreObject         Operation = "RestoreObject"
)

// Cacheable reports whether op is one of the six operations the cache
// engine is ever allowed to store (spec §4.5).
func (op Operation) Cacheable() bool {
	switch op {
	case OpGetObject, OpHeadObject, OpListObjects, OpListObjectsV2, OpListObjectVersions, OpHeadBucket, OpListBuckets:
		return true
	default:
		return false
	}
}
