package auth

import (
	"context"

	"github.com/bleepstore/s3cacheproxy/internal/config"
)

// StaticCredentialLookup returns a CredentialLookup backed by the proxy's
// single configured access key/secret key pair (internal/config
// Credential), rather than the teacher's multi-tenant metadata store.
func StaticCredentialLookup(cred *config.Credential) CredentialLookup {
	return func(_ context.Context, accessKeyID string) (*CredentialRecord, error) {
		if cred == nil || accessKeyID != cred.AccessKey {
			return nil, &AuthError{Code: "InvalidAccessKeyId", Message: "The AWS Access Key Id you provided does not exist in our records"}
		}
		return &CredentialRecord{
			AccessKeyID: cred.AccessKey,
			SecretKey:   cred.SecretKey,
			OwnerID:     cred.AccessKey,
			DisplayName: cred.AccessKey,
			Active:      true,
		}, nil
	}
}
