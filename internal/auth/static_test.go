package auth

import (
	"context"
	"testing"

	"github.com/bleepstore/s3cacheproxy/internal/config"
)

func TestStaticCredentialLookupMatchesConfigured(t *testing.T) {
	lookup := StaticCredentialLookup(&config.Credential{AccessKey: "AKID", SecretKey: "secret"})

	cred, err := lookup(context.Background(), "AKID")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.SecretKey != "secret" || !cred.Active {
		t.Fatalf("unexpected credential: %+v", cred)
	}
}

func TestStaticCredentialLookupRejectsUnknownKey(t *testing.T) {
	lookup := StaticCredentialLookup(&config.Credential{AccessKey: "AKID", SecretKey: "secret"})

	_, err := lookup(context.Background(), "OTHER")
	authErr, ok := err.(*AuthError)
	if !ok || authErr.Code != "InvalidAccessKeyId" {
		t.Fatalf("expected InvalidAccessKeyId AuthError, got %v", err)
	}
}

func TestStaticCredentialLookupRejectsWhenNilConfigured(t *testing.T) {
	lookup := StaticCredentialLookup(nil)
	_, err := lookup(context.Background(), "anything")
	if err == nil {
		t.Fatalf("expected error when no credential is configured")
	}
}
