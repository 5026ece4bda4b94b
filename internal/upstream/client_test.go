package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bleepstore/s3cacheproxy/internal/config"
	"github.com/bleepstore/s3cacheproxy/internal/envelope"
)

func TestForwardSignsAndRelaysRequest(t *testing.T) {
	var gotAuth string
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if string(body) != "hello" {
			t.Errorf("origin received body %q, want hello", body)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer origin.Close()

	cfg := config.ClientConfig{
		EndpointURL:     origin.URL,
		Region:          "us-east-1",
		ForcePathStyle:  true,
		TimeoutSeconds:  5,
		MaxRetries:      1,
		AccessKeyID:     "AKID",
		SecretAccessKey: "secret",
	}

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	req := &envelope.Request{
		Method: http.MethodPut,
		Path:   "/bucket/key",
		Header: http.Header{},
		Body:   io.NopCloser(strings.NewReader("hello")),
	}

	resp, err := client.Forward(context.Background(), req)
	if err != nil {
		t.Fatalf("Forward() error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if string(resp.Body) != "ok" {
		t.Fatalf("body = %q, want ok", resp.Body)
	}
	if !strings.HasPrefix(gotAuth, "AWS4-HMAC-SHA256") {
		t.Fatalf("expected SigV4 Authorization header, got %q", gotAuth)
	}
}
