package envelope

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bleepstore/s3cacheproxy/internal/s3ops"
)

func TestFromWireClassifiesShape(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/my-bucket/my/key.txt?versions", nil)
	env := FromWire(r)

	if env.Ext.Bucket != "my-bucket" {
		t.Fatalf("bucket = %q, want my-bucket", env.Ext.Bucket)
	}
	if env.Ext.Key != "my/key.txt" {
		t.Fatalf("key = %q, want my/key.txt", env.Ext.Key)
	}
	if env.Ext.PathShape != s3ops.ShapeObject {
		t.Fatalf("shape = %v, want object", env.Ext.PathShape)
	}
}

func TestDecodedInputMemoizesOnce(t *testing.T) {
	env := &Request{}
	calls := 0
	decode := func() (any, error) {
		calls++
		return "decoded", nil
	}

	v1, err1 := env.Ext.DecodedInput(decode)
	v2, err2 := env.Ext.DecodedInput(decode)

	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if v1 != "decoded" || v2 != "decoded" {
		t.Fatalf("unexpected decoded values: %v, %v", v1, v2)
	}
	if calls != 1 {
		t.Fatalf("decode called %d times, want 1", calls)
	}
}

func TestResponseToWireWritesHeadersAndBody(t *testing.T) {
	resp := &Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"X-Test": []string{"1"}},
		Body:       []byte("hello"),
	}
	rec := httptest.NewRecorder()
	resp.ToWire(rec)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Test") != "1" {
		t.Fatalf("missing X-Test header")
	}
	if rec.Body.String() != "hello" {
		t.Fatalf("body = %q, want hello", rec.Body.String())
	}
}

func TestTryAsMetadataOnlyStripsBody(t *testing.T) {
	resp := &Response{StatusCode: http.StatusOK, Body: []byte("payload")}
	meta := resp.TryAsMetadataOnly()
	if meta.Body != nil {
		t.Fatalf("expected nil body, got %q", meta.Body)
	}
	if meta.StatusCode != resp.StatusCode {
		t.Fatalf("status code should be preserved")
	}
}
