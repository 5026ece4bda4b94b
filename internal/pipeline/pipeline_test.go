package pipeline

import (
	"errors"
	"testing"

	"github.com/bleepstore/s3cacheproxy/internal/envelope"
)

func terminal(status int) Next {
	return func(req *envelope.Request) (*envelope.Response, error) {
		return &envelope.Response{StatusCode: status}, nil
	}
}

func TestIdentityIsPassThrough(t *testing.T) {
	req := &envelope.Request{}
	resp, err := Identity.Call(req, terminal(200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

// markerLayer appends its name to a shared trace slice, to verify call
// ordering under composition.
type markerLayer struct {
	name  string
	trace *[]string
}

func (m markerLayer) Call(req *envelope.Request, next Next) (*envelope.Response, error) {
	*m.trace = append(*m.trace, m.name+":before")
	resp, err := next(req)
	*m.trace = append(*m.trace, m.name+":after")
	return resp, err
}

func TestStaticChainOrdersOuterBeforeInner(t *testing.T) {
	var trace []string
	outer := markerLayer{name: "outer", trace: &trace}
	inner := markerLayer{name: "inner", trace: &trace}
	chain := NewChain(outer, inner)

	_, err := chain.Call(&envelope.Request{}, terminal(200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"outer:before", "inner:before", "inner:after", "outer:after"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestDynChainMatchesStaticChainOrdering(t *testing.T) {
	var trace []string
	a := markerLayer{name: "a", trace: &trace}
	b := markerLayer{name: "b", trace: &trace}
	c := markerLayer{name: "c", trace: &trace}

	dyn := NewDynChain(a, b, c)
	_, err := dyn.Call(&envelope.Request{}, terminal(200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"a:before", "b:before", "c:before",
		"c:after", "b:after", "a:after",
	}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace[%d] = %v, want %v", i, trace[i], want[i])
		}
	}
}

func TestDynChainWithLeadingIdentityBehavesLikeWithoutIt(t *testing.T) {
	var traceWith, traceWithout []string
	markerWith := markerLayer{name: "m", trace: &traceWith}
	markerWithout := markerLayer{name: "m", trace: &traceWithout}

	withIdentity := NewDynChain(Identity, markerWith)
	withoutIdentity := NewDynChain(markerWithout)

	if _, err := withIdentity.Call(&envelope.Request{}, terminal(200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := withoutIdentity.Call(&envelope.Request{}, terminal(200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(traceWith) != len(traceWithout) {
		t.Fatalf("traces differ in length: %v vs %v", traceWith, traceWithout)
	}
	for i := range traceWith {
		if traceWith[i] != traceWithout[i] {
			t.Fatalf("traces differ: %v vs %v", traceWith, traceWithout)
		}
	}
}

func TestErrorKindsWrapCause(t *testing.T) {
	cause := errors.New("boom")
	cases := []struct {
		err  *Error
		kind ErrorKind
	}{
		{NewInternalError(cause), Internal},
		{NewRequestError(cause), RequestErr},
		{NewResponseError(cause), ResponseErr},
	}
	for _, tc := range cases {
		if tc.err.Kind != tc.kind {
			t.Fatalf("kind = %v, want %v", tc.err.Kind, tc.kind)
		}
		if !errors.Is(tc.err.Unwrap(), cause) {
			t.Fatalf("Unwrap() did not return the original cause")
		}
	}
}
