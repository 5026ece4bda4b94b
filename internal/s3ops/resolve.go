package s3ops

import (
	"net/http"
	"sort"
)

// grouped indexes the catalog by (method, shape) and keeps each group
// sorted most-specific-first, so Resolve only ever has to scan the first
// matching route it cannot rule out (spec §4.2 resolution algorithm,
// steps 1-3: group by method/shape, order by specificity, pick the first
// match).
type groupKey struct {
	method string
	shape  PathShape
}

var grouped = buildGroups()

func buildGroups() map[groupKey][]Route {
	groups := make(map[groupKey][]Route)
	for _, r := range catalog {
		k := groupKey{method: r.Method, shape: r.Shape}
		groups[k] = append(groups[k], r)
	}
	for k := range groups {
		rs := groups[k]
		sort.SliceStable(rs, func(i, j int) bool {
			pi := rs[i]
			pj := rs[j]
			qpi, rqi, rhi, ni := pi.priorityTuple()
			qpj, rqj, rhj, nj := pj.priorityTuple()
			if qpi != qpj {
				return qpi > qpj
			}
			if rqi != rqj {
				return rqi > rqj
			}
			if rhi != rhj {
				return rhi > rhj
			}
			return ni < nj
		})
		groups[k] = rs
	}
	return groups
}

// Resolve implements the router's resolution algorithm (spec §4.2) for a
// path shape the caller has already classified: select the (method, shape)
// group, and return the first route (in specificity order) whose
// predicate matches. It reports ok=false when no route in the catalog
// matches, which the caller renders as InvalidArgument (spec §9: real S3
// has no canonical "no such operation" error code).
func Resolve(method string, shape PathShape, query string, header http.Header) (op Operation, needsFullBody bool, ok bool) {
	qs := ParseQuerySet(query)
	routes := grouped[groupKey{method: method, shape: shape}]
	for _, r := range routes {
		if r.matches(method, shape, qs, header) {
			return r.Operation, r.NeedsFullBody, true
		}
	}
	return Unknown, false, false
}

// ClassifyShape determines the path shape from the already-split bucket
// and key components of a request path. The front server takes bucket and
// key from the path-style URL path only; virtual-hosted-style requests are
// not rewritten to this form.
func ClassifyShape(bucket, key string) PathShape {
	switch {
	case bucket == "":
		return ShapeService
	case key == "":
		return ShapeBucket
	default:
		return ShapeObject
	}
}

// SplitPath splits an S3 path-style URL path ("/bucket/key/with/slashes")
// into its bucket and key components. The leading slash is trimmed; a
// root path yields an empty bucket and key (service-level shape).
func SplitPath(path string) (bucket, key string) {
	if len(path) == 0 || path[0] != '/' {
		return "", ""
	}
	trimmed := path[1:]
	if trimmed == "" {
		return "", ""
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] == '/' {
			return trimmed[:i], trimmed[i+1:]
		}
	}
	return trimmed, ""
}
