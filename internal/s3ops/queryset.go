package s3ops

import (
	"net/url"
	"sort"
)

// QueryPair is a single decoded query-string key/value pair.
type QueryPair struct {
	Key   string
	Value string
}

// QuerySet is the ordered, decoded representation of a request's query
// string (spec §3 "Ordered query set"). Ordering is canonicalized by key
// so two requests with the same parameters in different orders produce
// identical QuerySets.
type QuerySet struct {
	pairs []QueryPair
}

// ParseQuerySet decodes a raw query string into a canonicalized QuerySet.
func ParseQuerySet(rawQuery string) QuerySet {
	values, _ := url.ParseQuery(rawQuery)
	pairs := make([]QueryPair, 0, len(values))
	for k, vs := range values {
		for _, v := range vs {
			pairs = append(pairs, QueryPair{Key: k, Value: v})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Key != pairs[j].Key {
			return pairs[i].Key < pairs[j].Key
		}
		return pairs[i].Value < pairs[j].Value
	})
	return QuerySet{pairs: pairs}
}

// Has reports whether key is present in the query set, regardless of value.
func (q QuerySet) Has(key string) bool {
	for _, p := range q.pairs {
		if p.Key == key {
			return true
		}
	}
	return false
}

// Get returns the first value for key and whether it was present.
func (q QuerySet) Get(key string) (string, bool) {
	for _, p := range q.pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Keys returns the set of distinct query keys present, sorted.
func (q QuerySet) Keys() []string {
	seen := make(map[string]struct{}, len(q.pairs))
	keys := make([]string, 0, len(q.pairs))
	for _, p := range q.pairs {
		if _, ok := seen[p.Key]; !ok {
			seen[p.Key] = struct{}{}
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// CheckPattern reports whether the query set contains exactly the given set
// of required keys among a wider allowed vocabulary — used by the router to
// test a request against a route's required-query pattern (spec §4.2).
func (q QuerySet) CheckPattern(required []string) bool {
	for _, k := range required {
		if !q.Has(k) {
			return false
		}
	}
	return true
}

// Len returns the number of distinct keys in the query set.
func (q QuerySet) Len() int {
	return len(q.Keys())
}
