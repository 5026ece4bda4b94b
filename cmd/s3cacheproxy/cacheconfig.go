package main

import (
	"github.com/bleepstore/s3cacheproxy/internal/cache"
	"github.com/bleepstore/s3cacheproxy/internal/config"
	"github.com/bleepstore/s3cacheproxy/internal/s3ops"
)

// cacheConfigFrom translates the YAML-facing config.CacheMiddlewareConfig
// into the cache package's runtime Config, keyed by s3ops.Operation rather
// than by YAML field name (spec §4.5 "Configuration"). ListObjects and
// ListObjectsV2 share a single YAML knob since they cache under the same
// key recipe.
func cacheConfigFrom(c *config.CacheMiddlewareConfig) cache.Config {
	toOpConfig := func(oc config.CacheOpConfig) cache.OpConfig {
		return cache.OpConfig{Enabled: oc.Enabled, TTL: oc.TTL, TTI: oc.TTI}
	}

	return cache.Config{
		CacheSize: c.CacheSize,
		TTL:       c.TTL,
		TTI:       c.TTI,
		Ops: map[s3ops.Operation]cache.OpConfig{
			s3ops.OpGetObject:           toOpConfig(c.Ops.GetObject),
			s3ops.OpHeadObject:          toOpConfig(c.Ops.HeadObject),
			s3ops.OpListObjects:         toOpConfig(c.Ops.ListObjects),
			s3ops.OpListObjectsV2:       toOpConfig(c.Ops.ListObjects),
			s3ops.OpListObjectVersions:  toOpConfig(c.Ops.ListObjectVersions),
			s3ops.OpHeadBucket:          toOpConfig(c.Ops.HeadBucket),
			s3ops.OpListBuckets:         toOpConfig(c.Ops.ListBuckets),
		},
	}
}
