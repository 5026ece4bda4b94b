package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bleepstore/s3cacheproxy/internal/auditlog"
)

// invalidationRecordBody is the JSON shape of a single audit log row
// returned by GET /admin/invalidations.
type invalidationRecordBody struct {
	ID              int64  `json:"id"`
	ReceivedAt      string `json:"received_at"`
	EventType       string `json:"event_type"`
	Bucket          string `json:"bucket"`
	ObjectKey       string `json:"object_key"`
	VersionID       string `json:"version_id,omitempty"`
	KeysInvalidated int    `json:"keys_invalidated"`
	Source          string `json:"source"`
}

type invalidationsOutput struct {
	Body struct {
		Records []invalidationRecordBody `json:"records"`
	}
}

type invalidationsInput struct {
	Limit int `query:"limit" doc:"Maximum number of records to return" default:"50"`
}

// registerAdminRoutes wires the operator-facing introspection endpoints
// (spec §10): the invalidation audit log and the cache weight stats. These
// routes sit under /admin/
// and are exempt from SigV4 enforcement (internal/auth.Middleware skips
// that prefix), since they are meant for trusted operator tooling, not
// S3 clients.
func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-invalidations",
		Method:      http.MethodGet,
		Path:        "/admin/invalidations",
		Summary:     "Recent cache invalidations",
		Description: "Returns the most recent entries from the invalidation audit log.",
		Tags:        []string{"Admin"},
	}, s.handleListInvalidations)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-cache-stats",
		Method:      http.MethodGet,
		Path:        "/admin/cache/stats",
		Summary:     "Cache size",
		Description: "Returns the cache engine's current weight against its configured budget.",
		Tags:        []string{"Admin"},
	}, s.handleCacheStats)
}

type cacheStatsOutput struct {
	Body struct {
		WeightBytes int64 `json:"weight_bytes"`
		MaxWeight   int64 `json:"max_weight"`
	}
}

func (s *Server) handleCacheStats(ctx context.Context, input *struct{}) (*cacheStatsOutput, error) {
	out := &cacheStatsOutput{}
	if s.cacheStats == nil {
		return out, nil
	}
	stats := s.cacheStats.Stats()
	out.Body.WeightBytes = stats.WeightBytes
	out.Body.MaxWeight = stats.MaxWeight
	return out, nil
}

func (s *Server) handleListInvalidations(ctx context.Context, input *invalidationsInput) (*invalidationsOutput, error) {
	out := &invalidationsOutput{}
	if s.auditLog == nil {
		return out, nil
	}

	records, err := s.auditLog.Recent(ctx, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("reading invalidation log", err)
	}

	out.Body.Records = make([]invalidationRecordBody, 0, len(records))
	for _, rec := range records {
		out.Body.Records = append(out.Body.Records, invalidationRecordBodyFrom(rec))
	}
	return out, nil
}

func invalidationRecordBodyFrom(rec auditlog.Record) invalidationRecordBody {
	return invalidationRecordBody{
		ID:              rec.ID,
		ReceivedAt:      rec.ReceivedAt.Format("2006-01-02T15:04:05Z07:00"),
		EventType:       rec.EventType,
		Bucket:          rec.Bucket,
		ObjectKey:       rec.ObjectKey,
		VersionID:       rec.VersionID,
		KeysInvalidated: rec.KeysInvalidated,
		Source:          rec.Source,
	}
}
