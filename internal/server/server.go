// Package server implements the caching proxy's HTTP front end: the
// S3-compatible route dispatcher and the Huma-backed admin API.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bleepstore/s3cacheproxy/internal/auditlog"
	"github.com/bleepstore/s3cacheproxy/internal/auth"
	"github.com/bleepstore/s3cacheproxy/internal/cache"
	"github.com/bleepstore/s3cacheproxy/internal/config"
	s3err "github.com/bleepstore/s3cacheproxy/internal/errors"
	"github.com/bleepstore/s3cacheproxy/internal/envelope"
	"github.com/bleepstore/s3cacheproxy/internal/pipeline"
	"github.com/bleepstore/s3cacheproxy/internal/s3ops"
	"github.com/bleepstore/s3cacheproxy/internal/upstream"
	"github.com/bleepstore/s3cacheproxy/internal/xmlutil"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the front HTTP listener. It routes S3 requests through the
// router/envelope/pipeline stack and serves a small admin API alongside
// them.
type Server struct {
	cfg        *config.Config
	router     chi.Router
	api        huma.API
	verifier   *auth.SigV4Verifier
	chain      pipeline.Layer
	cacheStats *cache.Engine
	upstream   *upstream.Client
	auditLog   *auditlog.Log
	httpServer *http.Server
}

// HealthBody is the JSON body returned by the health check endpoint.
type HealthBody struct {
	Status string `json:"status" example:"ok" doc:"Health status"`
}

// HealthOutput is the Huma output struct for the health check endpoint.
type HealthOutput struct {
	Body HealthBody
}

// New creates a Server wired to client for upstream forwarding and chain
// for the middleware stack run ahead of it (spec §4.4). cacheEngine backs
// the /admin/cache/stats introspection route and may be nil if the cache
// middleware isn't configured. log may be nil when the audit log is
// disabled.
func New(cfg *config.Config, client *upstream.Client, chain pipeline.Layer, cacheEngine *cache.Engine, log *auditlog.Log) *Server {
	router := chi.NewMux()

	humaConfig := huma.DefaultConfig("s3cacheproxy admin API", "1.0.0")
	humaConfig.DocsPath = "/docs"
	humaConfig.OpenAPIPath = "/openapi"
	api := humachi.New(router, humaConfig)

	s := &Server{
		cfg:        cfg,
		router:     router,
		api:        api,
		chain:      chain,
		cacheStats: cacheEngine,
		upstream:   client,
		auditLog:   log,
	}

	if cfg.Server.ValidateCredentials && cfg.Server.Credentials != nil {
		s.verifier = auth.NewSigV4Verifier(auth.StaticCredentialLookup(cfg.Server.Credentials), cfg.Client.Region)
	}

	s.registerRoutes()
	return s
}

// ListenAndServe starts the HTTP server on the given address. The returned
// http.Server is stored so it can be shut down gracefully.
// Middleware chain: metricsMiddleware -> commonHeaders -> transferEncodingCheck
// -> authMiddleware -> metadataHeaderMiddleware -> router.
func (s *Server) ListenAndServe(addr string) error {
	var handler http.Handler = s.router
	handler = metadataHeaderMiddleware(handler)
	if s.verifier != nil {
		handler = auth.Middleware(s.verifier)(handler)
	}
	handler = transferEncodingCheck(handler)
	handler = commonHeaders(handler)
	handler = metricsMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server, waiting for in-flight
// requests to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// registerRoutes configures all routes on the Chi router. Huma routes
// (/health, /docs, /openapi.json), /metrics and the /admin/* introspection
// routes are registered first. The S3 catch-all /* is registered last;
// Chi matches the more specific routes first.
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the s3cacheproxy server.",
		Tags:        []string{"System"},
	}, func(ctx context.Context, input *struct{}) (*HealthOutput, error) {
		return &HealthOutput{Body: HealthBody{Status: "ok"}}, nil
	})

	// Register HEAD /health separately (Huma only does one method per registration).
	s.router.Head("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	})

	s.router.Handle("/metrics", promhttp.Handler())

	s.registerAdminRoutes()

	// S3 catch-all: all remaining requests go through the dispatch function.
	s.router.HandleFunc("/*", s.dispatch)
}

// dispatch is the S3 request entry point: it classifies the request's path
// shape, resolves its operation via the router, builds an envelope, and
// runs it through the middleware chain, with upstream forwarding as the
// terminal step (spec §4.2, §4.4).
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	req := envelope.FromWire(r)

	op, _, ok := s3ops.Resolve(req.Method, req.Ext.PathShape, req.RawQuery, req.Header)
	if !ok {
		xmlutil.WriteErrorResponse(w, r, s3err.ErrInvalidArgument)
		return
	}
	req.Ext.OperationTag = op

	resp, err := s.chain.Call(req, s.forwardToUpstream)
	if err != nil {
		if perr, ok := err.(*pipeline.Error); ok && perr.Kind == pipeline.ResponseErr && resp != nil {
			// The upstream's own response survives the chain verbatim (e.g. a
			// 304 no stage chose to intercept, or a 4xx/5xx passthrough).
			resp.ToWire(w)
			return
		}
		s.writeDispatchError(w, r, err)
		return
	}
	resp.ToWire(w)
}

// forwardToUpstream is the terminal pipeline.Next passed to the chain: it
// signs and relays whatever survives the middleware stack to the origin.
// Any non-2xx upstream status is flagged ResponseErr (spec §4.4/§7) so
// earlier stages — notably the cache engine on a stale hit — get a chance
// to interpret it (e.g. a 304 revalidation) before it reaches the client.
func (s *Server) forwardToUpstream(req *envelope.Request) (*envelope.Response, error) {
	resp, err := s.upstream.Forward(context.Background(), req)
	if err != nil {
		return nil, pipeline.NewInternalError(err)
	}
	if resp.StatusCode >= 300 {
		return resp, pipeline.NewResponseError(fmt.Errorf("upstream responded %d", resp.StatusCode))
	}
	return resp, nil
}

func (s *Server) writeDispatchError(w http.ResponseWriter, r *http.Request, err error) {
	kind := pipeline.Internal
	if perr, ok := err.(*pipeline.Error); ok {
		kind = perr.Kind
	}
	switch kind {
	case pipeline.RequestErr:
		xmlutil.WriteErrorResponse(w, r, s3err.ErrInvalidArgument)
	case pipeline.ResponseErr:
		xmlutil.WriteErrorResponse(w, r, s3err.ErrServiceUnavailable)
	default:
		xmlutil.WriteErrorResponse(w, r, s3err.ErrInternalError)
	}
}
