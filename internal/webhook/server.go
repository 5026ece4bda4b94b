package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// softTimeout bounds how long the ingress handler will wait while decoding
// and fanning out a single notification before http.TimeoutHandler
// responds 503, matching the ~1 second timeout wrapping the original
// ingress handler.
const softTimeout = time.Second

// Server is the secondary HTTP listener that receives S3 event
// notifications and republishes them on a Broadcaster (spec §4.6).
type Server struct {
	httpServer  *http.Server
	broadcaster *Broadcaster
}

// New constructs a webhook ingress Server listening on host:port, publishing
// decoded events to broadcaster.
func New(host string, port int, broadcaster *Broadcaster) *Server {
	s := &Server{broadcaster: broadcaster}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)

	s.httpServer = &http.Server{
		Addr:    net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		Handler: http.TimeoutHandler(mux, softTimeout, "timeout processing notification"),
	}
	return s
}

// ListenAndServe starts the ingress listener; it blocks until the server
// is shut down or fails.
func (s *Server) ListenAndServe() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the ingress listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 16<<20))
	if err != nil {
		slog.Warn("webhook: failed to read notification body", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	event, ok := fromRequest(body)
	if !ok {
		// Not a recognizable S3 notification shape; acknowledge without
		// processing rather than erroring every foreign payload.
		w.WriteHeader(http.StatusOK)
		return
	}

	s.broadcaster.Send(event)
	w.WriteHeader(http.StatusOK)
}

// fromRequest parses a webhook POST body into an S3Event. It returns
// ok=false for bodies that are valid JSON but not an S3 notification
// envelope, and for bodies that fail to parse as JSON at all — both are
// treated identically by the caller (acknowledged, not processed).
func fromRequest(body []byte) (S3Event, bool) {
	var raw rawS3Event
	if err := json.Unmarshal(body, &raw); err != nil {
		return S3Event{}, false
	}
	if len(raw.Records) == 0 {
		return S3Event{}, false
	}
	return raw.toEvent(), true
}
