// Package main is the entry point for the s3cacheproxy caching reverse
// proxy for S3-compatible object storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bleepstore/s3cacheproxy/internal/auditlog"
	"github.com/bleepstore/s3cacheproxy/internal/cache"
	"github.com/bleepstore/s3cacheproxy/internal/config"
	"github.com/bleepstore/s3cacheproxy/internal/logging"
	"github.com/bleepstore/s3cacheproxy/internal/metrics"
	"github.com/bleepstore/s3cacheproxy/internal/pipeline"
	"github.com/bleepstore/s3cacheproxy/internal/server"
	"github.com/bleepstore/s3cacheproxy/internal/upstream"
	"github.com/bleepstore/s3cacheproxy/internal/webhook"
)

func main() {
	configPath := flag.String("config-file", "config.yaml", "path to configuration file")
	regenerate := flag.Bool("regenerate", false, "overwrite the config file with built-in defaults")
	generateIfMissing := flag.Bool("generate-if-missing", false, "write the config file with built-in defaults if it does not exist")
	port := flag.Int("port", 0, "override front listener port (default: from config)")
	host := flag.String("host", "", "override front listener host (default: from config)")
	flag.Parse()

	cfg, err := config.LoadOrGenerate(*configPath, *regenerate, *generateIfMissing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}

	logging.Setup(cfg.LogLevel, os.Stderr)
	metrics.Register()

	ctx := context.Background()

	upstreamClient, err := upstream.New(ctx, cfg.Client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize upstream client: %v\n", err)
		os.Exit(1)
	}

	var auditLog *auditlog.Log
	if cfg.AuditLog.Enabled {
		auditLog, err = auditlog.Open(cfg.AuditLog.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open invalidation audit log: %v\n", err)
			os.Exit(1)
		}
		defer auditLog.Close()
	}

	chain, cacheEngine := buildChain(cfg, auditLog)

	broadcaster := webhook.NewBroadcaster()
	if cacheEngine != nil {
		cacheEngine.Subscribe(broadcaster.Subscribe())
	}

	srv := server.New(cfg, upstreamClient, chain, cacheEngine, auditLog)
	webhookSrv := webhook.New(cfg.Webhook.Host, cfg.Webhook.Port, broadcaster)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	errCh := make(chan error, 2)
	go func() {
		log.Printf("s3cacheproxy listening on %s", addr)
		if err := srv.ListenAndServe(addr); err != nil {
			errCh <- fmt.Errorf("front server: %w", err)
			return
		}
		errCh <- nil
	}()
	go func() {
		log.Printf("webhook ingress listening on %s:%d", cfg.Webhook.Host, cfg.Webhook.Port)
		if err := webhookSrv.ListenAndServe(); err != nil {
			errCh <- fmt.Errorf("webhook server: %w", err)
			return
		}
		errCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	select {
	case sig := <-sigCh:
		log.Printf("received signal %v, shutting down...", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("front server shutdown error: %v", err)
		}
		if err := webhookSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("webhook server shutdown error: %v", err)
		}
		log.Printf("server stopped.")

	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}
}

// buildChain assembles the request pipeline from the config's ordered
// middleware list (spec §4.4). It returns the cache.Engine separately
// (nil if not configured) so main can subscribe it to the webhook
// broadcaster and hand it to the admin API for introspection.
func buildChain(cfg *config.Config, auditLog *auditlog.Log) (pipeline.Layer, *cache.Engine) {
	layers := make([]pipeline.Layer, 0, len(cfg.Middlewares))
	var cacheEngine *cache.Engine

	for _, mw := range cfg.Middlewares {
		switch mw.Type {
		case "cache":
			if mw.Cache == nil {
				slog.Warn("middlewares: cache entry missing its cache config, skipping")
				continue
			}
			cacheEngine = cache.New(cacheConfigFrom(mw.Cache))
			if auditLog != nil {
				cacheEngine.SetAuditLog(auditLog)
			}
			layers = append(layers, cacheEngine)
		case "identity":
			layers = append(layers, pipeline.Identity)
		default:
			slog.Warn("middlewares: unknown middleware type, skipping", "type", mw.Type)
		}
	}

	if len(layers) == 0 {
		return pipeline.Identity, nil
	}
	return pipeline.NewDynChain(layers...), cacheEngine
}
