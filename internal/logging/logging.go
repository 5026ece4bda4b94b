// Package logging configures structured logging for the proxy using log/slog.
package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/bleepstore/s3cacheproxy/internal/config"
)

// LevelCritical sits above the stdlib's slog.LevelError so that "critical"
// and "error" remain distinguishable severities in the 5-level scheme this
// proxy exposes through configuration.
const LevelCritical = slog.Level(12)

// discardHandler implements slog.Handler by dropping every record; it
// backs the "off" log level.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

// Setup configures the default slog logger for the given level, writing to w.
// Levels: info, debug, warn, critical, off (default: critical, matching
// config.Default()).
func Setup(level config.LogLevel, w io.Writer) {
	if level == config.LogLevelOff {
		slog.SetDefault(slog.New(discardHandler{}))
		return
	}

	var lvl slog.Level
	switch level {
	case config.LogLevelDebug:
		lvl = slog.LevelDebug
	case config.LogLevelInfo:
		lvl = slog.LevelInfo
	case config.LogLevelWarn:
		lvl = slog.LevelWarn
	case config.LogLevelCritical, "":
		lvl = LevelCritical
	default:
		lvl = LevelCritical
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelCritical {
					a.Value = slog.StringValue("CRITICAL")
				}
			}
			return a
		},
	})

	slog.SetDefault(slog.New(handler))
}
