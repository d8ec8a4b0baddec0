package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Option configures New.
type Option func(*config)

type config struct {
	w    io.Writer
	json bool
}

// WithWriter redirects output (default: os.Stderr).
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.w = w
	}
}

// WithJSON switches to the JSON handler, for log collectors.
func WithJSON() Option {
	return func(c *config) {
		c.json = true
	}
}

// New creates a configured application logger.
// It writes to Stderr so stdout stays free for terminal streams and JSON-RPC.
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level, opts ...Option) *slog.Logger {
	cfg := config{w: os.Stderr}
	for _, opt := range opts {
		opt(&cfg)
	}

	handlerOpts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if cfg.json {
		return slog.New(slog.NewJSONHandler(cfg.w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(cfg.w, handlerOpts))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
