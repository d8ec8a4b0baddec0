package runner

import (
	"log/slog"

	"github.com/aretw0/beatbox/internal/logging"
	"github.com/aretw0/beatbox/pkg/ports"
)

// DefaultCheckInterval is how many steps run between context checks.
const DefaultCheckInterval = 4096

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMaxSteps bounds the number of transitions a single Run may perform.
// Zero means unbounded.
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		r.maxSteps = n
	}
}

// WithStore saves the cursor under id whenever a run stops before the traversal is done.
func WithStore(store ports.CheckpointStore, id string) Option {
	return func(r *Runner) {
		r.store = store
		r.checkpointID = id
	}
}

// WithCheckInterval sets how many steps run between context checks.
func WithCheckInterval(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.checkInterval = n
		}
	}
}

func defaultLogger() *slog.Logger {
	return logging.NewNop()
}
