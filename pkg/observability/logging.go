package observability

import (
	"log/slog"

	"github.com/aretw0/beatbox/pkg/domain"
)

// LoggingHooks logs every transition at debug level.
// Emits are frequent; keep the logger at info or above outside of debugging sessions.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(e *domain.Event) {
		attrs := []any{"depth", e.Depth, "emitted", e.Emitted}
		if e.Symbol != 0 {
			attrs = append(attrs, "symbol", e.Symbol.String())
		}
		logger.Debug(string(e.Type), attrs...)
	}
	return domain.LifecycleHooks{
		OnDescend: log,
		OnAscend:  log,
		OnEmit:    log,
		OnDone:    log,
	}
}
