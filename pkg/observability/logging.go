package observability

import (
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// LoggingHooks logs view lifecycle events at Debug and failures at Warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	view := func(msg string) func(*domain.ViewEvent) {
		return func(e *domain.ViewEvent) {
			if e.Err != nil {
				logger.Warn(msg, "view", e.Name, "id", e.ViewID, "err", e.Err)
				return
			}
			logger.Debug(msg, "view", e.Name, "id", e.ViewID)
		}
	}
	return domain.LifecycleHooks{
		OnViewCreated:   view("view_created"),
		OnViewRefreshed: view("view_refreshed"),
		OnLookupFailed: func(e *domain.LookupEvent) {
			logger.Warn("lookup_failed", "template", e.Name)
		},
		OnFlush: func(e *domain.FlushEvent) {
			logger.Debug("flush", "reruns", e.Reruns, "errors", e.Errors, "duration", e.Duration)
		},
	}
}
