package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/fasim/pkg/domain"
)

// LoggingHooks logs every step at debug level and every verdict at info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "Step",
				"from", e.From,
				"symbol", e.Symbol,
				"to", e.To,
				"stuck", e.Stuck,
			)
		},
		OnVerdict: func(ctx context.Context, e *domain.VerdictEvent) {
			logger.InfoContext(ctx, "Verdict",
				"verdict", e.Verdict,
				"consumed", e.Consumed,
				"length", e.Length,
				"stuck", e.Stuck,
			)
		},
	}
}

// Chain returns hooks that call each of the given hooks in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			for _, h := range hooks {
				if h.OnStep != nil {
					h.OnStep(ctx, e)
				}
			}
		},
		OnVerdict: func(ctx context.Context, e *domain.VerdictEvent) {
			for _, h := range hooks {
				if h.OnVerdict != nil {
					h.OnVerdict(ctx, e)
				}
			}
		},
	}
}
