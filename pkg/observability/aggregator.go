package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/questline/pkg/domain"
)

// Combine merges several hook sets into one. Hooks run in argument order and nil hooks are skipped.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnDialogStart = chain(out.OnDialogStart, h.OnDialogStart)
		out.OnDialogDone = chain(out.OnDialogDone, h.OnDialogDone)
		out.OnAnswer = chain(out.OnAnswer, h.OnAnswer)
		out.OnMissionActivated = chain(out.OnMissionActivated, h.OnMissionActivated)
	}
	return out
}

func chain[E any](first, next func(context.Context, E)) func(context.Context, E) {
	switch {
	case next == nil:
		return first
	case first == nil:
		return next
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		next(ctx, e)
	}
}

// LoggingHooks logs every lifecycle event at Info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogStart: func(ctx context.Context, e *domain.DialogEvent) {
			logger.InfoContext(ctx, "dialog_start", "dialog", e.DialogID, "trigger", e.Trigger)
		},
		OnDialogDone: func(ctx context.Context, e *domain.DialogEvent) {
			logger.InfoContext(ctx, "dialog_done", "dialog", e.DialogID, "next_step", e.NextStep)
		},
		OnAnswer: func(ctx context.Context, e *domain.AnswerEvent) {
			logger.InfoContext(ctx, "answer", "dialog", e.DialogID, "store_key", e.StoreKey, "kind", e.Kind)
		},
		OnMissionActivated: func(ctx context.Context, e *domain.MissionEvent) {
			logger.InfoContext(ctx, "mission_activated", "mission", e.Mission, "first_step", e.FirstStep, "deferred", e.Deferred)
		},
	}
}
