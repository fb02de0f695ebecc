package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// MembershipFlusher clears the entire membership cache namespace.
type MembershipFlusher interface {
	ClearAll(ctx context.Context) error
}

// KeysetWarmer eagerly refreshes the JWKS key set.
type KeysetWarmer interface {
	Warm(ctx context.Context) error
}

// NewMembershipFlushHandler returns the handler for membership-flush tasks.
// Failures are returned so Asynq retries: a stale membership grant must not
// outlive its workspace.
func NewMembershipFlushHandler(cache MembershipFlusher, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload MembershipFlushPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := cache.ClearAll(ctx); err != nil {
			if logger != nil {
				logger.Error("membership cache flush",
					slog.String("workspace_id", payload.WorkspaceID.String()),
					slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("membership cache flushed",
				slog.String("workspace_id", payload.WorkspaceID.String()))
		}
		return nil
	}
}

// NewKeysetWarmupHandler returns the handler for the cron JWKS warmup.
func NewKeysetWarmupHandler(keys KeysetWarmer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := keys.Warm(ctx); err != nil {
			if logger != nil {
				logger.Warn("jwks warmup", slog.Any("error", err))
			}
			return err
		}
		return nil
	}
}
