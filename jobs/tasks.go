package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeMembershipFlush flushes the membership cache namespace after
	// a workspace is deleted.
	TaskTypeMembershipFlush = "cache:membership_flush"
	// TaskTypeKeysetWarmup refreshes the JWKS key set ahead of expiry.
	TaskTypeKeysetWarmup = "auth:jwks_warmup"
)

// MembershipFlushPayload identifies the workspace whose deletion triggered
// the flush. The flush clears the whole namespace; the ID is carried for
// the audit trail in logs.
type MembershipFlushPayload struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
}

// NewMembershipFlushTask constructs an Asynq task.
func NewMembershipFlushTask(payload MembershipFlushPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeMembershipFlush, data), nil
}

// NewKeysetWarmupTask constructs the cron warmup task. It carries no payload.
func NewKeysetWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeKeysetWarmup, nil)
}
