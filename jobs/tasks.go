package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/edumatrix/edumatrix/internal/rbac"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueAudit carries audit writes so a backlog never delays other work.
	QueueAudit = "audit"

	// TaskAuthzDenied writes one authorization denial into audit_logs.
	TaskAuthzDenied = "audit:authz_denied"
	// TaskAuditPrune deletes audit rows older than the retention window.
	TaskAuditPrune = "audit:prune"
)

// AuthzDeniedPayload is the queued form of a denial.
type AuthzDeniedPayload struct {
	rbac.DenialEvent
	OccurredAt time.Time `json:"occurred_at"`
}

// NewAuthzDeniedTask builds the task for a denial observed at the given time.
func NewAuthzDeniedTask(event rbac.DenialEvent, at time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(AuthzDeniedPayload{DenialEvent: event, OccurredAt: at.UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuthzDenied, data, asynq.Queue(QueueAudit), asynq.MaxRetry(5)), nil
}

// AuditPrunePayload optionally overrides the worker's retention window.
type AuditPrunePayload struct {
	Retention time.Duration `json:"retention,omitempty"`
}

// NewAuditPruneTask builds a prune task. A zero retention uses the worker default.
func NewAuditPruneTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(AuditPrunePayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPrune, data, asynq.Queue(QueueAudit), asynq.MaxRetry(3)), nil
}
