package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/edumatrix/edumatrix/internal/jobs"
	"github.com/edumatrix/edumatrix/internal/shared"
)

// AuditActionDenied is the audit_logs action recorded for a denial.
const AuditActionDenied = "authz.denied"

// AuditStore is the subset of shared.AuditLogger the audit jobs use.
type AuditStore interface {
	Record(ctx context.Context, log shared.AuditLog) error
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// AuditJobs handles the audit task types.
type AuditJobs struct {
	store     AuditStore
	retention time.Duration
	logger    *slog.Logger
	metrics   *jobmetrics.Metrics
	now       func() time.Time
}

// NewAuditJobs constructs the audit handlers.
func NewAuditJobs(store AuditStore, retention time.Duration, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditJobs {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuditJobs{store: store, retention: retention, logger: logger, metrics: metrics, now: time.Now}
}

// Handlers returns the task registrations for the worker.
func (j *AuditJobs) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskAuthzDenied, Handler: j.HandleDenied},
		{Type: TaskAuditPrune, Handler: j.HandlePrune},
	}
}

// HandleDenied persists a queued denial.
func (j *AuditJobs) HandleDenied(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskAuthzDenied)
	var payload AuthzDeniedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(fmt.Errorf("decode denial: %v: %w", err, asynq.SkipRetry))
	}
	meta := map[string]any{
		"action": payload.Action,
		"reason": payload.Reason,
	}
	if payload.Role != "" {
		meta["role"] = payload.Role
	}
	if payload.RequestID != "" {
		meta["request_id"] = payload.RequestID
	}
	err := j.store.Record(ctx, shared.AuditLog{
		ActorID:  payload.UserID,
		CenterID: payload.CenterID,
		Action:   AuditActionDenied,
		Entity:   payload.Entity,
		Meta:     meta,
		At:       payload.OccurredAt,
	})
	if err != nil {
		j.logger.Warn("record denial", slog.String("user_id", payload.UserID), slog.Any("error", err))
	}
	return tracker.End(err)
}

// HandlePrune deletes audit rows older than the retention window.
func (j *AuditJobs) HandlePrune(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskAuditPrune)
	retention := j.retention
	if len(t.Payload()) > 0 {
		var payload AuditPrunePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return tracker.End(fmt.Errorf("decode prune: %v: %w", err, asynq.SkipRetry))
		}
		if payload.Retention > 0 {
			retention = payload.Retention
		}
	}
	if retention <= 0 {
		return tracker.End(fmt.Errorf("audit prune: retention not configured: %w", asynq.SkipRetry))
	}
	cutoff := j.now().Add(-retention)
	n, err := j.store.Prune(ctx, cutoff)
	if err != nil {
		return tracker.End(err)
	}
	j.metrics.AddPruned(n)
	j.logger.Info("audit pruned", slog.Int64("rows", n), slog.Time("before", cutoff))
	return tracker.End(nil)
}
