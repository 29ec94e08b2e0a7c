package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/edumatrix/edumatrix/internal/identity"
	"github.com/edumatrix/edumatrix/internal/platform/httpx"
)

// Decision outcomes reported to a DecisionRecorder.
const (
	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"
	OutcomeError = "error"
)

// DecisionRecorder counts decisions, typically into Prometheus.
type DecisionRecorder interface {
	ObserveDecision(entity, action, outcome string)
}

// DenialEvent describes a denied request for the audit trail.
type DenialEvent struct {
	UserID    string `json:"user_id"`
	CenterID  *int64 `json:"center_id,omitempty"`
	Entity    string `json:"entity"`
	Action    string `json:"action"`
	Role      string `json:"role,omitempty"`
	Reason    string `json:"reason"`
	RequestID string `json:"request_id,omitempty"`
}

// DenialSink receives denial events.
type DenialSink interface {
	RecordDenial(ctx context.Context, event DenialEvent) error
}

// Middleware wires permission checks into HTTP routes.
type Middleware struct {
	Handler  *CenterAccessHandler
	Roles    identity.RoleStore
	Logger   *slog.Logger
	Recorder DecisionRecorder
	Denials  DenialSink
}

// Require guards a route with the (entity, action) requirement.
func (m Middleware) Require(entity Entity, action Action) func(http.Handler) http.Handler {
	req := Requirement{Entity: entity, Action: action}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tc := identity.FromContext(ctx, m.Roles)
			decision, err := m.Handler.Evaluate(ctx, tc, req)
			switch {
			case errors.Is(err, httpx.ErrUnauthenticated):
				httpx.RespondError(w, err)
				return
			case err != nil:
				m.logger().Error("rbac evaluate", slog.String("requirement", req.String()), slog.Any("error", err))
				m.observe(req, OutcomeError)
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "access denied")
				return
			case !decision.Allowed:
				m.observe(req, OutcomeDeny)
				m.deny(ctx, tc, req, decision)
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "access denied")
				return
			}
			m.observe(req, OutcomeAllow)
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) deny(ctx context.Context, tc *identity.TenantContext, req Requirement, decision Decision) {
	userID, _ := tc.CurrentUserID()
	event := DenialEvent{
		UserID:    userID,
		Entity:    string(req.Entity),
		Action:    string(req.Action),
		Role:      string(decision.Role),
		Reason:    decision.Reason,
		RequestID: middleware.GetReqID(ctx),
	}
	if center, ok := tc.CurrentTenantID(); ok {
		event.CenterID = &center
	}
	m.logger().Info("rbac denied",
		slog.String("user_id", event.UserID),
		slog.String("entity", event.Entity),
		slog.String("action", event.Action),
		slog.String("role", event.Role),
		slog.String("reason", event.Reason))
	if m.Denials == nil {
		return
	}
	if err := m.Denials.RecordDenial(context.WithoutCancel(ctx), event); err != nil {
		m.logger().Warn("rbac record denial", slog.Any("error", err))
	}
}

func (m Middleware) observe(req Requirement, outcome string) {
	if m.Recorder != nil {
		m.Recorder.ObserveDecision(string(req.Entity), string(req.Action), outcome)
	}
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.New(slog.DiscardHandler)
}
