package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edumatrix/edumatrix/internal/identity"
	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/roles"
)

// PermissionsHandler exposes the permission table.
type PermissionsHandler struct {
	logger  *slog.Logger
	handler *CenterAccessHandler
	store   identity.RoleStore
	rbac    Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, handler *CenterAccessHandler, store identity.RoleStore, rbac Middleware) *PermissionsHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PermissionsHandler{logger: logger, handler: handler, store: store, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.With(identity.RequireAuthenticated).Get("/me", h.myPermissions)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(EntityUser, ActionView))
		r.Get("/", h.listPermissions)
	})
}

// PermissionRow is one cell row of the permission grid.
type PermissionRow struct {
	Entity Entity       `json:"entity"`
	Action Action       `json:"action"`
	Roles  []roles.Role `json:"roles"`
}

// Grid returns the full permission table in a stable order.
func Grid() []PermissionRow {
	var rows []PermissionRow
	for _, entity := range Entities() {
		for _, action := range Actions() {
			granted := Grantees(entity, action)
			if granted == nil {
				granted = []roles.Role{}
			}
			rows = append(rows, PermissionRow{Entity: entity, Action: action, Roles: granted})
		}
	}
	return rows
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": Grid()})
}

// myPermissions lists the requirements the caller currently satisfies.
func (h *PermissionsHandler) myPermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var reqs []Requirement
	for _, entity := range Entities() {
		for _, action := range Actions() {
			reqs = append(reqs, Requirement{Entity: entity, Action: action})
		}
	}
	decisions, err := h.handler.EvaluateMany(ctx, identity.FromContext(ctx, h.store), reqs)
	if err != nil {
		h.logger.Error("evaluate permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	granted := make([]string, 0, len(reqs))
	for i, d := range decisions {
		if d.Allowed {
			granted = append(granted, reqs[i].String())
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": granted})
}
