package centers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/rbac"
	"github.com/edumatrix/edumatrix/internal/shared"
)

// Handler manages center endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers center routes. The Center entity has no table entry,
// so only super admins get through.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.EntityCenter, rbac.ActionView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.With(h.rbac.Require(rbac.EntityCenter, rbac.ActionAdd)).Post("/", h.create)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.EntityCenter, rbac.ActionEdit))
		r.Put("/{id}", h.update)
		r.Post("/{id}/activate", h.setActive(true))
	})
	r.With(h.rbac.Require(rbac.EntityCenter, rbac.ActionDelete)).Post("/{id}/deactivate", h.setActive(false))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, page, err := h.service.List(r.Context(), shared.ParseListFilters(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if items == nil {
		items = []Center{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items, "pagination": page})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateCenterRequest
	if err := httpx.DecodeStrictJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("center created", slog.Int64("center_id", c.ID), slog.String("code", c.Code))
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateCenterRequest
	if err := httpx.DecodeStrictJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.IDParam(r, "id")
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		c, err := h.service.SetActive(r.Context(), id, active)
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, c)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error("centers", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
