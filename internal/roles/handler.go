package roles

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edumatrix/edumatrix/internal/platform/httpx"
)

// Handler serves the role catalogue. Callers mount it behind authentication.
type Handler struct{}

// NewHandler builds Handler instance.
func NewHandler() *Handler {
	return &Handler{}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listRoles)
}

// CatalogueEntry describes one role.
type CatalogueEntry struct {
	Name        Role   `json:"name"`
	Description string `json:"description"`
	CenterScope bool   `json:"center_scoped"`
}

// Catalogue lists every role, most senior first.
func Catalogue() []CatalogueEntry {
	out := make([]CatalogueEntry, 0, len(All()))
	for _, r := range All() {
		out = append(out, CatalogueEntry{Name: r, Description: r.Description(), CenterScope: r != SuperAdmin})
	}
	return out
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": Catalogue()})
}
