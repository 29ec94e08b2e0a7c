package shared

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
	// maxPage keeps (page-1)*per_page far from int overflow.
	maxPage = 10000
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// ListFilters represents standard list filters shared by center-scoped modules.
// CenterID is resolved by the service from the caller, never taken verbatim
// from an ordinary user's query string.
type ListFilters struct {
	Page     int
	PerPage  int
	Search   string
	IsActive *bool
	CenterID *int64
}

// Offset returns the row offset for the current page.
func (f ListFilters) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (min(f.Page, maxPage) - 1) * f.Limit()
}

// Limit returns the clamped page size.
func (f ListFilters) Limit() int {
	switch {
	case f.PerPage <= 0:
		return defaultPerPage
	case f.PerPage > maxPerPage:
		return maxPerPage
	default:
		return f.PerPage
	}
}

// ParseListFilters reads page, per_page, search, active and center_id from the query string.
func ParseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	filters := ListFilters{Search: strings.TrimSpace(q.Get("search"))}
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.Page = min(filters.Page, maxPage)
	filters.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	if raw := q.Get("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filters.IsActive = &active
		}
	}
	if raw := q.Get("center_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filters.CenterID = &id
		}
	}
	return filters
}
