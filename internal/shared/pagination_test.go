package shared

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListFilters(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/students?page=3&per_page=500&search=+ana+&active=false&center_id=9", nil)
	f := ParseListFilters(req)

	assert.Equal(t, 3, f.Page)
	assert.Equal(t, maxPerPage, f.Limit())
	assert.Equal(t, 2*maxPerPage, f.Offset())
	assert.Equal(t, "ana", f.Search)
	require.NotNil(t, f.IsActive)
	assert.False(t, *f.IsActive)
	require.NotNil(t, f.CenterID)
	assert.Equal(t, int64(9), *f.CenterID)
}

func TestListFiltersDefaults(t *testing.T) {
	f := ParseListFilters(httptest.NewRequest(http.MethodGet, "/students?center_id=abc", nil))
	assert.Equal(t, defaultPerPage, f.Limit())
	assert.Equal(t, 0, f.Offset())
	assert.Nil(t, f.CenterID)
	assert.Nil(t, f.IsActive)
}

func TestListFiltersClampHugePage(t *testing.T) {
	f := ParseListFilters(httptest.NewRequest(http.MethodGet, "/students?page=9223372036854775807&per_page=100", nil))
	assert.Equal(t, maxPage, f.Page)
	assert.Equal(t, (maxPage-1)*maxPerPage, f.Offset())

	direct := ListFilters{Page: math.MaxInt, PerPage: maxPerPage}
	assert.Positive(t, direct.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(0, 0, 41)
	assert.Equal(t, Pagination{Page: 1, PerPage: 20, Total: 41, TotalPages: 3}, p)
}
