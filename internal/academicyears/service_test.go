package academicyears

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumatrix/edumatrix/internal/identity"
	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/shared"
)

type memoryRepo struct {
	items  map[int64]AcademicYear
	nextID int64
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (AcademicYear, error) {
	y, ok := r.items[id]
	if !ok {
		return AcademicYear{}, httpx.ErrNotFound
	}
	return y, nil
}

func (r *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]AcademicYear, int, error) {
	var out []AcademicYear
	for _, y := range r.items {
		if filters.CenterID == nil || y.CenterID == *filters.CenterID {
			out = append(out, y)
		}
	}
	return out, len(out), nil
}

func (r *memoryRepo) clearCurrent(centerID, except int64) {
	for id, y := range r.items {
		if y.CenterID == centerID && id != except {
			y.IsCurrent = false
			r.items[id] = y
		}
	}
}

func (r *memoryRepo) Create(ctx context.Context, y AcademicYear) (AcademicYear, error) {
	r.nextID++
	y.ID = r.nextID
	if y.IsCurrent {
		r.clearCurrent(y.CenterID, y.ID)
	}
	r.items[y.ID] = y
	return y, nil
}

func (r *memoryRepo) Update(ctx context.Context, y AcademicYear) (AcademicYear, error) {
	if y.IsCurrent {
		r.clearCurrent(y.CenterID, y.ID)
	}
	r.items[y.ID] = y
	return y, nil
}

func (r *memoryRepo) SoftDelete(ctx context.Context, id int64) error {
	delete(r.items, id)
	return nil
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func centerAdmin(centerID int64) context.Context {
	return identity.WithPrincipal(context.Background(), identity.Principal{UserID: "5", CenterID: &centerID, Roles: []string{"CenterAdmin"}})
}

func newService() (*Service, *memoryRepo) {
	repo := &memoryRepo{items: map[int64]AcademicYear{
		1: {ID: 1, CenterID: 7, Name: "2025/2026", StartDate: date(2025, 9, 1), EndDate: date(2026, 6, 30), IsCurrent: true},
		2: {ID: 2, CenterID: 8, Name: "2025/2026", StartDate: date(2025, 9, 1), EndDate: date(2026, 6, 30), IsCurrent: true},
	}, nextID: 2}
	return NewService(repo), repo
}

func TestCreateCurrentYearReplacesPrevious(t *testing.T) {
	svc, repo := newService()

	y, err := svc.Create(centerAdmin(7), CreateRequest{Name: "2026/2027", StartDate: date(2026, 9, 1), EndDate: date(2027, 6, 30), IsCurrent: true})
	require.NoError(t, err)
	assert.Equal(t, int64(7), y.CenterID)
	assert.False(t, repo.items[1].IsCurrent)
	assert.True(t, repo.items[2].IsCurrent, "other centers keep their current year")
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Create(centerAdmin(7), CreateRequest{Name: "bad", StartDate: date(2026, 9, 1), EndDate: date(2026, 9, 1)})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(centerAdmin(7), CreateRequest{Name: "bad", EndDate: date(2026, 9, 1)})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateOtherCenterForbidden(t *testing.T) {
	svc, repo := newService()
	name := "renamed"

	_, err := svc.Update(centerAdmin(7), 2, UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, httpx.ErrForbidden)
	assert.Equal(t, "2025/2026", repo.items[2].Name)

	end := date(2025, 8, 1)
	_, err = svc.Update(centerAdmin(7), 1, UpdateRequest{EndDate: &end})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteOwnYear(t *testing.T) {
	svc, repo := newService()

	require.ErrorIs(t, svc.Delete(centerAdmin(8), 1), httpx.ErrForbidden)
	require.NoError(t, svc.Delete(centerAdmin(7), 1))
	assert.NotContains(t, repo.items, int64(1))
}
