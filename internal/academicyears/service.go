package academicyears

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/shared"
	"github.com/edumatrix/edumatrix/internal/tenant"
)

// RepositoryPort defines data access methods for academic years.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (AcademicYear, error)
	List(ctx context.Context, filters shared.ListFilters) ([]AcademicYear, int, error)
	Create(ctx context.Context, y AcademicYear) (AcademicYear, error)
	Update(ctx context.Context, y AcademicYear) (AcademicYear, error)
	SoftDelete(ctx context.Context, id int64) error
}

// Service handles academic year business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns years visible to the caller.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]AcademicYear, shared.Pagination, error) {
	scope, err := tenant.FromContext(ctx).ListScope(filters.CenterID)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	filters.CenterID = scope
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list academic years: %w", err)
	}
	return items, shared.NewPagination(filters.Page, filters.Limit(), total), nil
}

// Get returns one year owned by the caller's center.
func (s *Service) Get(ctx context.Context, id int64) (AcademicYear, error) {
	y, err := s.repo.Get(ctx, id)
	if err != nil {
		return AcademicYear{}, err
	}
	if err := tenant.FromContext(ctx).ValidateTenantAccess(y.CenterID, "academic year"); err != nil {
		return AcademicYear{}, err
	}
	return y, nil
}

// Create opens a new academic year.
func (s *Service) Create(ctx context.Context, req CreateRequest) (AcademicYear, error) {
	if err := shared.Validate(req); err != nil {
		return AcademicYear{}, err
	}
	if err := checkRange(req.StartDate, req.EndDate); err != nil {
		return AcademicYear{}, err
	}
	centerID, err := tenant.FromContext(ctx).ResolveCenterForCreate(req.CenterID)
	if err != nil {
		return AcademicYear{}, err
	}
	return s.repo.Create(ctx, AcademicYear{
		CenterID:  centerID,
		Name:      strings.TrimSpace(req.Name),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsCurrent: req.IsCurrent,
	})
}

// Update edits a year owned by the caller's center.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (AcademicYear, error) {
	if err := shared.Validate(req); err != nil {
		return AcademicYear{}, err
	}
	y, err := s.Get(ctx, id)
	if err != nil {
		return AcademicYear{}, err
	}
	if req.Name != nil {
		y.Name = strings.TrimSpace(*req.Name)
	}
	if req.StartDate != nil {
		y.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		y.EndDate = *req.EndDate
	}
	if req.IsCurrent != nil {
		y.IsCurrent = *req.IsCurrent
	}
	if err := checkRange(y.StartDate, y.EndDate); err != nil {
		return AcademicYear{}, err
	}
	return s.repo.Update(ctx, y)
}

// Delete soft-deletes a year owned by the caller's center.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

func checkRange(start, end time.Time) error {
	switch {
	case start.IsZero() || end.IsZero():
		return fmt.Errorf("%w: start_date and end_date are required", httpx.ErrValidation)
	case !end.After(start):
		return fmt.Errorf("%w: end_date must be after start_date", httpx.ErrValidation)
	}
	return nil
}
