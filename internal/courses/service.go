package courses

import (
	"context"
	"fmt"
	"strings"

	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/shared"
	"github.com/edumatrix/edumatrix/internal/tenant"
)

// RepositoryPort defines data access methods for courses.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Course, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Course, int, error)
	Create(ctx context.Context, c Course) (Course, error)
	Update(ctx context.Context, c Course) (Course, error)
	SoftDelete(ctx context.Context, id int64) error
	TeacherCenter(ctx context.Context, teacherID int64) (int64, error)
	AcademicYearCenter(ctx context.Context, yearID int64) (int64, error)
}

// Service handles course business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns courses visible to the caller.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Course, shared.Pagination, error) {
	scope, err := tenant.FromContext(ctx).ListScope(filters.CenterID)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	filters.CenterID = scope
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list courses: %w", err)
	}
	return items, shared.NewPagination(filters.Page, filters.Limit(), total), nil
}

// Get returns one course owned by the caller's center.
func (s *Service) Get(ctx context.Context, id int64) (Course, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if err := tenant.FromContext(ctx).ValidateTenantAccess(c.CenterID, "course"); err != nil {
		return Course{}, err
	}
	return c, nil
}

// Create adds a course to the caller's center.
func (s *Service) Create(ctx context.Context, req CreateCourseRequest) (Course, error) {
	if err := shared.Validate(req); err != nil {
		return Course{}, err
	}
	centerID, err := tenant.FromContext(ctx).ResolveCenterForCreate(req.CenterID)
	if err != nil {
		return Course{}, err
	}
	c := Course{
		CenterID:       centerID,
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		TeacherID:      req.TeacherID,
		AcademicYearID: req.AcademicYearID,
		Capacity:       req.Capacity,
		FeeCents:       req.FeeCents,
		IsActive:       true,
	}
	if err := s.checkReferences(ctx, c); err != nil {
		return Course{}, err
	}
	return s.repo.Create(ctx, c)
}

// Update edits a course owned by the caller's center.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCourseRequest) (Course, error) {
	if err := shared.Validate(req); err != nil {
		return Course{}, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.TeacherID != nil {
		c.TeacherID = req.TeacherID
	}
	if req.AcademicYearID != nil {
		c.AcademicYearID = req.AcademicYearID
	}
	if req.Capacity != nil {
		c.Capacity = *req.Capacity
	}
	if req.FeeCents != nil {
		c.FeeCents = *req.FeeCents
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.checkReferences(ctx, c); err != nil {
		return Course{}, err
	}
	return s.repo.Update(ctx, c)
}

// Delete soft-deletes a course owned by the caller's center.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

// checkReferences keeps linked rows inside the course's own center, also for
// super admins.
func (s *Service) checkReferences(ctx context.Context, c Course) error {
	if c.TeacherID != nil {
		owner, err := s.repo.TeacherCenter(ctx, *c.TeacherID)
		if err != nil {
			return err
		}
		if owner != c.CenterID {
			return fmt.Errorf("%w: teacher %d belongs to another center", httpx.ErrForbidden, *c.TeacherID)
		}
	}
	if c.AcademicYearID != nil {
		owner, err := s.repo.AcademicYearCenter(ctx, *c.AcademicYearID)
		if err != nil {
			return err
		}
		if owner != c.CenterID {
			return fmt.Errorf("%w: academic year %d belongs to another center", httpx.ErrForbidden, *c.AcademicYearID)
		}
	}
	return nil
}
