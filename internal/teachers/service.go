package teachers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/edumatrix/edumatrix/internal/shared"
	"github.com/edumatrix/edumatrix/internal/tenant"
)

// RepositoryPort defines data access methods for teachers.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Teacher, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Teacher, int, error)
	Create(ctx context.Context, s Teacher) (Teacher, error)
	Update(ctx context.Context, s Teacher) (Teacher, error)
	SoftDelete(ctx context.Context, id int64) error
}

// AuditPort records mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles teacher business logic.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds Service instance. audit may be nil.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns teachers visible to the caller.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Teacher, shared.Pagination, error) {
	scope, err := tenant.FromContext(ctx).ListScope(filters.CenterID)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	filters.CenterID = scope
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list teachers: %w", err)
	}
	return items, shared.NewPagination(filters.Page, filters.Limit(), total), nil
}

// Get returns one teacher owned by the caller's center.
func (s *Service) Get(ctx context.Context, id int64) (Teacher, error) {
	teacher, err := s.repo.Get(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if err := tenant.FromContext(ctx).ValidateTenantAccess(teacher.CenterID, "teacher"); err != nil {
		return Teacher{}, err
	}
	return teacher, nil
}

// Create hires a teacher into the caller's center.
func (s *Service) Create(ctx context.Context, req CreateTeacherRequest) (Teacher, error) {
	if err := shared.Validate(req); err != nil {
		return Teacher{}, err
	}
	centerID, err := tenant.FromContext(ctx).ResolveCenterForCreate(req.CenterID)
	if err != nil {
		return Teacher{}, err
	}
	created, err := s.repo.Create(ctx, Teacher{
		CenterID:  centerID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Phone:     req.Phone,
		Specialty: req.Specialty,
		HiredOn:   req.HiredOn,
		IsActive:  true,
	})
	if err != nil {
		return Teacher{}, err
	}
	s.record(ctx, "create", created)
	return created, nil
}

// Update changes mutable fields of a teacher owned by the caller's center.
func (s *Service) Update(ctx context.Context, id int64, req UpdateTeacherRequest) (Teacher, error) {
	if err := shared.Validate(req); err != nil {
		return Teacher{}, err
	}
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if req.FirstName != nil {
		teacher.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		teacher.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		teacher.Email = req.Email
	}
	if req.Phone != nil {
		teacher.Phone = req.Phone
	}
	if req.Specialty != nil {
		teacher.Specialty = req.Specialty
	}
	if req.HiredOn != nil {
		teacher.HiredOn = req.HiredOn
	}
	if req.IsActive != nil {
		teacher.IsActive = *req.IsActive
	}
	updated, err := s.repo.Update(ctx, teacher)
	if err != nil {
		return Teacher{}, err
	}
	s.record(ctx, "update", updated)
	return updated, nil
}

// Delete soft-deletes a teacher owned by the caller's center.
func (s *Service) Delete(ctx context.Context, id int64) error {
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "delete", teacher)
	return nil
}

func (s *Service) record(ctx context.Context, action string, teacher Teacher) {
	if s.audit == nil {
		return
	}
	actor, _ := tenant.FromContext(ctx).UserID()
	centerID := teacher.CenterID
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		CenterID: &centerID,
		Action:   action,
		Entity:   "teacher",
		EntityID: strconv.FormatInt(teacher.ID, 10),
	})
	if err != nil {
		s.logger.Warn("audit teacher", slog.String("action", action), slog.Any("error", err))
	}
}
