package students

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/edumatrix/edumatrix/internal/shared"
	"github.com/edumatrix/edumatrix/internal/tenant"
)

// RepositoryPort defines data access methods for students.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Student, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Student, int, error)
	Create(ctx context.Context, s Student) (Student, error)
	Update(ctx context.Context, s Student) (Student, error)
	SoftDelete(ctx context.Context, id int64) error
}

// AuditPort records mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles student business logic.
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

// List returns students visible to the caller.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Student, shared.Pagination, error) {
	scope, err := tenant.FromContext(ctx).ListScope(filters.CenterID)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	filters.CenterID = scope
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list students: %w", err)
	}
	return items, shared.NewPagination(filters.Page, filters.Limit(), total), nil
}

// Get returns one student owned by the caller's center.
func (s *Service) Get(ctx context.Context, id int64) (Student, error) {
	student, err := s.repo.Get(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err := tenant.FromContext(ctx).ValidateTenantAccess(student.CenterID, "student"); err != nil {
		return Student{}, err
	}
	return student, nil
}

// Create registers a student in the caller's center.
func (s *Service) Create(ctx context.Context, req CreateStudentRequest) (Student, error) {
	if err := shared.Validate(req); err != nil {
		return Student{}, err
	}
	centerID, err := tenant.FromContext(ctx).ResolveCenterForCreate(req.CenterID)
	if err != nil {
		return Student{}, err
	}
	created, err := s.repo.Create(ctx, Student{
		CenterID:  centerID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
		IsActive:  true,
	})
	if err != nil {
		return Student{}, err
	}
	s.record(ctx, "create", created)
	return created, nil
}

// Update changes mutable fields of a student owned by the caller's center.
func (s *Service) Update(ctx context.Context, id int64, req UpdateStudentRequest) (Student, error) {
	if err := shared.Validate(req); err != nil {
		return Student{}, err
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if req.FirstName != nil {
		student.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		student.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		student.Email = req.Email
	}
	if req.Phone != nil {
		student.Phone = req.Phone
	}
	if req.BirthDate != nil {
		student.BirthDate = req.BirthDate
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}
	updated, err := s.repo.Update(ctx, student)
	if err != nil {
		return Student{}, err
	}
	s.record(ctx, "update", updated)
	return updated, nil
}

// Delete soft-deletes a student owned by the caller's center.
func (s *Service) Delete(ctx context.Context, id int64) error {
	student, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "delete", student)
	return nil
}

func (s *Service) record(ctx context.Context, action string, student Student) {
	if s.audit == nil {
		return
	}
	actor, _ := tenant.FromContext(ctx).UserID()
	centerID := student.CenterID
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		CenterID: &centerID,
		Action:   action,
		Entity:   "student",
		EntityID: strconv.FormatInt(student.ID, 10),
	})
	if err != nil {
		s.logger.Warn("audit student", slog.String("action", action), slog.Any("error", err))
	}
}
