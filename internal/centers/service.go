package centers

import (
	"context"
	"fmt"
	"strings"

	"github.com/edumatrix/edumatrix/internal/platform/httpx"
	"github.com/edumatrix/edumatrix/internal/shared"
	"github.com/edumatrix/edumatrix/internal/tenant"
)

// RepositoryPort defines data access methods for centers.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (Center, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Center, int, error)
	Create(ctx context.Context, c Center) (Center, error)
	Update(ctx context.Context, c Center) (Center, error)
}

// Service manages centers. Every operation is reserved for super admins;
// the route guard already enforces it and the service checks again.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func requireSuper(ctx context.Context) error {
	if !tenant.FromContext(ctx).IsSuperTenant() {
		return fmt.Errorf("%w: center management requires a super admin", httpx.ErrForbidden)
	}
	return nil
}

// List returns centers.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Center, shared.Pagination, error) {
	if err := requireSuper(ctx); err != nil {
		return nil, shared.Pagination{}, err
	}
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list centers: %w", err)
	}
	return items, shared.NewPagination(filters.Page, filters.Limit(), total), nil
}

// Get returns one center.
func (s *Service) Get(ctx context.Context, id int64) (Center, error) {
	if err := requireSuper(ctx); err != nil {
		return Center{}, err
	}
	return s.repo.Get(ctx, id)
}

// Create opens a new center.
func (s *Service) Create(ctx context.Context, req CreateCenterRequest) (Center, error) {
	if err := requireSuper(ctx); err != nil {
		return Center{}, err
	}
	if err := shared.Validate(req); err != nil {
		return Center{}, err
	}
	return s.repo.Create(ctx, Center{
		Code:     strings.ToUpper(req.Code),
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		IsActive: true,
	})
}

// Update edits a center.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCenterRequest) (Center, error) {
	if err := shared.Validate(req); err != nil {
		return Center{}, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return Center{}, err
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	return s.repo.Update(ctx, c)
}

// SetActive activates or deactivates a center. Centers are never deleted.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (Center, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Center{}, err
	}
	if c.IsActive == active {
		return c, nil
	}
	c.IsActive = active
	return s.repo.Update(ctx, c)
}
