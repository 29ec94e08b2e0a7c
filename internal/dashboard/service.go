package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/edumatrix/edumatrix/internal/tenant"
)

// Counter counts the live rows a module holds for one center.
type Counter interface {
	CountByCenter(ctx context.Context, centerID int64) (int, error)
}

// Sources lists the counters the summary is built from.
type Sources struct {
	Students Counter
	Teachers Counter
	Courses  Counter
	Staff    Counter
}

// Summary is the per-center overview.
type Summary struct {
	CenterID int64 `json:"center_id"`
	Students int   `json:"students"`
	Teachers int   `json:"teachers"`
	Courses  int   `json:"courses"`
	Staff    int   `json:"staff"`
}

// Service builds dashboard summaries.
type Service struct {
	src Sources
}

// NewService constructs the dashboard service.
func NewService(src Sources) *Service {
	return &Service{src: src}
}

// Summary counts the caller's center. Super tenants have no center and get
// a bad request.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	centerID, err := tenant.FromContext(ctx).RequireTenantID()
	if err != nil {
		return Summary{}, err
	}

	out := Summary{CenterID: centerID}
	g, ctx := errgroup.WithContext(ctx)
	count := func(name string, c Counter, dst *int) {
		g.Go(func() error {
			n, err := c.CountByCenter(ctx, centerID)
			if err != nil {
				return fmt.Errorf("count %s: %w", name, err)
			}
			*dst = n
			return nil
		})
	}
	count("students", s.src.Students, &out.Students)
	count("teachers", s.src.Teachers, &out.Teachers)
	count("courses", s.src.Courses, &out.Courses)
	count("staff", s.src.Staff, &out.Staff)
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return out, nil
}
