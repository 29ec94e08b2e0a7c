package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/edumatrix/edumatrix/internal/academicyears"
	"github.com/edumatrix/edumatrix/internal/auth"
	"github.com/edumatrix/edumatrix/internal/centers"
	"github.com/edumatrix/edumatrix/internal/courses"
	"github.com/edumatrix/edumatrix/internal/dashboard"
	"github.com/edumatrix/edumatrix/internal/identity"
	"github.com/edumatrix/edumatrix/internal/observability"
	"github.com/edumatrix/edumatrix/internal/rbac"
	"github.com/edumatrix/edumatrix/internal/roles"
	"github.com/edumatrix/edumatrix/internal/shared"
	"github.com/edumatrix/edumatrix/internal/students"
	"github.com/edumatrix/edumatrix/internal/teachers"
	"github.com/edumatrix/edumatrix/internal/users"
	"github.com/edumatrix/edumatrix/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Tokens         *identity.TokenIssuer
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics

	AuthHandler          *auth.Handler
	CentersHandler       *centers.Handler
	StudentsHandler      *students.Handler
	TeachersHandler      *teachers.Handler
	CoursesHandler       *courses.Handler
	AcademicYearsHandler *academicyears.Handler
	UsersHandler         *users.Handler
	RolesHandler         *roles.Handler
	DashboardHandler     *dashboard.Handler
	PermissionsHandler   *rbac.PermissionsHandler
	JobHandler           *jobs.Handler
}

// NewRouter constructs the chi.Router with EduMatrix defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Tokens:         params.Tokens,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	if params.CentersHandler != nil {
		r.Route("/centers", params.CentersHandler.MountRoutes)
	}
	if params.StudentsHandler != nil {
		r.Route("/students", params.StudentsHandler.MountRoutes)
	}
	if params.TeachersHandler != nil {
		r.Route("/teachers", params.TeachersHandler.MountRoutes)
	}
	if params.CoursesHandler != nil {
		r.Route("/courses", params.CoursesHandler.MountRoutes)
	}
	if params.AcademicYearsHandler != nil {
		r.Route("/academic-years", params.AcademicYearsHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.DashboardHandler != nil {
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	}
	if params.PermissionsHandler != nil {
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
	}
	if params.RolesHandler != nil {
		r.Route("/roles", func(r chi.Router) {
			r.Use(identity.RequireAuthenticated)
			params.RolesHandler.MountRoutes(r)
		})
	}
	if params.JobHandler != nil {
		// Queue state is platform-wide; Center is granted to super tenants only.
		r.Route("/jobs", func(r chi.Router) {
			r.Use(params.RBACMiddleware.Require(rbac.EntityCenter, rbac.ActionView))
			params.JobHandler.MountRoutes(r)
		})
	}

	return r
}
