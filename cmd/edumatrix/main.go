package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/edumatrix/edumatrix/cmd/edumatrix/cli"
	"github.com/edumatrix/edumatrix/internal/academicyears"
	"github.com/edumatrix/edumatrix/internal/app"
	"github.com/edumatrix/edumatrix/internal/auth"
	"github.com/edumatrix/edumatrix/internal/centers"
	"github.com/edumatrix/edumatrix/internal/courses"
	"github.com/edumatrix/edumatrix/internal/dashboard"
	"github.com/edumatrix/edumatrix/internal/identity"
	"github.com/edumatrix/edumatrix/internal/observability"
	"github.com/edumatrix/edumatrix/internal/platform/cache"
	"github.com/edumatrix/edumatrix/internal/platform/db"
	"github.com/edumatrix/edumatrix/internal/rbac"
	"github.com/edumatrix/edumatrix/internal/roles"
	"github.com/edumatrix/edumatrix/internal/shared"
	"github.com/edumatrix/edumatrix/internal/students"
	"github.com/edumatrix/edumatrix/internal/teachers"
	"github.com/edumatrix/edumatrix/internal/users"
	"github.com/edumatrix/edumatrix/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		if err := runJobs(ctx, cfg, os.Args[2:]); err != nil {
			logger.Error("jobs", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "edumatrix_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	tokens := identity.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)

	redisOpts := cfg.Redis().Asynq()
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	usersRepo := users.NewRepository(dbpool)
	evaluator := rbac.NewCenterAccessHandler(cfg.RoleResolution(), logger)
	rbacMiddleware := rbac.Middleware{
		Handler:  evaluator,
		Roles:    usersRepo,
		Logger:   logger,
		Recorder: metrics,
		Denials:  jobClient,
	}

	authService := auth.NewService(auth.NewRepository(dbpool), usersRepo, tokens)
	studentsRepo := students.NewRepository(dbpool)
	teachersRepo := teachers.NewRepository(dbpool)
	coursesRepo := courses.NewRepository(dbpool)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		Tokens:               tokens,
		RBACMiddleware:       rbacMiddleware,
		Metrics:              metrics,
		AuthHandler:          auth.NewHandler(logger, authService, sessionManager, csrfManager),
		CentersHandler:       centers.NewHandler(logger, centers.NewService(centers.NewRepository(dbpool)), rbacMiddleware),
		StudentsHandler:      students.NewHandler(logger, students.NewService(studentsRepo, auditLogger, logger), rbacMiddleware),
		TeachersHandler:      teachers.NewHandler(logger, teachers.NewService(teachersRepo, auditLogger, logger), rbacMiddleware),
		CoursesHandler:       courses.NewHandler(logger, courses.NewService(coursesRepo), rbacMiddleware),
		AcademicYearsHandler: academicyears.NewHandler(logger, academicyears.NewService(academicyears.NewRepository(dbpool)), rbacMiddleware),
		UsersHandler:         users.NewHandler(logger, users.NewService(usersRepo, auditLogger, logger), rbacMiddleware),
		RolesHandler:         roles.NewHandler(),
		DashboardHandler: dashboard.NewHandler(logger, dashboard.NewService(dashboard.Sources{
			Students: studentsRepo,
			Teachers: teachersRepo,
			Courses:  coursesRepo,
			Staff:    usersRepo,
		}), rbacMiddleware),
		PermissionsHandler: rbac.NewPermissionsHandler(logger, evaluator, usersRepo, rbacMiddleware),
		JobHandler:         jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("role_resolution", string(cfg.RoleResolution())))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// runJobs handles "edumatrix jobs trigger <task>" and "edumatrix jobs stats".
func runJobs(ctx context.Context, cfg *app.Config, args []string) error {
	c := cli.NewJobsCLI(cfg.Redis().Asynq())
	defer c.Close()

	if len(args) == 0 {
		return fmt.Errorf("usage: edumatrix jobs trigger <task> | stats")
	}
	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return fmt.Errorf("usage: edumatrix jobs trigger <task>")
		}
		info, err := c.Trigger(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
		return nil
	case "stats":
		stats, err := c.InspectQueues(ctx)
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(stats)
	default:
		return fmt.Errorf("unknown jobs command %q", args[0])
	}
}
