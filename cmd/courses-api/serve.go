package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/noah-isme/courses-api/api/swagger"
	"github.com/noah-isme/courses-api/internal/enrollment"
	"github.com/noah-isme/courses-api/internal/handler"
	internalmiddleware "github.com/noah-isme/courses-api/internal/middleware"
	"github.com/noah-isme/courses-api/internal/repository"
	"github.com/noah-isme/courses-api/internal/router"
	"github.com/noah-isme/courses-api/internal/service"
	"github.com/noah-isme/courses-api/pkg/cache"
	"github.com/noah-isme/courses-api/pkg/config"
	"github.com/noah-isme/courses-api/pkg/database"
	"github.com/noah-isme/courses-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/courses-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/courses-api/pkg/middleware/requestid"
	"github.com/noah-isme/courses-api/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(rt *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt.cfg, rt.logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	tracer, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logr.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database, database.Up, logr); err != nil {
			return err
		}
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	cacheRepo, closeCache := newCacheRepository(ctx, cfg, logr)
	defer closeCache()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Courses.CacheTTL, logr, cfg.Courses.CacheEnabled)

	validate := validator.New()
	courseRepo := repository.NewCourseRepository(db)
	templateRepo := repository.NewTemplateRepository(db)

	courseSvc := service.NewCourseService(courseRepo, templateRepo, cacheSvc, metrics, validate, logr, cfg.Courses.DefaultSemester)
	enrollmentSvc := service.NewEnrollmentService(
		repository.NewEnrollmentRepository(db),
		enrollment.NewEngine(),
		cacheSvc,
		metrics,
		tracer.Tracer(),
		validate,
		logr,
	)
	studentSvc := service.NewStudentService(repository.NewStudentRepository(db), validate, logr)
	templateSvc := service.NewTemplateService(templateRepo, validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	router.Register(r, router.Handlers{
		Courses:     handler.NewCourseHandler(courseSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Students:    handler.NewStudentHandler(studentSvc),
		Templates:   handler.NewTemplateHandler(templateSvc),
		Metrics:     handler.NewMetricsHandler(metrics, db),
	}, router.Options{
		APIPrefix:  cfg.APIPrefix,
		EnableDocs: cfg.Env != config.EnvProduction,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newCacheRepository prefers Redis and falls back to an in-process cache
// when Redis is disabled or unreachable.
func newCacheRepository(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.CacheRepository, func()) {
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err == nil {
			return repository.NewCacheRepository(client), func() { _ = client.Close() }
		}
		logr.Warn("redis unavailable, using in-memory cache", zap.Error(err))
	}
	return repository.NewMemoryCacheRepository(cache.NewMemory(cfg.Courses.CacheTTL)), func() {}
}
