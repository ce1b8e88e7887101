package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/noah-isme/courses-api/internal/dto"
	"github.com/noah-isme/courses-api/internal/enrollment"
	"github.com/noah-isme/courses-api/internal/models"
	appErrors "github.com/noah-isme/courses-api/pkg/errors"
)

// enrollmentTxRunner scopes one rule evaluation to one transaction.
type enrollmentTxRunner interface {
	RunInTx(ctx context.Context, fn func(enrollment.Store) error) error
}

type ruleFunc func(ctx context.Context, store enrollment.Store, courseID int64, ssn string) (*enrollment.Result, error)

// EnrollmentService runs the enrollment rules inside a transaction and
// instruments every call.
type EnrollmentService struct {
	runner    enrollmentTxRunner
	engine    *enrollment.Engine
	cache     *CacheService
	metrics   *MetricsService
	tracer    trace.Tracer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. Nil collaborators other
// than runner fall back to inert defaults.
func NewEnrollmentService(runner enrollmentTxRunner, engine *enrollment.Engine, cache *CacheService, metrics *MetricsService, tracer trace.Tracer, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if engine == nil {
		engine = enrollment.NewEngine()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("enrollment")
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{runner: runner, engine: engine, cache: cache, metrics: metrics, tracer: tracer, validator: validate, logger: logger}
}

// Enroll gives the student a seat in the course.
func (s *EnrollmentService) Enroll(ctx context.Context, courseID int64, req dto.StudentRequest) (*models.StudentRecord, error) {
	result, err := s.run(ctx, "enroll", courseID, req, s.engine.Enroll)
	if err != nil {
		return nil, err
	}
	return result.Student, nil
}

// Remove soft-removes the student's enrollment in the course.
func (s *EnrollmentService) Remove(ctx context.Context, courseID int64, ssn string) error {
	_, err := s.run(ctx, "remove", courseID, dto.StudentRequest{SSN: ssn}, s.engine.Remove)
	return err
}

// Waitlist adds the student to the course's waiting list.
func (s *EnrollmentService) Waitlist(ctx context.Context, courseID int64, req dto.StudentRequest) (*models.StudentRecord, error) {
	result, err := s.run(ctx, "waitlist", courseID, req, s.engine.Waitlist)
	if err != nil {
		return nil, err
	}
	return result.Student, nil
}

func (s *EnrollmentService) run(ctx context.Context, op string, courseID int64, req dto.StudentRequest, rule ruleFunc) (*enrollment.Result, error) {
	req.SSN = strings.TrimSpace(req.SSN)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	ctx, span := s.tracer.Start(ctx, "enrollment."+op, trace.WithAttributes(
		attribute.Int64("course.id", courseID),
		attribute.String("student.ssn", req.SSN),
	))
	defer span.End()

	start := time.Now()
	var result *enrollment.Result
	err := s.runner.RunInTx(ctx, func(store enrollment.Store) error {
		var ruleErr error
		result, ruleErr = rule(ctx, store, courseID, req.SSN)
		return ruleErr
	})
	s.metrics.ObserveDBQuery("enrollment_"+op, time.Since(start))

	fields := []zap.Field{zap.String("operation", op), zap.Int64("course_id", courseID), zap.String("ssn", req.SSN)}
	if err != nil {
		var appErr *appErrors.Error
		if !errors.As(err, &appErr) {
			appErr = appErrors.Internal(err, "failed to "+op+" student")
		}
		s.metrics.RecordEnrollmentOutcome(op, appErr.Code)
		span.SetAttributes(attribute.String("enrollment.outcome", appErr.Code))
		if appErr.Status >= 500 {
			span.RecordError(err)
			span.SetStatus(codes.Error, appErr.Message)
			s.logger.Error("enrollment operation failed", append(fields, zap.Error(err))...)
			return nil, appErr
		}
		s.logger.Info("enrollment rule rejected", append(fields, zap.String("code", appErr.Code))...)
		return nil, appErr
	}

	s.metrics.RecordEnrollmentOutcome(op, "ok")
	span.SetAttributes(attribute.String("enrollment.transition", string(result.Transition)))
	s.cache.InvalidateCourse(ctx, courseID)
	s.logger.Info("enrollment operation applied", append(fields, zap.String("transition", string(result.Transition)))...)
	return result, nil
}
