package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/courses-api/internal/dto"
	"github.com/noah-isme/courses-api/internal/models"
	"github.com/noah-isme/courses-api/internal/repository"
	appErrors "github.com/noah-isme/courses-api/pkg/errors"
	"github.com/noah-isme/courses-api/pkg/export"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseListItem, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	FindDetail(ctx context.Context, id int64) (*models.CourseDetail, error)
	ListRoster(ctx context.Context, courseID int64) ([]models.StudentRecord, error)
	ListWaiting(ctx context.Context, courseID int64) ([]models.StudentRecord, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

type templateReader interface {
	FindByID(ctx context.Context, id string) (*models.CourseTemplate, error)
}

// CourseService serves the course read projections and course maintenance.
type CourseService struct {
	repo            courseRepository
	templates       templateReader
	cache           *CacheService
	metrics         *MetricsService
	validator       *validator.Validate
	logger          *zap.Logger
	defaultSemester string
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, templates templateReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, defaultSemester string) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		repo:            repo,
		templates:       templates,
		cache:           cache,
		metrics:         metrics,
		validator:       validate,
		logger:          logger,
		defaultSemester: defaultSemester,
	}
}

// List returns the courses of a semester with their active enrollment
// counts. An empty semester falls back to the configured default.
func (s *CourseService) List(ctx context.Context, semester string) ([]models.CourseListItem, error) {
	semester = strings.TrimSpace(semester)
	if semester == "" {
		semester = s.defaultSemester
	}

	key := courseListCacheKey(semester)
	var cached []models.CourseListItem
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	gen := s.cache.Generation()

	start := time.Now()
	courses, err := s.repo.List(ctx, models.CourseFilter{Semester: semester})
	s.metrics.ObserveDBQuery("courses_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list courses")
	}
	s.cache.SetIfCurrent(ctx, key, courses, gen)
	return courses, nil
}

// Get returns a course with its active roster.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.CourseDetail, error) {
	key := courseDetailCacheKey(id)
	var cached models.CourseDetail
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	gen := s.cache.Generation()

	start := time.Now()
	detail, err := s.repo.FindDetail(ctx, id)
	s.metrics.ObserveDBQuery("courses_detail", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, courseNotFound(id)
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	s.cache.SetIfCurrent(ctx, key, detail, gen)
	return detail, nil
}

// Roster returns the actively enrolled students of a course.
func (s *CourseService) Roster(ctx context.Context, id int64) ([]models.StudentRecord, error) {
	if err := s.ensureExists(ctx, id); err != nil {
		return nil, err
	}
	students, err := s.repo.ListRoster(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load roster")
	}
	return students, nil
}

// WaitingList returns the students waiting for a seat, first come first.
func (s *CourseService) WaitingList(ctx context.Context, id int64) ([]models.StudentRecord, error) {
	if err := s.ensureExists(ctx, id); err != nil {
		return nil, err
	}
	students, err := s.repo.ListWaiting(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load waiting list")
	}
	return students, nil
}

// Create opens a new course offering from an existing template.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.CourseDetail, error) {
	req.TemplateID = strings.TrimSpace(req.TemplateID)
	req.Semester = strings.TrimSpace(req.Semester)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if _, err := s.templates.FindByID(ctx, req.TemplateID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, templateNotFound(req.TemplateID)
		}
		return nil, appErrors.Internal(err, "failed to load course template")
	}

	course := &models.Course{
		TemplateID:  req.TemplateID,
		Semester:    req.Semester,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		MaxStudents: req.MaxStudents,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrUnknownTemplate) {
			return nil, templateNotFound(req.TemplateID)
		}
		return nil, appErrors.Internal(err, "failed to create course")
	}
	s.cache.InvalidateCourse(ctx, course.ID)
	s.logger.Info("course created", zap.Int64("course_id", course.ID), zap.String("template_id", course.TemplateID), zap.String("semester", course.Semester))
	return s.Get(ctx, course.ID)
}

// Update changes the dates and capacity of a course. Lowering capacity below
// the current enrollment count only blocks future enrollments.
func (s *CourseService) Update(ctx context.Context, id int64, req dto.UpdateCourseRequest) (*models.CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, courseNotFound(id)
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	course.StartDate = req.StartDate
	course.EndDate = req.EndDate
	course.MaxStudents = req.MaxStudents
	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, courseNotFound(id)
		}
		return nil, appErrors.Internal(err, "failed to update course")
	}
	s.cache.InvalidateCourse(ctx, id)
	s.logger.Info("course updated", zap.Int64("course_id", id), zap.Int("max_students", req.MaxStudents))
	return s.Get(ctx, id)
}

// Delete removes a course together with its enrollments and waiting list.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return courseNotFound(id)
		}
		return appErrors.Internal(err, "failed to delete course")
	}
	s.cache.InvalidateCourse(ctx, id)
	s.logger.Info("course deleted", zap.Int64("course_id", id))
	return nil
}

// RosterExport is a rendered roster attachment.
type RosterExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportRoster renders the active roster of a course as CSV or PDF.
func (s *CourseService) ExportRoster(ctx context.Context, id int64, rawFormat string) (*RosterExport, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(detail.Students))
	for _, student := range detail.Students {
		rows = append(rows, []string{student.SSN, student.Name})
	}
	body, err := export.Render(format, export.Dataset{
		Title:   fmt.Sprintf("%s (%s) - %d of %d seats", detail.Name, detail.Semester, detail.NumberOfStudents, detail.MaxStudents),
		Headers: []string{"SSN", "Name"},
		Rows:    rows,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render roster")
	}
	return &RosterExport{
		Filename:    fmt.Sprintf("course-%d-roster.%s", id, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func (s *CourseService) ensureExists(ctx context.Context, id int64) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to load course")
	}
	if !exists {
		return courseNotFound(id)
	}
	return nil
}

func courseNotFound(id int64) error {
	return appErrors.Clone(appErrors.ErrCourseNotFound, fmt.Sprintf("course %d not found", id))
}

func templateNotFound(id string) error {
	return appErrors.Clone(appErrors.ErrTemplateNotFound, fmt.Sprintf("course template %s not found", id))
}
