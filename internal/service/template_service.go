package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/courses-api/internal/dto"
	"github.com/noah-isme/courses-api/internal/models"
	"github.com/noah-isme/courses-api/internal/repository"
	appErrors "github.com/noah-isme/courses-api/pkg/errors"
)

type templateRepository interface {
	List(ctx context.Context) ([]models.CourseTemplate, error)
	Create(ctx context.Context, template *models.CourseTemplate) error
}

// TemplateService maintains the course template catalogue.
type TemplateService struct {
	repo      templateRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTemplateService constructs TemplateService.
func NewTemplateService(repo templateRepository, validate *validator.Validate, logger *zap.Logger) *TemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{repo: repo, validator: validate, logger: logger}
}

// List returns the catalogue.
func (s *TemplateService) List(ctx context.Context) ([]models.CourseTemplate, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list course templates")
	}
	return templates, nil
}

// Create adds a template to the catalogue.
func (s *TemplateService) Create(ctx context.Context, req dto.CreateTemplateRequest) (*models.CourseTemplate, error) {
	req.TemplateID = strings.TrimSpace(req.TemplateID)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course template payload")
	}
	template := &models.CourseTemplate{TemplateID: req.TemplateID, Name: req.Name}
	if err := s.repo.Create(ctx, template); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course template %s already exists", req.TemplateID))
		}
		return nil, appErrors.Internal(err, "failed to create course template")
	}
	s.logger.Info("course template created", zap.String("template_id", template.TemplateID))
	return template, nil
}
