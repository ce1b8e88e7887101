package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/courses-api/internal/models"
)

// TemplateRepository persists the course template catalogue.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository constructs the repository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// List returns all templates ordered by id.
func (r *TemplateRepository) List(ctx context.Context) ([]models.CourseTemplate, error) {
	templates := []models.CourseTemplate{}
	if err := r.db.SelectContext(ctx, &templates, `SELECT template_id, name FROM course_templates ORDER BY template_id ASC`); err != nil {
		return nil, fmt.Errorf("list course templates: %w", err)
	}
	return templates, nil
}

// FindByID returns the template or sql.ErrNoRows.
func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*models.CourseTemplate, error) {
	var template models.CourseTemplate
	if err := r.db.GetContext(ctx, &template, `SELECT template_id, name FROM course_templates WHERE template_id = $1`, id); err != nil {
		return nil, err
	}
	return &template, nil
}

// Create inserts a template. A taken id yields ErrDuplicate.
func (r *TemplateRepository) Create(ctx context.Context, template *models.CourseTemplate) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO course_templates (template_id, name) VALUES ($1, $2)`, template.TemplateID, template.Name); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create course template: %w", err)
	}
	return nil
}
