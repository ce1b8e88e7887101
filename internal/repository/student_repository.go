package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/courses-api/internal/models"
)

// StudentRepository persists the student registry.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every registered student ordered by name.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT ssn, name, email, created_at FROM students ORDER BY name ASC, ssn ASC`
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindBySSN returns the student or sql.ErrNoRows.
func (r *StudentRepository) FindBySSN(ctx context.Context, ssn string) (*models.Student, error) {
	const query = `SELECT ssn, name, email, created_at FROM students WHERE ssn = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, ssn); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create registers a new student. A taken SSN yields ErrDuplicate.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (ssn, name, email) VALUES ($1, $2, $3) RETURNING created_at`
	if err := r.db.QueryRowxContext(ctx, query, student.SSN, student.Name, student.Email).Scan(&student.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}
