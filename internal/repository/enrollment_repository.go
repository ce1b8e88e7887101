package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/courses-api/internal/enrollment"
	"github.com/noah-isme/courses-api/internal/models"
)

// EnrollmentRepository runs enrollment rule evaluations inside database
// transactions. The course row is locked for the lifetime of the transaction
// so concurrent operations on one course are serialized.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// RunInTx executes fn with a transaction-scoped store. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (r *EnrollmentRepository) RunInTx(ctx context.Context, fn func(enrollment.Store) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&enrollmentTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment tx: %w", err)
	}
	return nil
}

type enrollmentTx struct {
	tx *sqlx.Tx
}

func (s *enrollmentTx) LockCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	const query = `SELECT id, template_id, semester, start_date, end_date, max_students, created_at, updated_at FROM courses WHERE id = $1 FOR UPDATE`
	var course models.Course
	if err := s.tx.GetContext(ctx, &course, query, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock course: %w", err)
	}
	return &course, nil
}

func (s *enrollmentTx) FindStudent(ctx context.Context, ssn string) (*models.Student, error) {
	var student models.Student
	if err := s.tx.GetContext(ctx, &student, `SELECT ssn, name, email, created_at FROM students WHERE ssn = $1`, ssn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

func (s *enrollmentTx) CountEnrolled(ctx context.Context, courseID int64) (int, error) {
	var count int
	if err := s.tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM course_students WHERE course_id = $1 AND status = $2`, courseID, models.MembershipEnrolled); err != nil {
		return 0, fmt.Errorf("count enrolled: %w", err)
	}
	return count, nil
}

func (s *enrollmentTx) FindMembership(ctx context.Context, courseID int64, ssn string) (*models.Membership, error) {
	const query = `SELECT id, course_id, student_ssn, status, enrolled_at, removed_at, waitlisted_at, created_at, updated_at
        FROM course_students WHERE course_id = $1 AND student_ssn = $2`
	var membership models.Membership
	if err := s.tx.GetContext(ctx, &membership, query, courseID, ssn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return &membership, nil
}

func (s *enrollmentTx) InsertMembership(ctx context.Context, membership *models.Membership) error {
	const query = `INSERT INTO course_students (id, course_id, student_ssn, status, enrolled_at, removed_at, waitlisted_at, created_at, updated_at)
        VALUES (:id, :course_id, :student_ssn, :status, :enrolled_at, :removed_at, :waitlisted_at, :created_at, :updated_at)`
	if _, err := s.tx.NamedExecContext(ctx, query, membership); err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (s *enrollmentTx) UpdateMembership(ctx context.Context, membership *models.Membership) error {
	const query = `UPDATE course_students SET status = :status, enrolled_at = :enrolled_at, removed_at = :removed_at,
        waitlisted_at = :waitlisted_at, updated_at = :updated_at WHERE id = :id`
	res, err := s.tx.NamedExecContext(ctx, query, membership)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	return expectAffected(res)
}
