package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/courses-api/internal/models"
)

// CourseRepository handles persistence of courses and their read projections.
type CourseRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db, sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

// List returns courses with their active enrollment counts. An empty
// semester lists every course.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseListItem, error) {
	q := r.sb.Select(
		"c.id", "c.template_id", "t.name", "c.semester", "c.max_students",
		"COUNT(cs.id) AS number_of_students",
	).
		From("courses c").
		Join("course_templates t ON t.template_id = c.template_id").
		LeftJoin("course_students cs ON cs.course_id = c.id AND cs.status = ?", models.MembershipEnrolled).
		GroupBy("c.id", "t.name").
		OrderBy("c.id ASC")
	if filter.Semester != "" {
		q = q.Where(squirrel.Eq{"c.semester": filter.Semester})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list courses query: %w", err)
	}
	courses := []models.CourseListItem{}
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns the course row or sql.ErrNoRows.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT id, template_id, semester, start_date, end_date, max_students, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindDetail returns a course with its template name, active count and roster.
func (r *CourseRepository) FindDetail(ctx context.Context, id int64) (*models.CourseDetail, error) {
	const query = `SELECT c.id, c.template_id, t.name, c.semester, c.start_date, c.end_date, c.max_students,
        (SELECT COUNT(*) FROM course_students cs WHERE cs.course_id = c.id AND cs.status = $2) AS number_of_students
        FROM courses c
        JOIN course_templates t ON t.template_id = c.template_id
        WHERE c.id = $1`
	var detail models.CourseDetail
	if err := r.db.GetContext(ctx, &detail, query, id, models.MembershipEnrolled); err != nil {
		return nil, err
	}
	roster, err := r.ListRoster(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Students = roster
	return &detail, nil
}

// ListRoster returns the actively enrolled students of a course.
func (r *CourseRepository) ListRoster(ctx context.Context, courseID int64) ([]models.StudentRecord, error) {
	return r.listByStatus(ctx, courseID, models.MembershipEnrolled, "s.name ASC, s.ssn ASC")
}

// ListWaiting returns the waiting list of a course, first come first.
func (r *CourseRepository) ListWaiting(ctx context.Context, courseID int64) ([]models.StudentRecord, error) {
	return r.listByStatus(ctx, courseID, models.MembershipWaitlisted, "cs.waitlisted_at ASC, cs.created_at ASC")
}

func (r *CourseRepository) listByStatus(ctx context.Context, courseID int64, status models.MembershipStatus, orderBy string) ([]models.StudentRecord, error) {
	query := fmt.Sprintf(`SELECT s.ssn, s.name FROM course_students cs
        JOIN students s ON s.ssn = cs.student_ssn
        WHERE cs.course_id = $1 AND cs.status = $2
        ORDER BY %s`, orderBy)
	students := []models.StudentRecord{}
	if err := r.db.SelectContext(ctx, &students, query, courseID, status); err != nil {
		return nil, fmt.Errorf("list %s students: %w", status, err)
	}
	return students, nil
}

// Exists reports whether a course with the id exists.
func (r *CourseRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check course exists: %w", err)
	}
	return exists, nil
}

// Create inserts a course and fills in its generated id and timestamps.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	query, args, err := r.sb.Insert("courses").
		Columns("template_id", "semester", "start_date", "end_date", "max_students").
		Values(course.TemplateID, course.Semester, course.StartDate, course.EndDate, course.MaxStudents).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create course query: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return ErrUnknownTemplate
		}
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update changes the dates and capacity of a course. It returns
// sql.ErrNoRows when the course does not exist.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	query, args, err := r.sb.Update("courses").
		Set("start_date", course.StartDate).
		Set("end_date", course.EndDate).
		Set("max_students", course.MaxStudents).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": course.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update course query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a course; its memberships cascade. It returns
// sql.ErrNoRows when the course does not exist.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
