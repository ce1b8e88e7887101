package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/courses-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestCourseRepositoryListBySemester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "template_id", "name", "semester", "max_students", "number_of_students"}).
		AddRow(1, "DBS", "Databases", "20173", 30, 2).
		AddRow(2, "ALG", "Algorithms", "20173", 10, 0)

	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN course_students cs ON cs.course_id = c.id AND cs.status = $1 WHERE c.semester = $2 GROUP BY c.id, t.name ORDER BY c.id ASC`)).
		WithArgs("ENROLLED", "20173").
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), models.CourseFilter{Semester: "20173"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Databases", items[0].Name)
	assert.Equal(t, 2, items[0].NumberOfStudents)
	assert.Equal(t, 0, items[1].NumberOfStudents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListWithoutSemester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`GROUP BY c.id, t.name ORDER BY c.id ASC`)).
		WithArgs("ENROLLED").
		WillReturnRows(sqlmock.NewRows([]string{"id", "template_id", "name", "semester", "max_students", "number_of_students"}))

	items, err := repo.List(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindDetail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	start := time.Date(2017, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2017, 12, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM courses c`)).
		WithArgs(int64(7), "ENROLLED").
		WillReturnRows(sqlmock.NewRows([]string{"id", "template_id", "name", "semester", "start_date", "end_date", "max_students", "number_of_students"}).
			AddRow(7, "DBS", "Databases", "20173", start, end, 30, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY s.name ASC, s.ssn ASC`)).
		WithArgs(int64(7), "ENROLLED").
		WillReturnRows(sqlmock.NewRows([]string{"ssn", "name"}).AddRow("S1", "Alice"))

	detail, err := repo.FindDetail(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), detail.ID)
	assert.Equal(t, 1, detail.NumberOfStudents)
	require.Len(t, detail.Students, 1)
	assert.Equal(t, "S1", detail.Students[0].SSN)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindDetailMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM courses c`)).
		WithArgs(int64(99), "ENROLLED").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindDetail(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCourseRepositoryListWaitingOrdersByArrival(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY cs.waitlisted_at ASC, cs.created_at ASC`)).
		WithArgs(int64(3), "WAITLISTED").
		WillReturnRows(sqlmock.NewRows([]string{"ssn", "name"}).AddRow("S2", "Bob").AddRow("S3", "Carol"))

	waiting, err := repo.ListWaiting(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, waiting, 2)
	assert.Equal(t, "S2", waiting[0].SSN)
	assert.Equal(t, "S3", waiting[1].SSN)
}

func TestCourseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO courses (template_id,semester,start_date,end_date,max_students) VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at, updated_at`)).
		WithArgs("DBS", "20173", sqlmock.AnyArg(), sqlmock.AnyArg(), 30).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(11, now, now))

	course := &models.Course{TemplateID: "DBS", Semester: "20173", StartDate: now, EndDate: now.AddDate(0, 3, 0), MaxStudents: 30}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, int64(11), course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateUnknownTemplate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO courses`)).
		WillReturnError(&pq.Error{Code: "23503"})

	err := repo.Create(context.Background(), &models.Course{TemplateID: "NOPE", Semester: "20173", MaxStudents: 1})
	assert.True(t, errors.Is(err, ErrUnknownTemplate))
}

func TestCourseRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE courses SET start_date = $1, end_date = $2, max_students = $3, updated_at = NOW() WHERE id = $4`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 5, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Course{ID: 42, MaxStudents: 5})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCourseRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM courses WHERE id = $1`)).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}
