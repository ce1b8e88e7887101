package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/courses-api/internal/models"
)

func TestStudentRepositoryFindBySSN(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ssn, name, email, created_at FROM students WHERE ssn = $1`)).
		WithArgs("S1").
		WillReturnRows(sqlmock.NewRows([]string{"ssn", "name", "email", "created_at"}).AddRow("S1", "Alice", "alice@example.edu", time.Now()))

	student, err := repo.FindBySSN(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", student.Name)
	require.NotNil(t, student.Email)
	assert.Equal(t, "alice@example.edu", *student.Email)
}

func TestStudentRepositoryFindBySSNMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM students WHERE ssn = $1`)).
		WithArgs("S404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindBySSN(context.Background(), "S404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO students (ssn, name, email) VALUES ($1, $2, $3) RETURNING created_at`)).
		WithArgs("S1", "Alice", nil).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Student{SSN: "S1", Name: "Alice"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestTemplateRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT template_id, name FROM course_templates ORDER BY template_id ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"template_id", "name"}).AddRow("ALG", "Algorithms").AddRow("DBS", "Databases"))

	templates, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "ALG", templates[0].TemplateID)
}

func TestTemplateRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO course_templates (template_id, name) VALUES ($1, $2)`)).
		WithArgs("DBS", "Databases").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), &models.CourseTemplate{TemplateID: "DBS", Name: "Databases"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
