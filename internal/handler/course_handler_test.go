package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/courses-api/internal/dto"
	"github.com/noah-isme/courses-api/internal/models"
	"github.com/noah-isme/courses-api/internal/service"
	appErrors "github.com/noah-isme/courses-api/pkg/errors"
)

type courseServiceMock struct {
	listResp     []models.CourseListItem
	lastSemester string
	getResp      *models.CourseDetail
	getErr       error
	rosterResp   []models.StudentRecord
	waitingResp  []models.StudentRecord
	createReq    dto.CreateCourseRequest
	deleteErr    error
	exportResp   *service.RosterExport
	lastFormat   string
	getCalled    bool
}

func (m *courseServiceMock) List(_ context.Context, semester string) ([]models.CourseListItem, error) {
	m.lastSemester = semester
	return m.listResp, nil
}

func (m *courseServiceMock) Get(_ context.Context, _ int64) (*models.CourseDetail, error) {
	m.getCalled = true
	return m.getResp, m.getErr
}

func (m *courseServiceMock) Roster(_ context.Context, _ int64) ([]models.StudentRecord, error) {
	return m.rosterResp, nil
}

func (m *courseServiceMock) WaitingList(_ context.Context, _ int64) ([]models.StudentRecord, error) {
	return m.waitingResp, nil
}

func (m *courseServiceMock) Create(_ context.Context, req dto.CreateCourseRequest) (*models.CourseDetail, error) {
	m.createReq = req
	return &models.CourseDetail{ID: 5, TemplateID: req.TemplateID, Semester: req.Semester, MaxStudents: req.MaxStudents}, nil
}

func (m *courseServiceMock) Update(_ context.Context, id int64, req dto.UpdateCourseRequest) (*models.CourseDetail, error) {
	return &models.CourseDetail{ID: id, MaxStudents: req.MaxStudents}, nil
}

func (m *courseServiceMock) Delete(_ context.Context, _ int64) error {
	return m.deleteErr
}

func (m *courseServiceMock) ExportRoster(_ context.Context, _ int64, format string) (*service.RosterExport, error) {
	m.lastFormat = format
	return m.exportResp, nil
}

func newCourseRouter(svc *courseServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCourseHandler(svc)
	r := gin.New()
	r.GET("/courses", h.List)
	r.POST("/courses", h.Create)
	r.GET("/courses/:courseId", h.Get)
	r.PUT("/courses/:courseId", h.Update)
	r.DELETE("/courses/:courseId", h.Delete)
	r.GET("/courses/:courseId/students", h.Roster)
	r.GET("/courses/:courseId/students/export", h.ExportRoster)
	r.GET("/courses/:courseId/waitinglist", h.WaitingList)
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCourseHandlerListPassesSemester(t *testing.T) {
	svc := &courseServiceMock{listResp: []models.CourseListItem{{ID: 1, Name: "Databases", NumberOfStudents: 3}}}
	r := newCourseRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses?semester=20181", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "20181", svc.lastSemester)
	var items []models.CourseListItem
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["data"], &items))
	assert.Equal(t, 3, items[0].NumberOfStudents)
}

func TestCourseHandlerGetRejectsNonNumericID(t *testing.T) {
	svc := &courseServiceMock{}
	r := newCourseRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.getCalled)
}

func TestCourseHandlerGetNotFound(t *testing.T) {
	svc := &courseServiceMock{getErr: appErrors.Clone(appErrors.ErrCourseNotFound, "course 9 not found")}
	r := newCourseRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/9", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var appErr appErrors.Error
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["error"], &appErr))
	assert.Equal(t, "COURSE_NOT_FOUND", appErr.Code)
}

func TestCourseHandlerCreate(t *testing.T) {
	svc := &courseServiceMock{}
	r := newCourseRouter(svc)

	body := `{"template_id":"DBS","semester":"20181","start_date":"2018-01-10T00:00:00Z","end_date":"2018-05-30T00:00:00Z","max_students":20}`
	req := httptest.NewRequest(http.MethodPost, "/courses", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "DBS", svc.createReq.TemplateID)
	assert.Equal(t, 20, svc.createReq.MaxStudents)
}

func TestCourseHandlerCreateMalformedBody(t *testing.T) {
	r := newCourseRouter(&courseServiceMock{})

	req := httptest.NewRequest(http.MethodPost, "/courses", bytes.NewBufferString(`{"template_id":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseHandlerDelete(t *testing.T) {
	r := newCourseRouter(&courseServiceMock{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/courses/3", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	r = newCourseRouter(&courseServiceMock{deleteErr: appErrors.Clone(appErrors.ErrCourseNotFound, "")})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/courses/3", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourseHandlerWaitingList(t *testing.T) {
	svc := &courseServiceMock{waitingResp: []models.StudentRecord{{SSN: "S2", Name: "Bob"}}}
	r := newCourseRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/1/waitinglist", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var students []models.StudentRecord
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w)["data"], &students))
	assert.Equal(t, []models.StudentRecord{{SSN: "S2", Name: "Bob"}}, students)
}

func TestCourseHandlerExportRoster(t *testing.T) {
	svc := &courseServiceMock{exportResp: &service.RosterExport{Filename: "course-1-roster.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("SSN,Name\nS1,Alice\n")}}
	r := newCourseRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/1/students/export?format=csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", svc.lastFormat)
	assert.Equal(t, `attachment; filename="course-1-roster.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "S1,Alice")
}
