package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/courses-api/internal/handler"
)

func registeredRoutes(opts Options) (*gin.Engine, map[string]bool) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, Handlers{
		Courses:     handler.NewCourseHandler(nil),
		Enrollments: handler.NewEnrollmentHandler(nil),
		Students:    handler.NewStudentHandler(nil),
		Templates:   handler.NewTemplateHandler(nil),
		Metrics:     handler.NewMetricsHandler(nil, nil),
	}, opts)
	seen := map[string]bool{}
	for _, route := range r.Routes() {
		seen[route.Method+" "+route.Path] = true
	}
	return r, seen
}

func TestRegisterMountsCourseRoutesUnderPrefix(t *testing.T) {
	_, routes := registeredRoutes(Options{APIPrefix: "/api/v1"})

	for _, want := range []string{
		"GET /api/v1/courses",
		"POST /api/v1/courses",
		"GET /api/v1/courses/:courseId",
		"PUT /api/v1/courses/:courseId",
		"DELETE /api/v1/courses/:courseId",
		"GET /api/v1/courses/:courseId/students",
		"POST /api/v1/courses/:courseId/students",
		"DELETE /api/v1/courses/:courseId/students/:ssn",
		"GET /api/v1/courses/:courseId/students/export",
		"GET /api/v1/courses/:courseId/waitinglist",
		"POST /api/v1/courses/:courseId/waitinglist",
		"GET /api/v1/students",
		"POST /api/v1/students",
		"GET /api/v1/students/:ssn",
		"GET /api/v1/templates",
		"POST /api/v1/templates",
		"GET /health",
		"GET /ready",
		"GET /metrics",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
	assert.False(t, routes["GET /docs/*any"])
}

func TestRegisterWithoutPrefixAndWithDocs(t *testing.T) {
	r, routes := registeredRoutes(Options{EnableDocs: true})
	assert.True(t, routes["GET /courses"])
	assert.True(t, routes["GET /docs/*any"])

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
