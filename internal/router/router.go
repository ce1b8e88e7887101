// Package router binds the HTTP handlers to their paths.
package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/courses-api/internal/handler"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Courses     *handler.CourseHandler
	Enrollments *handler.EnrollmentHandler
	Students    *handler.StudentHandler
	Templates   *handler.TemplateHandler
	Metrics     *handler.MetricsHandler
}

// Options tunes route registration.
type Options struct {
	APIPrefix  string
	EnableDocs bool
}

// Register mounts the probes, metrics, docs and API routes on r.
func Register(r *gin.Engine, h Handlers, opts Options) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(opts.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	api := r.Group(prefix)

	courses := api.Group("/courses")
	{
		courses.GET("", h.Courses.List)
		courses.POST("", h.Courses.Create)
		courses.GET("/:courseId", h.Courses.Get)
		courses.PUT("/:courseId", h.Courses.Update)
		courses.DELETE("/:courseId", h.Courses.Delete)

		courses.GET("/:courseId/students", h.Courses.Roster)
		courses.GET("/:courseId/students/export", h.Courses.ExportRoster)
		courses.POST("/:courseId/students", h.Enrollments.Enroll)
		courses.DELETE("/:courseId/students/:ssn", h.Enrollments.Remove)

		courses.GET("/:courseId/waitinglist", h.Courses.WaitingList)
		courses.POST("/:courseId/waitinglist", h.Enrollments.Waitlist)
	}

	students := api.Group("/students")
	{
		students.GET("", h.Students.List)
		students.POST("", h.Students.Create)
		students.GET("/:ssn", h.Students.Get)
	}

	templates := api.Group("/templates")
	{
		templates.GET("", h.Templates.List)
		templates.POST("", h.Templates.Create)
	}
}
