package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/courses-api/internal/dto"
	"github.com/noah-isme/courses-api/internal/models"
	"github.com/noah-isme/courses-api/internal/service"
	"github.com/noah-isme/courses-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context, semester string) ([]models.CourseListItem, error)
	Get(ctx context.Context, id int64) (*models.CourseDetail, error)
	Roster(ctx context.Context, id int64) ([]models.StudentRecord, error)
	WaitingList(ctx context.Context, id int64) ([]models.StudentRecord, error)
	Create(ctx context.Context, req dto.CreateCourseRequest) (*models.CourseDetail, error)
	Update(ctx context.Context, id int64, req dto.UpdateCourseRequest) (*models.CourseDetail, error)
	Delete(ctx context.Context, id int64) error
	ExportRoster(ctx context.Context, id int64, format string) (*service.RosterExport, error)
}

// CourseHandler exposes course listing, detail and maintenance endpoints.
type CourseHandler struct {
	courses courseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses of a semester
// @Tags Courses
// @Produce json
// @Param semester query string false "Semester tag, defaults to the configured semester"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context(), c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Get godoc
// @Summary Get course detail with roster
// @Tags Courses
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{courseId} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Create godoc
// @Summary Add a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course dates and capacity
// @Tags Courses
// @Accept json
// @Produce json
// @Param courseId path int true "Course ID"
// @Param payload body dto.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	id, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Delete a course
// @Tags Courses
// @Param courseId path int true "Course ID"
// @Success 204
// @Router /courses/{courseId} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	id, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.courses.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Roster godoc
// @Summary List actively enrolled students
// @Tags Enrollment
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/students [get]
func (h *CourseHandler) Roster(c *gin.Context) {
	id, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.courses.Roster(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// WaitingList godoc
// @Summary List the waiting list in arrival order
// @Tags Enrollment
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId}/waitinglist [get]
func (h *CourseHandler) WaitingList(c *gin.Context) {
	id, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.courses.WaitingList(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// ExportRoster godoc
// @Summary Download the roster
// @Tags Courses
// @Produce text/csv
// @Produce application/pdf
// @Param courseId path int true "Course ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /courses/{courseId}/students/export [get]
func (h *CourseHandler) ExportRoster(c *gin.Context) {
	id, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.courses.ExportRoster(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}
