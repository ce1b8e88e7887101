package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/courses-api/internal/dto"
	"github.com/noah-isme/courses-api/internal/models"
	"github.com/noah-isme/courses-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, courseID int64, req dto.StudentRequest) (*models.StudentRecord, error)
	Remove(ctx context.Context, courseID int64, ssn string) error
	Waitlist(ctx context.Context, courseID int64, req dto.StudentRequest) (*models.StudentRecord, error)
}

// EnrollmentHandler exposes the enrollment and waiting list mutations.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Enroll godoc
// @Summary Enroll a student
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param courseId path int true "Course ID"
// @Param payload body dto.StudentRequest true "Student"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /courses/{courseId}/students [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.enrollments.Enroll(c.Request.Context(), courseID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Remove godoc
// @Summary Remove a student from a course
// @Tags Enrollment
// @Param courseId path int true "Course ID"
// @Param ssn path string true "Student SSN"
// @Success 204
// @Failure 412 {object} response.Envelope
// @Router /courses/{courseId}/students/{ssn} [delete]
func (h *EnrollmentHandler) Remove(c *gin.Context) {
	courseID, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.enrollments.Remove(c.Request.Context(), courseID, c.Param("ssn")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Waitlist godoc
// @Summary Add a student to the waiting list
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param courseId path int true "Course ID"
// @Param payload body dto.StudentRequest true "Student"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /courses/{courseId}/waitinglist [post]
func (h *EnrollmentHandler) Waitlist(c *gin.Context) {
	courseID, err := courseIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	student, err := h.enrollments.Waitlist(c.Request.Context(), courseID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}
