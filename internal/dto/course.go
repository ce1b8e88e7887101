package dto

import "time"

// CreateCourseRequest defines the payload for opening a course offering.
type CreateCourseRequest struct {
	TemplateID  string    `json:"template_id" validate:"required,max=64"`
	Semester    string    `json:"semester" validate:"required,max=16"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	MaxStudents int       `json:"max_students" validate:"required,min=1"`
}

// UpdateCourseRequest changes the dates and capacity of a course.
type UpdateCourseRequest struct {
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	MaxStudents int       `json:"max_students" validate:"required,min=1"`
}

// StudentRequest identifies the student an enrollment operation targets.
type StudentRequest struct {
	SSN string `json:"ssn" validate:"required,max=32"`
}
