package dto

// CreateStudentRequest registers a student.
type CreateStudentRequest struct {
	SSN   string  `json:"ssn" validate:"required,max=32"`
	Name  string  `json:"name" validate:"required,max=255"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// CreateTemplateRequest adds a course template to the catalogue.
type CreateTemplateRequest struct {
	TemplateID string `json:"template_id" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=255"`
}
