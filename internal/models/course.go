package models

import "time"

// CourseTemplate is the catalogue entry a course offering is created from.
type CourseTemplate struct {
	TemplateID string `db:"template_id" json:"template_id"`
	Name       string `db:"name" json:"name"`
}

// Course is one offering of a template in a semester.
type Course struct {
	ID          int64     `db:"id" json:"id"`
	TemplateID  string    `db:"template_id" json:"template_id"`
	Semester    string    `db:"semester" json:"semester"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	MaxStudents int       `db:"max_students" json:"max_students"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseListItem is the semester listing projection.
type CourseListItem struct {
	ID               int64  `db:"id" json:"id"`
	TemplateID       string `db:"template_id" json:"template_id"`
	Name             string `db:"name" json:"name"`
	Semester         string `db:"semester" json:"semester"`
	MaxStudents      int    `db:"max_students" json:"max_students"`
	NumberOfStudents int    `db:"number_of_students" json:"number_of_students"`
}

// CourseDetail is a single course with its active roster.
type CourseDetail struct {
	ID               int64           `db:"id" json:"id"`
	TemplateID       string          `db:"template_id" json:"template_id"`
	Name             string          `db:"name" json:"name"`
	Semester         string          `db:"semester" json:"semester"`
	StartDate        time.Time       `db:"start_date" json:"start_date"`
	EndDate          time.Time       `db:"end_date" json:"end_date"`
	MaxStudents      int             `db:"max_students" json:"max_students"`
	NumberOfStudents int             `db:"number_of_students" json:"number_of_students"`
	Students         []StudentRecord `db:"-" json:"students"`
}

// CourseFilter narrows the course listing.
type CourseFilter struct {
	Semester string
}
