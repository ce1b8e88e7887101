package models

import "time"

// Student is identified by SSN and must exist before any enrollment.
type Student struct {
	SSN       string    `db:"ssn" json:"ssn"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StudentRecord is the identity/name projection returned by roster and
// waiting list queries.
type StudentRecord struct {
	SSN  string `db:"ssn" json:"ssn"`
	Name string `db:"name" json:"name"`
}

// Record projects the student to its roster shape.
func (s *Student) Record() *StudentRecord {
	if s == nil {
		return nil
	}
	return &StudentRecord{SSN: s.SSN, Name: s.Name}
}
