package models

import "time"

// MembershipStatus is the state of a student's relation to a course. The
// absence of a Membership row is the fourth, "not associated", state.
type MembershipStatus string

const (
	MembershipEnrolled   MembershipStatus = "ENROLLED"
	MembershipRemoved    MembershipStatus = "REMOVED"
	MembershipWaitlisted MembershipStatus = "WAITLISTED"
)

// Membership is the single row relating a student to a course. There is at
// most one per (course, student) pair; enrollment history survives removal
// and waitlisting through the timestamps.
type Membership struct {
	ID           string           `db:"id" json:"id"`
	CourseID     int64            `db:"course_id" json:"course_id"`
	StudentSSN   string           `db:"student_ssn" json:"student_ssn"`
	Status       MembershipStatus `db:"status" json:"status"`
	EnrolledAt   *time.Time       `db:"enrolled_at" json:"enrolled_at,omitempty"`
	RemovedAt    *time.Time       `db:"removed_at" json:"removed_at,omitempty"`
	WaitlistedAt *time.Time       `db:"waitlisted_at" json:"waitlisted_at,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// Active reports whether the student currently occupies a seat.
func (m *Membership) Active() bool {
	return m != nil && m.Status == MembershipEnrolled
}

// Waiting reports whether the student is on the course's waiting list.
func (m *Membership) Waiting() bool {
	return m != nil && m.Status == MembershipWaitlisted
}
