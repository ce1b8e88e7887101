// Package enrollment holds the rules that move a student between the
// not-associated, enrolled, removed and waitlisted states of a course.
//
// Every operation receives the Store it reads and writes through, so callers
// decide the transaction scope. The rules assume the store serializes
// operations on the same course for the duration of one call.
package enrollment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/courses-api/internal/models"
	appErrors "github.com/noah-isme/courses-api/pkg/errors"
)

// Store is the transaction-scoped persistence the rules operate on. Lookups
// return a nil record and a nil error when nothing matches.
type Store interface {
	LockCourse(ctx context.Context, courseID int64) (*models.Course, error)
	FindStudent(ctx context.Context, ssn string) (*models.Student, error)
	CountEnrolled(ctx context.Context, courseID int64) (int, error)
	FindMembership(ctx context.Context, courseID int64, ssn string) (*models.Membership, error)
	InsertMembership(ctx context.Context, membership *models.Membership) error
	UpdateMembership(ctx context.Context, membership *models.Membership) error
}

// Transition names the state change an operation performed.
type Transition string

const (
	TransitionCreated     Transition = "created"
	TransitionReactivated Transition = "reactivated"
	TransitionDequeued    Transition = "dequeued"
	TransitionRemoved     Transition = "removed"
	TransitionWaitlisted  Transition = "waitlisted"
)

// Result describes a successful operation.
type Result struct {
	Student    *models.StudentRecord
	Membership *models.Membership
	Transition Transition
}

// Engine applies the enrollment rules.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for membership timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides how new membership ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// NewEngine constructs an Engine using UTC wall time and random UUIDs.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enroll gives the student a seat in the course.
//
// Capacity is checked before the duplicate check, so a full course reports
// CourseFull even to a student who already holds a seat. A removed
// enrollment is reactivated in place and a waitlisted student is taken off
// the waiting list by the same row moving to ENROLLED.
func (e *Engine) Enroll(ctx context.Context, store Store, courseID int64, ssn string) (*Result, error) {
	course, student, err := resolve(ctx, store, courseID, ssn)
	if err != nil {
		return nil, err
	}

	enrolled, err := store.CountEnrolled(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count enrolled students")
	}
	if enrolled >= course.MaxStudents {
		return nil, appErrors.Clone(appErrors.ErrCourseFull, fmt.Sprintf("course %d is full (%d of %d seats taken)", course.ID, enrolled, course.MaxStudents))
	}

	current, err := store.FindMembership(ctx, course.ID, student.SSN)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrollment")
	}

	now := e.now()
	if current == nil {
		membership := &models.Membership{
			ID:         e.newID(),
			CourseID:   course.ID,
			StudentSSN: student.SSN,
			Status:     models.MembershipEnrolled,
			EnrolledAt: &now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := store.InsertMembership(ctx, membership); err != nil {
			return nil, appErrors.Internal(err, "failed to create enrollment")
		}
		return &Result{Student: student.Record(), Membership: membership, Transition: TransitionCreated}, nil
	}

	if current.Active() {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, fmt.Sprintf("student %s is already enrolled in course %d", student.SSN, course.ID))
	}

	transition := TransitionReactivated
	if current.Waiting() {
		transition = TransitionDequeued
	}
	current.Status = models.MembershipEnrolled
	current.EnrolledAt = &now
	current.UpdatedAt = now
	if err := store.UpdateMembership(ctx, current); err != nil {
		return nil, appErrors.Internal(err, "failed to reactivate enrollment")
	}
	return &Result{Student: student.Record(), Membership: current, Transition: transition}, nil
}

// Remove soft-removes an active enrollment. The waiting list is untouched
// and nobody is promoted into the freed seat.
func (e *Engine) Remove(ctx context.Context, store Store, courseID int64, ssn string) (*Result, error) {
	course, student, err := resolve(ctx, store, courseID, ssn)
	if err != nil {
		return nil, err
	}

	current, err := store.FindMembership(ctx, course.ID, student.SSN)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrollment")
	}
	if !current.Active() {
		return nil, appErrors.Clone(appErrors.ErrNotEnrolled, fmt.Sprintf("student %s is not enrolled in course %d", student.SSN, course.ID))
	}

	now := e.now()
	current.Status = models.MembershipRemoved
	current.RemovedAt = &now
	current.UpdatedAt = now
	if err := store.UpdateMembership(ctx, current); err != nil {
		return nil, appErrors.Internal(err, "failed to remove enrollment")
	}
	return &Result{Student: student.Record(), Membership: current, Transition: TransitionRemoved}, nil
}

// Waitlist puts the student on the course's waiting list. The list is
// unbounded and ignores capacity.
func (e *Engine) Waitlist(ctx context.Context, store Store, courseID int64, ssn string) (*Result, error) {
	course, student, err := resolve(ctx, store, courseID, ssn)
	if err != nil {
		return nil, err
	}

	current, err := store.FindMembership(ctx, course.ID, student.SSN)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrollment")
	}
	switch {
	case current.Waiting():
		return nil, appErrors.Clone(appErrors.ErrAlreadyWaitlisted, fmt.Sprintf("student %s is already on the waiting list for course %d", student.SSN, course.ID))
	case current.Active():
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, fmt.Sprintf("student %s is already enrolled in course %d", student.SSN, course.ID))
	}

	now := e.now()
	if current == nil {
		membership := &models.Membership{
			ID:           e.newID(),
			CourseID:     course.ID,
			StudentSSN:   student.SSN,
			Status:       models.MembershipWaitlisted,
			WaitlistedAt: &now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := store.InsertMembership(ctx, membership); err != nil {
			return nil, appErrors.Internal(err, "failed to add to waiting list")
		}
		return &Result{Student: student.Record(), Membership: membership, Transition: TransitionWaitlisted}, nil
	}

	current.Status = models.MembershipWaitlisted
	current.WaitlistedAt = &now
	current.UpdatedAt = now
	if err := store.UpdateMembership(ctx, current); err != nil {
		return nil, appErrors.Internal(err, "failed to add to waiting list")
	}
	return &Result{Student: student.Record(), Membership: current, Transition: TransitionWaitlisted}, nil
}

// resolve loads the course, then the student, before anything is mutated.
func resolve(ctx context.Context, store Store, courseID int64, ssn string) (*models.Course, *models.Student, error) {
	course, err := store.LockCourse(ctx, courseID)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to load course")
	}
	if course == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrCourseNotFound, fmt.Sprintf("course %d not found", courseID))
	}
	student, err := store.FindStudent(ctx, ssn)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to load student")
	}
	if student == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrStudentNotFound, fmt.Sprintf("student %s not found", ssn))
	}
	return course, student, nil
}
