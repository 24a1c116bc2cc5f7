package repository

import (
	"context"
	"errors"

	"github.com/coursereg/coursereg-go/internal/model"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrCourseNotFound  = errors.New("course not found")
	ErrDuplicateCode   = errors.New("course code already exists")
	ErrNoSeatsLeft     = errors.New("no seats left")
	ErrAlreadyEnrolled = errors.New("course already in user's list")
)

// UserRepository persists user credentials and their course lists.
type UserRepository interface {
	// Create inserts a new user and sets the generated ID on it.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// Save overwrites the user's course list with user.RegisteredCourses.
	// Concurrent saves are last-write-wins.
	Save(ctx context.Context, user *model.User) error
	// AddCourse appends courseID to the user's list in one write. With unique
	// set, the append only happens if the course is not already listed and
	// ErrAlreadyEnrolled is returned otherwise.
	AddCourse(ctx context.Context, userID, courseID string, unique bool) error
}

// CourseRepository persists the course catalog and its seat counters.
type CourseRepository interface {
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, courses []model.Course) error
	// List returns every course in catalog (insertion) order.
	List(ctx context.Context) ([]model.Course, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	// Save overwrites the course's enrolled counter. Concurrent saves are
	// last-write-wins.
	Save(ctx context.Context, course *model.Course) error
	// ReserveSeat increments enrolled only if enrolled < capacity, as a single
	// storage operation. Returns ErrNoSeatsLeft when the course is full.
	ReserveSeat(ctx context.Context, id string) error
	// ReleaseSeat gives back a seat taken by ReserveSeat.
	ReleaseSeat(ctx context.Context, id string) error
}
