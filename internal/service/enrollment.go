package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursereg/coursereg-go/internal/events"
	"github.com/coursereg/coursereg-go/internal/model"
	"github.com/coursereg/coursereg-go/internal/repository"
)

// Enrollment strategies.
const (
	// StrategyAtomic reserves the seat with a single conditional increment and
	// gives it back if the user's list cannot be updated.
	StrategyAtomic = "atomic"
	// StrategySequential reads, checks and then writes course and user as two
	// independent saves. Concurrent requests can oversubscribe a course.
	StrategySequential = "sequential"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrCourseFull      = errors.New("course full")
	ErrAlreadyEnrolled = errors.New("already registered for course")
	ErrUserNotFound    = errors.New("user not found")
)

type EnrollmentOptions struct {
	Strategy string
	// Dedup rejects registering the same course twice.
	Dedup bool
}

// EnrollmentService handles course listing and capacity-limited registration.
type EnrollmentService struct {
	courses   repository.CourseRepository
	users     repository.UserRepository
	publisher events.Publisher
	logger    zerolog.Logger
	opts      EnrollmentOptions
	now       func() time.Time
}

// NewEnrollmentService creates a new EnrollmentService. An unknown strategy
// falls back to StrategyAtomic.
func NewEnrollmentService(
	courses repository.CourseRepository,
	users repository.UserRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
	opts EnrollmentOptions,
) *EnrollmentService {
	if opts.Strategy != StrategySequential {
		opts.Strategy = StrategyAtomic
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &EnrollmentService{
		courses:   courses,
		users:     users,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// ListCourses returns every course in catalog order.
func (s *EnrollmentService) ListCourses(ctx context.Context) ([]model.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	return courses, nil
}

// Enroll registers userID for courseID if the course has a free seat.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID string) error {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("loading course: %w", err)
	}
	if course.IsFull() {
		return ErrCourseFull
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("loading user: %w", err)
	}
	if s.opts.Dedup && user.HasCourse(course.ID) {
		return ErrAlreadyEnrolled
	}

	if s.opts.Strategy == StrategySequential {
		err = s.enrollSequential(ctx, course, user)
	} else {
		err = s.enrollAtomic(ctx, course, user)
	}
	if err != nil {
		return err
	}

	s.publish(ctx, user, course)
	return nil
}

func (s *EnrollmentService) enrollSequential(ctx context.Context, course *model.Course, user *model.User) error {
	course.Enrolled++
	user.RegisteredCourses = append(user.RegisteredCourses, course.ID)

	if err := s.courses.Save(ctx, course); err != nil {
		return fmt.Errorf("saving course: %w", err)
	}
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

func (s *EnrollmentService) enrollAtomic(ctx context.Context, course *model.Course, user *model.User) error {
	if err := s.courses.ReserveSeat(ctx, course.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoSeatsLeft):
			return ErrCourseFull
		case errors.Is(err, repository.ErrCourseNotFound):
			return ErrCourseNotFound
		default:
			return fmt.Errorf("reserving seat: %w", err)
		}
	}

	if err := s.users.AddCourse(ctx, user.ID, course.ID, s.opts.Dedup); err != nil {
		if releaseErr := s.courses.ReleaseSeat(ctx, course.ID); releaseErr != nil {
			s.logger.Error().Err(releaseErr).
				Str("course_id", course.ID).
				Str("user_id", user.ID).
				Msg("failed to release reserved seat")
		}
		switch {
		case errors.Is(err, repository.ErrAlreadyEnrolled):
			return ErrAlreadyEnrolled
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		default:
			return fmt.Errorf("adding course to user: %w", err)
		}
	}

	course.Enrolled++
	return nil
}

func (s *EnrollmentService) publish(ctx context.Context, user *model.User, course *model.Course) {
	event := events.Enrollment{
		UserID:     user.ID,
		CourseID:   course.ID,
		CourseCode: course.Code,
		Enrolled:   course.Enrolled,
		Capacity:   course.Capacity,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).
			Str("course_id", course.ID).
			Str("user_id", user.ID).
			Msg("failed to publish enrollment event")
	}
}
