package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursereg/coursereg-go/internal/model"
	"github.com/coursereg/coursereg-go/internal/repository"
)

type enrollFixture struct {
	courses   *repository.MemoryCourseRepository
	users     *repository.MemoryUserRepository
	publisher *recordingPublisher
}

func newEnrollFixture() *enrollFixture {
	return &enrollFixture{
		courses:   repository.NewMemoryCourseRepository(),
		users:     repository.NewMemoryUserRepository(),
		publisher: &recordingPublisher{},
	}
}

func (f *enrollFixture) service(opts EnrollmentOptions) *EnrollmentService {
	return NewEnrollmentService(f.courses, f.users, f.publisher, nopLogger, opts)
}

var strategies = []string{StrategyAtomic, StrategySequential}

func TestEnrollSucceeds(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			ctx := context.Background()
			f := newEnrollFixture()
			course := addCourse(t, f.courses, model.Course{Code: "SEM", Capacity: 2})
			user := addUser(t, f.users, "alice@example.com")

			svc := f.service(EnrollmentOptions{Strategy: strategy})
			require.NoError(t, svc.Enroll(ctx, user.ID, course.ID))

			got, err := f.courses.GetByID(ctx, course.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, got.Enrolled)

			u, err := f.users.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{course.ID}, u.RegisteredCourses)

			require.Equal(t, 1, f.publisher.count())
			assert.Equal(t, course.ID, f.publisher.events[0].CourseID)
			assert.Equal(t, "SEM", f.publisher.events[0].CourseCode)
			assert.Equal(t, 1, f.publisher.events[0].Enrolled)
		})
	}
}

func TestEnrollCourseFull(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			ctx := context.Background()
			f := newEnrollFixture()
			course := addCourse(t, f.courses, model.Course{Code: "FULL", Capacity: 3, Enrolled: 3})
			user := addUser(t, f.users, "alice@example.com")

			err := f.service(EnrollmentOptions{Strategy: strategy}).Enroll(ctx, user.ID, course.ID)
			require.ErrorIs(t, err, ErrCourseFull)

			got, _ := f.courses.GetByID(ctx, course.ID)
			assert.Equal(t, 3, got.Enrolled)
			u, _ := f.users.GetByID(ctx, user.ID)
			assert.Empty(t, u.RegisteredCourses)
			assert.Zero(t, f.publisher.count())
		})
	}
}

func TestEnrollUnknownCourse(t *testing.T) {
	ctx := context.Background()
	f := newEnrollFixture()
	course := addCourse(t, f.courses, model.Course{Code: "C1", Capacity: 5})
	user := addUser(t, f.users, "alice@example.com")

	for _, id := range []string{"does-not-exist", "", "64b7f0c2e4b0a1a2b3c4d5e6"} {
		err := f.service(EnrollmentOptions{}).Enroll(ctx, user.ID, id)
		assert.ErrorIs(t, err, ErrCourseNotFound, id)
	}

	got, _ := f.courses.GetByID(ctx, course.ID)
	assert.Equal(t, 0, got.Enrolled)
	u, _ := f.users.GetByID(ctx, user.ID)
	assert.Empty(t, u.RegisteredCourses)
}

func TestEnrollUnknownUser(t *testing.T) {
	ctx := context.Background()
	f := newEnrollFixture()
	course := addCourse(t, f.courses, model.Course{Code: "C1", Capacity: 5})

	err := f.service(EnrollmentOptions{}).Enroll(ctx, "ghost", course.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	got, _ := f.courses.GetByID(ctx, course.ID)
	assert.Equal(t, 0, got.Enrolled)
}

func TestEnrollDuplicateAllowedByDefault(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			ctx := context.Background()
			f := newEnrollFixture()
			course := addCourse(t, f.courses, model.Course{Code: "C1", Capacity: 5})
			user := addUser(t, f.users, "alice@example.com")
			svc := f.service(EnrollmentOptions{Strategy: strategy})

			require.NoError(t, svc.Enroll(ctx, user.ID, course.ID))
			require.NoError(t, svc.Enroll(ctx, user.ID, course.ID))

			got, _ := f.courses.GetByID(ctx, course.ID)
			assert.Equal(t, 2, got.Enrolled)
			u, _ := f.users.GetByID(ctx, user.ID)
			assert.Equal(t, []string{course.ID, course.ID}, u.RegisteredCourses)
		})
	}
}

func TestEnrollDedupRejectsSecondRegistration(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy, func(t *testing.T) {
			ctx := context.Background()
			f := newEnrollFixture()
			course := addCourse(t, f.courses, model.Course{Code: "C1", Capacity: 5})
			user := addUser(t, f.users, "alice@example.com")
			svc := f.service(EnrollmentOptions{Strategy: strategy, Dedup: true})

			require.NoError(t, svc.Enroll(ctx, user.ID, course.ID))
			require.ErrorIs(t, svc.Enroll(ctx, user.ID, course.ID), ErrAlreadyEnrolled)

			got, _ := f.courses.GetByID(ctx, course.ID)
			assert.Equal(t, 1, got.Enrolled)
			u, _ := f.users.GetByID(ctx, user.ID)
			assert.Equal(t, []string{course.ID}, u.RegisteredCourses)
		})
	}
}

// failingUserRepo fails every AddCourse after the course has been reserved.
type failingUserRepo struct {
	*repository.MemoryUserRepository
	err error
}

func (r failingUserRepo) AddCourse(context.Context, string, string, bool) error {
	return r.err
}

func TestEnrollAtomicReleasesSeatOnUserFailure(t *testing.T) {
	ctx := context.Background()
	f := newEnrollFixture()
	course := addCourse(t, f.courses, model.Course{Code: "C1", Capacity: 1})
	user := addUser(t, f.users, "alice@example.com")

	boom := errors.New("write conflict")
	svc := NewEnrollmentService(f.courses, failingUserRepo{f.users, boom}, f.publisher, nopLogger, EnrollmentOptions{})

	err := svc.Enroll(ctx, user.ID, course.ID)
	require.ErrorIs(t, err, boom)

	got, _ := f.courses.GetByID(ctx, course.ID)
	assert.Equal(t, 0, got.Enrolled)
	assert.Zero(t, f.publisher.count())
}

func TestEnrollAtomicNeverOversubscribes(t *testing.T) {
	ctx := context.Background()
	f := newEnrollFixture()
	const capacity = 5
	course := addCourse(t, f.courses, model.Course{Code: "HOT", Capacity: capacity})

	userIDs := make([]string, 50)
	for i := range userIDs {
		userIDs[i] = addUser(t, f.users, fmt.Sprintf("student%d@example.com", i)).ID
	}

	svc := f.service(EnrollmentOptions{Strategy: StrategyAtomic})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
		full    int
	)
	for _, id := range userIDs {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			err := svc.Enroll(ctx, userID, course.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted++
			case errors.Is(err, ErrCourseFull):
				full++
			default:
				t.Errorf("Enroll() unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, capacity, granted)
	assert.Equal(t, len(userIDs)-capacity, full)

	got, err := f.courses.GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, got.Enrolled)

	enrolled := 0
	for _, id := range userIDs {
		u, err := f.users.GetByID(ctx, id)
		require.NoError(t, err)
		enrolled += len(u.RegisteredCourses)
	}
	assert.Equal(t, capacity, enrolled)
}

func TestEnrollPublishFailureIsNotReturned(t *testing.T) {
	ctx := context.Background()
	f := newEnrollFixture()
	f.publisher.err = errors.New("broker down")
	course := addCourse(t, f.courses, model.Course{Code: "C1", Capacity: 5})
	user := addUser(t, f.users, "alice@example.com")

	require.NoError(t, f.service(EnrollmentOptions{}).Enroll(ctx, user.ID, course.ID))
	assert.Equal(t, 1, f.publisher.count())
}

func TestListCourses(t *testing.T) {
	ctx := context.Background()
	f := newEnrollFixture()
	addCourse(t, f.courses, model.Course{Code: "A", Capacity: 1})
	addCourse(t, f.courses, model.Course{Code: "B", Capacity: 1})

	list, err := f.service(EnrollmentOptions{}).ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Code)
	assert.Equal(t, "B", list[1].Code)
}

func TestNewEnrollmentServiceDefaults(t *testing.T) {
	f := newEnrollFixture()
	svc := NewEnrollmentService(f.courses, f.users, nil, nopLogger, EnrollmentOptions{Strategy: "bogus"})
	assert.Equal(t, StrategyAtomic, svc.opts.Strategy)
	assert.NotNil(t, svc.publisher)
}
