package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coursereg/coursereg-go/internal/model"
)

// MemoryUserRepository keeps users in process memory.
type MemoryUserRepository struct {
	mu      sync.Mutex
	users   map[string]*model.User
	byEmail map[string]string
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.RegisteredCourses == nil {
		user.RegisteredCourses = []string{}
	}

	r.users[user.ID] = cloneUser(user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(r.users[id]), nil
}

func (r *MemoryUserRepository) Save(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	stored.RegisteredCourses = slices.Clone(user.RegisteredCourses)
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryUserRepository) AddCourse(_ context.Context, userID, courseID string, unique bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if unique && stored.HasCourse(courseID) {
		return ErrAlreadyEnrolled
	}
	stored.RegisteredCourses = append(stored.RegisteredCourses, courseID)
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

// MemoryCourseRepository keeps the catalog in process memory.
type MemoryCourseRepository struct {
	mu      sync.Mutex
	courses map[string]*model.Course
	order   []string
}

// NewMemoryCourseRepository creates an empty MemoryCourseRepository.
func NewMemoryCourseRepository() *MemoryCourseRepository {
	return &MemoryCourseRepository{courses: make(map[string]*model.Course)}
}

func (r *MemoryCourseRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.order)), nil
}

func (r *MemoryCourseRepository) InsertMany(_ context.Context, courses []model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(courses))
	for _, c := range r.courses {
		seen[c.Code] = true
	}
	for _, c := range courses {
		if seen[c.Code] {
			return ErrDuplicateCode
		}
		seen[c.Code] = true
	}

	for i := range courses {
		c := courses[i]
		c.ID = uuid.NewString()
		r.courses[c.ID] = &c
		r.order = append(r.order, c.ID)
	}
	return nil
}

func (r *MemoryCourseRepository) List(_ context.Context) ([]model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	courses := make([]model.Course, 0, len(r.order))
	for _, id := range r.order {
		courses = append(courses, *r.courses[id])
	}
	return courses, nil
}

func (r *MemoryCourseRepository) GetByID(_ context.Context, id string) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.courses[id]
	if !ok {
		return nil, ErrCourseNotFound
	}
	course := *c
	return &course, nil
}

func (r *MemoryCourseRepository) Save(_ context.Context, course *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.courses[course.ID]
	if !ok {
		return ErrCourseNotFound
	}
	c.Enrolled = course.Enrolled
	return nil
}

func (r *MemoryCourseRepository) ReserveSeat(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.courses[id]
	if !ok {
		return ErrCourseNotFound
	}
	if c.IsFull() {
		return ErrNoSeatsLeft
	}
	c.Enrolled++
	return nil
}

func (r *MemoryCourseRepository) ReleaseSeat(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.courses[id]
	if !ok {
		return ErrCourseNotFound
	}
	if c.Enrolled > 0 {
		c.Enrolled--
	}
	return nil
}

func cloneUser(u *model.User) *model.User {
	clone := *u
	clone.RegisteredCourses = slices.Clone(u.RegisteredCourses)
	if clone.RegisteredCourses == nil {
		clone.RegisteredCourses = []string{}
	}
	return &clone
}
