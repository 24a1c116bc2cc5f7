package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/coursereg/coursereg-go/internal/model"
	"github.com/coursereg/coursereg-go/internal/repository"
)

// DefaultCourses is the catalog inserted into an empty store.
func DefaultCourses() []model.Course {
	return []model.Course{
		{
			Code:        "CS101",
			Title:       "Intro to CS",
			Description: "Basics",
			Credits:     3,
			Instructor:  "Dr. Smith",
			Schedule:    "Mon/Wed 10:00",
			Capacity:    50,
		},
		{
			Code:        "MATH201",
			Title:       "Calculus I",
			Description: "Math",
			Credits:     4,
			Instructor:  "Prof. John",
			Schedule:    "Tue/Thu 1:00",
			Capacity:    40,
		},
	}
}

// CatalogService manages the course catalog contents.
type CatalogService struct {
	courses  repository.CourseRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewCatalogService(courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) *CatalogService {
	return &CatalogService{courses: courses, validate: validate, logger: logger}
}

// Seed inserts DefaultCourses when the catalog is empty and returns how many
// courses were inserted.
func (s *CatalogService) Seed(ctx context.Context) (int, error) {
	n, err := s.courses.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting courses: %w", err)
	}
	if n > 0 {
		s.logger.Debug().Int64("courses", n).Msg("catalog already populated, skipping seed")
		return 0, nil
	}

	courses := DefaultCourses()
	for i := range courses {
		if err := s.validate.StructCtx(ctx, courses[i]); err != nil {
			return 0, invalidInput(err)
		}
	}

	if err := s.courses.InsertMany(ctx, courses); err != nil {
		return 0, fmt.Errorf("seeding courses: %w", err)
	}

	s.logger.Info().Int("courses", len(courses)).Msg("courses seeded")
	return len(courses), nil
}
