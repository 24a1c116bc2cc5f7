package events

import (
	"context"
	"time"
)

// Enrollment records a successful course registration.
type Enrollment struct {
	UserID     string    `json:"userId"`
	CourseID   string    `json:"courseId"`
	CourseCode string    `json:"courseCode"`
	Enrolled   int       `json:"enrolled"`
	Capacity   int       `json:"capacity"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers enrollment events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Enrollment) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Enrollment) error { return nil }

func (Noop) Close() error { return nil }
