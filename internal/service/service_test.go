package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/coursereg/coursereg-go/internal/crypto"
	"github.com/coursereg/coursereg-go/internal/events"
	"github.com/coursereg/coursereg-go/internal/model"
	"github.com/coursereg/coursereg-go/internal/repository"
)

// fastParams keeps password hashing cheap in tests.
var fastParams = crypto.HashParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Enrollment
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Enrollment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newTestAuthService(users repository.UserRepository) *AuthService {
	svc := NewAuthService(users, NewValidator())
	svc.params = fastParams
	return svc
}

// addCourse inserts a single course and returns it with its generated ID.
func addCourse(t *testing.T, repo repository.CourseRepository, c model.Course) model.Course {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.InsertMany(ctx, []model.Course{c}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	for _, got := range list {
		if got.Code == c.Code {
			return got
		}
	}
	t.Fatalf("course %q not found after insert", c.Code)
	return model.Course{}
}

func addUser(t *testing.T, repo repository.UserRepository, email string) *model.User {
	t.Helper()
	u := &model.User{Username: email, Email: email, Phone: "555-0100", PasswordHash: "x"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

var nopLogger = zerolog.Nop()
