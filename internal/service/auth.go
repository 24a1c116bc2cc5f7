package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/coursereg/coursereg-go/internal/crypto"
	"github.com/coursereg/coursereg-go/internal/model"
	"github.com/coursereg/coursereg-go/internal/repository"
)

var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService handles signup and credential checks.
type AuthService struct {
	users    repository.UserRepository
	validate *validator.Validate
	params   crypto.HashParams

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, validate *validator.Validate) *AuthService {
	return &AuthService{
		users:    users,
		validate: validate,
		params:   crypto.DefaultHashParams(),
	}
}

// Signup creates a new user account with an empty course list.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, invalidInput(err)
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("looking up email: %w", err)
	}

	hash, err := crypto.HashPasswordWithParams(req.Password, s.params)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:          req.Username,
		Email:             req.Email,
		Phone:             req.Phone,
		PasswordHash:      hash,
		RegisteredCourses: []string{},
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// Login checks credentials and returns the identity to bind to a session.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.Identity, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_, _ = crypto.VerifyPassword(req.Password, s.dummy())
			return model.Identity{}, ErrInvalidCredentials
		}
		return model.Identity{}, fmt.Errorf("looking up user: %w", err)
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.Identity{}, err
	}
	if !match {
		return model.Identity{}, ErrInvalidCredentials
	}

	return user.Identity(), nil
}

// dummy returns a hash verified against when the email is unknown, so that
// both failure paths do the same amount of work.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := crypto.HashPasswordWithParams("coursereg-dummy-password", s.params)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
