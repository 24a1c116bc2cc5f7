package model

import "time"

// User represents a registered student.
type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	PasswordHash      string    `json:"-"`
	RegisteredCourses []string  `json:"registeredCourses"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// HasCourse reports whether courseID is already in the user's course list.
func (u *User) HasCourse(courseID string) bool {
	for _, id := range u.RegisteredCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

// Identity returns the minimal identity bound to a session.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Identity is the minimal view of a logged-in user.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SignupRequest represents a registration form submission.
type SignupRequest struct {
	Username        string `json:"username" form:"username" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Phone           string `json:"phone" form:"phone" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// LoginRequest represents a login form submission.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// MessageResponse is the success body shared by the form endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}
