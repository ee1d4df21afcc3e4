package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User is a registered account. PasswordHash never leaves the service.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRef is the populated owner projection attached to listings and reviews.
type UserRef struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// NewUser validates registration input and returns an unsaved user.
// Hashing is done by the caller.
func NewUser(username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: All fields are required", ErrInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: Invalid Email address", ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: Password must be at least %d characters long", ErrInvalidInput, MinPasswordLength)
	}

	now := time.Now().UTC()
	return &User{
		Username:  username,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Ref returns the owner projection for this user.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Username: u.Username, Email: u.Email}
}
