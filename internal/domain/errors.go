package domain

import "errors"

var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden indicates that the caller is authenticated but does not own the entity.
	ErrForbidden = errors.New("action forbidden")
	// ErrUnauthorized indicates a missing, invalid or expired credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput indicates that the provided input data is invalid.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrConflict indicates a uniqueness violation, e.g. a taken email.
	ErrConflict = errors.New("entity already exists")
	// ErrRepository indicates a generic data persistence error.
	ErrRepository = errors.New("repository error")
)
