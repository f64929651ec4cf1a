package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates that user with this email already exists
	ErrEmailTaken = errors.New("email already registered")

	// ErrUsernameTaken indicates that user with this username already exists
	ErrUsernameTaken = errors.New("username taken")

	// ErrCalculationNotFound indicates that calculation was not found
	ErrCalculationNotFound = errors.New("calculation not found")
)
