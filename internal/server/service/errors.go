package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound запрошенная запись не существует
	ErrNotFound = errors.New("not found")

	// ErrConflict нарушение уникальности (email или username)
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials неверный email или пароль.
	// Причина намеренно не уточняется, чтобы не раскрывать существование аккаунта.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ConflictError reports a uniqueness conflict for a specific logical field.
type ConflictError struct {
	Field   string // "email" или "username"
	Message string // сообщение для клиента
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: %s", ErrConflict, e.Field)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

func emailConflict() error {
	return &ConflictError{Field: "email", Message: "Email already registered"}
}

func usernameConflict() error {
	return &ConflictError{Field: "username", Message: "Username taken"}
}
