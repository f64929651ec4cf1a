package validation

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 50

	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxPasswordBytes bcrypt не принимает пароли длиннее 72 байт
	MaxPasswordBytes = 72

	// MaxEmailLen ограничение длины адреса по RFC 5321
	MaxEmailLen = 254
)

// NormalizeEmail приводит email к каноническому виду для хранения и поиска
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет, что email является корректным адресом без display name.
// Ожидает уже нормализованное значение.
func ValidateEmail(email string) error {
	if email == "" {
		return fieldError("email", "email cannot be empty")
	}
	if len(email) > MaxEmailLen {
		return fieldError("email", "email must not exceed %d characters", MaxEmailLen)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return &FieldError{Field: "email", Message: "value is not a valid email address", Err: err}
	}

	// mail.ParseAddress допускает адреса без домена верхнего уровня вида user@localhost
	domain := email[strings.LastIndex(email, "@")+1:]
	if !strings.Contains(domain, ".") {
		return fieldError("email", "value is not a valid email address")
	}

	return nil
}

// ValidateUsername проверяет длину username: 3-50 символов
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fieldError("username", "username cannot be empty")
	}

	length := utf8.RuneCountInString(username)
	if length < MinUsernameLen {
		return fieldError("username", "username must be at least %d characters long", MinUsernameLen)
	}
	if length > MaxUsernameLen {
		return fieldError("username", "username must not exceed %d characters", MaxUsernameLen)
	}

	return nil
}

// ValidatePassword проверяет политику паролей:
// минимум 8 символов, хотя бы одна буква и одна цифра, не более 72 байт
func ValidatePassword(password string) error {
	if password == "" {
		return fieldError("password", "password cannot be empty")
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return fieldError("password", "password must be at least %d characters", MinPasswordLen)
	}
	if len(password) > MaxPasswordBytes {
		return fieldError("password", "password must not exceed %d bytes", MaxPasswordBytes)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter {
		return fieldError("password", "password must contain a letter")
	}
	if !hasDigit {
		return fieldError("password", "password must contain a number")
	}

	return nil
}
