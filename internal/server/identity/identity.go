// Package identity resolves the caller of an HTTP request from its bearer token.
//
// Optional and required authentication share the same resolution path: the
// token is extracted from the Authorization header, validated, and its subject
// (the user's email) is looked up in storage.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/calcbread/internal/models"
	"github.com/iudanet/calcbread/internal/server/jwt"
	"github.com/iudanet/calcbread/internal/server/storage"
)

var (
	// ErrNoCredentials запрос не содержит заголовка Authorization
	ErrNoCredentials = errors.New("no credentials")

	// ErrMalformedHeader заголовок Authorization не в формате "Bearer <token>"
	ErrMalformedHeader = errors.New("malformed authorization header")

	// ErrUnknownSubject токен валиден, но пользователь не найден
	ErrUnknownSubject = errors.New("unknown token subject")

	// ErrUnauthenticated учетные данные обязательны, но не переданы
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidCredentials переданный токен не удалось принять
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenValidator проверяет access token
type TokenValidator interface {
	Validate(token string) (*jwt.Claims, error)
}

// UserLookup находит пользователя по email из subject токена
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Resolver определяет пользователя, от имени которого выполняется запрос
type Resolver struct {
	logger *slog.Logger
	tokens TokenValidator
	users  UserLookup
}

// NewResolver creates a new identity resolver
func NewResolver(logger *slog.Logger, tokens TokenValidator, users UserLookup) *Resolver {
	return &Resolver{
		logger: logger,
		tokens: tokens,
		users:  users,
	}
}

// ResolveOptional возвращает пользователя или nil, если запрос анонимный.
// Невалидный или просроченный токен не является ошибкой: запрос продолжается анонимно.
func (r *Resolver) ResolveOptional(req *http.Request) *models.User {
	user, err := r.resolve(req)
	if err == nil {
		return user
	}

	ctx := req.Context()
	switch {
	case errors.Is(err, ErrNoCredentials):
	case isCredentialError(err):
		r.logger.DebugContext(ctx, "Ignoring credentials for optional auth",
			slog.String("reason", reason(err)),
			slog.String("error", err.Error()),
		)
	default:
		r.logger.ErrorContext(ctx, "Failed to resolve identity",
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// ResolveRequired возвращает пользователя или ошибку.
// ErrUnauthenticated если токен не передан, ErrInvalidCredentials если он не принят.
// Прочие ошибки (например, недоступность хранилища) возвращаются как есть.
func (r *Resolver) ResolveRequired(req *http.Request) (*models.User, error) {
	user, err := r.resolve(req)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, ErrNoCredentials):
		return nil, ErrUnauthenticated
	case isCredentialError(err):
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	default:
		return nil, err
	}
}

func (r *Resolver) resolve(req *http.Request) (*models.User, error) {
	token, err := bearerToken(req.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}

	claims, err := r.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := r.users.GetUserByEmail(req.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoCredentials
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedHeader
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedHeader
	}

	return token, nil
}

func isCredentialError(err error) bool {
	return errors.Is(err, ErrMalformedHeader) ||
		errors.Is(err, jwt.ErrInvalidToken) ||
		errors.Is(err, jwt.ErrExpiredToken) ||
		errors.Is(err, ErrUnknownSubject)
}

// reason короткое имя причины для логов
func reason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		return "expired"
	case errors.Is(err, ErrUnknownSubject):
		return "unknown_subject"
	case errors.Is(err, ErrMalformedHeader):
		return "malformed_header"
	default:
		return "invalid"
	}
}
