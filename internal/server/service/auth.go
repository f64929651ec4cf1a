package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/calcbread/internal/models"
	"github.com/iudanet/calcbread/internal/server/storage"
	"github.com/iudanet/calcbread/internal/validation"
)

// PasswordHasher хеширует и проверяет пароли
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer выпускает access token для subject
type TokenIssuer interface {
	Issue(subject string) (token string, expiresIn int64, err error)
}

// RegisterInput данные регистрации
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Token выпущенный access token
type Token struct {
	AccessToken string
	ExpiresIn   int64 // секунды
}

// AuthService регистрирует пользователей и выдает токены
type AuthService struct {
	logger *slog.Logger
	users  storage.UserStorage
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(logger *slog.Logger, users storage.UserStorage, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		logger: logger,
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register создает аккаунт и возвращает токен для нового пользователя
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Token, error) {
	email := validation.NormalizeEmail(in.Email)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	// Email проверяется раньше username; UNIQUE в хранилище остается страховкой от гонок
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, emailConflict()
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.users.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, usernameConflict()
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Username:     in.Username,
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrEmailTaken):
			return nil, emailConflict()
		case errors.Is(err, storage.ErrUsernameTaken):
			return nil, usernameConflict()
		default:
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "User registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return s.issue(user.Email)
}

// Login проверяет пароль и возвращает токен.
// Неизвестный email, неверный пароль и неактивный аккаунт неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Token, error) {
	email = validation.NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.logger.DebugContext(ctx, "Login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.WarnContext(ctx, "Invalid password", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.WarnContext(ctx, "Login for inactive user", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	s.logger.InfoContext(ctx, "User logged in", slog.Int64("user_id", user.ID))

	return s.issue(user.Email)
}

func (s *AuthService) issue(subject string) (*Token, error) {
	token, expiresIn, err := s.tokens.Issue(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Token{AccessToken: token, ExpiresIn: expiresIn}, nil
}
