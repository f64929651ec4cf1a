package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL время жизни access token по умолчанию
const DefaultAccessTokenTTL = 30 * time.Minute

var (
	// ErrInvalidToken токен поврежден, подписан другим ключом или алгоритмом
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken срок действия токена истек
	ErrExpiredToken = errors.New("token expired")
)

// signingMethod единственный допустимый алгоритм подписи
var signingMethod = gojwt.SigningMethodHS256

// Claims represents JWT claims. Subject holds the user's email.
type Claims struct {
	gojwt.RegisteredClaims
}

// Service provides JWT token generation and validation.
// Secret and TTL are fixed at construction time.
type Service struct {
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

// Option настраивает Service
type Option func(*Service)

// WithClock подменяет источник текущего времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new JWT service.
// secret should be a cryptographically secure random string.
func NewService(secret []byte, ttl time.Duration, opts ...Option) *Service {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	s := &Service{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// TTL returns the lifetime of issued tokens.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue создает подписанный access token для subject.
// Возвращает токен и время жизни в секундах.
func (s *Service) Issue(subject string) (string, int64, error) {
	now := s.now()

	claims := Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := gojwt.NewWithClaims(signingMethod, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, int64(s.ttl.Seconds()), nil
}

// Validate проверяет подпись, алгоритм и срок действия токена.
// Истекший токен дает ErrExpiredToken, любая другая ошибка разбора - ErrInvalidToken.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &Claims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, func(token *gojwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if token.Method != signingMethod {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		gojwt.WithValidMethods([]string{signingMethod.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}
