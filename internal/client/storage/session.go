package storage

import (
	"context"
	"time"
)

// SessionStore хранит единственную текущую сессию CLI клиента
type SessionStore interface {
	// SaveSession сохраняет сессию, заменяя предыдущую
	SaveSession(ctx context.Context, session *Session) error

	// GetSession возвращает ErrSessionNotFound если сессии нет
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession удаляет сессию (logout)
	DeleteSession(ctx context.Context) error
}

// Session токен доступа и данные для отображения статуса
type Session struct {
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"access_token"`
	Email     string    `json:"email"`
}

// Expired сообщает, истек ли токен к моменту now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
