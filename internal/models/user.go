package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time `json:"created_at"` // время регистрации
	Email        string    `json:"email"`      // уникальный email, используется как subject токена
	Username     string    `json:"username"`   // уникальный username
	PasswordHash string    `json:"-"`          // bcrypt хеш пароля
	ID           int64     `json:"id"`
	IsActive     bool      `json:"is_active"`
}
