package api

import "time"

// TokenTypeBearer тип токена в ответах аутентификации
const TokenTypeBearer = "bearer"

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email    string `json:"email"`    // email, используется как subject токена
	Username string `json:"username"` // отображаемое имя, уникальное
	Password string `json:"password"` // пароль в открытом виде (только по TLS)
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse представляет ответ с токеном доступа
type TokenResponse struct {
	AccessToken string `json:"access_token"` // JWT access token
	TokenType   string `json:"token_type"`   // всегда "bearer"
	ExpiresIn   int64  `json:"expires_in"`   // время жизни access token в секундах
}

// UserResponse профиль текущего пользователя
type UserResponse struct {
	CreatedAt time.Time `json:"created_at"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	ID        int64     `json:"id"`
	IsActive  bool      `json:"is_active"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
	Field   string `json:"field,omitempty"`   // поле запроса при ошибке валидации
}

// HealthResponse ответ эндпоинта /health
type HealthResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`   // healthy | unhealthy
	Database  string    `json:"database"` // ok | unavailable
}
