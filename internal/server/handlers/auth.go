package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/calcbread/internal/server/identity"
	"github.com/iudanet/calcbread/internal/server/service"
	"github.com/iudanet/calcbread/pkg/api"
)

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	responder
	auth *service.AuthService
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger},
		auth:      auth,
	}
}

// Register обрабатывает POST /api/register
// Регистрация нового пользователя, возвращает токен доступа
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	token, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.sendServiceError(r.Context(), w, err)
		return
	}

	h.sendJSON(w, toTokenResponse(token), http.StatusCreated)
}

// Login обрабатывает POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.sendServiceError(r.Context(), w, err)
		return
	}

	h.sendJSON(w, toTokenResponse(token), http.StatusOK)
}

// Me обрабатывает GET /api/me
// Требует RequireAuth: пользователь уже в контексте
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		h.sendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	h.sendJSON(w, api.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}, http.StatusOK)
}

func toTokenResponse(t *service.Token) api.TokenResponse {
	return api.TokenResponse{
		AccessToken: t.AccessToken,
		TokenType:   api.TokenTypeBearer,
		ExpiresIn:   t.ExpiresIn,
	}
}
