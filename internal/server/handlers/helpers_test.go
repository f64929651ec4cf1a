package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/calcbread/internal/crypto"
	"github.com/iudanet/calcbread/internal/server/identity"
	"github.com/iudanet/calcbread/internal/server/jwt"
	"github.com/iudanet/calcbread/internal/server/service"
	"github.com/iudanet/calcbread/internal/server/storage/sqlite"
	"github.com/iudanet/calcbread/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

type testEnv struct {
	handler http.Handler
	store   *sqlite.Storage
	tokens  *jwt.Service
}

// newTestEnv собирает полный router поверх in-memory SQLite
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := setupTestLogger()
	tokens := jwt.NewService([]byte("handler-test-secret"), 30*time.Minute)

	handler := NewRouter(RouterConfig{
		Logger:       logger,
		Auth:         service.NewAuthService(logger, store, crypto.NewHasher(bcrypt.MinCost), tokens),
		Calculations: service.NewCalculationService(logger, store),
		Resolver:     identity.NewResolver(logger, tokens, store),
		DB:           store,
		Registry:     prometheus.NewRegistry(),
	})

	return &testEnv{handler: handler, store: store, tokens: tokens}
}

// do выполняет запрос; body может быть строкой (отправляется как есть) или структурой
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// register создает пользователя и возвращает его токен
func (e *testEnv) register(t *testing.T, email, username string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/register", api.RegisterRequest{
		Email:    email,
		Username: username,
		Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp api.TokenResponse
	decode(t, w, &resp)
	return resp.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(dst))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	decode(t, w, &resp)
	return resp
}

func ptr[T any](v T) *T {
	return &v
}
