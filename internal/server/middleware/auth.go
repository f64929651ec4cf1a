package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/calcbread/internal/server/identity"
)

// OptionalAuth кладет пользователя в контекст, если токен валиден.
// Следующий обработчик вызывается всегда, в том числе для анонимного запроса.
func OptionalAuth(resolver *identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := resolver.ResolveOptional(r); user != nil {
				r = r.WithContext(identity.WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth создает middleware, пропускающий только аутентифицированные запросы
func RequireAuth(logger *slog.Logger, resolver *identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			user, err := resolver.ResolveRequired(r)
			switch {
			case err == nil:
			case errors.Is(err, identity.ErrUnauthenticated):
				logger.DebugContext(ctx, "Missing Authorization header", slog.String("path", r.URL.Path))
				writeError(w, "Authentication required", http.StatusUnauthorized)
				return
			case errors.Is(err, identity.ErrInvalidCredentials):
				logger.WarnContext(ctx, "Invalid access token", slog.String("error", err.Error()))
				writeError(w, "Invalid credentials", http.StatusUnauthorized)
				return
			default:
				logger.ErrorContext(ctx, "Failed to resolve identity", slog.String("error", err.Error()))
				writeError(w, "internal server error", http.StatusInternalServerError)
				return
			}

			logger.DebugContext(ctx, "User authenticated", slog.Int64("user_id", user.ID))

			// Передаем запрос дальше с обновленным контекстом
			next.ServeHTTP(w, r.WithContext(identity.WithUser(ctx, user)))
		})
	}
}
