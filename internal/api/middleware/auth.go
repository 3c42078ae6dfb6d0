package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/montesion/montesion-api/internal/api"
	"github.com/montesion/montesion-api/internal/api/shared"
	"github.com/montesion/montesion-api/internal/domain"
	"github.com/montesion/montesion-api/internal/service/auth"
)

// UserResolver maps a bearer token to its account.
// service.AccountService satisfies it.
type UserResolver interface {
	ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware provides bearer token authentication for routes.
type AuthMiddleware struct {
	users UserResolver
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(users UserResolver) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

// Authenticate validates the bearer token in the Authorization header and
// adds the account it belongs to to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			api.HandleAPIError(w, r, auth.ErrMissingToken, "")
			return
		}

		user, err := m.users.ResolveCurrentUser(r.Context(), token)
		if err != nil {
			api.HandleAPIError(w, r, err, "Error de autenticación")
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithCurrentUser(r.Context(), user)))
	})
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
