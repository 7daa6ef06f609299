package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/pkg/errors"
	"github.com/mroshb/kudos/pkg/response"
)

type userKey struct{}

// Authenticator resolves a bearer token to a stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey{}).(*models.User)
	return user, ok && user != nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth answers 401 unless the request carries a valid access token
// for an existing user, which is then stored in the request context.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				response.Error(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole answers 403 for authenticated users without one of roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				response.Error(w, errors.New(errors.ErrCodeUnauthorized, "Authentication required"))
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Error(w, errors.New(errors.ErrCodeForbidden, "Insufficient permissions"))
		})
	}
}
