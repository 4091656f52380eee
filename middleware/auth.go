package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"notes-backend/models"
)

type contextKey string

const userKey contextKey = "user"

// Resolver turns a bearer token into the calling user.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth rejects requests without a valid bearer token for an active
// user and stores the user in the request context.
func RequireAuth(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				zerolog.Ctx(r.Context()).Debug().Msg("auth: missing or malformed authorization header")
				Unauthorized(w)
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if errors.Is(err, models.ErrUnauthenticated) {
				Unauthorized(w)
				return
			}
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("auth: resolve user")
				WriteJSON(w, http.StatusInternalServerError, Detail{Detail: "Internal server error"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user stored by RequireAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

// Unauthorized writes the single response used for every authentication failure.
func Unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteJSON(w, http.StatusUnauthorized, Detail{Detail: "Could not validate credentials"})
}
