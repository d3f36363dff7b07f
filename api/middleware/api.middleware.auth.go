package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/espview/hub/internal/auth"
	"github.com/espview/hub/internal/errors"
)

type contextKey string

// ClaimsContextKey is where verified token claims live in the request
// context.
const ClaimsContextKey contextKey = "claims"

// JWTMiddleware guards routes behind a bearer token issued by the auth
// service.
type JWTMiddleware struct {
	auth *auth.Service
}

func NewJWTMiddleware(authSvc *auth.Service) *JWTMiddleware {
	return &JWTMiddleware{auth: authSvc}
}

// Authenticate validates the token and adds the claims to the context
func (m *JWTMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			handleError(w, errors.NewAuthError("no token provided", nil))
			return
		}

		claims, err := m.auth.Verify(token)
		if err != nil {
			handleError(w, errors.NewAuthError("invalid or expired token", err))
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFrom extracts the verified claims placed by Authenticate. The
// second return is false on unauthenticated requests.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*auth.Claims)
	return claims, ok
}

func extractToken(r *http.Request) string {
	bearerToken := r.Header.Get("Authorization")
	if len(strings.Split(bearerToken, " ")) == 2 {
		return strings.Split(bearerToken, " ")[1]
	}
	return ""
}

func handleError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*errors.APIError); ok {
		http.Error(w, apiErr.Message, apiErr.Code)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
