package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// RequireToken rejects requests without a valid "Authorization: Bearer" token.
func RequireToken(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				respond(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
				return
			}
			subject, err := svc.Verify(tokenString)
			if err != nil {
				respond(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, subject)))
		})
	}
}

// Operator returns the authenticated operator stored by RequireToken.
func Operator(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}
