package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const accountClaimsKey contextKey = "accountClaims"

// AccountJWT enforces an HMAC-signed JWT on routes reserved for existing
// account holders. The subject claim carries the client's account ID.
func AccountJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "account auth disabled", http.StatusUnauthorized)
				return
			}
			claims, ok := parseAccountToken(r, secret)
			if !ok {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), accountClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAccountJWT attaches account claims when a valid token is present
// but lets anonymous requests through. Intake flows open to new clients use
// this so a logged-in household still resolves to its roster.
func OptionalAccountJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				if claims, ok := parseAccountToken(r, secret); ok {
					r = r.WithContext(context.WithValue(r.Context(), accountClaimsKey, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseAccountToken(r *http.Request, secret string) (jwt.RegisteredClaims, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return jwt.RegisteredClaims{}, false
	}
	tokenString := strings.TrimPrefix(auth, "Bearer ")
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return jwt.RegisteredClaims{}, false
	}
	return claims, true
}

// AccountClaimsFromContext returns account JWT claims if present.
func AccountClaimsFromContext(ctx context.Context) (jwt.RegisteredClaims, bool) {
	claims, ok := ctx.Value(accountClaimsKey).(jwt.RegisteredClaims)
	return claims, ok
}

// AccountIDFromContext returns the authenticated account ID, or "" when the
// request is anonymous.
func AccountIDFromContext(ctx context.Context) string {
	claims, ok := AccountClaimsFromContext(ctx)
	if !ok {
		return ""
	}
	return claims.Subject
}
