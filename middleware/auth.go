// Package middleware carries the HTTP auth layer. Authentication is
// delegated to the identity provider; the server only verifies the JWT
// it issued and maps its subject to an internal user on every request.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity returns the authenticated subject for a request, empty if
// the request is unauthenticated.
func Identity(r *http.Request) string {
	id, _ := r.Context().Value(identityKey).(string)
	return id
}

// Auth verifies the Bearer token and stashes its subject in the request
// context. With devMode set, an X-Debug-User header bypasses token
// verification for local development.
func Auth(secret string, devMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if devMode {
				if debugUser := r.Header.Get("X-Debug-User"); debugUser != "" {
					next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), debugUser)))
					return
				}
			}

			subject, err := verifyToken(bearerToken(r), secret)
			if err != nil {
				http.Error(w, `{"error":"unauthenticated"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), subject)))
		})
	}
}

func withIdentity(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, identityKey, subject)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Browsers cannot set headers on websocket upgrades.
	return r.URL.Query().Get("token")
}

func verifyToken(raw, secret string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("missing token")
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}
