package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(Identity(r)))
	})
}

func TestAuthAcceptsValidToken(t *testing.T) {
	handler := Auth(testSecret, false)(echoIdentity())

	req := httptest.NewRequest("GET", "/api/queue/status", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "clerk_42", testSecret))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "clerk_42", rec.Body.String())
}

func TestAuthRejectsMissingOrBadToken(t *testing.T) {
	handler := Auth(testSecret, false)(echoIdentity())

	req := httptest.NewRequest("GET", "/api/queue/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest("GET", "/api/queue/status", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "clerk_42", "wrong-secret"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthQueryTokenForWebsocket(t *testing.T) {
	handler := Auth(testSecret, false)(echoIdentity())

	req := httptest.NewRequest("GET", "/ws?token="+signToken(t, "clerk_42", testSecret), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "clerk_42", rec.Body.String())
}

func TestAuthDebugHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/queue/status", nil)
	req.Header.Set("X-Debug-User", "dev_user")

	// Honored only in dev mode.
	rec := httptest.NewRecorder()
	Auth(testSecret, true)(echoIdentity()).ServeHTTP(rec, req)
	assert.Equal(t, "dev_user", rec.Body.String())

	rec = httptest.NewRecorder()
	Auth(testSecret, false)(echoIdentity()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
