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

func protected() http.Handler {
	return JWTAuth(testSecret)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetAdminEmail(r.Context())))
	})))
}

func doRequest(h http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/blog/posts", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAcceptsAdminToken(t *testing.T) {
	token, err := IssueToken(testSecret, "editor@example.com", time.Hour)
	require.NoError(t, err)

	rec := doRequest(protected(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "editor@example.com", rec.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	expired, err := IssueToken(testSecret, "editor@example.com", -time.Minute)
	require.NoError(t, err)
	wrongKey, err := IssueToken("other-secret", "editor@example.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name string
		auth string
		msg  string
	}{
		{"missing header", "", "missing bearer token"},
		{"not bearer", "Basic abc", "missing bearer token"},
		{"garbage", "Bearer abc.def.ghi", "invalid token"},
		{"wrong key", "Bearer " + wrongKey, "invalid token"},
		{"expired", "Bearer " + expired, "token has expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(protected(), tt.auth)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.msg)
		})
	}
}

func TestRequireAdminRejectsOtherRoles(t *testing.T) {
	claims := Claims{
		Email: "reader@example.com",
		Role:  "reader",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := doRequest(protected(), "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
