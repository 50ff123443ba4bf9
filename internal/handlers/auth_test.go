package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"productpulse-backend/internal/middleware"
	"productpulse-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]*models.AuthToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: make(map[string]*models.AuthToken)}
}

func (f *fakeTokens) Create(_ context.Context, t *models.AuthToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.CreatedAt = time.Now()
	f.tokens[t.Token] = t
	return nil
}

func (f *fakeTokens) ConsumeToken(_ context.Context, token string, now time.Time) (*models.AuthToken, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, false, nil
	}
	if t.IsUsed || t.IsExpiredAt(now) {
		c := *t
		return &c, false, nil
	}
	t.IsUsed = true
	t.UsedAt = &now
	c := *t
	return &c, true, nil
}

func (f *fakeTokens) CountRecentByEmail(_ context.Context, email string, d time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	since := time.Now().Add(-d)
	for _, t := range f.tokens {
		if t.Email == email && t.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

type linkMailer struct {
	mu    sync.Mutex
	links map[string]string
}

func (m *linkMailer) SendLoginLink(_ context.Context, to, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[to] = link
	return nil
}

func (m *linkMailer) SendDemoWelcome(context.Context, string, string) error { return nil }

const authSecret = "auth-secret"

func newTestAuth() (*AuthHandler, *fakeTokens, *linkMailer) {
	tokens := newFakeTokens()
	mail := &linkMailer{links: make(map[string]string)}
	h := NewAuthHandler(tokens, mail, AuthConfig{
		JWTSecret: authSecret,
		BaseURL:   "https://api.productpulse.test/",
		SiteURL:   "https://productpulse.test",
		IsAdmin:   func(e string) bool { return e == "editor@example.com" },
	}, zap.NewNop())
	return h, tokens, mail
}

func requestLogin(h *AuthHandler, email string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(RequestLoginRequest{Email: email})
	req := httptest.NewRequest(http.MethodPost, "/auth/request", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.RequestLogin(rec, req)
	return rec
}

func verify(h *AuthHandler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/auth/verify?token="+token, nil)
	rec := httptest.NewRecorder()
	h.VerifyToken(rec, req)
	return rec
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	const marker = "token="
	i := strings.Index(link, marker)
	require.GreaterOrEqual(t, i, 0, link)
	return link[i+len(marker):]
}

func TestAdminLoginFlow(t *testing.T) {
	h, _, mail := newTestAuth()

	rec := requestLogin(h, " Editor@Example.com ")
	require.Equal(t, http.StatusOK, rec.Code)

	link := mail.links["editor@example.com"]
	require.NotEmpty(t, link)
	assert.True(t, strings.HasPrefix(link, "https://api.productpulse.test/auth/redirect?token="))

	token := tokenFromLink(t, link)
	rec = verify(h, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "editor@example.com", resp.Email)

	claims, err := middleware.ParseToken(authSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, middleware.RoleAdmin, claims.Role)

	// Single use.
	rec = verify(h, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "already been used")
}

func TestRequestLoginForNonAdminSendsNothing(t *testing.T) {
	h, tokens, mail := newTestAuth()

	rec := requestLogin(h, "stranger@example.com")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), loginSentMessage)
	assert.Empty(t, mail.links)
	assert.Empty(t, tokens.tokens)
}

func TestRequestLoginValidation(t *testing.T) {
	h, _, _ := newTestAuth()

	rec := requestLogin(h, "  ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/request", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	h.RequestLogin(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestLoginRateLimit(t *testing.T) {
	h, _, _ := newTestAuth()

	for i := 0; i < loginRateMax; i++ {
		require.Equal(t, http.StatusOK, requestLogin(h, "editor@example.com").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, requestLogin(h, "editor@example.com").Code)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	h, tokens, _ := newTestAuth()

	assert.Equal(t, http.StatusBadRequest, verify(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, verify(h, "unknown").Code)

	require.NoError(t, tokens.Create(context.Background(), &models.AuthToken{
		Email:     "editor@example.com",
		Token:     "expired",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))
	rec := verify(h, "expired")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")

	require.NoError(t, tokens.Create(context.Background(), &models.AuthToken{
		Email:     "former@example.com",
		Token:     "revoked",
		ExpiresAt: time.Now().Add(time.Minute),
	}))
	assert.Equal(t, http.StatusForbidden, verify(h, "revoked").Code)
}

func TestRedirectToSite(t *testing.T) {
	h, _, _ := newTestAuth()

	req := httptest.NewRequest(http.MethodGet, "/auth/redirect?token=abc", nil)
	rec := httptest.NewRecorder()
	h.RedirectToSite(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `window.location.href = "https://productpulse.test/blog?token=abc";`)

	req = httptest.NewRequest(http.MethodGet, "/auth/redirect", nil)
	rec = httptest.NewRecorder()
	h.RedirectToSite(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyConsumesTokenOnce(t *testing.T) {
	h, tokens, _ := newTestAuth()
	require.NoError(t, tokens.Create(context.Background(), &models.AuthToken{
		Email:     "editor@example.com",
		Token:     "shared",
		ExpiresAt: time.Now().Add(time.Minute),
	}))

	const clicks = 8
	codes := make(chan int, clicks)
	var wg sync.WaitGroup
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- verify(h, "shared").Code
		}()
	}
	wg.Wait()
	close(codes)

	ok := 0
	for code := range codes {
		if code == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusUnauthorized, code)
		}
	}
	assert.Equal(t, 1, ok)
	assert.NotNil(t, tokens.tokens["shared"].UsedAt)
}
