package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"productpulse-backend/internal/logger"
	"productpulse-backend/internal/mailer"
	"productpulse-backend/internal/middleware"
	"productpulse-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	loginTokenTTL    = 15 * time.Minute
	adminSessionTTL  = 24 * time.Hour
	loginRateWindow  = 10 * time.Minute
	loginRateMax     = 5
	loginSentMessage = "If this address belongs to an admin, a login link has been sent."
)

type TokenStore interface {
	Create(ctx context.Context, token *models.AuthToken) error
	ConsumeToken(ctx context.Context, token string, now time.Time) (*models.AuthToken, bool, error)
	CountRecentByEmail(ctx context.Context, email string, duration time.Duration) (int64, error)
}

type AuthConfig struct {
	JWTSecret string
	// BaseURL of this API, used in emailed links. Derived from the request
	// when empty.
	BaseURL string
	// SiteURL of the front end; admins land on its blog page after login.
	SiteURL string
	IsAdmin func(email string) bool
}

type AuthHandler struct {
	tokens TokenStore
	mailer mailer.Mailer
	cfg    AuthConfig
	log    *zap.Logger
}

func NewAuthHandler(tokens TokenStore, m mailer.Mailer, cfg AuthConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
		mailer: m,
		cfg:    cfg,
		log:    log,
	}
}

// --- Request / Response types ---

type RequestLoginRequest struct {
	Email string `json:"email"`
}

type VerifyResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// --- POST /auth/request ---

func (h *AuthHandler) RequestLogin(w http.ResponseWriter, r *http.Request) {
	var req RequestLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	// Same answer for unknown addresses so the allow-list can't be probed.
	if !h.cfg.IsAdmin(email) {
		h.log.Warn("login requested for non-admin address", logger.Email("email", email))
		writeJSON(w, http.StatusOK, map[string]string{"message": loginSentMessage})
		return
	}

	count, err := h.tokens.CountRecentByEmail(r.Context(), email, loginRateWindow)
	if err != nil {
		h.log.Error("failed to check login rate limit", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if count >= loginRateMax {
		writeError(w, http.StatusTooManyRequests, "too many login requests, please try again later")
		return
	}

	tokenValue := uuid.New().String()
	authToken := &models.AuthToken{
		Email:     email,
		Token:     tokenValue,
		ExpiresAt: time.Now().Add(loginTokenTTL),
		IsUsed:    false,
	}
	if err := h.tokens.Create(r.Context(), authToken); err != nil {
		h.log.Error("failed to create auth token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create login token")
		return
	}

	link := fmt.Sprintf("%s/auth/redirect?token=%s", h.baseURL(r), url.QueryEscape(tokenValue))
	if err := h.mailer.SendLoginLink(r.Context(), email, link); err != nil {
		// Token exists; delivery is best-effort.
		h.log.Error("failed to send login email", logger.Email("email", email), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": loginSentMessage})
}

// --- GET /auth/verify ---

func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	tokenValue := r.URL.Query().Get("token")
	if tokenValue == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	now := time.Now()
	authToken, consumed, err := h.tokens.ConsumeToken(r.Context(), tokenValue, now)
	if err != nil {
		h.log.Error("failed to consume token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if authToken == nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if !consumed {
		if authToken.IsExpiredAt(now) {
			writeError(w, http.StatusUnauthorized, "token has expired")
			return
		}
		writeError(w, http.StatusUnauthorized, "token has already been used")
		return
	}
	// The allow-list may have changed since the link was sent.
	if !h.cfg.IsAdmin(authToken.Email) {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}

	expiresAt := now.Add(adminSessionTTL)
	signed, err := middleware.IssueToken(h.cfg.JWTSecret, authToken.Email, adminSessionTTL)
	if err != nil {
		h.log.Error("failed to sign JWT", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.log.Info("admin signed in", logger.Email("email", authToken.Email))
	writeJSON(w, http.StatusOK, VerifyResponse{
		Token:     signed,
		Email:     authToken.Email,
		ExpiresAt: expiresAt,
	})
}

// --- GET /auth/redirect ---
// Opened from the login email. Forwards the browser to the site's blog page,
// which exchanges the token via /auth/verify.

func (h *AuthHandler) RedirectToSite(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}

	target := fmt.Sprintf("%s/blog?token=%s", strings.TrimRight(h.cfg.SiteURL, "/"), url.QueryEscape(token))
	jsTarget, _ := json.Marshal(target)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<title>Signing you in...</title>
	<style>
		body { font-family: -apple-system, sans-serif; display: flex; justify-content: center; align-items: center; min-height: 100vh; margin: 0; background: #eef2ff; }
		.card { text-align: center; padding: 40px; background: white; border-radius: 16px; box-shadow: 0 4px 24px rgba(0,0,0,0.1); max-width: 400px; }
		.btn { display: inline-block; background: #4f46e5; color: white; padding: 14px 32px; border-radius: 10px; text-decoration: none; font-weight: 600; margin-top: 16px; }
	</style>
</head>
<body>
	<div class="card">
		<h1>Signing you in...</h1>
		<p>If nothing happens, use the button below.</p>
		<a href="%s" class="btn">Open the blog editor</a>
	</div>
	<script>
		window.location.href = %s;
	</script>
</body>
</html>`, html.EscapeString(target), jsTarget)
}

func (h *AuthHandler) baseURL(r *http.Request) string {
	if h.cfg.BaseURL != "" {
		return strings.TrimRight(h.cfg.BaseURL, "/")
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
