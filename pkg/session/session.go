package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/config"
)

var ErrCookieInvalid = errors.New("session cookie invalid")

// Manager issues opaque session tokens and signs the cookie that carries
// them. The cookie value is "<token>.<signature>" where the signature is an
// HMAC-SHA256 of the token keyed with SESSION_SECRET, so a tampered or
// forged cookie is rejected before the database is consulted.
type Manager struct {
	cfg    *config.SessionConfig
	secret []byte
}

// NewManager creates a session manager.
func NewManager(cfg *config.SessionConfig) *Manager {
	return &Manager{cfg: cfg, secret: []byte(cfg.Secret)}
}

// NewToken generates a fresh random session token (32 bytes, hex).
func (m *Manager) NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Sign produces the cookie value for a token.
func (m *Manager) Sign(token string) string {
	return token + "." + m.signature(token)
}

// Verify checks a cookie value and returns the embedded token.
func (m *Manager) Verify(cookieValue string) (string, error) {
	idx := strings.LastIndexByte(cookieValue, '.')
	if idx <= 0 || idx == len(cookieValue)-1 {
		return "", ErrCookieInvalid
	}
	token, sig := cookieValue[:idx], cookieValue[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(m.signature(token))) {
		return "", ErrCookieInvalid
	}
	return token, nil
}

func (m *Manager) signature(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CookieName returns the configured session cookie name.
func (m *Manager) CookieName() string {
	return m.cfg.CookieName
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.cfg.TTL
}

// SetCookie attaches a signed session cookie to the response.
func (m *Manager) SetCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    m.Sign(token),
		Path:     "/",
		Domain:   m.cfg.Domain,
		MaxAge:   int(m.cfg.TTL.Seconds()),
		Secure:   m.cfg.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(m.cfg.SameSite),
	})
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.cfg.Domain,
		MaxAge:   -1,
		Secure:   m.cfg.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(m.cfg.SameSite),
	})
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
