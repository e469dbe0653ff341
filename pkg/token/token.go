package token

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

const purposeReset = "password_reset"

// Claims carried by single-purpose tokens sent out by e-mail.
type Claims struct {
	UserID  string `json:"user_id"`
	Purpose string `json:"purpose"`
	jwtv5.RegisteredClaims
}

// Manager signs and verifies password-reset tokens. Tokens are HS256 JWTs
// signed with the session secret, so rotating the secret invalidates every
// outstanding reset link.
type Manager struct {
	secret   []byte
	resetTTL time.Duration
}

// NewManager creates a token manager.
func NewManager(secret string, resetTTL time.Duration) *Manager {
	return &Manager{secret: []byte(secret), resetTTL: resetTTL}
}

// GenerateResetToken issues a password-reset token for the given account.
func (m *Manager) GenerateResetToken(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Purpose: purposeReset,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.resetTTL)),
			Issuer:    "csm-attendance",
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseResetToken verifies a reset token and returns the account it was
// issued to.
func (m *Manager) ParseResetToken(tokenString string) (string, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", ErrTokenInvalid
	}
	if claims.Purpose != purposeReset {
		return "", ErrTokenInvalid
	}

	return claims.UserID, nil
}
