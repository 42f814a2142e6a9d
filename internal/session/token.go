// Package session issues and verifies the cookie that ties a browser to its
// server-side practice state. The token proves the id was minted here; it does
// not identify a user.
package session

import (
	"errors"
	"fmt"
	"time"

	"pdf-quiz/internal/util"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that are malformed, expired or forged.
var ErrInvalidToken = errors.New("invalid session token")

const issuer = "pdf-quiz"

// Claims carries the session id.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenManager signs session tokens with HS256.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret cannot be empty")
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is how long issued tokens stay valid.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// NewSession mints a session id and its signed token.
func (m *TokenManager) NewSession() (sessionID, token string, err error) {
	sessionID = util.NewULID()
	token, err = m.Issue(sessionID)
	return sessionID, token, err
}

// Issue signs a token for an existing session id.
func (m *TokenManager) Issue(sessionID string) (string, error) {
	now := m.now()
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies token and returns the session id it carries.
func (m *TokenManager) Parse(tokenString string) (string, error) {
	claims, err := m.ParseClaims(tokenString)
	if err != nil {
		return "", err
	}
	return claims.SessionID, nil
}

// NeedsRenewal reports whether a verified token is past half its lifetime.
func (m *TokenManager) NeedsRenewal(claims *Claims) bool {
	if m.ttl <= 0 || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Sub(m.now()) < m.ttl/2
}

// ParseClaims verifies token and returns its claims.
func (m *TokenManager) ParseClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || !util.IsULID(claims.SessionID) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
