package middleware

import (
	"time"

	"pdf-quiz/internal/logger"
	"pdf-quiz/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionIDKey is the fiber.Ctx locals key holding the practice session id.
const SessionIDKey = "sessionID"

// SessionConfig controls the session cookie.
type SessionConfig struct {
	CookieName string
	Secure     bool
}

// Session makes sure every request carries a signed session cookie and exposes
// the session id through SessionID. A missing, expired or forged cookie is
// replaced by a fresh session; a valid one past half its lifetime is re-issued
// for the same session id.
func Session(tokens *session.TokenManager, cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if SessionID(c) != "" {
			return c.Next()
		}
		if raw := c.Cookies(cfg.CookieName); raw != "" {
			claims, err := tokens.ParseClaims(raw)
			if err == nil {
				if tokens.NeedsRenewal(claims) {
					token, err := tokens.Issue(claims.SessionID)
					if err != nil {
						return err
					}
					setSessionCookie(c, cfg, token, tokens.TTL())
				}
				c.Locals(SessionIDKey, claims.SessionID)
				return c.Next()
			}
			logger.Get().Debug("Replacing invalid session cookie", zap.Error(err))
		}

		sid, token, err := tokens.NewSession()
		if err != nil {
			return err
		}
		setSessionCookie(c, cfg, token, tokens.TTL())
		c.Locals(SessionIDKey, sid)
		return c.Next()
	}
}

func setSessionCookie(c *fiber.Ctx, cfg SessionConfig, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// SessionID returns the session id set by Session.
func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(SessionIDKey).(string)
	return sid
}
