package middleware

import (
	"time"

	"pdf-quiz/internal/logger"
	"pdf-quiz/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDKey is the fiber.Ctx locals key holding the request id.
const RequestIDKey = "requestid"

// RequestIDConfig configures fiber's requestid middleware to honour and echo
// the X-Request-Id header.
func RequestIDConfig() requestid.Config {
	return requestid.Config{
		Header:     util.RequestIDHeader,
		Generator:  uuid.NewString,
		ContextKey: RequestIDKey,
	}
}

// RequestID returns the id assigned by the requestid middleware, if any.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(RequestIDKey).(string)
	return id
}

// RequestContext copies the request id into the user context so outbound
// backend calls carry it. Must run after the requestid middleware.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := RequestID(c); id != "" {
			c.SetUserContext(util.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// RequestLogger logs one line per HTTP request
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()
		if err != nil {
			// let the error handler write the response so the status is final
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("request_id", RequestID(c)),
			zap.String("session_id", SessionID(c)),
			zap.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		)
		return nil
	}
}
