package handler

import (
	"context"
	"time"

	"pdf-quiz/internal/domain"
	"pdf-quiz/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status       string `json:"status"`
	SessionStore string `json:"sessionStore"`
}

// HealthHandler reports whether the session store is reachable.
type HealthHandler struct {
	cache     domain.Cache
	storeName string
}

func NewHealthHandler(cache domain.Cache, storeName string) *HealthHandler {
	return &HealthHandler{cache: cache, storeName: storeName}
}

// Check godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} handler.HealthResponse
// @Failure 503 {object} handler.HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.cache.Ping(ctx); err != nil {
		logger.Get().Warn("Health check failed", zap.String("store", h.storeName), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{Status: "unavailable", SessionStore: h.storeName})
	}
	return c.JSON(HealthResponse{Status: "ok", SessionStore: h.storeName})
}
