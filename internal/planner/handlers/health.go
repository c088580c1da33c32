package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// Pinger хранилище, доступность которого проверяет readiness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health/live", h.Liveness)
	router.Get("/health/ready", h.Readiness)
	router.Get("/health/startup", h.Startup)
}

// Liveness проверяет, что приложение работает
func (h *HealthHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// Readiness проверяет доступность базы проектов
func (h *HealthHandler) Readiness(c fiber.Ctx) error {
	if err := h.db.PingContext(context.Background()); err != nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// Startup проверяет, что приложение успешно запустилось
func (h *HealthHandler) Startup(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "started"})
}
