package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger пишет строку на запрос к API: статус, метод, путь с query
// (face=, события редактора) и объем тела в обе стороны. Пробы /health
// не логируются, их дергает оркестратор.
func Logger() fiber.Handler {
	return logger.New(logger.Config{
		Next:       skipLogging,
		Format:     "[${time}] [HTTP] ${status} ${method} ${path}?${queryParams} ${latency} in=${bytesReceived}B out=${bytesSent}B\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}

func skipLogging(c fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/health/")
}
