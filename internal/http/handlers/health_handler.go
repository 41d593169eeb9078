package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/ignatzorin/watersafe-backend/internal/logger"
)

const serviceName = "watersafe-hub"

// Pinger - всё, что умеет проверить доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	storage Pinger
	clock   clockwork.Clock
}

// NewHealthHandler создаёт новый health handler.
func NewHealthHandler(storage Pinger, clock clockwork.Clock) *HealthHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HealthHandler{storage: storage, clock: clock}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	OK        bool      `json:"ok"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse представляет ответ readiness check.
type ReadyResponse struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}

// Health обрабатывает GET /health: процесс жив, хранилище не трогаем.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		OK:        true,
		Service:   serviceName,
		Timestamp: h.clock.Now().UTC(),
	})
}

// Ready обрабатывает GET /ready.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"storage": "healthy"}
	if err := h.storage.Ping(ctx); err != nil {
		logger.Log.WithError(err).Warn("health: хранилище недоступно")
		checks["storage"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, ReadyResponse{OK: false, Checks: checks})
		return
	}

	c.JSON(http.StatusOK, ReadyResponse{OK: true, Checks: checks})
}
