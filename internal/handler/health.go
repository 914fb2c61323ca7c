package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health is the liveness probe.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// ReadinessHandler checks the dependencies the service cannot work without.
// Redis is optional; a nil client is reported as disabled.
type ReadinessHandler struct {
	db    *sql.DB
	redis *redis.Client
}

func NewReadinessHandler(db *sql.DB, rdb *redis.Client) *ReadinessHandler {
	return &ReadinessHandler{db: db, redis: rdb}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Readiness pings MySQL and Redis.
func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus, 2)
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		healthy = false
		deps["mysql"] = dependencyStatus{Status: "down", Error: err.Error()}
	} else {
		deps["mysql"] = dependencyStatus{Status: "up"}
	}

	switch {
	case h.redis == nil:
		deps["redis"] = dependencyStatus{Status: "disabled"}
	case h.redis.Ping(ctx).Err() != nil:
		deps["redis"] = dependencyStatus{Status: "down"}
	default:
		deps["redis"] = dependencyStatus{Status: "up"}
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	return c.JSON(code, echo.Map{"status": status, "dependencies": deps})
}
