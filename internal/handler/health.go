package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type Pinger interface {
	Ping(ctx context.Context) (time.Time, error)
}

type HealthHandler struct {
	pinger  Pinger
	version string
}

func NewHealthHandler(pinger Pinger, version string) *HealthHandler {
	return &HealthHandler{pinger: pinger, version: version}
}

type healthResponse struct {
	OK      bool       `json:"ok"`
	Version string     `json:"version,omitempty"`
	DBTime  *time.Time `json:"dbTime,omitempty"`
	Error   string     `json:"error,omitempty"`
}

func (h *HealthHandler) Healthz(c echo.Context) error {
	dbTime, err := h.pinger.Ping(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("healthcheck failed")
		return c.JSON(http.StatusInternalServerError, healthResponse{
			OK:    false,
			Error: "Database connection failed",
		})
	}

	return c.JSON(http.StatusOK, healthResponse{
		OK:      true,
		Version: h.version,
		DBTime:  &dbTime,
	})
}
