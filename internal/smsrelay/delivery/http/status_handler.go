package http

import (
	"net/http"

	"golang-futures-bot/internal/smsrelay/repository"
	"golang-futures-bot/internal/smsrelay/service"
	"golang-futures-bot/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusHandler exposes the relay's read-only status over HTTP.
type StatusHandler struct {
	relay        *service.RelayService
	destinations repository.DestinationRepository
	logger       *logger.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(relay *service.RelayService, destinations repository.DestinationRepository, log *logger.Logger) *StatusHandler {
	return &StatusHandler{relay: relay, destinations: destinations, logger: log}
}

// RegisterRoutes registers the status routes on the Echo instance.
func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	apiV1 := e.Group("/api/v1")
	apiV1.GET("/status", h.GetStatus)
	apiV1.GET("/destinations", h.GetDestinations)
}

// Health reports process liveness.
func (h *StatusHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// GetStatus returns the relay status snapshot.
func (h *StatusHandler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.relay.Status(c.Request().Context()))
}

// GetDestinations returns the registered destinations.
func (h *StatusHandler) GetDestinations(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"primary":      h.destinations.Primary(),
		"destinations": h.destinations.List(c.Request().Context()),
	})
}
