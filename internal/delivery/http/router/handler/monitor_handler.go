package handler

import (
	"log/slog"
	"net/http"
	"time"

	"vigil/internal/delivery/http/response"
	"vigil/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// MonitorHandler holds dependencies for live monitoring handlers.
type MonitorHandler struct {
	uc     usecase.MonitorUsecase
	logger *slog.Logger
}

// NewMonitorHandler is the constructor for MonitorHandler, injected by Fx.
func NewMonitorHandler(uc usecase.MonitorUsecase, logger *slog.Logger) *MonitorHandler {
	return &MonitorHandler{
		uc:     uc,
		logger: logger,
	}
}

// Connect starts the live event subscription for the paired device.
func (h *MonitorHandler) Connect(c echo.Context) error {
	if err := h.uc.Start(c.Request().Context()); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, h.uc.Status(), "Monitoring started")
}

// Disconnect tears the live event subscription down.
func (h *MonitorHandler) Disconnect(c echo.Context) error {
	h.uc.Stop()

	return response.Success(c, http.StatusOK, h.uc.Status(), "Monitoring stopped")
}

// Status reports the channel state and pending alert count.
func (h *MonitorHandler) Status(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.uc.Status(), "Status retrieved successfully")
}

// Alerts lists the pending alerts, oldest first.
func (h *MonitorHandler) Alerts(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.uc.PendingAlerts(), "Alerts retrieved successfully")
}

// AcknowledgeAlert dismisses a pending alert by ID.
func (h *MonitorHandler) AcknowledgeAlert(c echo.Context) error {
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid alert ID")
	}

	if err := h.uc.Acknowledge(alertID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"id": alertID.String()}, "Alert acknowledged")
}

// LatestLocation serves the most recent fall event as a GeoJSON feature
// collection, the format the map page consumes directly.
func (h *MonitorHandler) LatestLocation(c echo.Context) error {
	event, err := h.uc.LatestLocation()
	if err != nil {
		return errors.WithStack(err)
	}

	feature := geojson.NewFeature(event.Location.Point())
	feature.Properties["deviceId"] = event.DeviceID
	feature.Properties["timestamp"] = event.Timestamp.Format(time.RFC3339)
	if event.Message != "" {
		feature.Properties["message"] = event.Message
	}

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)

	return c.JSON(http.StatusOK, fc)
}
