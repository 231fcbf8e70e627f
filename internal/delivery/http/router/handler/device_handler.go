package handler

import (
	"log/slog"
	"net/http"

	"vigil/internal/delivery/http/response"
	"vigil/internal/domain/entity"
	domainerrors "vigil/internal/domain/errors"
	"vigil/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// DeviceHandler holds dependencies for device pairing handlers.
type DeviceHandler struct {
	qrService service.QRCodeService
	logger    *slog.Logger
}

// NewDeviceHandler is the constructor for DeviceHandler, injected by Fx.
func NewDeviceHandler(qrService service.QRCodeService, logger *slog.Logger) *DeviceHandler {
	return &DeviceHandler{
		qrService: qrService,
		logger:    logger,
	}
}

// PairingQR serves a PNG QR code encoding the paired device identifier so a
// replacement phone can pair without retyping it.
func (h *DeviceHandler) PairingQR(c echo.Context) error {
	session, ok := c.Get("session").(*entity.Session)
	if !ok || !session.Authenticated() {
		return domainerrors.ErrNotAuthenticated
	}

	deviceID := session.DeviceID()
	if deviceID == "" {
		return domainerrors.ErrNoDevicePaired
	}

	png, err := h.qrService.GeneratePairingQR(deviceID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// DeviceInfo returns the paired device identifier.
func (h *DeviceHandler) DeviceInfo(c echo.Context) error {
	session, ok := c.Get("session").(*entity.Session)
	if !ok || !session.Authenticated() {
		return domainerrors.ErrNotAuthenticated
	}

	deviceID := session.DeviceID()
	if deviceID == "" {
		return domainerrors.ErrNoDevicePaired
	}

	return response.Success(c, http.StatusOK, map[string]string{"deviceId": deviceID}, "Device retrieved successfully")
}
