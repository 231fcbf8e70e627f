package handler

import (
	"log/slog"
	"net/http"

	"vigil/internal/delivery/http/response"
	"vigil/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ReminderHandler holds dependencies for medication reminder handlers.
type ReminderHandler struct {
	uc     usecase.ReminderUsecase
	logger *slog.Logger
}

// NewReminderHandler is the constructor for ReminderHandler, injected by Fx.
func NewReminderHandler(uc usecase.ReminderUsecase, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{
		uc:     uc,
		logger: logger,
	}
}

// ListReminders returns all reminders for the logged-in account.
func (h *ReminderHandler) ListReminders(c echo.Context) error {
	reminders, err := h.uc.ListReminders(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, reminders, "Reminders retrieved successfully")
}

// CreateReminder creates a new medication reminder.
func (h *ReminderHandler) CreateReminder(c echo.Context) error {
	var input *usecase.CreateReminderInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reminder input")
	}

	if err := h.uc.CreateReminder(c.Request().Context(), input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, input, "Reminder created successfully")
}

// DeleteReminder removes a reminder by ID.
func (h *ReminderHandler) DeleteReminder(c echo.Context) error {
	reminderID := c.Param("id")
	if reminderID == "" {
		return response.BindingError(c, "INVALID_INPUT", "Reminder ID is required")
	}

	if err := h.uc.DeleteReminder(c.Request().Context(), reminderID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"id": reminderID}, "Reminder deleted successfully")
}
