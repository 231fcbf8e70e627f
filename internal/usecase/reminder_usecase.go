package usecase

import (
	"context"

	"vigil/internal/domain/entity"
)

// CreateReminderInput defines a new medication reminder. Schedule entries
// keep their submitted order.
type CreateReminderInput struct {
	MedicineName string                 `json:"medicineName" validate:"required"`
	Schedule     []entity.ScheduleEntry `json:"schedule" validate:"required,min=1,dive"`
}

// ReminderUsecase manages medication reminders through the backend.
type ReminderUsecase interface {
	ListReminders(ctx context.Context) ([]*entity.MedicationReminder, error)
	CreateReminder(ctx context.Context, input *CreateReminderInput) error
	DeleteReminder(ctx context.Context, reminderID string) error
}
