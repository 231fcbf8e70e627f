package impl

import (
	"context"
	"testing"

	"vigil/internal/domain/entity"
	domainerrors "vigil/internal/domain/errors"
	"vigil/internal/domain/service"
	"vigil/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderService_ListReminders(t *testing.T) {
	user := &entity.UserProfile{ID: "user-1", DeviceID: "dev-1"}
	backend := &fakeBackend{
		listRemFn: func(ctx context.Context, userID string) ([]*entity.MedicationReminder, error) {
			assert.Equal(t, "user-1", userID)

			return []*entity.MedicationReminder{
				{ID: "rem-1", MedicineName: "Aspirin", IsActive: true},
			}, nil
		},
	}
	svc := NewReminderService(backend, loggedInRepo(user), testLogger())

	reminders, err := svc.ListReminders(context.Background())
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "Aspirin", reminders[0].MedicineName)
}

func TestReminderService_CreateReminder_PreservesScheduleOrder(t *testing.T) {
	user := &entity.UserProfile{ID: "user-1", DeviceID: "dev-1"}
	var sent *service.CreateReminderRequest
	backend := &fakeBackend{
		createRemFn: func(ctx context.Context, req *service.CreateReminderRequest) error {
			sent = req

			return nil
		},
	}
	svc := NewReminderService(backend, loggedInRepo(user), testLogger())

	schedule := []entity.ScheduleEntry{
		{Hours: 20, Minutes: 30},
		{Hours: 8, Minutes: 0},
	}
	err := svc.CreateReminder(context.Background(), &usecase.CreateReminderInput{
		MedicineName: "Aspirin",
		Schedule:     schedule,
	})
	require.NoError(t, err)

	require.NotNil(t, sent)
	assert.Equal(t, "user-1", sent.UserID)
	assert.Equal(t, "dev-1", sent.DeviceID)
	assert.Equal(t, schedule, sent.Schedule)
}

func TestReminderService_CreateReminder_Validation(t *testing.T) {
	user := &entity.UserProfile{ID: "user-1", DeviceID: "dev-1"}
	svc := NewReminderService(&fakeBackend{}, loggedInRepo(user), testLogger())

	err := svc.CreateReminder(context.Background(), &usecase.CreateReminderInput{
		MedicineName: "",
		Schedule:     []entity.ScheduleEntry{{Hours: 8}},
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	err = svc.CreateReminder(context.Background(), &usecase.CreateReminderInput{
		MedicineName: "Aspirin",
		Schedule:     nil,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestReminderService_DeleteReminder_NotAuthenticated(t *testing.T) {
	svc := NewReminderService(&fakeBackend{}, &memSessionRepo{}, testLogger())

	err := svc.DeleteReminder(context.Background(), "rem-1")
	assert.ErrorIs(t, err, domainerrors.ErrNotAuthenticated)
}
