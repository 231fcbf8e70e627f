package impl

import (
	"context"
	"log/slog"

	deliverycontext "vigil/internal/delivery/context"
	"vigil/internal/domain/entity"
	domainerrors "vigil/internal/domain/errors"
	"vigil/internal/domain/repository"
	"vigil/internal/domain/service"
	"vigil/internal/usecase"

	"github.com/pkg/errors"
)

// reminderService implements the ReminderUsecase interface.
type reminderService struct {
	backend  service.BackendService
	sessions repository.SessionRepository
	logger   *slog.Logger
}

// NewReminderService is the constructor for reminderService.
func NewReminderService(
	backend service.BackendService,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) usecase.ReminderUsecase {
	return &reminderService{
		backend:  backend,
		sessions: sessions,
		logger:   logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *reminderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListReminders retrieves the account's medication reminders.
func (srv *reminderService) ListReminders(ctx context.Context) ([]*entity.MedicationReminder, error) {
	session, err := srv.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	reminders, err := srv.backend.ListReminders(ctx, session.User.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reminders")
	}

	return reminders, nil
}

// CreateReminder registers a new reminder. Schedule entries keep their
// submitted order.
func (srv *reminderService) CreateReminder(ctx context.Context, input *usecase.CreateReminderInput) error {
	session, err := srv.requireSession(ctx)
	if err != nil {
		return err
	}

	if input.MedicineName == "" || len(input.Schedule) == 0 {
		return domainerrors.ErrValidation.WrapMessage("medicine name and at least one time are required")
	}

	err = srv.backend.CreateReminder(ctx, &service.CreateReminderRequest{
		UserID:       session.User.ID,
		DeviceID:     session.User.DeviceID,
		MedicineName: input.MedicineName,
		Schedule:     input.Schedule,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create reminder")
	}

	srv.log(ctx).Info("Reminder created",
		slog.String("user_id", session.User.ID),
		slog.String("medicine", input.MedicineName),
		slog.Int("times", len(input.Schedule)),
	)

	return nil
}

// DeleteReminder removes a reminder.
func (srv *reminderService) DeleteReminder(ctx context.Context, reminderID string) error {
	if _, err := srv.requireSession(ctx); err != nil {
		return err
	}

	if err := srv.backend.DeleteReminder(ctx, reminderID); err != nil {
		return errors.Wrap(err, "failed to delete reminder")
	}

	srv.log(ctx).Info("Reminder deleted", slog.String("reminder_id", reminderID))

	return nil
}

// requireSession loads the session and rejects unauthenticated callers.
func (srv *reminderService) requireSession(ctx context.Context) (*entity.Session, error) {
	session, err := srv.sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, domainerrors.ErrNotAuthenticated
		}

		return nil, errors.Wrap(err, "failed to load session")
	}
	if !session.IsAuthenticated || session.User == nil {
		return nil, domainerrors.ErrNotAuthenticated
	}

	return session, nil
}
