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

// profileService implements the ProfileUsecase interface.
type profileService struct {
	backend  service.BackendService
	sessions repository.SessionRepository
	logger   *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(
	backend service.BackendService,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) usecase.ProfileUsecase {
	return &profileService{
		backend:  backend,
		sessions: sessions,
		logger:   logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile fetches the stored profile for the logged-in account.
func (srv *profileService) GetProfile(ctx context.Context) (*entity.UserProfile, error) {
	session, err := srv.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := srv.backend.FetchUser(ctx, session.User.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch profile")
	}

	return profile, nil
}

// UpdateProfile submits the mutable fields and refreshes the persisted
// session copy so the device identifier survives restarts unchanged.
func (srv *profileService) UpdateProfile(ctx context.Context, input *usecase.UpdateProfileInput) (*entity.UserProfile, error) {
	session, err := srv.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	// 1. Submit the mutable fields only
	profile, err := srv.backend.UpdateUser(ctx, session.User.ID, &service.UpdateProfileRequest{
		FullName:       input.FullName,
		Age:            input.Age,
		Sex:            input.Sex,
		Address:        input.Address,
		MedicalNotes:   input.MedicalNotes,
		EmergencyName:  input.EmergencyName,
		EmergencyEmail: input.EmergencyEmail,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update profile")
	}

	// 2. Refresh the persisted copy, flag and profile together
	session.User = profile
	if err := srv.sessions.Save(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to persist updated profile")
	}

	srv.log(ctx).Info("Profile updated", slog.String("user_id", profile.ID))

	return profile, nil
}

// requireSession loads the session and rejects unauthenticated callers.
func (srv *profileService) requireSession(ctx context.Context) (*entity.Session, error) {
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
