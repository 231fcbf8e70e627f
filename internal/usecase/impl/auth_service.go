// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "vigil/internal/delivery/context"
	"vigil/internal/domain/entity"
	"vigil/internal/domain/repository"
	"vigil/internal/domain/service"
	"vigil/internal/usecase"

	"github.com/pkg/errors"
)

// authService implements the AuthUsecase interface.
type authService struct {
	backend  service.BackendService
	sessions repository.SessionRepository
	logger   *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(
	backend service.BackendService,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		backend:  backend,
		sessions: sessions,
		logger:   logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login authenticates against the backend and persists the session. The
// store is written only after the backend accepted the credentials, so a
// rejected login can never flip the flag.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.SessionOutput, error) {
	srv.log(ctx).Info("Logging in", slog.String("phone", input.PhoneEmergency))

	// 1. Authenticate with the backend
	profile, err := srv.backend.Login(ctx, &service.LoginRequest{
		PhoneEmergency: input.PhoneEmergency,
		Password:       input.Password,
	})
	if err != nil {
		srv.log(ctx).Warn("Login rejected", slog.Any("error", err))

		return nil, errors.Wrap(err, "login failed")
	}

	// 2. Persist flag and profile together
	session := &entity.Session{
		IsAuthenticated: true,
		User:            profile,
	}
	if err := srv.sessions.Save(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to persist session")
	}

	srv.log(ctx).Info("Login successful",
		slog.String("user_id", profile.ID),
		slog.String("device_id", profile.DeviceID),
	)

	return &usecase.SessionOutput{Session: session}, nil
}

// Register creates the backend account. The session store is untouched; the
// caller logs in afterwards.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.UserProfile, error) {
	srv.log(ctx).Info("Registering account",
		slog.String("phone", input.PhoneEmergency),
		slog.String("device_id", input.DeviceID),
	)

	profile, err := srv.backend.Register(ctx, &service.RegisterRequest{
		PhoneEmergency: input.PhoneEmergency,
		Password:       input.Password,
		DeviceID:       input.DeviceID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "registration failed")
	}

	return profile, nil
}

// Logout clears both persisted keys in one transaction.
func (srv *authService) Logout(ctx context.Context) error {
	srv.log(ctx).Info("Logging out")

	if err := srv.sessions.Clear(ctx); err != nil {
		return errors.Wrap(err, "failed to clear session")
	}

	return nil
}

// Current loads the persisted session; a store that was never written reads
// as logged out.
func (srv *authService) Current(ctx context.Context) (*entity.Session, error) {
	session, err := srv.sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return &entity.Session{}, nil
		}

		return nil, errors.Wrap(err, "failed to load session")
	}

	return session, nil
}
