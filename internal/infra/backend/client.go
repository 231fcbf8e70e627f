// Package backend implements the remote fall-detection REST API client.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"vigil/config"
	"vigil/internal/domain/entity"
	domainerrors "vigil/internal/domain/errors"
	"vigil/internal/domain/service"

	"github.com/pkg/errors"
)

// client implements service.BackendService over plain HTTP. One request per
// operation; no retries, no caching.
type client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates the REST client for the configured backend.
func NewClient(cfg *config.Config, logger *slog.Logger) service.BackendService {
	return &client{
		baseURL: strings.TrimRight(cfg.Backend.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Backend.Timeout,
		},
		logger: logger,
	}
}

// userEnvelope matches the {user} payload of the auth and profile endpoints.
type userEnvelope struct {
	User *entity.UserProfile `json:"user"`
}

// dataEnvelope matches list payloads such as {data: [...]}.
type dataEnvelope[T any] struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// errorBody is the error shape every non-2xx response carries.
type errorBody struct {
	Message string `json:"message"`
}

// Login exchanges credentials for the account profile. A 401 is the
// backend's credential rejection and is mapped onto ErrInvalidCredentials,
// keeping the backend's message verbatim.
func (c *client) Login(ctx context.Context, req *service.LoginRequest) (*entity.UserProfile, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		var appErr domainerrors.AppError
		if errors.As(err, &appErr) && appErr.HTTPCode() == http.StatusUnauthorized {
			return nil, domainerrors.ErrInvalidCredentials.WithMessage(appErr.Message())
		}

		return nil, err
	}
	if out.User == nil {
		return nil, domainerrors.ErrMalformedResponse.WrapMessage("login response had no user")
	}

	return out.User, nil
}

// Register creates a new account bound to a device identifier.
func (c *client) Register(ctx context.Context, req *service.RegisterRequest) (*entity.UserProfile, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, domainerrors.ErrMalformedResponse.WrapMessage("register response had no user")
	}

	return out.User, nil
}

// FetchUser retrieves the account profile by ID.
func (c *client) FetchUser(ctx context.Context, userID string) (*entity.UserProfile, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/users/"+userID, nil, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, domainerrors.ErrMalformedResponse.WrapMessage("user response had no user")
	}

	return out.User, nil
}

// UpdateUser submits the mutable profile fields and returns the stored profile.
func (c *client) UpdateUser(ctx context.Context, userID string, req *service.UpdateProfileRequest) (*entity.UserProfile, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/users/"+userID, req, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, domainerrors.ErrMalformedResponse.WrapMessage("update response had no user")
	}

	return out.User, nil
}

// FetchFallHistory retrieves the stored fall records for a device.
func (c *client) FetchFallHistory(ctx context.Context, deviceID string) ([]*entity.FallHistoryRecord, error) {
	var out dataEnvelope[[]*entity.FallHistoryRecord]
	if err := c.do(ctx, http.MethodGet, "/api/fall-detection?deviceId="+deviceID, nil, &out); err != nil {
		return nil, err
	}

	return out.Data, nil
}

// ListReminders retrieves the medication reminders for an account.
func (c *client) ListReminders(ctx context.Context, userID string) ([]*entity.MedicationReminder, error) {
	var out dataEnvelope[[]*entity.MedicationReminder]
	if err := c.do(ctx, http.MethodGet, "/api/medication-reminders/user/"+userID, nil, &out); err != nil {
		return nil, err
	}
	if out.Success != nil && !*out.Success {
		return nil, backendRejected(http.StatusBadRequest, out.Message)
	}

	return out.Data, nil
}

// CreateReminder registers a new medication reminder.
func (c *client) CreateReminder(ctx context.Context, req *service.CreateReminderRequest) error {
	var out dataEnvelope[json.RawMessage]
	if err := c.do(ctx, http.MethodPost, "/api/medication-reminders", req, &out); err != nil {
		return err
	}
	if out.Success != nil && !*out.Success {
		return backendRejected(http.StatusBadRequest, out.Message)
	}

	return nil
}

// DeleteReminder removes a medication reminder.
func (c *client) DeleteReminder(ctx context.Context, reminderID string) error {
	var out dataEnvelope[json.RawMessage]
	if err := c.do(ctx, http.MethodDelete, "/api/medication-reminders/"+reminderID, nil, &out); err != nil {
		return err
	}
	if out.Success != nil && !*out.Success {
		return backendRejected(http.StatusBadRequest, out.Message)
	}

	return nil
}

// do issues one request and decodes the response into out. Non-2xx responses
// become AppErrors carrying the backend's message verbatim.
func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)

		return domainerrors.ErrBackendUnavailable.WithDetails(err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domainerrors.ErrBackendUnavailable.WithDetails(err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp.StatusCode, raw, method, path)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("Backend returned unexpected payload",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.Any("error", err),
		)

		return domainerrors.ErrMalformedResponse.WithDetails(err.Error())
	}

	return nil
}

// decodeError turns a non-2xx response into an AppError. The backend's
// {message} is surfaced verbatim; a missing or malformed body falls back to a
// generic message.
func (c *client) decodeError(status int, raw []byte, method, path string) error {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		c.logger.Warn("Backend error without message",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
		)

		return backendRejected(status, "")
	}

	return backendRejected(status, body.Message)
}

// backendRejected builds the AppError for an API-level rejection, preserving
// the upstream status code so the console relays it unchanged.
func backendRejected(status int, message string) error {
	if message == "" {
		return domainerrors.NewBaseError(status, "BACKEND_REJECTED",
			domainerrors.ErrBackendRejected.Message(), "")
	}

	return domainerrors.NewBaseError(status, "BACKEND_REJECTED", message, "")
}
