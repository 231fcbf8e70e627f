package middleware

import (
	domainerrors "vigil/internal/domain/errors"
	"vigil/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware gates console routes behind the persisted session.
type AuthMiddleware struct {
	authUsecase usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(authUsecase usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{authUsecase: authUsecase}
}

// RequireSession rejects requests when no authenticated session is stored.
// The session is set on the context for handlers to use.
func (m *AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := m.authUsecase.Current(c.Request().Context())
		if err != nil {
			return err
		}
		if !session.Authenticated() {
			return domainerrors.ErrNotAuthenticated
		}

		c.Set("session", session)

		return next(c)
	}
}
