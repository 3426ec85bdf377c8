package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "authcore/internal/delivery/context"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/domain/service"
	"authcore/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

const basicAuthRealm = "authcore"

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenService service.TokenService
	AuthUC       usecase.AuthUsecase
	Logger       *slog.Logger
}

// AuthMiddleware provides the bearer-token and local (HTTP Basic) strategies.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	authUC   usecase.AuthUsecase
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc: params.TokenService,
		authUC:   params.AuthUC,
		logger:   params.Logger,
	}
}

// Authenticate validates the bearer access token and stores its subject as the user id.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		scheme, token, found := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return domainerrors.ErrUnauthorized
		}

		claims, err := m.tokenSvc.Validate(strings.TrimSpace(token))
		if err != nil {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).Debug("Rejected access token", slog.Any("error", err))

			return domainerrors.ErrUnauthorized
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return domainerrors.ErrUnauthorized
		}

		deliverycontext.SetUserID(c, userID)

		return next(c)
	}
}

// Local checks HTTP Basic credentials (username = email) through ValidateCredentials.
func (m *AuthMiddleware) Local() echo.MiddlewareFunc {
	return echomiddleware.BasicAuthWithConfig(echomiddleware.BasicAuthConfig{
		Realm: basicAuthRealm,
		Validator: func(email, password string, c echo.Context) (bool, error) {
			user, ok, err := m.authUC.ValidateCredentials(c.Request().Context(), email, password)
			if err != nil || !ok {
				return false, err
			}

			deliverycontext.SetAuthUser(c, user)

			return true, nil
		},
	})
}
