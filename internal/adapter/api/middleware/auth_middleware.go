package middleware

import (
	"context"
	"net/http"
	"strings"

	"flipearn/internal/domain/entity"
	"flipearn/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	uidKey  = "uid"
	authKey = "auth"
)

type IdentityVerifier interface {
	VerifyIdentity(ctx context.Context, idToken string) (*entity.AuthContext, error)
}

// UserSyncer mirrors a verified identity into local storage.
type UserSyncer interface {
	EnsureUser(ctx context.Context, auth entity.AuthContext) error
}

type AuthMiddleware struct {
	verifier IdentityVerifier
	users    UserSyncer
}

func NewAuthMiddleware(verifier IdentityVerifier, users UserSyncer) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		users:    users,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}

		identity, err := m.verifier.VerifyIdentity(c.Request().Context(), parts[1])
		if err != nil {
			logger.Debug("Token verification failed: %v", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		if m.users != nil {
			if err := m.users.EnsureUser(c.Request().Context(), *identity); err != nil {
				logger.Error("Failed to sync user %s: %v", identity.UserID, err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load user")
			}
		}

		c.Set(uidKey, identity.UserID)
		c.Set(authKey, *identity)

		return next(c)
	}
}

// GetAuth returns the identity stored by Authenticate.
func GetAuth(c echo.Context) (entity.AuthContext, bool) {
	auth, ok := c.Get(authKey).(entity.AuthContext)
	return auth, ok && auth.UserID != ""
}

// SetAuth stores identity on the context the way Authenticate does.
func SetAuth(c echo.Context, auth entity.AuthContext) {
	c.Set(uidKey, auth.UserID)
	c.Set(authKey, auth)
}
