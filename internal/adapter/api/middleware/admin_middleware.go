package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminOnly admits callers whose token carries the admin claim. It must run
// after Authenticate.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth, ok := GetAuth(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}

		if !auth.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Admin privileges required")
		}

		return next(c)
	}
}
