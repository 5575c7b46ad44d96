package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"flipearn/pkg/errors"
	"flipearn/pkg/logger"
	"flipearn/pkg/response"

	"github.com/labstack/echo/v4"
)

type Limiter interface {
	Allow(key, action string) (bool, time.Duration)
}

// RateLimit throttles requests per client IP under the given action name.
func RateLimit(limiter Limiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			allowed, wait := limiter.Allow(ip, action)
			if !allowed {
				retryAfter := int(math.Ceil(wait.Seconds()))
				logger.Warn("Rate limit hit for %s on %s (retry in %ds)", ip, action, retryAfter)

				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return response.Error(c, errors.TooManyRequests(fmt.Sprintf("Rate limit exceeded, retry in %ds", retryAfter)))
			}

			return next(c)
		}
	}
}
