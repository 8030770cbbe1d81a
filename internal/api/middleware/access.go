package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/stackdesk/iam-service/internal/api/metrics"
	"github.com/stackdesk/iam-service/internal/core/domain"
	"github.com/stackdesk/iam-service/internal/core/ports"
)

// RequireModule gates a route on one access module. It must run after
// Authenticate; the decision is delegated to the access control engine.
func RequireModule(access ports.AccessControl, module domain.AccessModule) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := CurrentUser(c)
			if err != nil {
				return err
			}

			if err := access.Authorize(c.Request().Context(), user, module); err != nil {
				metrics.AccessDecisionsTotal.WithLabelValues(string(module), "deny").Inc()
				return err
			}

			metrics.AccessDecisionsTotal.WithLabelValues(string(module), "allow").Inc()
			return next(c)
		}
	}
}
