package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stackdesk/iam-service/internal/core/domain"
)

func invokeGate(access *stubAccess, withUser bool) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if withUser {
		c.Set(userContextKey, &domain.User{ID: "507f1f77bcf86cd799439011"})
	}

	handler := RequireModule(access, domain.ModuleUserList)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return handler(c)
}

func TestRequireModule_Allows(t *testing.T) {
	if err := invokeGate(&stubAccess{}, true); err != nil {
		t.Fatalf("expected request to pass, got %v", err)
	}
}

func TestRequireModule_Denies(t *testing.T) {
	err := invokeGate(&stubAccess{authorizeErr: domain.ErrAccessDenied}, true)
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestRequireModule_NoAuthenticatedUser(t *testing.T) {
	err := invokeGate(&stubAccess{}, false)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
