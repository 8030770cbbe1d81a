package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stackdesk/iam-service/internal/core/domain"
)

type stubAccess struct {
	user         *domain.User
	authErr      error
	authorizeErr error
}

func (s *stubAccess) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if s.authErr != nil {
		return nil, s.authErr
	}
	return s.user, nil
}

func (s *stubAccess) Authorize(_ context.Context, _ *domain.User, _ domain.AccessModule) error {
	return s.authorizeErr
}

func invoke(mw echo.MiddlewareFunc, authHeader string) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func TestAuthenticate_InjectsUser(t *testing.T) {
	user := &domain.User{ID: "507f1f77bcf86cd799439011", Email: "a@example.com"}
	access := &stubAccess{user: user}

	c, err := invoke(Authenticate(access), "Bearer some-token")
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}

	got, err := CurrentUser(c)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got.ID)
	}
}

func TestAuthenticate_BarePrefixlessToken(t *testing.T) {
	// Tokens are accepted with or without the scheme prefix.
	access := &stubAccess{user: &domain.User{ID: "507f1f77bcf86cd799439011"}}

	if _, err := invoke(Authenticate(access), "raw-token"); err != nil {
		t.Fatalf("middleware: %v", err)
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	access := &stubAccess{user: &domain.User{ID: "507f1f77bcf86cd799439011"}}

	_, err := invoke(Authenticate(access), "")
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	access := &stubAccess{authErr: domain.ErrInvalidToken}

	_, err := invoke(Authenticate(access), "Bearer bad")
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCurrentUser_Unset(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := CurrentUser(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
