package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stackdesk/iam-service/internal/core/domain"
	"github.com/stackdesk/iam-service/internal/core/ports"
)

// stubUserService satisfies ports.UserService with overridable behavior per
// test. Methods without an override fail the interface contract loudly.
type stubUserService struct {
	signupFn func(ctx context.Context, in ports.SignupInput) (*domain.User, error)
	loginFn  func(ctx context.Context, email, password string) (*ports.LoginResult, error)
}

func (s *stubUserService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	return s.signupFn(ctx, in)
}

func (s *stubUserService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubUserService) Create(context.Context, ports.CreateUserInput) (*domain.User, error) {
	panic("not expected in this test")
}

func (s *stubUserService) List(context.Context, string) ([]ports.UserWithRole, error) {
	panic("not expected in this test")
}

func (s *stubUserService) Get(context.Context, string) (*ports.UserWithRole, error) {
	panic("not expected in this test")
}

func (s *stubUserService) Update(context.Context, string, ports.UpdateUserInput) (*ports.UserWithRole, error) {
	panic("not expected in this test")
}

func (s *stubUserService) Delete(context.Context, string, string) error {
	panic("not expected in this test")
}

func (s *stubUserService) BulkUpdateSame(context.Context, []string, ports.BulkUserData) error {
	panic("not expected in this test")
}

func (s *stubUserService) BulkUpdateEach(context.Context, []ports.BulkUserEntry) error {
	panic("not expected in this test")
}

func (s *stubUserService) CheckAccess(context.Context, string, domain.AccessModule) (bool, error) {
	panic("not expected in this test")
}

func postJSON(t *testing.T, h echo.HandlerFunc, path, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func TestAuthHandler_Signup(t *testing.T) {
	svc := &stubUserService{
		signupFn: func(_ context.Context, in ports.SignupInput) (*domain.User, error) {
			return &domain.User{
				ID:        "507f1f77bcf86cd799439011",
				Email:     in.Email,
				FirstName: in.FirstName,
				LastName:  in.LastName,
			}, nil
		},
	}
	h := NewAuthHandler(svc)

	rec, err := postJSON(t, h.Signup, "/auth/signup",
		`{"email":"a@example.com","password":"secret1","first_name":"Ada","last_name":"L"}`)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["email"] != "a@example.com" {
		t.Fatalf("unexpected body: %v", resp)
	}
	if _, leaked := resp["password"]; leaked {
		t.Fatal("response leaks the password field")
	}
}

func TestAuthHandler_Signup_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubUserService{})

	_, err := postJSON(t, h.Signup, "/auth/signup", `{"email":"not-an-email","password":"x"}`)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Signup_Rejected(t *testing.T) {
	svc := &stubUserService{
		signupFn: func(context.Context, ports.SignupInput) (*domain.User, error) {
			return nil, domain.ErrSignupRejected
		},
	}
	h := NewAuthHandler(svc)

	_, err := postJSON(t, h.Signup, "/auth/signup",
		`{"email":"a@example.com","password":"secret1","first_name":"Ada","last_name":"L"}`)
	if !errors.Is(err, domain.ErrSignupRejected) {
		t.Fatalf("expected ErrSignupRejected, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &stubUserService{
		loginFn: func(_ context.Context, email, password string) (*ports.LoginResult, error) {
			return &ports.LoginResult{UserID: "507f1f77bcf86cd799439011", Token: "signed"}, nil
		},
	}
	h := NewAuthHandler(svc)

	rec, err := postJSON(t, h.Login, "/auth/login", `{"email":"a@example.com","password":"secret1"}`)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ports.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != "signed" {
		t.Fatalf("unexpected result: %+v", resp)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	svc := &stubUserService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(svc)

	_, err := postJSON(t, h.Login, "/auth/login", `{"email":"a@example.com","password":"wrong1"}`)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
