package ports

import (
	"context"

	"github.com/stackdesk/iam-service/internal/core/domain"
)

// AccessControl is the two-gate decision engine evaluated on every protected
// endpoint: first resolve the bearer token to a stored user, then decide
// whether that user's role clears the requested module.
type AccessControl interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	Authorize(ctx context.Context, user *domain.User, module domain.AccessModule) error
}
