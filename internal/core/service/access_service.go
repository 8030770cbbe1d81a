package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stackdesk/iam-service/internal/core/domain"
	"github.com/stackdesk/iam-service/internal/core/ports"
)

// AccessService decides whether an inbound request may proceed. Two gates run
// in order: Authenticate resolves the bearer token to a stored user, then
// Authorize checks the user's role against the requested module.
type AccessService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	tokens ports.TokenService
	log    zerolog.Logger
}

func NewAccessService(users ports.UserRepository, roles ports.RoleRepository, tokens ports.TokenService, log zerolog.Logger) *AccessService {
	return &AccessService{users: users, roles: roles, tokens: tokens, log: log}
}

// Authenticate verifies the token and loads the subject. A valid token whose
// subject no longer exists yields ErrUserNotFound, not an auth error.
func (s *AccessService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	subjectID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authorize allows the request iff the user's role is active, grants module,
// and is the default role. A non-default role holding the module is still
// denied; that rule is intentional-by-reproduction and pinned by tests, so
// relaxing it is an explicit policy change.
func (s *AccessService) Authorize(ctx context.Context, user *domain.User, module domain.AccessModule) error {
	role, err := s.roles.FindByID(ctx, user.RoleID)
	if err != nil {
		return fmt.Errorf("authorize: resolve role: %w", err)
	}

	if !role.Active {
		return domain.ErrAccountDisabled
	}

	if !role.HasModule(module) || !role.IsDefault {
		s.log.Debug().
			Str("user_id", user.ID).
			Str("role", role.Name).
			Str("module", string(module)).
			Msg("access denied")
		return domain.ErrAccessDenied
	}

	return nil
}
