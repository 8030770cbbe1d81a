package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stackdesk/iam-service/internal/core/domain"
	"github.com/stackdesk/iam-service/internal/core/ports"
)

// Seeder guarantees the default role exists before the service accepts
// traffic. Without it nothing can be authorized, so a seeding failure is
// fatal to the process.
type Seeder struct {
	roles ports.RoleRepository
	log   zerolog.Logger
}

func NewSeeder(roles ports.RoleRepository, log zerolog.Logger) *Seeder {
	return &Seeder{roles: roles, log: log}
}

// EnsureDefaultRole creates the default role with the full module catalog if
// it is absent. Idempotent: safe to run on every startup.
func (s *Seeder) EnsureDefaultRole(ctx context.Context) error {
	existing, err := s.roles.FindByName(ctx, domain.DefaultRoleName)
	if err != nil && !errors.Is(err, domain.ErrRoleNotFound) {
		return fmt.Errorf("seed default role: %w", err)
	}
	if existing != nil {
		s.log.Debug().Str("role_id", existing.ID).Msg("default role already present")
		return nil
	}

	now := time.Now().UTC()
	role := &domain.Role{
		Name:          domain.DefaultRoleName,
		AccessModules: domain.AllModules(),
		Active:        true,
		IsDefault:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.roles.Insert(ctx, role)
	if err != nil {
		return fmt.Errorf("seed default role: %w", err)
	}

	s.log.Info().Str("role_id", created.ID).Msg("default role created")
	return nil
}
