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

// RoleService enforces role lifecycle invariants: case-insensitive name
// uniqueness, catalog-only module sets without duplicates, immutability of
// the default role, and deletion only while no user references the role.
type RoleService struct {
	roles ports.RoleRepository
	users ports.UserRepository
	log   zerolog.Logger
}

func NewRoleService(roles ports.RoleRepository, users ports.UserRepository, log zerolog.Logger) *RoleService {
	return &RoleService{roles: roles, users: users, log: log}
}

func (s *RoleService) Create(ctx context.Context, in ports.CreateRoleInput) (*domain.Role, error) {
	existing, err := s.roles.FindByName(ctx, in.Name)
	if err != nil && !errors.Is(err, domain.ErrRoleNotFound) {
		return nil, fmt.Errorf("create role: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrRoleExists
	}

	if err := validateModules(in.AccessModules); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	role := &domain.Role{
		Name:          in.Name,
		AccessModules: in.AccessModules,
		Active:        in.Active,
		IsDefault:     false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.roles.Insert(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	s.log.Info().Str("role_id", created.ID).Str("name", created.Name).Msg("role created")
	return created, nil
}

func (s *RoleService) Get(ctx context.Context, id string) (*domain.Role, error) {
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	return s.roles.FindByID(ctx, id)
}

func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

func (s *RoleService) Update(ctx context.Context, id string, in ports.UpdateRoleInput) (*domain.Role, error) {
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}

	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.IsDefault {
		return nil, domain.ErrDefaultRoleImmutable
	}

	if len(in.AccessModules) > 0 {
		if err := validateModules(in.AccessModules); err != nil {
			return nil, err
		}
	}

	if in.Name != nil {
		other, err := s.roles.FindByName(ctx, *in.Name)
		if err != nil && !errors.Is(err, domain.ErrRoleNotFound) {
			return nil, fmt.Errorf("update role: %w", err)
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrRoleExists
		}
	}

	patch := ports.RoleUpdate{Name: in.Name, Active: in.Active}
	if len(in.AccessModules) > 0 {
		// Patched modules merge additively with the stored set; an update
		// can never shrink a role's grants (removal goes through
		// MutateModules).
		patch.AccessModules = unionModules(role.AccessModules, in.AccessModules)
	}

	updated, err := s.roles.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.log.Info().Str("role_id", id).Msg("role updated")
	return updated, nil
}

func (s *RoleService) Delete(ctx context.Context, id string) error {
	if !domain.IsValidID(id) {
		return domain.ErrInvalidID
	}

	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsDefault {
		return domain.ErrDefaultRoleImmutable
	}

	// Count-then-delete is racy: a user assigned between the two calls can
	// be orphaned. Accepted; the store offers no cross-record transactions.
	count, err := s.users.CountByRole(ctx, id)
	if err != nil {
		return fmt.Errorf("delete role: count users: %w", err)
	}
	if count > 0 {
		return domain.ErrRoleInUse
	}

	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("role_id", id).Str("name", role.Name).Msg("role deleted")
	return nil
}

func (s *RoleService) MutateModules(ctx context.Context, id string, add []domain.AccessModule, remove domain.AccessModule) (*domain.Role, error) {
	if len(add) == 0 && remove == "" {
		return nil, domain.ErrMissingModules
	}
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}

	// The remove module participates in the duplicate check together with
	// the additions, so add=[X] remove=X is rejected up front.
	candidates := make([]domain.AccessModule, 0, len(add)+1)
	for _, m := range add {
		if !m.Valid() {
			return nil, domain.ErrInvalidModules
		}
		candidates = append(candidates, m)
	}
	if remove != "" {
		if !remove.Valid() {
			return nil, domain.ErrInvalidModules
		}
		candidates = append(candidates, remove)
	}
	if domain.HasDuplicateModules(candidates) {
		return nil, domain.ErrDuplicateModules
	}

	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.IsDefault {
		return nil, domain.ErrDefaultRoleImmutable
	}

	modules := role.AccessModules
	if len(add) > 0 {
		modules = unionModules(modules, add)
	}
	if remove != "" {
		filtered := modules[:0:0]
		for _, m := range modules {
			if m != remove {
				filtered = append(filtered, m)
			}
		}
		modules = filtered
	}

	updated, err := s.roles.Update(ctx, id, ports.RoleUpdate{AccessModules: modules})
	if err != nil {
		return nil, fmt.Errorf("mutate modules: %w", err)
	}

	s.log.Info().
		Str("role_id", id).
		Int("modules", len(updated.AccessModules)).
		Msg("access modules updated")
	return updated, nil
}

// validateModules rejects module lists containing duplicates or values
// outside the catalog.
func validateModules(modules []domain.AccessModule) error {
	for _, m := range modules {
		if !m.Valid() {
			return domain.ErrInvalidModules
		}
	}
	if domain.HasDuplicateModules(modules) {
		return domain.ErrDuplicateModules
	}
	return nil
}

// unionModules appends the members of extra not already present in base,
// preserving order of first appearance.
func unionModules(base, extra []domain.AccessModule) []domain.AccessModule {
	out := make([]domain.AccessModule, 0, len(base)+len(extra))
	seen := make(map[domain.AccessModule]struct{}, len(base)+len(extra))
	for _, m := range base {
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	for _, m := range extra {
		if _, ok := seen[m]; !ok {
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}
