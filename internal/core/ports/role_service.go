package ports

import (
	"context"

	"github.com/stackdesk/iam-service/internal/core/domain"
)

// CreateRoleInput carries the fields accepted when creating a role. New roles
// are never default; the default role exists only via bootstrap seeding.
type CreateRoleInput struct {
	Name          string
	AccessModules []domain.AccessModule
	Active        bool
}

// UpdateRoleInput is a partial role mutation. A non-nil AccessModules slice is
// merged as a union with the stored set, never a replacement.
type UpdateRoleInput struct {
	Name          *string
	AccessModules []domain.AccessModule
	Active        *bool
}

type RoleService interface {
	Create(ctx context.Context, in CreateRoleInput) (*domain.Role, error)
	Get(ctx context.Context, id string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Update(ctx context.Context, id string, in UpdateRoleInput) (*domain.Role, error)
	Delete(ctx context.Context, id string) error
	// MutateModules unions add into the role's module set, then removes
	// remove (empty means no removal). At least one of the two must be given.
	MutateModules(ctx context.Context, id string, add []domain.AccessModule, remove domain.AccessModule) (*domain.Role, error)
}
