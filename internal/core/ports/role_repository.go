package ports

import (
	"context"

	"github.com/stackdesk/iam-service/internal/core/domain"
)

// RoleUpdate is a partial role mutation. Nil fields are left untouched;
// AccessModules, when set, fully replaces the stored set (merging is the
// service's job).
type RoleUpdate struct {
	Name          *string
	AccessModules []domain.AccessModule
	Active        *bool
}

// RoleRepository defines the persistence contract for role records.
type RoleRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	// FindByName matches the role name case-insensitively.
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	// FindDefault returns the single role with IsDefault=true.
	FindDefault(ctx context.Context) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Insert(ctx context.Context, role *domain.Role) (*domain.Role, error)
	Update(ctx context.Context, id string, patch RoleUpdate) (*domain.Role, error)
	Delete(ctx context.Context, id string) error
}
