package ports

import (
	"context"

	"github.com/stackdesk/iam-service/internal/core/domain"
)

// UserPatch is a partial user mutation at the persistence level. Password
// hashing happens before a patch reaches the repository.
type UserPatch struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	RoleID       *string
}

// BulkUserPatch carries one per-row entry of a bulk write.
type BulkUserPatch struct {
	ID    string
	Patch UserPatch
}

// UserWithRole is a user read model joined with its resolved role. Which role
// fields are populated depends on the projection of the query that produced
// it; PasswordHash is never included.
type UserWithRole struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      domain.Role `json:"role"`
}

// UserRepository defines the persistence contract for user records.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindWithRole joins the user with its role document.
	FindWithRole(ctx context.Context, id string) (*UserWithRole, error)
	// Search matches term as a case-insensitive substring of first or last
	// name (empty term matches all). Users whose role reference does not
	// resolve are excluded from the result.
	Search(ctx context.Context, term string) ([]UserWithRole, error)
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*UserWithRole, error)
	// UpdateMany applies one identical patch to every matched id in a single
	// store-level operation.
	UpdateMany(ctx context.Context, ids []string, patch UserPatch) (int64, error)
	// BulkUpdate applies per-row patches as one batch. Rows are written
	// independently; the batch is not atomic across rows.
	BulkUpdate(ctx context.Context, updates []BulkUserPatch) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, roleID string) (int64, error)
}
