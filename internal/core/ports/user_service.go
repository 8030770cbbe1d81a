package ports

import (
	"context"

	"github.com/stackdesk/iam-service/internal/core/domain"
)

// SignupInput carries self-registration fields. The role is always the
// current default role, resolved at call time.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// CreateUserInput is the administrative variant with an explicit role.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleID    string
}

// UpdateUserInput is a partial user mutation; nil fields are untouched.
type UpdateUserInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	RoleID    *string
}

// BulkUserData is the patch shape allowed in bulk operations. Email is
// deliberately absent: bulk writes cannot claim unique addresses.
type BulkUserData struct {
	Password  *string
	FirstName *string
	LastName  *string
	RoleID    *string
}

// BulkUserEntry pairs one target user with its own patch.
type BulkUserEntry struct {
	ID   string
	Data BulkUserData
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	List(ctx context.Context, search string) ([]UserWithRole, error)
	Get(ctx context.Context, id string) (*UserWithRole, error)
	Update(ctx context.Context, id string, in UpdateUserInput) (*UserWithRole, error)
	// Delete removes targetID on behalf of actorID; deleting oneself is
	// rejected.
	Delete(ctx context.Context, actorID, targetID string) error
	BulkUpdateSame(ctx context.Context, ids []string, data BulkUserData) error
	BulkUpdateEach(ctx context.Context, updates []BulkUserEntry) error
	// CheckAccess reports raw membership of module in the user's role set,
	// regardless of whether the role is the default one.
	CheckAccess(ctx context.Context, userID string, module domain.AccessModule) (bool, error)
}
