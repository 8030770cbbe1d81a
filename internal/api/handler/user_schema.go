package handler

import (
	"github.com/stackdesk/iam-service/internal/core/ports"
)

// --- Request / Response types ---

type signupRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type addUserRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	RoleID    string `json:"role_id"    validate:"required"`
}

type updateUserRequest struct {
	Email     *string `json:"email"      validate:"omitempty,email"`
	Password  *string `json:"password"   validate:"omitempty,min=6"`
	FirstName *string `json:"first_name" validate:"omitempty,min=1"`
	LastName  *string `json:"last_name"  validate:"omitempty,min=1"`
	RoleID    *string `json:"role_id"    validate:"omitempty,min=1"`
}

// bulkUserData is the patch shape for bulk updates; email is not updatable in
// bulk.
type bulkUserData struct {
	Password  *string `json:"password"   validate:"omitempty,min=6"`
	FirstName *string `json:"first_name" validate:"omitempty,min=1"`
	LastName  *string `json:"last_name"  validate:"omitempty,min=1"`
	RoleID    *string `json:"role_id"    validate:"omitempty,min=1"`
}

type bulkSameRequest struct {
	IDs  []string     `json:"ids"         validate:"required,min=1"`
	Data bulkUserData `json:"update_data"`
}

type bulkEntryRequest struct {
	ID   string       `json:"id"   validate:"required"`
	Data bulkUserData `json:"data"`
}

type bulkDifferentRequest struct {
	Updates []bulkEntryRequest `json:"updates" validate:"required,min=1,dive"`
}

// userResponse is the profile projection; the password hash never appears.
type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// userRoleSummary is the role projection embedded in user list rows.
type userRoleSummary struct {
	RoleName      string   `json:"role_name"`
	AccessModules []string `json:"access_modules"`
}

type userListItemResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Role      userRoleSummary `json:"role"`
}

// getUserResponse additionally exposes the role's active/default flags.
type getUserResponse struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Role      roleResponse `json:"role"`
}

type checkAccessResponse struct {
	HasAccess bool `json:"has_access"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toUserListItem(u ports.UserWithRole) userListItemResponse {
	modules := make([]string, 0, len(u.Role.AccessModules))
	for _, m := range u.Role.AccessModules {
		modules = append(modules, string(m))
	}
	return userListItemResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role: userRoleSummary{
			RoleName:      u.Role.Name,
			AccessModules: modules,
		},
	}
}

func toGetUserResponse(u *ports.UserWithRole) getUserResponse {
	return getUserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      toRoleResponse(&u.Role),
	}
}
