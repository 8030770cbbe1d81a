package handler

import (
	"github.com/stackdesk/iam-service/internal/core/domain"
)

// --- Request / Response types ---

type createRoleRequest struct {
	RoleName      string   `json:"role_name"      validate:"required"`
	AccessModules []string `json:"access_modules" validate:"required,min=1"`
	// Active defaults to true when omitted.
	Active *bool `json:"active"`
}

type updateRoleRequest struct {
	RoleName      *string  `json:"role_name"      validate:"omitempty,min=1"`
	AccessModules []string `json:"access_modules"`
	Active        *bool    `json:"active"`
}

type mutateModulesRequest struct {
	AddModules   []string `json:"add_modules"`
	RemoveModule string   `json:"remove_module"`
}

// roleResponse is the projection exposed on all role reads: never timestamps,
// always the default flag.
type roleResponse struct {
	ID            string   `json:"id"`
	RoleName      string   `json:"role_name"`
	AccessModules []string `json:"access_modules"`
	Active        bool     `json:"active"`
	IsDefault     bool     `json:"is_default"`
}

func toRoleResponse(r *domain.Role) roleResponse {
	modules := make([]string, 0, len(r.AccessModules))
	for _, m := range r.AccessModules {
		modules = append(modules, string(m))
	}
	return roleResponse{
		ID:            r.ID,
		RoleName:      r.Name,
		AccessModules: modules,
		Active:        r.Active,
		IsDefault:     r.IsDefault,
	}
}

func toAccessModules(in []string) []domain.AccessModule {
	out := make([]domain.AccessModule, 0, len(in))
	for _, m := range in {
		out = append(out, domain.AccessModule(m))
	}
	return out
}
