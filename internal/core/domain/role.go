package domain

import "time"

// DefaultRoleName is the role seeded at startup. Signup assigns it and the
// request authorization gate only admits users holding it.
const DefaultRoleName = "Admin"

// Role groups a set of access modules under a name. Names are unique
// case-insensitively. Exactly one role carries IsDefault.
type Role struct {
	ID            string         `json:"id"`
	Name          string         `json:"role_name"`
	AccessModules []AccessModule `json:"access_modules"`
	Active        bool           `json:"active"`
	IsDefault     bool           `json:"is_default"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// HasModule reports whether the role grants module.
func (r *Role) HasModule(module AccessModule) bool {
	for _, m := range r.AccessModules {
		if m == module {
			return true
		}
	}
	return false
}
