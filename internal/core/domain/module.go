package domain

// AccessModule identifies one gated capability of the service. The catalog is
// a fixed process-wide constant set; roles grant subsets of it.
type AccessModule string

const (
	ModuleRoleCreate       AccessModule = "ROLE_CREATE"
	ModuleRoleList         AccessModule = "ROLE_LIST"
	ModuleRoleRead         AccessModule = "ROLE_READ"
	ModuleRoleUpdate       AccessModule = "ROLE_UPDATE"
	ModuleRoleDelete       AccessModule = "ROLE_DELETE"
	ModuleRoleUpdateAccess AccessModule = "ROLE_UPDATE_ACCESS_MODULE"
	ModuleUserList         AccessModule = "USER_LIST"
	ModuleUserCreate       AccessModule = "USER_CREATE"
	ModuleUserRead         AccessModule = "USER_READ"
	ModuleUserUpdate       AccessModule = "USER_UPDATE"
	ModuleUserDelete       AccessModule = "USER_DELETE"
	ModuleUserBulkSame     AccessModule = "USER_BULK_UPDATE_SAME"
	ModuleUserBulkPerUser  AccessModule = "USER_BULK_UPDATE_PER_USER"
	ModuleAccessCheck      AccessModule = "ACCESS_CHECK"
)

var allModules = []AccessModule{
	ModuleRoleCreate,
	ModuleRoleList,
	ModuleRoleRead,
	ModuleRoleUpdate,
	ModuleRoleDelete,
	ModuleRoleUpdateAccess,
	ModuleUserList,
	ModuleUserCreate,
	ModuleUserRead,
	ModuleUserUpdate,
	ModuleUserDelete,
	ModuleUserBulkSame,
	ModuleUserBulkPerUser,
	ModuleAccessCheck,
}

// Valid reports whether m belongs to the catalog.
func (m AccessModule) Valid() bool {
	for _, known := range allModules {
		if m == known {
			return true
		}
	}
	return false
}

// AllModules returns the full catalog in declaration order. Callers get a
// copy; the catalog itself is immutable.
func AllModules() []AccessModule {
	out := make([]AccessModule, len(allModules))
	copy(out, allModules)
	return out
}

// HasDuplicateModules reports whether modules repeats any value.
func HasDuplicateModules(modules []AccessModule) bool {
	seen := make(map[AccessModule]struct{}, len(modules))
	for _, m := range modules {
		if _, ok := seen[m]; ok {
			return true
		}
		seen[m] = struct{}{}
	}
	return false
}
