package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/stackdesk/iam-service/internal/core/domain"
	"github.com/stackdesk/iam-service/internal/core/ports"
)

// --- role repository stub ---

type stubRoleRepo struct {
	roles map[string]*domain.Role
	seq   int
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[string]*domain.Role)}
}

func (r *stubRoleRepo) nextID() string {
	r.seq++
	return fmt.Sprintf("%024x", r.seq)
}

func cloneRole(role *domain.Role) *domain.Role {
	clone := *role
	clone.AccessModules = append([]domain.AccessModule(nil), role.AccessModules...)
	return &clone
}

func (r *stubRoleRepo) add(role *domain.Role) *domain.Role {
	stored := cloneRole(role)
	if stored.ID == "" {
		stored.ID = r.nextID()
	}
	r.roles[stored.ID] = stored
	return cloneRole(stored)
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return cloneRole(role), nil
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	for _, role := range r.roles {
		if strings.EqualFold(role.Name, name) {
			return cloneRole(role), nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindDefault(_ context.Context) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.IsDefault {
			return cloneRole(role), nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, *cloneRole(role))
	}
	return out, nil
}

func (r *stubRoleRepo) Insert(_ context.Context, role *domain.Role) (*domain.Role, error) {
	for _, existing := range r.roles {
		if strings.EqualFold(existing.Name, role.Name) {
			return nil, domain.ErrRoleExists
		}
	}
	return r.add(role), nil
}

func (r *stubRoleRepo) Update(_ context.Context, id string, patch ports.RoleUpdate) (*domain.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	if patch.Name != nil {
		role.Name = *patch.Name
	}
	if patch.AccessModules != nil {
		role.AccessModules = append([]domain.AccessModule(nil), patch.AccessModules...)
	}
	if patch.Active != nil {
		role.Active = *patch.Active
	}
	return cloneRole(role), nil
}

func (r *stubRoleRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.roles[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.roles, id)
	return nil
}

// --- user repository stub ---

type stubUserRepo struct {
	users     map[string]*domain.User
	roleRepo  *stubRoleRepo
	seq       int
	bulkCalls int
}

func newStubUserRepo(roles *stubRoleRepo) *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User), roleRepo: roles}
}

func (r *stubUserRepo) nextID() string {
	r.seq++
	return fmt.Sprintf("%024x", 0x1000+r.seq)
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func (r *stubUserRepo) add(u *domain.User) *domain.User {
	stored := cloneUser(u)
	if stored.ID == "" {
		stored.ID = r.nextID()
	}
	r.users[stored.ID] = stored
	return cloneUser(stored)
}

func (r *stubUserRepo) joined(u *domain.User) (*ports.UserWithRole, bool) {
	role, ok := r.roleRepo.roles[u.RoleID]
	if !ok {
		return nil, false
	}
	return &ports.UserWithRole{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      *cloneRole(role),
	}, true
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindWithRole(_ context.Context, id string) (*ports.UserWithRole, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	row, ok := r.joined(u)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return row, nil
}

func (r *stubUserRepo) Search(_ context.Context, term string) ([]ports.UserWithRole, error) {
	lower := strings.ToLower(term)
	out := make([]ports.UserWithRole, 0)
	for _, u := range r.users {
		if !strings.Contains(strings.ToLower(u.FirstName), lower) &&
			!strings.Contains(strings.ToLower(u.LastName), lower) {
			continue
		}
		if row, ok := r.joined(u); ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	return r.add(user), nil
}

func applyPatch(u *domain.User, patch ports.UserPatch) {
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.RoleID != nil {
		u.RoleID = *patch.RoleID
	}
}

func (r *stubUserRepo) Update(ctx context.Context, id string, patch ports.UserPatch) (*ports.UserWithRole, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	applyPatch(u, patch)
	return r.FindWithRole(ctx, id)
}

func (r *stubUserRepo) UpdateMany(_ context.Context, ids []string, patch ports.UserPatch) (int64, error) {
	var matched int64
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			applyPatch(u, patch)
			matched++
		}
	}
	return matched, nil
}

func (r *stubUserRepo) BulkUpdate(_ context.Context, updates []ports.BulkUserPatch) error {
	r.bulkCalls++
	for _, row := range updates {
		if u, ok := r.users[row.ID]; ok {
			applyPatch(u, row.Patch)
		}
	}
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, roleID string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

// --- credential stubs ---

type stubHasher struct {
	calls int
}

func (h *stubHasher) Hash(plain string) (string, error) {
	h.calls++
	return "hashed:" + plain, nil
}

func (h *stubHasher) Compare(plain, digest string) bool {
	return digest == "hashed:"+plain
}

type stubTokens struct{}

func (stubTokens) Issue(subjectID string) (string, error) {
	return "token:" + subjectID, nil
}

func (stubTokens) Verify(token string) (string, error) {
	subject, ok := strings.CutPrefix(token, "token:")
	if !ok || subject == "" {
		return "", domain.ErrInvalidToken
	}
	return subject, nil
}

type stubThrottle struct {
	blocked  bool
	failures map[string]int
	resets   int
}

func newStubThrottle() *stubThrottle {
	return &stubThrottle{failures: make(map[string]int)}
}

func (t *stubThrottle) TooManyFailures(_ context.Context, _ string) (bool, error) {
	return t.blocked, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, email string) error {
	t.failures[email]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, _ string) error {
	t.resets++
	return nil
}
