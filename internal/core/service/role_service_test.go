package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stackdesk/iam-service/internal/core/domain"
	"github.com/stackdesk/iam-service/internal/core/ports"
)

func newRoleFixture() (*RoleService, *stubRoleRepo, *stubUserRepo) {
	roles := newStubRoleRepo()
	users := newStubUserRepo(roles)
	return NewRoleService(roles, users, zerolog.Nop()), roles, users
}

func seedRole(roles *stubRoleRepo, name string, modules []domain.AccessModule, active, isDefault bool) *domain.Role {
	return roles.add(&domain.Role{
		Name:          name,
		AccessModules: modules,
		Active:        active,
		IsDefault:     isDefault,
	})
}

func TestRoleService_Create(t *testing.T) {
	svc, roles, _ := newRoleFixture()

	created, err := svc.Create(context.Background(), ports.CreateRoleInput{
		Name:          "Editor",
		AccessModules: []domain.AccessModule{domain.ModuleUserRead},
		Active:        true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if created.IsDefault {
		t.Fatal("created roles must never be default")
	}

	stored, err := roles.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Name != "Editor" || !stored.Active {
		t.Fatalf("unexpected stored role: %+v", stored)
	}
}

func TestRoleService_Create_DuplicateNameCaseInsensitive(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	seedRole(roles, "Editor", []domain.AccessModule{domain.ModuleUserRead}, true, false)

	_, err := svc.Create(context.Background(), ports.CreateRoleInput{
		Name:          "eDiToR",
		AccessModules: []domain.AccessModule{domain.ModuleUserList},
		Active:        true,
	})
	if !errors.Is(err, domain.ErrRoleExists) {
		t.Fatalf("expected ErrRoleExists, got %v", err)
	}
}

func TestRoleService_Create_DuplicateModules(t *testing.T) {
	svc, _, _ := newRoleFixture()

	_, err := svc.Create(context.Background(), ports.CreateRoleInput{
		Name:          "Editor",
		AccessModules: []domain.AccessModule{domain.ModuleUserRead, domain.ModuleUserRead},
		Active:        true,
	})
	if !errors.Is(err, domain.ErrDuplicateModules) {
		t.Fatalf("expected ErrDuplicateModules, got %v", err)
	}
}

func TestRoleService_Create_UnknownModule(t *testing.T) {
	svc, _, _ := newRoleFixture()

	_, err := svc.Create(context.Background(), ports.CreateRoleInput{
		Name:          "Editor",
		AccessModules: []domain.AccessModule{"NOT_A_MODULE"},
		Active:        true,
	})
	if !errors.Is(err, domain.ErrInvalidModules) {
		t.Fatalf("expected ErrInvalidModules, got %v", err)
	}
}

func TestRoleService_Get_MalformedID(t *testing.T) {
	svc, _, _ := newRoleFixture()

	if _, err := svc.Get(context.Background(), "not-hex"); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestRoleService_Update_NotFound(t *testing.T) {
	svc, _, _ := newRoleFixture()

	name := "Renamed"
	_, err := svc.Update(context.Background(), "000000000000000000000abc", ports.UpdateRoleInput{Name: &name})
	if !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestRoleService_Update_DefaultRoleForbidden(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	admin := seedRole(roles, domain.DefaultRoleName, domain.AllModules(), true, true)

	name := "SuperAdmin"
	_, err := svc.Update(context.Background(), admin.ID, ports.UpdateRoleInput{Name: &name})
	if !errors.Is(err, domain.ErrDefaultRoleImmutable) {
		t.Fatalf("expected ErrDefaultRoleImmutable, got %v", err)
	}
}

func TestRoleService_Update_MergesModulesAsUnion(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	role := seedRole(roles, "Editor", []domain.AccessModule{domain.ModuleUserRead}, true, false)

	updated, err := svc.Update(context.Background(), role.ID, ports.UpdateRoleInput{
		AccessModules: []domain.AccessModule{domain.ModuleUserList, domain.ModuleUserRead},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	want := []domain.AccessModule{domain.ModuleUserRead, domain.ModuleUserList}
	if len(updated.AccessModules) != len(want) {
		t.Fatalf("expected %v, got %v", want, updated.AccessModules)
	}
	for i, m := range want {
		if updated.AccessModules[i] != m {
			t.Fatalf("expected %v, got %v", want, updated.AccessModules)
		}
	}
}

func TestRoleService_Update_RenameConflict(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	seedRole(roles, "Viewer", []domain.AccessModule{domain.ModuleUserRead}, true, false)
	editor := seedRole(roles, "Editor", []domain.AccessModule{domain.ModuleUserRead}, true, false)

	name := "viewer"
	_, err := svc.Update(context.Background(), editor.ID, ports.UpdateRoleInput{Name: &name})
	if !errors.Is(err, domain.ErrRoleExists) {
		t.Fatalf("expected ErrRoleExists, got %v", err)
	}
}

func TestRoleService_Update_RenameToOwnNameAllowed(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	editor := seedRole(roles, "Editor", []domain.AccessModule{domain.ModuleUserRead}, true, false)

	name := "EDITOR"
	updated, err := svc.Update(context.Background(), editor.ID, ports.UpdateRoleInput{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "EDITOR" {
		t.Fatalf("expected rename to apply, got %q", updated.Name)
	}
}

func TestRoleService_Delete_DefaultRoleForbidden(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	admin := seedRole(roles, domain.DefaultRoleName, domain.AllModules(), true, true)

	if err := svc.Delete(context.Background(), admin.ID); !errors.Is(err, domain.ErrDefaultRoleImmutable) {
		t.Fatalf("expected ErrDefaultRoleImmutable, got %v", err)
	}
}

func TestRoleService_Delete_InUseThenFree(t *testing.T) {
	svc, roles, users := newRoleFixture()
	editor := seedRole(roles, "Editor", []domain.AccessModule{domain.ModuleUserRead}, true, false)
	viewer := seedRole(roles, "Viewer", []domain.AccessModule{domain.ModuleUserRead}, true, false)
	user := users.add(&domain.User{Email: "a@example.com", RoleID: editor.ID})

	if err := svc.Delete(context.Background(), editor.ID); !errors.Is(err, domain.ErrRoleInUse) {
		t.Fatalf("expected ErrRoleInUse, got %v", err)
	}

	if _, err := users.Update(context.Background(), user.ID, ports.UserPatch{RoleID: &viewer.ID}); err != nil {
		t.Fatalf("reassign: %v", err)
	}

	if err := svc.Delete(context.Background(), editor.ID); err != nil {
		t.Fatalf("Delete after reassignment: %v", err)
	}
	if _, err := roles.FindByID(context.Background(), editor.ID); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected role gone, got %v", err)
	}
}

func TestRoleService_MutateModules_NothingGiven(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	role := seedRole(roles, "Editor", []domain.AccessModule{domain.ModuleUserRead}, true, false)

	_, err := svc.MutateModules(context.Background(), role.ID, nil, "")
	if !errors.Is(err, domain.ErrMissingModules) {
		t.Fatalf("expected ErrMissingModules, got %v", err)
	}
}

func TestRoleService_MutateModules_AddExistingStaysSingle(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	role := seedRole(roles, "Editor", []domain.AccessModule{domain.ModuleUserRead}, true, false)

	updated, err := svc.MutateModules(context.Background(), role.ID, []domain.AccessModule{domain.ModuleUserRead}, "")
	if err != nil {
		t.Fatalf("MutateModules: %v", err)
	}
	if len(updated.AccessModules) != 1 || updated.AccessModules[0] != domain.ModuleUserRead {
		t.Fatalf("expected single USER_READ entry, got %v", updated.AccessModules)
	}
}

func TestRoleService_MutateModules_AddAndRemoveSameModule(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	role := seedRole(roles, "Editor", []domain.AccessModule{domain.ModuleUserRead}, true, false)

	_, err := svc.MutateModules(
		context.Background(),
		role.ID,
		[]domain.AccessModule{domain.ModuleUserList},
		domain.ModuleUserList,
	)
	if !errors.Is(err, domain.ErrDuplicateModules) {
		t.Fatalf("expected ErrDuplicateModules, got %v", err)
	}
}

func TestRoleService_MutateModules_Remove(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	role := seedRole(roles, "Editor", []domain.AccessModule{domain.ModuleUserRead, domain.ModuleUserList}, true, false)

	updated, err := svc.MutateModules(context.Background(), role.ID, nil, domain.ModuleUserList)
	if err != nil {
		t.Fatalf("MutateModules: %v", err)
	}
	if len(updated.AccessModules) != 1 || updated.AccessModules[0] != domain.ModuleUserRead {
		t.Fatalf("expected only USER_READ to remain, got %v", updated.AccessModules)
	}
}

func TestRoleService_MutateModules_UnknownModule(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	role := seedRole(roles, "Editor", []domain.AccessModule{domain.ModuleUserRead}, true, false)

	_, err := svc.MutateModules(context.Background(), role.ID, []domain.AccessModule{"NOT_A_MODULE"}, "")
	if !errors.Is(err, domain.ErrInvalidModules) {
		t.Fatalf("expected ErrInvalidModules, got %v", err)
	}
}

func TestRoleService_MutateModules_DefaultRoleForbidden(t *testing.T) {
	svc, roles, _ := newRoleFixture()
	admin := seedRole(roles, domain.DefaultRoleName, domain.AllModules(), true, true)

	_, err := svc.MutateModules(context.Background(), admin.ID, []domain.AccessModule{domain.ModuleUserRead}, "")
	if !errors.Is(err, domain.ErrDefaultRoleImmutable) {
		t.Fatalf("expected ErrDefaultRoleImmutable, got %v", err)
	}
}
