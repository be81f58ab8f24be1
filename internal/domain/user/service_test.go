package user

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"lms/internal/auth"
	"lms/internal/domain/apperr"
)

type fakeStore struct {
	users      map[string]User
	hashes     map[string]string
	allocated  map[string]bool
	nextID     int
	countCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]User{},
		hashes:    map[string]string{},
		allocated: map[string]bool{},
	}
}

func (f *fakeStore) add(name, email, role string) User {
	f.nextID++
	id := fmt.Sprintf("u%d", f.nextID)
	u := User{ID: id, Name: name, Email: email, Role: role, CreatedAt: time.Now()}
	f.users[id] = u
	return u
}

func (f *fakeStore) Create(_ context.Context, payload NewUser) (User, error) {
	u := f.add(payload.Name, payload.Email, payload.Role)
	f.hashes[u.ID] = payload.PasswordHash
	return u, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (User, bool, error) {
	u, ok := f.users[id]
	return u, ok, nil
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (User, string, bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, f.hashes[u.ID], true, nil
		}
	}
	return User{}, "", false, nil
}

func (f *fakeStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListByRole(_ context.Context, role string) ([]User, error) {
	var out []User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, id, name, designation, avatar string) (User, bool, error) {
	u, ok := f.users[id]
	if !ok {
		return User{}, false, nil
	}
	u.Name, u.Designation, u.Avatar = name, designation, avatar
	f.users[id] = u
	return u, true, nil
}

func (f *fakeStore) PasswordHash(_ context.Context, id string) (string, bool, error) {
	hash, ok := f.hashes[id]
	return hash, ok, nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, id, hash string) error {
	f.hashes[id] = hash
	return nil
}

func (f *fakeStore) UnassignedEmployees(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range f.users {
		if u.Role == auth.RoleEmployee && u.ManagerID == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) SetManager(_ context.Context, employeeID string, managerID *string) error {
	u := f.users[employeeID]
	u.ManagerID = managerID
	f.users[employeeID] = u
	return nil
}

func (f *fakeStore) DirectReports(_ context.Context, managerID string) ([]User, error) {
	var out []User
	for _, u := range f.users {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) CountsByRole(_ context.Context) (map[string]int, error) {
	f.countCalls++
	counts := map[string]int{}
	for _, u := range f.users {
		counts[u.Role]++
	}
	return counts, nil
}

func (f *fakeStore) RecentUsers(_ context.Context, limit int) ([]User, error) {
	users, _ := f.ListAll(context.Background())
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (f *fakeStore) CountAllocated(_ context.Context) (int, error) {
	return len(f.allocated), nil
}

func (f *fakeStore) UnallocatedEmployeeList(_ context.Context, limit int) ([]User, error) {
	var out []User
	for _, u := range f.users {
		if u.Role == auth.RoleEmployee && !f.allocated[u.ID] {
			out = append(out, u)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newFakeStore(), time.Minute)
	ctx := context.Background()

	cases := []struct {
		name, email, password, role string
	}{
		{"", "a@b.co", "secret1", "employee"},
		{"Alice", "not-an-email", "secret1", "employee"},
		{"Alice", "a@b.co", "short", "employee"},
		{"Alice", "a@b.co", "secret1", "hr"},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.name, tc.email, tc.password, tc.role); apperr.KindOf(err) != apperr.Validation {
			t.Fatalf("expected validation error for %+v, got %v", tc, err)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Minute)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "secret1", "employee"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(ctx, "Alice Again", "alice@example.com", "secret1", "employee")
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Minute)
	ctx := context.Background()

	created, err := svc.Register(ctx, "Bob", "bob@example.com", "secret1", "manager")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	got, err := svc.Authenticate(ctx, "BOB@example.com", "secret1")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("wrong user returned: %+v", got)
	}

	if _, err := svc.Authenticate(ctx, "bob@example.com", "nope"); apperr.KindOf(err) != apperr.Authorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost@example.com", "secret1"); apperr.KindOf(err) != apperr.Authorization {
		t.Fatalf("expected authorization error for unknown user, got %v", err)
	}
}

func TestAssignEmployee(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Minute)
	ctx := context.Background()

	manager := store.add("Mona", "mona@example.com", auth.RoleManager)
	employee := store.add("Eve", "eve@example.com", auth.RoleEmployee)

	assigned, err := svc.AssignEmployee(ctx, manager.ID, employee.ID)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if assigned.ManagerID == nil || *assigned.ManagerID != manager.ID {
		t.Fatalf("manager not recorded: %+v", assigned)
	}

	other := store.add("Max", "max@example.com", auth.RoleManager)
	if _, err := svc.AssignEmployee(ctx, other.ID, employee.ID); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation error for double assignment, got %v", err)
	}

	if err := svc.RemoveEmployee(ctx, other.ID, employee.ID); apperr.KindOf(err) != apperr.Authorization {
		t.Fatalf("expected authorization error removing someone else's report, got %v", err)
	}
	if err := svc.RemoveEmployee(ctx, manager.ID, employee.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
}

func TestDeleteSelfRejected(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Minute)
	admin := store.add("Root", "root@example.com", auth.RoleAdmin)

	err := svc.Delete(context.Background(), admin.ID, admin.ID)
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := store.users[admin.ID]; !ok {
		t.Fatal("admin must not be deleted")
	}
}

func TestChangePasswordChecksCurrent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Minute)
	ctx := context.Background()

	created, err := svc.Register(ctx, "Cara", "cara@example.com", "secret1", "employee")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(ctx, created.ID, "wrong", "another1"); apperr.KindOf(err) != apperr.Authorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if err := svc.ChangePassword(ctx, created.ID, "secret1", "another1"); err != nil {
		t.Fatalf("change failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "cara@example.com", "another1"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestAdminOverviewCached(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Minute)
	ctx := context.Background()

	store.add("Root", "root@example.com", auth.RoleAdmin)
	emp := store.add("Eve", "eve@example.com", auth.RoleEmployee)
	store.allocated[emp.ID] = true
	store.add("Joe", "joe@example.com", auth.RoleEmployee)

	first, err := svc.AdminOverview(ctx)
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if first.Stats.TotalUsers != 3 || first.Stats.Employees != 2 || first.Stats.Allocated != 1 || first.Stats.Unallocated != 1 {
		t.Fatalf("unexpected stats: %+v", first.Stats)
	}

	if _, err := svc.AdminOverview(ctx); err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if store.countCalls != 1 {
		t.Fatalf("expected cached second read, store hit %d times", store.countCalls)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, time.Minute)

	created, err := svc.Register(context.Background(), "Dee", "  Dee@Example.COM ", "secret1", "employee")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if created.Email != strings.ToLower(strings.TrimSpace("  Dee@Example.COM ")) {
		t.Fatalf("email not normalized: %q", created.Email)
	}
}
