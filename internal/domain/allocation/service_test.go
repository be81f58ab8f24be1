package allocation

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"lms/internal/auth"
	"lms/internal/domain/apperr"
	"lms/internal/domain/user"
)

type fakeStore struct {
	byEmployee map[string]*Allocation
	nextID     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byEmployee: map[string]*Allocation{}}
}

func (f *fakeStore) Upsert(_ context.Context, employeeID string, totalLeaves int) (Allocation, error) {
	if a, ok := f.byEmployee[employeeID]; ok {
		a.TotalLeaves = totalLeaves
		a.LeavesRemaining = a.TotalLeaves - a.LeavesTaken
		return *a, nil
	}
	f.nextID++
	a := Allocation{
		ID:              fmt.Sprintf("a%d", f.nextID),
		EmployeeID:      employeeID,
		TotalLeaves:     totalLeaves,
		LeavesRemaining: totalLeaves,
		CreatedAt:       time.Now(),
	}
	f.byEmployee[employeeID] = &a
	return a, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Allocation, bool, error) {
	for _, a := range f.byEmployee {
		if a.ID == id {
			return *a, true, nil
		}
	}
	return Allocation{}, false, nil
}

func (f *fakeStore) GetByEmployee(_ context.Context, employeeID string) (Allocation, bool, error) {
	a, ok := f.byEmployee[employeeID]
	if !ok {
		return Allocation{}, false, nil
	}
	return *a, true, nil
}

func (f *fakeStore) SetTotal(_ context.Context, id string, totalLeaves int) (Allocation, bool, error) {
	for _, a := range f.byEmployee {
		if a.ID == id {
			a.TotalLeaves = totalLeaves
			a.LeavesRemaining = a.TotalLeaves - a.LeavesTaken
			return *a, true, nil
		}
	}
	return Allocation{}, false, nil
}

func (f *fakeStore) List(context.Context) ([]Allocation, error) {
	var out []Allocation
	for _, a := range f.byEmployee {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStore) UnallocatedEmployees(context.Context) ([]user.Ref, error) {
	return []user.Ref{{ID: "e9", Name: "Newcomer", Email: "new@example.com"}}, nil
}

func (f *fakeStore) AddTaken(_ context.Context, employeeID string, days int) error {
	if a, ok := f.byEmployee[employeeID]; ok {
		a.LeavesTaken += days
		a.LeavesRemaining = a.TotalLeaves - a.LeavesTaken
	}
	return nil
}

type fakeDirectory struct {
	users map[string]user.User
}

func (f *fakeDirectory) Get(_ context.Context, id string) (user.User, bool, error) {
	u, ok := f.users[id]
	return u, ok, nil
}

func fixture() (*Service, *fakeStore) {
	store := newFakeStore()
	dir := &fakeDirectory{users: map[string]user.User{
		"e1": {ID: "e1", Name: "Eve", Role: auth.RoleEmployee},
		"m1": {ID: "m1", Name: "Mona", Role: auth.RoleManager},
	}}
	return NewService(store, dir), store
}

func TestSetValidation(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	if _, err := svc.Set(ctx, "", 10); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Set(ctx, "e1", 400); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation error for out-of-range total, got %v", err)
	}
	if _, err := svc.Set(ctx, "m1", 10); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("non-employees must be rejected, got %v", err)
	}
	if _, err := svc.Set(ctx, "ghost", 10); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("unknown users must be rejected, got %v", err)
	}
}

func TestSetIsUpsert(t *testing.T) {
	svc, store := fixture()
	ctx := context.Background()

	first, err := svc.Set(ctx, "e1", 20)
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	second, err := svc.Set(ctx, "e1", 25)
	if err != nil {
		t.Fatalf("second set failed: %v", err)
	}
	if first.ID != second.ID || second.TotalLeaves != 25 {
		t.Fatalf("upsert must reuse the row: %+v vs %+v", first, second)
	}
	if len(store.byEmployee) != 1 {
		t.Fatalf("expected a single ledger row, got %d", len(store.byEmployee))
	}
}

func TestUpdateRejectsTotalBelowTaken(t *testing.T) {
	svc, store := fixture()
	ctx := context.Background()

	a, err := svc.Set(ctx, "e1", 20)
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.AddTaken(ctx, "e1", 8); err != nil {
		t.Fatalf("add taken failed: %v", err)
	}

	if _, err := svc.Update(ctx, a.ID, 5); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation error, got %v", err)
	}
	updated, err := svc.Update(ctx, a.ID, 30)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.TotalLeaves != 30 || updated.LeavesRemaining != 22 {
		t.Fatalf("unexpected allocation: %+v", updated)
	}
}

func TestUpdateMissingAllocation(t *testing.T) {
	svc, _ := fixture()
	if _, err := svc.Update(context.Background(), "nope", 10); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWriteReport(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	if _, err := svc.Set(ctx, "e1", 20); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.WriteReport(ctx, &buf); err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("report is not a PDF document")
	}
}
