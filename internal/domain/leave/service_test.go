package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lms/internal/domain/apperr"
	"lms/internal/domain/user"
)

type fakeStore struct {
	leaves map[string]*Leave
	roles  map[string]string
	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{leaves: map[string]*Leave{}, roles: map[string]string{}}
}

func (f *fakeStore) Create(_ context.Context, payload NewLeave) (Leave, error) {
	f.nextID++
	l := Leave{
		ID:            fmt.Sprintf("l%d", f.nextID),
		EmployeeID:    payload.EmployeeID,
		Employee:      &user.Ref{ID: payload.EmployeeID, Role: f.roles[payload.EmployeeID]},
		LeaveType:     payload.LeaveType,
		StartDate:     payload.StartDate,
		EndDate:       payload.EndDate,
		Reason:        payload.Reason,
		NumberOfDays:  payload.NumberOfDays,
		Status:        StatusPending,
		AdminOverride: OverrideNone,
		CreatedAt:     time.Now(),
	}
	f.leaves[l.ID] = &l
	return l, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Leave, bool, error) {
	l, ok := f.leaves[id]
	if !ok {
		return Leave{}, false, nil
	}
	return *l, true, nil
}

func (f *fakeStore) ListByEmployee(_ context.Context, employeeID, status string) ([]Leave, error) {
	var out []Leave
	for _, l := range f.leaves {
		if l.EmployeeID == employeeID && (status == "" || l.Status == status) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeStore) ListTeam(context.Context, string, string, string) ([]Leave, error) {
	return nil, nil
}

func (f *fakeStore) ListManagerOwned(_ context.Context, status string) ([]Leave, error) {
	var out []Leave
	for _, l := range f.leaves {
		if f.roles[l.EmployeeID] == "manager" && (status == "" || l.Status == status) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeStore) ListEscalated(context.Context) ([]Leave, error) {
	var out []Leave
	for _, l := range f.leaves {
		if l.EscalatedToAdmin {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeStore) CountPending(_ context.Context, employeeID string) (int, error) {
	n := 0
	for _, l := range f.leaves {
		if l.EmployeeID == employeeID && l.Status == StatusPending {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) MarkReviewed(_ context.Context, id, status, note, reviewerID string, escalate bool) (bool, error) {
	l, ok := f.leaves[id]
	if !ok || l.Status != StatusPending {
		return false, nil
	}
	now := time.Now()
	l.Status = status
	l.ManagerNote = note
	l.ReviewedBy = &user.Ref{ID: reviewerID}
	l.ReviewedAt = &now
	l.EscalatedToAdmin = escalate
	return true, nil
}

func (f *fakeStore) ApplyOverride(_ context.Context, id, override, note, adminID string, approve bool) (bool, error) {
	l, ok := f.leaves[id]
	if !ok || !l.EscalatedToAdmin || l.AdminOverride != OverrideNone {
		return false, nil
	}
	now := time.Now()
	l.AdminOverride = override
	l.AdminNote = note
	l.AdminReviewedBy = &user.Ref{ID: adminID}
	l.AdminReviewedAt = &now
	if approve {
		l.Status = StatusApproved
	}
	return true, nil
}

func (f *fakeStore) MarkWithdrawn(_ context.Context, id, employeeID string) (bool, error) {
	l, ok := f.leaves[id]
	if !ok || l.EmployeeID != employeeID || l.Status != StatusPending {
		return false, nil
	}
	l.Status = StatusWithdrawn
	return true, nil
}

type fakeLedger struct {
	total, taken map[string]int
	addCalls     int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{total: map[string]int{}, taken: map[string]int{}}
}

func (f *fakeLedger) Balance(_ context.Context, employeeID string) (int, int, bool, error) {
	total, ok := f.total[employeeID]
	return total, f.taken[employeeID], ok, nil
}

func (f *fakeLedger) AddTaken(_ context.Context, employeeID string, days int) error {
	f.addCalls++
	if _, ok := f.total[employeeID]; ok {
		f.taken[employeeID] += days
	}
	return nil
}

type fakeMembership struct {
	managed map[string]bool
}

func (f *fakeMembership) IsManaged(_ context.Context, managerID, employeeID string) (bool, error) {
	return f.managed[managerID+"/"+employeeID], nil
}

func fixture() (*Service, *fakeStore, *fakeLedger, *fakeMembership) {
	store := newFakeStore()
	store.roles["e1"] = "employee"
	store.roles["m1"] = "manager"
	ledger := newFakeLedger()
	membership := &fakeMembership{managed: map[string]bool{"m1/e1": true}}
	return NewService(store, ledger, membership), store, ledger, membership
}

func apply(t *testing.T, svc *Service, employeeID, leaveType string) Leave {
	t.Helper()
	l, err := svc.Apply(context.Background(), employeeID, ApplyInput{
		LeaveType: leaveType,
		StartDate: day("2026-03-02"),
		EndDate:   day("2026-03-04"),
		Reason:    "family matter",
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	return l
}

func TestApplyValidation(t *testing.T) {
	svc, _, _, _ := fixture()
	ctx := context.Background()

	if _, err := svc.Apply(ctx, "e1", ApplyInput{}); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation error for empty input, got %v", err)
	}
	if _, err := svc.Apply(ctx, "e1", ApplyInput{
		LeaveType: "sick", Reason: "x", StartDate: day("2026-03-04"), EndDate: day("2026-03-02"),
	}); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation error for inverted dates, got %v", err)
	}
	if _, err := svc.Apply(ctx, "e1", ApplyInput{
		LeaveType: "vacation", Reason: "x", StartDate: day("2026-03-02"), EndDate: day("2026-03-02"),
	}); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
}

func TestApplyBalanceCheck(t *testing.T) {
	svc, _, ledger, _ := fixture()
	ledger.total["e1"] = 2

	_, err := svc.Apply(context.Background(), "e1", ApplyInput{
		LeaveType: "casual",
		StartDate: day("2026-03-02"),
		EndDate:   day("2026-03-04"),
		Reason:    "trip",
	})
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected insufficient balance rejection, got %v", err)
	}

	// Unpaid leave skips the check entirely.
	apply(t, svc, "e1", "unpaid")
}

func TestApplyWithoutLedgerRow(t *testing.T) {
	svc, _, _, _ := fixture()
	l := apply(t, svc, "e1", "sick")
	if l.NumberOfDays != 3 || l.Status != StatusPending {
		t.Fatalf("unexpected case: %+v", l)
	}
}

func TestReviewApprovalIncrementsLedger(t *testing.T) {
	svc, _, ledger, _ := fixture()
	ledger.total["e1"] = 10
	l := apply(t, svc, "e1", "sick")

	reviewed, err := svc.Review(context.Background(), "m1", l.ID, StatusApproved, "enjoy")
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.Status != StatusApproved || reviewed.EscalatedToAdmin {
		t.Fatalf("unexpected reviewed case: %+v", reviewed)
	}
	if ledger.taken["e1"] != 3 {
		t.Fatalf("ledger not incremented: %d", ledger.taken["e1"])
	}
}

func TestReviewIsOneShot(t *testing.T) {
	svc, _, ledger, _ := fixture()
	ledger.total["e1"] = 10
	l := apply(t, svc, "e1", "sick")
	ctx := context.Background()

	if _, err := svc.Review(ctx, "m1", l.ID, StatusApproved, ""); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if _, err := svc.Review(ctx, "m1", l.ID, StatusApproved, ""); apperr.KindOf(err) != apperr.InvalidState {
		t.Fatalf("expected invalid state on double review, got %v", err)
	}
	if ledger.taken["e1"] != 3 {
		t.Fatalf("ledger double incremented: %d", ledger.taken["e1"])
	}
}

func TestReviewUnpaidSkipsLedger(t *testing.T) {
	svc, _, ledger, _ := fixture()
	ledger.total["e1"] = 10
	l := apply(t, svc, "e1", "unpaid")

	if _, err := svc.Review(context.Background(), "m1", l.ID, StatusApproved, ""); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if ledger.addCalls != 0 {
		t.Fatal("unpaid approval must not touch the ledger")
	}
}

func TestReviewScopedToTeam(t *testing.T) {
	svc, _, _, _ := fixture()
	l := apply(t, svc, "e1", "sick")

	_, err := svc.Review(context.Background(), "m2", l.ID, StatusApproved, "")
	if apperr.KindOf(err) != apperr.Authorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestRejectionEscalates(t *testing.T) {
	svc, _, _, _ := fixture()
	l := apply(t, svc, "e1", "sick")

	reviewed, err := svc.Review(context.Background(), "m1", l.ID, StatusRejected, "coverage gap")
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.Status != StatusRejected || !reviewed.EscalatedToAdmin {
		t.Fatalf("rejection must escalate employee leave: %+v", reviewed)
	}
}

func TestAdminReviewManagerOwnedOnly(t *testing.T) {
	svc, _, ledger, _ := fixture()
	ledger.total["m1"] = 10
	ctx := context.Background()

	employeeLeave := apply(t, svc, "e1", "sick")
	if _, err := svc.AdminReview(ctx, "a1", employeeLeave.ID, StatusApproved, ""); apperr.KindOf(err) != apperr.Authorization {
		t.Fatalf("expected authorization error for employee-owned leave, got %v", err)
	}

	managerLeave := apply(t, svc, "m1", "casual")
	reviewed, err := svc.AdminReview(ctx, "a1", managerLeave.ID, StatusRejected, "busy quarter")
	if err != nil {
		t.Fatalf("admin review failed: %v", err)
	}
	if reviewed.Status != StatusRejected || reviewed.EscalatedToAdmin {
		t.Fatalf("manager-owned rejection must not escalate: %+v", reviewed)
	}
}

func TestOverrideApproved(t *testing.T) {
	svc, _, ledger, _ := fixture()
	ledger.total["e1"] = 10
	ctx := context.Background()

	l := apply(t, svc, "e1", "sick")
	if _, err := svc.Override(ctx, "a1", l.ID, OverrideApproved, ""); apperr.KindOf(err) != apperr.InvalidState {
		t.Fatalf("override requires escalation, got %v", err)
	}

	if _, err := svc.Review(ctx, "m1", l.ID, StatusRejected, ""); err != nil {
		t.Fatalf("review failed: %v", err)
	}
	overridden, err := svc.Override(ctx, "a1", l.ID, OverrideApproved, "second look")
	if err != nil {
		t.Fatalf("override failed: %v", err)
	}
	if overridden.Status != StatusApproved || overridden.AdminOverride != OverrideApproved {
		t.Fatalf("unexpected override result: %+v", overridden)
	}
	if ledger.taken["e1"] != 3 {
		t.Fatalf("override approval must commit the increment: %d", ledger.taken["e1"])
	}

	if _, err := svc.Override(ctx, "a1", l.ID, OverrideUpheld, ""); apperr.KindOf(err) != apperr.InvalidState {
		t.Fatalf("override must be one-shot, got %v", err)
	}
}

func TestOverrideUpheld(t *testing.T) {
	svc, _, ledger, _ := fixture()
	ledger.total["e1"] = 10
	ctx := context.Background()

	l := apply(t, svc, "e1", "sick")
	if _, err := svc.Review(ctx, "m1", l.ID, StatusRejected, ""); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	upheld, err := svc.Override(ctx, "a1", l.ID, OverrideUpheld, "decision stands")
	if err != nil {
		t.Fatalf("override failed: %v", err)
	}
	if upheld.Status != StatusRejected || upheld.AdminOverride != OverrideUpheld {
		t.Fatalf("uphold must leave the rejection in place: %+v", upheld)
	}
	if ledger.addCalls != 0 {
		t.Fatal("uphold must not touch the ledger")
	}
}

func TestWithdraw(t *testing.T) {
	svc, _, _, _ := fixture()
	ctx := context.Background()

	l := apply(t, svc, "e1", "sick")
	if _, err := svc.Withdraw(ctx, "e2", l.ID); apperr.KindOf(err) != apperr.Authorization {
		t.Fatalf("expected authorization error for non-owner, got %v", err)
	}

	withdrawn, err := svc.Withdraw(ctx, "e1", l.ID)
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if withdrawn.Status != StatusWithdrawn {
		t.Fatalf("unexpected status: %s", withdrawn.Status)
	}
	if _, err := svc.Withdraw(ctx, "e1", l.ID); apperr.KindOf(err) != apperr.InvalidState {
		t.Fatalf("expected invalid state on second withdraw, got %v", err)
	}
}

func TestMyBalance(t *testing.T) {
	svc, _, ledger, _ := fixture()
	ledger.total["e1"] = 20
	ledger.taken["e1"] = 5
	apply(t, svc, "e1", "sick")

	b, err := svc.MyBalance(context.Background(), "e1")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if b.TotalLeaves != 20 || b.LeavesTaken != 5 || b.LeavesRemaining != 15 || b.PendingRequests != 1 {
		t.Fatalf("unexpected balance: %+v", b)
	}
}

func TestMyBalanceWithoutLedger(t *testing.T) {
	svc, _, _, _ := fixture()

	b, err := svc.MyBalance(context.Background(), "e9")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if b.TotalLeaves != 0 || b.LeavesRemaining != 0 {
		t.Fatalf("missing ledger must read as zero: %+v", b)
	}
}
