package leaveshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"lms/internal/auth"
	"lms/internal/domain/audit"
	"lms/internal/domain/leave"
	"lms/internal/domain/user"
	"lms/internal/transport/http/middleware"
)

const testSecret = "handler-test-secret"

type fakeStore struct {
	leaves map[string]leave.Leave
	seq    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{leaves: map[string]leave.Leave{}}
}

func (f *fakeStore) Create(_ context.Context, payload leave.NewLeave) (leave.Leave, error) {
	f.seq++
	l := leave.Leave{
		ID:            "l" + strconv.Itoa(f.seq),
		EmployeeID:    payload.EmployeeID,
		Employee:      &user.Ref{ID: payload.EmployeeID, Role: auth.RoleEmployee},
		LeaveType:     payload.LeaveType,
		StartDate:     payload.StartDate,
		EndDate:       payload.EndDate,
		Reason:        payload.Reason,
		NumberOfDays:  payload.NumberOfDays,
		Status:        leave.StatusPending,
		AdminOverride: leave.OverrideNone,
	}
	f.leaves[l.ID] = l
	return l, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (leave.Leave, bool, error) {
	l, ok := f.leaves[id]
	return l, ok, nil
}

func (f *fakeStore) ListByEmployee(_ context.Context, employeeID, status string) ([]leave.Leave, error) {
	var out []leave.Leave
	for _, l := range f.leaves {
		if l.EmployeeID == employeeID && (status == "" || l.Status == status) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) ListTeam(_ context.Context, _, status, employeeID string) ([]leave.Leave, error) {
	var out []leave.Leave
	for _, l := range f.leaves {
		if status != "" && l.Status != status {
			continue
		}
		if employeeID != "" && l.EmployeeID != employeeID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeStore) ListManagerOwned(_ context.Context, _ string) ([]leave.Leave, error) {
	return nil, nil
}

func (f *fakeStore) ListEscalated(_ context.Context) ([]leave.Leave, error) {
	return nil, nil
}

func (f *fakeStore) CountPending(_ context.Context, _ string) (int, error) {
	return 0, nil
}

func (f *fakeStore) MarkReviewed(_ context.Context, id, status, note, reviewerID string, escalate bool) (bool, error) {
	l, ok := f.leaves[id]
	if !ok || l.Status != leave.StatusPending {
		return false, nil
	}
	now := time.Now()
	l.Status = status
	l.ManagerNote = note
	l.ReviewedBy = &user.Ref{ID: reviewerID}
	l.ReviewedAt = &now
	l.EscalatedToAdmin = escalate
	f.leaves[id] = l
	return true, nil
}

func (f *fakeStore) ApplyOverride(_ context.Context, id, override, note, adminID string, approve bool) (bool, error) {
	l, ok := f.leaves[id]
	if !ok || !l.EscalatedToAdmin || l.AdminOverride != leave.OverrideNone {
		return false, nil
	}
	l.AdminOverride = override
	l.AdminNote = note
	if approve {
		l.Status = leave.StatusApproved
	}
	f.leaves[id] = l
	return true, nil
}

func (f *fakeStore) MarkWithdrawn(_ context.Context, id, employeeID string) (bool, error) {
	l, ok := f.leaves[id]
	if !ok || l.EmployeeID != employeeID || l.Status != leave.StatusPending {
		return false, nil
	}
	l.Status = leave.StatusWithdrawn
	f.leaves[id] = l
	return true, nil
}

type fakeLedger struct{}

func (fakeLedger) Balance(_ context.Context, _ string) (int, int, bool, error) {
	return 0, 0, false, nil
}

func (fakeLedger) AddTaken(_ context.Context, _ string, _ int) error { return nil }

type fakeMembership struct{ pairs map[string]bool }

func (f fakeMembership) IsManaged(_ context.Context, managerID, employeeID string) (bool, error) {
	return f.pairs[managerID+"/"+employeeID], nil
}

// execRecorder satisfies the store querier with just enough behavior for
// audit inserts.
type execRecorder struct{ actions []string }

func (e *execRecorder) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	if len(args) > 1 {
		if action, ok := args[1].(string); ok {
			e.actions = append(e.actions, action)
		}
	}
	return pgconn.CommandTag{}, nil
}

func (e *execRecorder) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (e *execRecorder) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *fakeStore, *execRecorder) {
	t.Helper()
	store := newFakeStore()
	service := leave.NewService(store, fakeLedger{}, fakeMembership{pairs: map[string]bool{"m1/e1": true}})
	exec := &execRecorder{}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(testSecret))
	router.Route("/api/v1", func(r chi.Router) {
		NewHandler(service, audit.New(exec)).RegisterRoutes(r)
	})
	return router, store, exec
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	signed, err := auth.GenerateToken(testSecret, auth.Claims{UserID: userID, Email: userID + "@example.com", Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return signed
}

func doJSON(t *testing.T, router http.Handler, method, path, bearer, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return rec, decoded
}

func TestApplyAndListMyLeaves(t *testing.T) {
	router, _, _ := newTestRouter(t)
	employee := token(t, "e1", auth.RoleEmployee)

	rec, body := doJSON(t, router, http.MethodPost, "/api/v1/leaves", employee,
		`{"leaveType":"casual","startDate":"2026-09-07","endDate":"2026-09-09","reason":"family visit"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", rec.Code, rec.Body.String())
	}
	created, ok := body["leave"].(map[string]any)
	if !ok {
		t.Fatalf("expected leave resource, got %v", body)
	}
	if created["numberOfDays"] != float64(3) {
		t.Fatalf("expected 3 days, got %v", created["numberOfDays"])
	}

	rec, body = doJSON(t, router, http.MethodGet, "/api/v1/leaves/my", employee, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	leaves, ok := body["leaves"].([]any)
	if !ok || len(leaves) != 1 {
		t.Fatalf("expected one leave, got %v", body["leaves"])
	}
}

func TestRoleGuards(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/leaves", "", `{"leaveType":"casual"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous apply, got %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/leaves/team", token(t, "e1", auth.RoleEmployee), "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee on team listing, got %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/leaves/escalated", token(t, "m1", auth.RoleManager), "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager on escalated listing, got %d", rec.Code)
	}
}

func TestReviewRecordsAudit(t *testing.T) {
	router, store, exec := newTestRouter(t)
	employee := token(t, "e1", auth.RoleEmployee)
	manager := token(t, "m1", auth.RoleManager)

	rec, body := doJSON(t, router, http.MethodPost, "/api/v1/leaves", employee,
		`{"leaveType":"casual","startDate":"2026-09-07","endDate":"2026-09-08","reason":"errand"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	leaveID := body["leave"].(map[string]any)["id"].(string)

	rec, body = doJSON(t, router, http.MethodPut, "/api/v1/leaves/"+leaveID+"/review", manager,
		`{"status":"approved","note":"enjoy"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", rec.Code, rec.Body.String())
	}
	if got := body["leave"].(map[string]any)["status"]; got != leave.StatusApproved {
		t.Fatalf("expected approved, got %v", got)
	}
	if store.leaves[leaveID].Status != leave.StatusApproved {
		t.Fatalf("store not updated: %+v", store.leaves[leaveID])
	}

	found := false
	for _, action := range exec.actions {
		if action == "leave.review.approved" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected audit action, got %v", exec.actions)
	}
}

func TestDoubleReviewRejected(t *testing.T) {
	router, _, _ := newTestRouter(t)
	employee := token(t, "e1", auth.RoleEmployee)
	manager := token(t, "m1", auth.RoleManager)

	_, body := doJSON(t, router, http.MethodPost, "/api/v1/leaves", employee,
		`{"leaveType":"sick","startDate":"2026-09-10","endDate":"2026-09-10","reason":"flu"}`)
	leaveID := body["leave"].(map[string]any)["id"].(string)

	rec, _ := doJSON(t, router, http.MethodPut, "/api/v1/leaves/"+leaveID+"/review", manager, `{"status":"approved"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("first review should pass, got %d", rec.Code)
	}

	rec, body = doJSON(t, router, http.MethodPut, "/api/v1/leaves/"+leaveID+"/review", manager, `{"status":"rejected"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on second review, got %d", rec.Code)
	}
	if body["success"] != false {
		t.Fatalf("expected failure envelope, got %v", body)
	}
}
