package leave

import (
	"context"
	"strings"
	"time"

	"lms/internal/auth"
	"lms/internal/domain/apperr"
)

const (
	maxReasonLength = 500
	maxNoteLength   = 300
)

// Ledger is the allocation slice the leave lifecycle needs: an advisory
// balance read at apply time and the conditional increment on approval.
type Ledger interface {
	Balance(ctx context.Context, employeeID string) (total int, taken int, found bool, err error)
	AddTaken(ctx context.Context, employeeID string, days int) error
}

// MembershipChecker answers whether a manager has an employee in one of
// their teams.
type MembershipChecker interface {
	IsManaged(ctx context.Context, managerID, employeeID string) (bool, error)
}

type Service struct {
	store      StoreAPI
	ledger     Ledger
	membership MembershipChecker
}

func NewService(store StoreAPI, ledger Ledger, membership MembershipChecker) *Service {
	return &Service{store: store, ledger: ledger, membership: membership}
}

// ApplyInput carries the parsed fields of a leave application.
type ApplyInput struct {
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

func (s *Service) Apply(ctx context.Context, employeeID string, in ApplyInput) (Leave, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	if in.LeaveType == "" || in.Reason == "" || in.StartDate.IsZero() || in.EndDate.IsZero() {
		return Leave{}, apperr.New(apperr.Validation, "please provide all required fields")
	}
	if !ValidType(in.LeaveType) {
		return Leave{}, apperr.New(apperr.Validation, "invalid leave type")
	}
	if len(in.Reason) > maxReasonLength {
		return Leave{}, apperr.New(apperr.Validation, "reason cannot exceed 500 characters")
	}
	if in.EndDate.Before(in.StartDate) {
		return Leave{}, apperr.New(apperr.Validation, "end date cannot be before start date")
	}

	days := CalculateDays(in.StartDate, in.EndDate)

	// Advisory check only. Nothing is reserved until approval, and employees
	// without a ledger row apply unchecked.
	if in.LeaveType != "unpaid" {
		total, taken, found, err := s.ledger.Balance(ctx, employeeID)
		if err != nil {
			return Leave{}, apperr.Wrap(apperr.Internal, "error submitting leave request", err)
		}
		if found {
			remaining := total - taken
			if days > remaining {
				return Leave{}, apperr.Newf(apperr.Validation, "insufficient leave balance. You have %d days remaining", remaining)
			}
		}
	}

	l, err := s.store.Create(ctx, NewLeave{
		EmployeeID:   employeeID,
		LeaveType:    in.LeaveType,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Reason:       in.Reason,
		NumberOfDays: days,
	})
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "error submitting leave request", err)
	}
	return l, nil
}

func (s *Service) MyLeaves(ctx context.Context, employeeID, status string) ([]Leave, error) {
	leaves, err := s.store.ListByEmployee(ctx, employeeID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching leaves", err)
	}
	return leaves, nil
}

func (s *Service) MyBalance(ctx context.Context, employeeID string) (Balance, error) {
	total, taken, _, err := s.ledger.Balance(ctx, employeeID)
	if err != nil {
		return Balance{}, apperr.Wrap(apperr.Internal, "error fetching leave balance", err)
	}
	pending, err := s.store.CountPending(ctx, employeeID)
	if err != nil {
		return Balance{}, apperr.Wrap(apperr.Internal, "error fetching leave balance", err)
	}
	return Balance{
		TotalLeaves:     total,
		LeavesTaken:     taken,
		LeavesRemaining: total - taken,
		PendingRequests: pending,
	}, nil
}

func (s *Service) TeamRequests(ctx context.Context, managerID, status, employeeID string) ([]Leave, error) {
	leaves, err := s.store.ListTeam(ctx, managerID, status, employeeID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching team leave requests", err)
	}
	return leaves, nil
}

// Review is the manager decision on an employee-owned pending case. A
// rejection escalates the case for admin visibility.
func (s *Service) Review(ctx context.Context, managerID, leaveID, decision, note string) (Leave, error) {
	if decision != StatusApproved && decision != StatusRejected {
		return Leave{}, apperr.New(apperr.Validation, "status must be approved or rejected")
	}
	note, err := cleanNote(note)
	if err != nil {
		return Leave{}, err
	}

	l, ok, err := s.store.Get(ctx, leaveID)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "error reviewing leave request", err)
	}
	if !ok {
		return Leave{}, apperr.New(apperr.NotFound, "leave request not found")
	}
	if l.Status != StatusPending {
		return Leave{}, apperr.Newf(apperr.InvalidState, "leave request has already been %s", l.Status)
	}

	managed, err := s.membership.IsManaged(ctx, managerID, l.EmployeeID)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "error reviewing leave request", err)
	}
	if !managed {
		return Leave{}, apperr.New(apperr.Authorization, "this employee is not in your team")
	}

	escalate := Escalates(l.Employee.Role, decision)
	return s.transition(ctx, l, decision, note, managerID, escalate)
}

// AdminReview handles manager-owned pending leave, which has no team scope.
func (s *Service) AdminReview(ctx context.Context, adminID, leaveID, decision, note string) (Leave, error) {
	if decision != StatusApproved && decision != StatusRejected {
		return Leave{}, apperr.New(apperr.Validation, "status must be approved or rejected")
	}
	note, err := cleanNote(note)
	if err != nil {
		return Leave{}, err
	}

	l, ok, err := s.store.Get(ctx, leaveID)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "error reviewing leave request", err)
	}
	if !ok {
		return Leave{}, apperr.New(apperr.NotFound, "leave request not found")
	}
	if l.Employee.Role != auth.RoleManager {
		return Leave{}, apperr.New(apperr.Authorization, "only manager leave requests can be reviewed here")
	}
	if l.Status != StatusPending {
		return Leave{}, apperr.Newf(apperr.InvalidState, "leave request has already been %s", l.Status)
	}
	return s.transition(ctx, l, decision, note, adminID, false)
}

func (s *Service) transition(ctx context.Context, l Leave, decision, note, reviewerID string, escalate bool) (Leave, error) {
	ok, err := s.store.MarkReviewed(ctx, l.ID, decision, note, reviewerID, escalate)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "error reviewing leave request", err)
	}
	if !ok {
		return Leave{}, apperr.New(apperr.InvalidState, "leave request has already been reviewed")
	}

	if decision == StatusApproved && l.LeaveType != "unpaid" {
		if err := s.ledger.AddTaken(ctx, l.EmployeeID, l.NumberOfDays); err != nil {
			return Leave{}, apperr.Wrap(apperr.Internal, "error updating leave allocation", err)
		}
	}
	return s.refresh(ctx, l.ID)
}

func (s *Service) ManagerRequests(ctx context.Context, status string) ([]Leave, error) {
	leaves, err := s.store.ListManagerOwned(ctx, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching manager leave requests", err)
	}
	return leaves, nil
}

func (s *Service) Escalated(ctx context.Context) ([]Leave, error) {
	leaves, err := s.store.ListEscalated(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching escalated leaves", err)
	}
	return leaves, nil
}

// Override resolves an escalated rejection. Approving flips the case to
// approved and commits the ledger increment; upholding leaves the rejection
// in place and only records the override.
func (s *Service) Override(ctx context.Context, adminID, leaveID, decision, note string) (Leave, error) {
	if decision != OverrideApproved && decision != OverrideUpheld {
		return Leave{}, apperr.New(apperr.Validation, "decision must be approved or upheld")
	}
	note, err := cleanNote(note)
	if err != nil {
		return Leave{}, err
	}

	l, ok, err := s.store.Get(ctx, leaveID)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "error overriding leave decision", err)
	}
	if !ok {
		return Leave{}, apperr.New(apperr.NotFound, "leave request not found")
	}
	if !l.EscalatedToAdmin || l.AdminOverride != OverrideNone {
		return Leave{}, apperr.New(apperr.InvalidState, "this leave request is not awaiting an admin decision")
	}

	approve := decision == OverrideApproved
	ok, err = s.store.ApplyOverride(ctx, leaveID, decision, note, adminID, approve)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "error overriding leave decision", err)
	}
	if !ok {
		return Leave{}, apperr.New(apperr.InvalidState, "this leave request is not awaiting an admin decision")
	}

	if approve && l.LeaveType != "unpaid" {
		if err := s.ledger.AddTaken(ctx, l.EmployeeID, l.NumberOfDays); err != nil {
			return Leave{}, apperr.Wrap(apperr.Internal, "error updating leave allocation", err)
		}
	}
	return s.refresh(ctx, leaveID)
}

func (s *Service) Withdraw(ctx context.Context, employeeID, leaveID string) (Leave, error) {
	l, ok, err := s.store.Get(ctx, leaveID)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "error withdrawing leave request", err)
	}
	if !ok {
		return Leave{}, apperr.New(apperr.NotFound, "leave request not found")
	}
	if l.EmployeeID != employeeID {
		return Leave{}, apperr.New(apperr.Authorization, "you can only withdraw your own leave requests")
	}
	if l.Status != StatusPending {
		return Leave{}, apperr.New(apperr.InvalidState, "only pending leave requests can be withdrawn")
	}

	ok, err = s.store.MarkWithdrawn(ctx, leaveID, employeeID)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "error withdrawing leave request", err)
	}
	if !ok {
		return Leave{}, apperr.New(apperr.InvalidState, "only pending leave requests can be withdrawn")
	}
	return s.refresh(ctx, leaveID)
}

func (s *Service) refresh(ctx context.Context, id string) (Leave, error) {
	l, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Leave{}, apperr.Wrap(apperr.Internal, "error fetching leave request", err)
	}
	if !ok {
		return Leave{}, apperr.New(apperr.NotFound, "leave request not found")
	}
	return l, nil
}

func cleanNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if len(note) > maxNoteLength {
		return "", apperr.Newf(apperr.Validation, "note cannot exceed %d characters", maxNoteLength)
	}
	return note, nil
}
