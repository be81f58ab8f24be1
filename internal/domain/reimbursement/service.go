package reimbursement

import (
	"context"
	"strings"

	"lms/internal/auth"
	"lms/internal/domain/apperr"
)

const (
	minTitleLength       = 3
	maxTitleLength       = 100
	maxDescriptionLength = 1000
	maxNoteLength        = 300
	minAmount            = 1
)

type MembershipChecker interface {
	IsManaged(ctx context.Context, managerID, employeeID string) (bool, error)
}

type Service struct {
	store      StoreAPI
	membership MembershipChecker
}

func NewService(store StoreAPI, membership MembershipChecker) *Service {
	return &Service{store: store, membership: membership}
}

// ApplyInput carries the fields of a new claim.
type ApplyInput struct {
	Title       string
	Description string
	Amount      float64
	Category    string
	Receipt     string
}

func (s *Service) Apply(ctx context.Context, applicantID, applicantRole string, in ApplyInput) (Reimbursement, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.Description == "" || in.Category == "" || in.Amount == 0 {
		return Reimbursement{}, apperr.New(apperr.Validation, "please provide title, description, amount, and category")
	}
	if in.Amount < minAmount {
		return Reimbursement{}, apperr.New(apperr.Validation, "amount must be at least 1")
	}
	if len(in.Title) < minTitleLength {
		return Reimbursement{}, apperr.New(apperr.Validation, "title must be at least 3 characters")
	}
	if len(in.Title) > maxTitleLength {
		return Reimbursement{}, apperr.New(apperr.Validation, "title cannot exceed 100 characters")
	}
	if len(in.Description) > maxDescriptionLength {
		return Reimbursement{}, apperr.New(apperr.Validation, "description cannot exceed 1000 characters")
	}
	if !ValidCategory(in.Category) {
		return Reimbursement{}, apperr.New(apperr.Validation, "invalid reimbursement category")
	}
	if applicantRole != auth.RoleEmployee && applicantRole != auth.RoleManager {
		return Reimbursement{}, apperr.New(apperr.Authorization, "only employees and managers can claim reimbursements")
	}

	rb, err := s.store.Create(ctx, NewReimbursement{
		ApplicantID:   applicantID,
		ApplicantRole: applicantRole,
		Title:         in.Title,
		Description:   in.Description,
		Amount:        in.Amount,
		Category:      in.Category,
		Receipt:       strings.TrimSpace(in.Receipt),
	})
	if err != nil {
		return Reimbursement{}, apperr.Wrap(apperr.Internal, "error submitting reimbursement request", err)
	}
	return rb, nil
}

func (s *Service) MyReimbursements(ctx context.Context, applicantID, status string) ([]Reimbursement, error) {
	claims, err := s.store.ListByApplicant(ctx, applicantID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching reimbursements", err)
	}
	return claims, nil
}

func (s *Service) TeamReimbursements(ctx context.Context, managerID, status string) ([]Reimbursement, error) {
	claims, err := s.store.ListTeam(ctx, managerID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching team reimbursements", err)
	}
	return claims, nil
}

func (s *Service) AdminQueue(ctx context.Context, status string) ([]Reimbursement, error) {
	claims, err := s.store.ListAdminQueue(ctx, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching reimbursements", err)
	}
	return claims, nil
}

// ManagerReview is the first stage, reachable only for employee claims.
func (s *Service) ManagerReview(ctx context.Context, managerID, claimID, decision, note string) (Reimbursement, error) {
	if decision != StatusManagerApproved && decision != StatusRejected {
		return Reimbursement{}, apperr.New(apperr.Validation, "status must be manager_approved or rejected")
	}
	note, err := cleanNote(note)
	if err != nil {
		return Reimbursement{}, err
	}

	rb, ok, err := s.store.Get(ctx, claimID)
	if err != nil {
		return Reimbursement{}, apperr.Wrap(apperr.Internal, "error reviewing reimbursement", err)
	}
	if !ok {
		return Reimbursement{}, apperr.New(apperr.NotFound, "reimbursement not found")
	}
	if rb.Status != StatusPending {
		return Reimbursement{}, apperr.New(apperr.InvalidState, "can only review pending reimbursements")
	}
	if rb.ApplicantRole != auth.RoleEmployee {
		return Reimbursement{}, apperr.New(apperr.InvalidState, "managers can only review employee reimbursements")
	}

	managed, err := s.membership.IsManaged(ctx, managerID, rb.ApplicantID)
	if err != nil {
		return Reimbursement{}, apperr.Wrap(apperr.Internal, "error reviewing reimbursement", err)
	}
	if !managed {
		return Reimbursement{}, apperr.New(apperr.Authorization, "this employee is not in your team")
	}

	ok, err = s.store.MarkManagerReviewed(ctx, claimID, decision, note, managerID)
	if err != nil {
		return Reimbursement{}, apperr.Wrap(apperr.Internal, "error reviewing reimbursement", err)
	}
	if !ok {
		return Reimbursement{}, apperr.New(apperr.InvalidState, "can only review pending reimbursements")
	}
	return s.refresh(ctx, claimID)
}

// AdminReview is the final stage. Employee claims must have cleared the
// manager stage first; manager claims are reviewed straight from pending.
func (s *Service) AdminReview(ctx context.Context, adminID, claimID, decision, note string) (Reimbursement, error) {
	if decision != StatusAdminApproved && decision != StatusRejected {
		return Reimbursement{}, apperr.New(apperr.Validation, "status must be admin_approved or rejected")
	}
	note, err := cleanNote(note)
	if err != nil {
		return Reimbursement{}, err
	}

	rb, ok, err := s.store.Get(ctx, claimID)
	if err != nil {
		return Reimbursement{}, apperr.Wrap(apperr.Internal, "error reviewing reimbursement", err)
	}
	if !ok {
		return Reimbursement{}, apperr.New(apperr.NotFound, "reimbursement not found")
	}

	var fromStatus string
	switch rb.ApplicantRole {
	case auth.RoleEmployee:
		if rb.Status != StatusManagerApproved {
			return Reimbursement{}, apperr.New(apperr.InvalidState, "employee reimbursement must be approved by manager first")
		}
		fromStatus = StatusManagerApproved
	case auth.RoleManager:
		if rb.Status != StatusPending {
			return Reimbursement{}, apperr.New(apperr.InvalidState, "can only review pending manager reimbursements")
		}
		fromStatus = StatusPending
	default:
		return Reimbursement{}, apperr.New(apperr.InvalidState, "unsupported applicant role")
	}

	ok, err = s.store.MarkAdminReviewed(ctx, claimID, decision, note, adminID, fromStatus)
	if err != nil {
		return Reimbursement{}, apperr.Wrap(apperr.Internal, "error reviewing reimbursement", err)
	}
	if !ok {
		return Reimbursement{}, apperr.New(apperr.InvalidState, "reimbursement has already been reviewed")
	}
	return s.refresh(ctx, claimID)
}

func (s *Service) Withdraw(ctx context.Context, applicantID, claimID string) (Reimbursement, error) {
	rb, ok, err := s.store.Get(ctx, claimID)
	if err != nil {
		return Reimbursement{}, apperr.Wrap(apperr.Internal, "error withdrawing reimbursement", err)
	}
	if !ok {
		return Reimbursement{}, apperr.New(apperr.NotFound, "reimbursement not found")
	}
	if rb.ApplicantID != applicantID {
		return Reimbursement{}, apperr.New(apperr.Authorization, "not your reimbursement")
	}
	if rb.Status != StatusPending {
		return Reimbursement{}, apperr.New(apperr.InvalidState, "can only withdraw pending reimbursements")
	}

	ok, err = s.store.MarkWithdrawn(ctx, claimID, applicantID)
	if err != nil {
		return Reimbursement{}, apperr.Wrap(apperr.Internal, "error withdrawing reimbursement", err)
	}
	if !ok {
		return Reimbursement{}, apperr.New(apperr.InvalidState, "can only withdraw pending reimbursements")
	}
	return s.refresh(ctx, claimID)
}

func (s *Service) refresh(ctx context.Context, id string) (Reimbursement, error) {
	rb, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Reimbursement{}, apperr.Wrap(apperr.Internal, "error fetching reimbursement", err)
	}
	if !ok {
		return Reimbursement{}, apperr.New(apperr.NotFound, "reimbursement not found")
	}
	return rb, nil
}

func cleanNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if len(note) > maxNoteLength {
		return "", apperr.Newf(apperr.Validation, "note cannot exceed %d characters", maxNoteLength)
	}
	return note, nil
}
