package complaint

import (
	"context"
	"strings"

	"lms/internal/domain/apperr"
)

const (
	minSubjectLength     = 3
	maxSubjectLength     = 100
	maxDescriptionLength = 1000
	maxNoteLength        = 500
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

func (s *Service) Raise(ctx context.Context, employeeID, subject, description, category string) (Complaint, error) {
	subject = strings.TrimSpace(subject)
	description = strings.TrimSpace(description)
	if subject == "" || description == "" || category == "" {
		return Complaint{}, apperr.New(apperr.Validation, "please provide subject, description, and category")
	}
	if len(subject) < minSubjectLength {
		return Complaint{}, apperr.New(apperr.Validation, "subject must be at least 3 characters")
	}
	if len(subject) > maxSubjectLength {
		return Complaint{}, apperr.New(apperr.Validation, "subject cannot exceed 100 characters")
	}
	if len(description) > maxDescriptionLength {
		return Complaint{}, apperr.New(apperr.Validation, "description cannot exceed 1000 characters")
	}
	if !ValidCategory(category) {
		return Complaint{}, apperr.New(apperr.Validation, "invalid complaint category")
	}

	c, err := s.store.Create(ctx, employeeID, subject, description, category)
	if err != nil {
		return Complaint{}, apperr.Wrap(apperr.Internal, "error submitting complaint", err)
	}
	return c, nil
}

func (s *Service) MyComplaints(ctx context.Context, employeeID, status string) ([]Complaint, error) {
	complaints, err := s.store.ListByEmployee(ctx, employeeID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching complaints", err)
	}
	return complaints, nil
}

func (s *Service) TeamComplaints(ctx context.Context, managerID, status string) ([]Complaint, error) {
	complaints, err := s.store.ListTeam(ctx, managerID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching team complaints", err)
	}
	return complaints, nil
}

// Review is terminal. Complaints have no escalation path; the manager
// decision stands.
func (s *Service) Review(ctx context.Context, managerID, complaintID, decision, note string) (Complaint, error) {
	if decision != StatusAccepted && decision != StatusRejected {
		return Complaint{}, apperr.New(apperr.Validation, "status must be accepted or rejected")
	}
	note = strings.TrimSpace(note)
	if len(note) > maxNoteLength {
		return Complaint{}, apperr.New(apperr.Validation, "note cannot exceed 500 characters")
	}

	c, ok, err := s.store.Get(ctx, complaintID)
	if err != nil {
		return Complaint{}, apperr.Wrap(apperr.Internal, "error reviewing complaint", err)
	}
	if !ok {
		return Complaint{}, apperr.New(apperr.NotFound, "complaint not found")
	}
	if c.Status != StatusPending {
		return Complaint{}, apperr.Newf(apperr.InvalidState, "complaint has already been %s", c.Status)
	}

	managed, err := s.membership.IsManaged(ctx, managerID, c.EmployeeID)
	if err != nil {
		return Complaint{}, apperr.Wrap(apperr.Internal, "error reviewing complaint", err)
	}
	if !managed {
		return Complaint{}, apperr.New(apperr.Authorization, "this employee is not in your team")
	}

	ok, err = s.store.MarkReviewed(ctx, complaintID, decision, note, managerID)
	if err != nil {
		return Complaint{}, apperr.Wrap(apperr.Internal, "error reviewing complaint", err)
	}
	if !ok {
		return Complaint{}, apperr.New(apperr.InvalidState, "complaint has already been reviewed")
	}
	return s.refresh(ctx, complaintID)
}

func (s *Service) Withdraw(ctx context.Context, employeeID, complaintID string) (Complaint, error) {
	c, ok, err := s.store.Get(ctx, complaintID)
	if err != nil {
		return Complaint{}, apperr.Wrap(apperr.Internal, "error withdrawing complaint", err)
	}
	if !ok {
		return Complaint{}, apperr.New(apperr.NotFound, "complaint not found")
	}
	if c.EmployeeID != employeeID {
		return Complaint{}, apperr.New(apperr.Authorization, "you can only withdraw your own complaints")
	}
	if c.Status != StatusPending {
		return Complaint{}, apperr.New(apperr.InvalidState, "only pending complaints can be withdrawn")
	}

	ok, err = s.store.MarkWithdrawn(ctx, complaintID, employeeID)
	if err != nil {
		return Complaint{}, apperr.Wrap(apperr.Internal, "error withdrawing complaint", err)
	}
	if !ok {
		return Complaint{}, apperr.New(apperr.InvalidState, "only pending complaints can be withdrawn")
	}
	return s.refresh(ctx, complaintID)
}

func (s *Service) refresh(ctx context.Context, id string) (Complaint, error) {
	c, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Complaint{}, apperr.Wrap(apperr.Internal, "error fetching complaint", err)
	}
	if !ok {
		return Complaint{}, apperr.New(apperr.NotFound, "complaint not found")
	}
	return c, nil
}
