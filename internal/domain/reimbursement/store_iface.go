package reimbursement

import "context"

type StoreAPI interface {
	Create(ctx context.Context, payload NewReimbursement) (Reimbursement, error)
	Get(ctx context.Context, id string) (Reimbursement, bool, error)
	ListByApplicant(ctx context.Context, applicantID, status string) ([]Reimbursement, error)
	ListTeam(ctx context.Context, managerID, status string) ([]Reimbursement, error)
	ListAdminQueue(ctx context.Context, status string) ([]Reimbursement, error)

	MarkManagerReviewed(ctx context.Context, id, status, note, managerID string) (bool, error)
	MarkAdminReviewed(ctx context.Context, id, status, note, adminID, fromStatus string) (bool, error)
	MarkWithdrawn(ctx context.Context, id, applicantID string) (bool, error)
}
