package complaint

import "context"

type StoreAPI interface {
	Create(ctx context.Context, employeeID, subject, description, category string) (Complaint, error)
	Get(ctx context.Context, id string) (Complaint, bool, error)
	ListByEmployee(ctx context.Context, employeeID, status string) ([]Complaint, error)
	ListTeam(ctx context.Context, managerID, status string) ([]Complaint, error)

	MarkReviewed(ctx context.Context, id, status, note, reviewerID string) (bool, error)
	MarkWithdrawn(ctx context.Context, id, employeeID string) (bool, error)
}
