package team

import "context"

type StoreAPI interface {
	Create(ctx context.Context, managerID, name, description string) (Team, error)
	Get(ctx context.Context, teamID, managerID string) (Team, bool, error)
	ListByManager(ctx context.Context, managerID string) ([]Team, error)
	NameExists(ctx context.Context, managerID, name, excludeTeamID string) (bool, error)
	Update(ctx context.Context, teamID, managerID, name, description string) (Team, bool, error)
	Delete(ctx context.Context, teamID, managerID string) (bool, error)

	AddMember(ctx context.Context, teamID, employeeID string) error
	RemoveMember(ctx context.Context, teamID, employeeID string) (bool, error)

	// Dashboard aggregates over the manager's team members.
	LeaveStatusCounts(ctx context.Context, managerID string) (map[string]int, error)
	ComplaintStatusCounts(ctx context.Context, managerID string) (map[string]int, error)
	PendingLeaveSummaries(ctx context.Context, managerID string, limit int) ([]CaseSummary, error)
	PendingComplaintSummaries(ctx context.Context, managerID string, limit int) ([]CaseSummary, error)
}
