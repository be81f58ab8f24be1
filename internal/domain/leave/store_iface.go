package leave

import "context"

// StoreAPI persists leave cases. Every status transition is a conditional
// update guarded on the current state; the boolean result reports whether
// the guard matched, so a lost race surfaces as false rather than a silent
// second write.
type StoreAPI interface {
	Create(ctx context.Context, payload NewLeave) (Leave, error)
	Get(ctx context.Context, id string) (Leave, bool, error)

	ListByEmployee(ctx context.Context, employeeID, status string) ([]Leave, error)
	ListTeam(ctx context.Context, managerID, status, employeeID string) ([]Leave, error)
	ListManagerOwned(ctx context.Context, status string) ([]Leave, error)
	ListEscalated(ctx context.Context) ([]Leave, error)
	CountPending(ctx context.Context, employeeID string) (int, error)

	MarkReviewed(ctx context.Context, id, status, note, reviewerID string, escalate bool) (bool, error)
	ApplyOverride(ctx context.Context, id, override, note, adminID string, approve bool) (bool, error)
	MarkWithdrawn(ctx context.Context, id, employeeID string) (bool, error)
}
