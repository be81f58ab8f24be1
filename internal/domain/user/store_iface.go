package user

import "context"

type StoreAPI interface {
	Create(ctx context.Context, payload NewUser) (User, error)
	Get(ctx context.Context, id string) (User, bool, error)
	FindByEmail(ctx context.Context, email string) (User, string, bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListByRole(ctx context.Context, role string) ([]User, error)
	ListAll(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) (bool, error)
	UpdateProfile(ctx context.Context, id, name, designation, avatar string) (User, bool, error)
	PasswordHash(ctx context.Context, id string) (string, bool, error)
	UpdatePassword(ctx context.Context, id, hash string) error

	// Direct-assignment roster, distinct from team membership.
	UnassignedEmployees(ctx context.Context) ([]User, error)
	SetManager(ctx context.Context, employeeID string, managerID *string) error
	DirectReports(ctx context.Context, managerID string) ([]User, error)

	// Admin overview aggregates.
	CountsByRole(ctx context.Context) (map[string]int, error)
	RecentUsers(ctx context.Context, limit int) ([]User, error)
	CountAllocated(ctx context.Context) (int, error)
	UnallocatedEmployeeList(ctx context.Context, limit int) ([]User, error)
}
