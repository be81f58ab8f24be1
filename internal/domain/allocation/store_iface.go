package allocation

import (
	"context"

	"lms/internal/domain/user"
)

type StoreAPI interface {
	Upsert(ctx context.Context, employeeID string, totalLeaves int) (Allocation, error)
	Get(ctx context.Context, id string) (Allocation, bool, error)
	GetByEmployee(ctx context.Context, employeeID string) (Allocation, bool, error)
	SetTotal(ctx context.Context, id string, totalLeaves int) (Allocation, bool, error)
	List(ctx context.Context) ([]Allocation, error)
	UnallocatedEmployees(ctx context.Context) ([]user.Ref, error)

	// AddTaken is a conditional increment. Employees without a ledger row are
	// unaffected; approval of their leave tracks no balance.
	AddTaken(ctx context.Context, employeeID string, days int) error
}
