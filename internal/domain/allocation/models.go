package allocation

import (
	"time"

	"lms/internal/domain/user"
)

// MaxTotalLeaves bounds an annual quota.
const MaxTotalLeaves = 365

// Allocation is the per-employee leave ledger. LeavesRemaining is always
// derived, never stored.
type Allocation struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employeeId"`
	Employee        *user.Ref `json:"employee,omitempty"`
	TotalLeaves     int       `json:"totalLeaves"`
	LeavesTaken     int       `json:"leavesTaken"`
	LeavesRemaining int       `json:"leavesRemaining"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Listing pairs the ledger rows with employees who have no allocation yet,
// for the admin allocation screen.
type Listing struct {
	Allocations          []Allocation `json:"allocations"`
	UnallocatedEmployees []user.Ref   `json:"unallocatedEmployees"`
}
