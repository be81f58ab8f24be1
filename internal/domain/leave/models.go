package leave

import (
	"time"

	"lms/internal/domain/user"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusWithdrawn = "withdrawn"
)

const (
	OverrideNone     = "none"
	OverrideApproved = "approved"
	OverrideUpheld   = "upheld"
)

var leaveTypes = map[string]bool{
	"sick":   true,
	"casual": true,
	"earned": true,
	"unpaid": true,
	"other":  true,
}

func ValidType(t string) bool { return leaveTypes[t] }

// Leave is one applied-for leave interval. The escalation fields only come
// into play for employee-owned leave rejected by a manager.
type Leave struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employeeId"`
	Employee         *user.Ref  `json:"employee,omitempty"`
	LeaveType        string     `json:"leaveType"`
	StartDate        time.Time  `json:"startDate"`
	EndDate          time.Time  `json:"endDate"`
	Reason           string     `json:"reason"`
	NumberOfDays     int        `json:"numberOfDays"`
	Status           string     `json:"status"`
	ManagerNote      string     `json:"managerNote"`
	ReviewedBy       *user.Ref  `json:"reviewedBy,omitempty"`
	ReviewedAt       *time.Time `json:"reviewedAt,omitempty"`
	EscalatedToAdmin bool       `json:"escalatedToAdmin"`
	AdminOverride    string     `json:"adminOverride"`
	AdminNote        string     `json:"adminNote"`
	AdminReviewedBy  *user.Ref  `json:"adminReviewedBy,omitempty"`
	AdminReviewedAt  *time.Time `json:"adminReviewedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// NewLeave holds the validated fields for case creation.
type NewLeave struct {
	EmployeeID   string
	LeaveType    string
	StartDate    time.Time
	EndDate      time.Time
	Reason       string
	NumberOfDays int
}

// Balance is the employee-facing view of the allocation ledger plus the
// number of cases still awaiting review.
type Balance struct {
	TotalLeaves     int `json:"totalLeaves"`
	LeavesTaken     int `json:"leavesTaken"`
	LeavesRemaining int `json:"leavesRemaining"`
	PendingRequests int `json:"pendingRequests"`
}
