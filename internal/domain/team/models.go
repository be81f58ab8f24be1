package team

import (
	"time"

	"lms/internal/domain/user"
)

// Team is a manager-owned group of employees. Membership here is the
// authorization scope for leave, complaint and reimbursement reviews. It is
// distinct from the direct manager assignment on the user record.
type Team struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ManagerID   string     `json:"managerId"`
	Members     []user.Ref `json:"members"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CaseSummary is the compact shape shown on the manager dashboard for a
// pending leave or complaint raised by a team member.
type CaseSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	Employee  user.Ref  `json:"employee"`
}

type OverviewStats struct {
	Teams              int `json:"teams"`
	TotalMembers       int `json:"totalMembers"`
	PendingLeaves      int `json:"pendingLeaves"`
	ApprovedLeaves     int `json:"approvedLeaves"`
	RejectedLeaves     int `json:"rejectedLeaves"`
	PendingComplaints  int `json:"pendingComplaints"`
	AcceptedComplaints int `json:"acceptedComplaints"`
}

// Overview is the manager dashboard aggregate, cached briefly per manager.
type Overview struct {
	Stats            OverviewStats `json:"stats"`
	RecentLeaves     []CaseSummary `json:"recentLeaves"`
	RecentComplaints []CaseSummary `json:"recentComplaints"`
}
