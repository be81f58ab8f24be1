package complaint

import (
	"time"

	"lms/internal/domain/user"
)

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusWithdrawn = "withdrawn"
)

var categories = map[string]bool{
	"workplace":  true,
	"harassment": true,
	"workload":   true,
	"salary":     true,
	"leave":      true,
	"other":      true,
}

func ValidCategory(c string) bool { return categories[c] }

type Complaint struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employeeId"`
	Employee    *user.Ref  `json:"employee,omitempty"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	ManagerNote string     `json:"managerNote"`
	ReviewedBy  *user.Ref  `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
