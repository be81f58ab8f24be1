package reimbursement

import (
	"time"

	"lms/internal/domain/user"
)

const (
	StatusPending         = "pending"
	StatusManagerApproved = "manager_approved"
	StatusAdminApproved   = "admin_approved"
	StatusRejected        = "rejected"
	StatusWithdrawn       = "withdrawn"
)

var categories = map[string]bool{
	"travel":    true,
	"food":      true,
	"medical":   true,
	"equipment": true,
	"training":  true,
	"other":     true,
}

func ValidCategory(c string) bool { return categories[c] }

// Reimbursement is an expense claim. ApplicantRole is captured at creation
// and drives the approval path: employee claims pass through a manager stage
// first, manager claims go straight to admin.
type Reimbursement struct {
	ID                string     `json:"id"`
	ApplicantID       string     `json:"applicantId"`
	Applicant         *user.Ref  `json:"applicant,omitempty"`
	ApplicantRole     string     `json:"applicantRole"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Amount            float64    `json:"amount"`
	Category          string     `json:"category"`
	Receipt           string     `json:"receipt"`
	Status            string     `json:"status"`
	ManagerReviewedBy *user.Ref  `json:"managerReviewedBy,omitempty"`
	ManagerReviewedAt *time.Time `json:"managerReviewedAt,omitempty"`
	ManagerNote       string     `json:"managerNote"`
	AdminReviewedBy   *user.Ref  `json:"adminReviewedBy,omitempty"`
	AdminReviewedAt   *time.Time `json:"adminReviewedAt,omitempty"`
	AdminNote         string     `json:"adminNote"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// NewReimbursement holds the validated fields for claim creation.
type NewReimbursement struct {
	ApplicantID   string
	ApplicantRole string
	Title         string
	Description   string
	Amount        float64
	Category      string
	Receipt       string
}
