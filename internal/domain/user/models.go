package user

import "time"

type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Designation string    `json:"designation,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	ManagerID   *string   `json:"managerId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Ref is the related-entity shape embedded in case resources so the UI can
// render reviewer/applicant details without extra lookups.
type Ref struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role,omitempty"`
}

type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

type OverviewStats struct {
	TotalUsers  int `json:"totalUsers"`
	Admins      int `json:"admins"`
	Managers    int `json:"managers"`
	Employees   int `json:"employees"`
	Allocated   int `json:"allocated"`
	Unallocated int `json:"unallocated"`
}

type Overview struct {
	Stats                OverviewStats `json:"stats"`
	RecentUsers          []User        `json:"recentUsers"`
	UnallocatedEmployees []User        `json:"unallocatedEmployees"`
}
