package leave

import (
	"math"
	"time"

	"lms/internal/auth"
)

// CalculateDays returns the inclusive day count of a leave interval. A
// same-day request counts as one day; partial-day spans round up before the
// inclusive +1.
func CalculateDays(start, end time.Time) int {
	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours()/24)) + 1
}

// Escalates reports whether a manager decision on the given case triggers
// admin escalation. Only employee-owned leave rejected by a manager
// escalates; manager-owned leave rejected by an admin never does.
func Escalates(ownerRole, decision string) bool {
	return decision == StatusRejected && ownerRole == auth.RoleEmployee
}
