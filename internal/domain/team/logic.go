package team

// Manages reports whether employeeID appears in any of the given teams.
// Callers pass the full set of teams owned by one manager; the check is
// recomputed on every call rather than denormalized anywhere.
func Manages(teams []Team, employeeID string) bool {
	for _, t := range teams {
		for _, m := range t.Members {
			if m.ID == employeeID {
				return true
			}
		}
	}
	return false
}

// ManagedIDs collects the distinct member ids across the given teams.
func ManagedIDs(teams []Team) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, t := range teams {
		for _, m := range t.Members {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			ids = append(ids, m.ID)
		}
	}
	return ids
}
