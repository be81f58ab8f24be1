package message

import "lms/internal/auth"

// Verdict is the outcome of the role-pair messaging policy.
type Verdict int

const (
	// Deny blocks the pair outright.
	Deny Verdict = iota
	// Allow permits the pair unconditionally.
	Allow
	// RequireTeam permits the pair only when the receiver is in one of the
	// sender's teams.
	RequireTeam
)

// Policy decides who may message whom. Employees reach managers, managers
// reach their own team members and admins, admins reach managers. Everything
// else is denied, including peer-to-peer within a role.
func Policy(senderRole, receiverRole string) Verdict {
	switch senderRole {
	case auth.RoleEmployee:
		if receiverRole == auth.RoleManager {
			return Allow
		}
	case auth.RoleManager:
		switch receiverRole {
		case auth.RoleEmployee:
			return RequireTeam
		case auth.RoleAdmin:
			return Allow
		}
	case auth.RoleAdmin:
		if receiverRole == auth.RoleManager {
			return Allow
		}
	}
	return Deny
}

// DenialMessage explains a deny or failed team check for the sender's role.
func DenialMessage(senderRole string) string {
	switch senderRole {
	case auth.RoleEmployee:
		return "employees can only message managers"
	case auth.RoleManager:
		return "managers can only message employees in their teams or admins"
	case auth.RoleAdmin:
		return "admins can only message managers"
	}
	return "you cannot message this user"
}
