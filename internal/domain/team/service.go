package team

import (
	"context"
	"strings"
	"time"

	"lms/internal/auth"
	"lms/internal/domain/apperr"
	"lms/internal/domain/user"
	"lms/internal/platform/cache"
)

const (
	minNameLength        = 2
	maxNameLength        = 50
	maxDescriptionLength = 200
	recentCasesLimit     = 3
)

// UserDirectory is the slice of the user store the team service needs to
// validate member candidates.
type UserDirectory interface {
	Get(ctx context.Context, id string) (user.User, bool, error)
}

type Service struct {
	store    StoreAPI
	users    UserDirectory
	overview *cache.TTL[Overview]
}

func NewService(store StoreAPI, users UserDirectory, overviewTTL time.Duration) *Service {
	return &Service{
		store:    store,
		users:    users,
		overview: cache.New[Overview](overviewTTL),
	}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < minNameLength {
		return "", apperr.New(apperr.Validation, "team name must be at least 2 characters")
	}
	if len(name) > maxNameLength {
		return "", apperr.New(apperr.Validation, "team name cannot exceed 50 characters")
	}
	return name, nil
}

func (s *Service) Create(ctx context.Context, managerID, name, description string) (Team, error) {
	name, err := validateName(name)
	if err != nil {
		return Team{}, err
	}
	description = strings.TrimSpace(description)
	if len(description) > maxDescriptionLength {
		return Team{}, apperr.New(apperr.Validation, "description cannot exceed 200 characters")
	}

	taken, err := s.store.NameExists(ctx, managerID, name, "")
	if err != nil {
		return Team{}, apperr.Wrap(apperr.Internal, "error creating team", err)
	}
	if taken {
		return Team{}, apperr.New(apperr.Conflict, "you already have a team with this name")
	}

	t, err := s.store.Create(ctx, managerID, name, description)
	if err != nil {
		return Team{}, apperr.Wrap(apperr.Internal, "error creating team", err)
	}
	return t, nil
}

func (s *Service) MyTeams(ctx context.Context, managerID string) ([]Team, error) {
	teams, err := s.store.ListByManager(ctx, managerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching teams", err)
	}
	return teams, nil
}

func (s *Service) Get(ctx context.Context, managerID, teamID string) (Team, error) {
	t, ok, err := s.store.Get(ctx, teamID, managerID)
	if err != nil {
		return Team{}, apperr.Wrap(apperr.Internal, "error fetching team", err)
	}
	if !ok {
		return Team{}, apperr.New(apperr.NotFound, "team not found")
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, managerID, teamID, name, description string) (Team, error) {
	current, err := s.Get(ctx, managerID, teamID)
	if err != nil {
		return Team{}, err
	}

	if name == "" {
		name = current.Name
	} else {
		name, err = validateName(name)
		if err != nil {
			return Team{}, err
		}
	}
	description = strings.TrimSpace(description)
	if len(description) > maxDescriptionLength {
		return Team{}, apperr.New(apperr.Validation, "description cannot exceed 200 characters")
	}

	if name != current.Name {
		taken, err := s.store.NameExists(ctx, managerID, name, teamID)
		if err != nil {
			return Team{}, apperr.Wrap(apperr.Internal, "error updating team", err)
		}
		if taken {
			return Team{}, apperr.New(apperr.Conflict, "you already have a team with this name")
		}
	}

	t, ok, err := s.store.Update(ctx, teamID, managerID, name, description)
	if err != nil {
		return Team{}, apperr.Wrap(apperr.Internal, "error updating team", err)
	}
	if !ok {
		return Team{}, apperr.New(apperr.NotFound, "team not found")
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, managerID, teamID string) error {
	ok, err := s.store.Delete(ctx, teamID, managerID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "error deleting team", err)
	}
	if !ok {
		return apperr.New(apperr.NotFound, "team not found")
	}
	return nil
}

// AddMember puts an employee in one of the manager's teams. It returns the
// updated team and the employee's name for the confirmation message.
func (s *Service) AddMember(ctx context.Context, managerID, teamID, employeeID string) (Team, string, error) {
	if employeeID == "" {
		return Team{}, "", apperr.New(apperr.Validation, "employee id is required")
	}

	t, err := s.Get(ctx, managerID, teamID)
	if err != nil {
		return Team{}, "", err
	}

	employee, ok, err := s.users.Get(ctx, employeeID)
	if err != nil {
		return Team{}, "", apperr.Wrap(apperr.Internal, "error adding member", err)
	}
	if !ok || employee.Role != auth.RoleEmployee {
		return Team{}, "", apperr.New(apperr.NotFound, "employee not found")
	}

	for _, m := range t.Members {
		if m.ID == employeeID {
			return Team{}, "", apperr.New(apperr.Validation, employee.Name+" is already in this team")
		}
	}

	if err := s.store.AddMember(ctx, teamID, employeeID); err != nil {
		return Team{}, "", apperr.Wrap(apperr.Internal, "error adding member", err)
	}

	t, err = s.Get(ctx, managerID, teamID)
	if err != nil {
		return Team{}, "", err
	}
	return t, employee.Name, nil
}

func (s *Service) RemoveMember(ctx context.Context, managerID, teamID, employeeID string) (Team, error) {
	if _, err := s.Get(ctx, managerID, teamID); err != nil {
		return Team{}, err
	}

	removed, err := s.store.RemoveMember(ctx, teamID, employeeID)
	if err != nil {
		return Team{}, apperr.Wrap(apperr.Internal, "error removing member", err)
	}
	if !removed {
		return Team{}, apperr.New(apperr.Validation, "employee is not in this team")
	}
	return s.Get(ctx, managerID, teamID)
}

// IsManaged reports whether the manager has the employee in any of their
// teams. Every review path that scopes by team goes through this predicate.
func (s *Service) IsManaged(ctx context.Context, managerID, employeeID string) (bool, error) {
	teams, err := s.store.ListByManager(ctx, managerID)
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "error checking team membership", err)
	}
	return Manages(teams, employeeID), nil
}

// ManagedEmployeeIDs returns the distinct ids of employees across the
// manager's teams, for contact-list derivation.
func (s *Service) ManagedEmployeeIDs(ctx context.Context, managerID string) ([]string, error) {
	teams, err := s.store.ListByManager(ctx, managerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error listing team members", err)
	}
	return ManagedIDs(teams), nil
}

// ManagedEmployees returns the distinct members across the manager's teams.
func (s *Service) ManagedEmployees(ctx context.Context, managerID string) ([]user.Ref, error) {
	teams, err := s.store.ListByManager(ctx, managerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error listing team members", err)
	}
	seen := make(map[string]struct{})
	var members []user.Ref
	for _, t := range teams {
		for _, m := range t.Members {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			members = append(members, m)
		}
	}
	return members, nil
}

func (s *Service) ManagerOverview(ctx context.Context, managerID string) (Overview, error) {
	if cached, ok := s.overview.Get(managerID); ok {
		return cached, nil
	}

	teams, err := s.store.ListByManager(ctx, managerID)
	if err != nil {
		return Overview{}, apperr.Wrap(apperr.Internal, "error building overview", err)
	}

	totalMembers := 0
	for _, t := range teams {
		totalMembers += len(t.Members)
	}

	ov := Overview{
		Stats: OverviewStats{
			Teams:        len(teams),
			TotalMembers: totalMembers,
		},
		RecentLeaves:     []CaseSummary{},
		RecentComplaints: []CaseSummary{},
	}

	if totalMembers > 0 {
		leaveCounts, err := s.store.LeaveStatusCounts(ctx, managerID)
		if err != nil {
			return Overview{}, apperr.Wrap(apperr.Internal, "error building overview", err)
		}
		complaintCounts, err := s.store.ComplaintStatusCounts(ctx, managerID)
		if err != nil {
			return Overview{}, apperr.Wrap(apperr.Internal, "error building overview", err)
		}
		ov.Stats.PendingLeaves = leaveCounts["pending"]
		ov.Stats.ApprovedLeaves = leaveCounts["approved"]
		ov.Stats.RejectedLeaves = leaveCounts["rejected"]
		ov.Stats.PendingComplaints = complaintCounts["pending"]
		ov.Stats.AcceptedComplaints = complaintCounts["accepted"]

		if ov.RecentLeaves, err = s.store.PendingLeaveSummaries(ctx, managerID, recentCasesLimit); err != nil {
			return Overview{}, apperr.Wrap(apperr.Internal, "error building overview", err)
		}
		if ov.RecentComplaints, err = s.store.PendingComplaintSummaries(ctx, managerID, recentCasesLimit); err != nil {
			return Overview{}, apperr.Wrap(apperr.Internal, "error building overview", err)
		}
		if ov.RecentLeaves == nil {
			ov.RecentLeaves = []CaseSummary{}
		}
		if ov.RecentComplaints == nil {
			ov.RecentComplaints = []CaseSummary{}
		}
	}

	s.overview.Set(managerID, ov)
	return ov, nil
}
