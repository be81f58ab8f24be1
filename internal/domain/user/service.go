package user

import (
	"context"
	"regexp"
	"strings"
	"time"

	"lms/internal/auth"
	"lms/internal/domain/apperr"
	"lms/internal/platform/cache"
)

const (
	minPasswordLength = 6
	recentUsersLimit  = 5
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type Service struct {
	store    StoreAPI
	overview *cache.TTL[Overview]
}

func NewService(store StoreAPI, overviewTTL time.Duration) *Service {
	return &Service{
		store:    store,
		overview: cache.New[Overview](overviewTTL),
	}
}

func (s *Service) Register(ctx context.Context, name, email, password, role string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" || role == "" {
		return User{}, apperr.New(apperr.Validation, "please provide name, email, password, and role")
	}
	if len(name) < 2 {
		return User{}, apperr.New(apperr.Validation, "name must be at least 2 characters")
	}
	if !emailPattern.MatchString(email) {
		return User{}, apperr.New(apperr.Validation, "please provide a valid email")
	}
	if len(password) < minPasswordLength {
		return User{}, apperr.New(apperr.Validation, "password must be at least 6 characters")
	}
	if !auth.ValidRole(role) {
		return User{}, apperr.New(apperr.Validation, "role must be admin, manager, or employee")
	}

	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return User{}, apperr.Wrap(apperr.Internal, "error creating account", err)
	}
	if exists {
		return User{}, apperr.New(apperr.Conflict, "an account with this email already exists")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, apperr.Wrap(apperr.Internal, "error creating account", err)
	}

	created, err := s.store.Create(ctx, NewUser{Name: name, Email: email, PasswordHash: hash, Role: role})
	if err != nil {
		return User{}, apperr.Wrap(apperr.Internal, "error creating account", err)
	}
	s.overview.Invalidate(overviewKey)
	return created, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return User{}, apperr.New(apperr.Validation, "please provide email and password")
	}

	found, hash, ok, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return User{}, apperr.Wrap(apperr.Internal, "error during login", err)
	}
	if !ok || auth.CheckPassword(hash, password) != nil {
		return User{}, apperr.New(apperr.Authorization, "invalid email or password")
	}
	return found, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	found, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return User{}, apperr.Wrap(apperr.Internal, "error fetching user", err)
	}
	if !ok {
		return User{}, apperr.New(apperr.NotFound, "user not found")
	}
	return found, nil
}

func (s *Service) ListByRole(ctx context.Context, role string) ([]User, error) {
	users, err := s.store.ListByRole(ctx, role)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching users", err)
	}
	return users, nil
}

func (s *Service) ListAll(ctx context.Context) ([]User, error) {
	users, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching users", err)
	}
	return users, nil
}

func (s *Service) Delete(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return apperr.New(apperr.Validation, "you cannot delete your own account")
	}
	removed, err := s.store.Delete(ctx, targetID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "error deleting user", err)
	}
	if !removed {
		return apperr.New(apperr.NotFound, "user not found")
	}
	s.overview.Invalidate(overviewKey)
	return nil
}

func (s *Service) UpdateProfile(ctx context.Context, id, name, designation, avatar string) (User, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return User{}, apperr.New(apperr.Validation, "name must be at least 2 characters")
	}
	updated, ok, err := s.store.UpdateProfile(ctx, id, name, strings.TrimSpace(designation), strings.TrimSpace(avatar))
	if err != nil {
		return User{}, apperr.Wrap(apperr.Internal, "error updating profile", err)
	}
	if !ok {
		return User{}, apperr.New(apperr.NotFound, "user not found")
	}
	return updated, nil
}

func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	if current == "" || next == "" {
		return apperr.New(apperr.Validation, "please provide current and new password")
	}
	if len(next) < minPasswordLength {
		return apperr.New(apperr.Validation, "password must be at least 6 characters")
	}

	hash, ok, err := s.store.PasswordHash(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "error changing password", err)
	}
	if !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	if auth.CheckPassword(hash, current) != nil {
		return apperr.New(apperr.Authorization, "current password is incorrect")
	}

	newHash, err := auth.HashPassword(next)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "error changing password", err)
	}
	if err := s.store.UpdatePassword(ctx, id, newHash); err != nil {
		return apperr.Wrap(apperr.Internal, "error changing password", err)
	}
	return nil
}

func (s *Service) UnassignedEmployees(ctx context.Context) ([]User, error) {
	users, err := s.store.UnassignedEmployees(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching unassigned employees", err)
	}
	return users, nil
}

// AssignEmployee links an employee to a manager through the direct
// manager_id relation. This roster is independent of team membership and is
// never consulted for case authorization.
func (s *Service) AssignEmployee(ctx context.Context, managerID, employeeID string) (User, error) {
	employee, ok, err := s.store.Get(ctx, employeeID)
	if err != nil {
		return User{}, apperr.Wrap(apperr.Internal, "error assigning employee", err)
	}
	if !ok || employee.Role != auth.RoleEmployee {
		return User{}, apperr.New(apperr.NotFound, "employee not found")
	}
	if employee.ManagerID != nil {
		return User{}, apperr.New(apperr.Validation, "this employee is already assigned to a manager")
	}
	if err := s.store.SetManager(ctx, employeeID, &managerID); err != nil {
		return User{}, apperr.Wrap(apperr.Internal, "error assigning employee", err)
	}
	employee.ManagerID = &managerID
	return employee, nil
}

func (s *Service) RemoveEmployee(ctx context.Context, managerID, employeeID string) error {
	employee, ok, err := s.store.Get(ctx, employeeID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "error removing employee", err)
	}
	if !ok {
		return apperr.New(apperr.NotFound, "employee not found")
	}
	if employee.ManagerID == nil || *employee.ManagerID != managerID {
		return apperr.New(apperr.Authorization, "this employee is not assigned to you")
	}
	if err := s.store.SetManager(ctx, employeeID, nil); err != nil {
		return apperr.Wrap(apperr.Internal, "error removing employee", err)
	}
	return nil
}

func (s *Service) MyTeam(ctx context.Context, managerID string) ([]User, error) {
	users, err := s.store.DirectReports(ctx, managerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching team", err)
	}
	return users, nil
}

const overviewKey = "admin"

func (s *Service) AdminOverview(ctx context.Context) (Overview, error) {
	if cached, ok := s.overview.Get(overviewKey); ok {
		return cached, nil
	}

	counts, err := s.store.CountsByRole(ctx)
	if err != nil {
		return Overview{}, apperr.Wrap(apperr.Internal, "error fetching admin overview", err)
	}
	recent, err := s.store.RecentUsers(ctx, recentUsersLimit)
	if err != nil {
		return Overview{}, apperr.Wrap(apperr.Internal, "error fetching admin overview", err)
	}
	allocated, err := s.store.CountAllocated(ctx)
	if err != nil {
		return Overview{}, apperr.Wrap(apperr.Internal, "error fetching admin overview", err)
	}
	unallocated, err := s.store.UnallocatedEmployeeList(ctx, recentUsersLimit)
	if err != nil {
		return Overview{}, apperr.Wrap(apperr.Internal, "error fetching admin overview", err)
	}

	total := 0
	for _, count := range counts {
		total += count
	}
	employees := counts[auth.RoleEmployee]

	result := Overview{
		Stats: OverviewStats{
			TotalUsers:  total,
			Admins:      counts[auth.RoleAdmin],
			Managers:    counts[auth.RoleManager],
			Employees:   employees,
			Allocated:   allocated,
			Unallocated: employees - allocated,
		},
		RecentUsers:          recent,
		UnallocatedEmployees: unallocated,
	}
	s.overview.Set(overviewKey, result)
	return result, nil
}
