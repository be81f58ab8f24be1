package allocation

import (
	"context"

	"lms/internal/auth"
	"lms/internal/domain/apperr"
	"lms/internal/domain/user"
)

// UserDirectory validates allocation targets.
type UserDirectory interface {
	Get(ctx context.Context, id string) (user.User, bool, error)
}

type Service struct {
	store StoreAPI
	users UserDirectory
}

func NewService(store StoreAPI, users UserDirectory) *Service {
	return &Service{store: store, users: users}
}

func validTotal(totalLeaves int) error {
	if totalLeaves < 0 || totalLeaves > MaxTotalLeaves {
		return apperr.Newf(apperr.Validation, "total leaves must be between 0 and %d", MaxTotalLeaves)
	}
	return nil
}

// Set upserts an employee's quota. Lowering below what is already taken is
// only rejected on the explicit update path, matching the admin screen's
// two distinct actions.
func (s *Service) Set(ctx context.Context, employeeID string, totalLeaves int) (Allocation, error) {
	if employeeID == "" {
		return Allocation{}, apperr.New(apperr.Validation, "please provide employeeId and totalLeaves")
	}
	if err := validTotal(totalLeaves); err != nil {
		return Allocation{}, err
	}

	employee, ok, err := s.users.Get(ctx, employeeID)
	if err != nil {
		return Allocation{}, apperr.Wrap(apperr.Internal, "error setting leave allocation", err)
	}
	if !ok || employee.Role != auth.RoleEmployee {
		return Allocation{}, apperr.New(apperr.NotFound, "employee not found")
	}

	a, err := s.store.Upsert(ctx, employeeID, totalLeaves)
	if err != nil {
		return Allocation{}, apperr.Wrap(apperr.Internal, "error setting leave allocation", err)
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, allocationID string, totalLeaves int) (Allocation, error) {
	if err := validTotal(totalLeaves); err != nil {
		return Allocation{}, err
	}

	current, ok, err := s.store.Get(ctx, allocationID)
	if err != nil {
		return Allocation{}, apperr.Wrap(apperr.Internal, "error updating leave allocation", err)
	}
	if !ok {
		return Allocation{}, apperr.New(apperr.NotFound, "leave allocation not found")
	}
	if totalLeaves < current.LeavesTaken {
		return Allocation{}, apperr.Newf(apperr.Validation, "cannot set total leaves below already taken (%d)", current.LeavesTaken)
	}

	a, ok, err := s.store.SetTotal(ctx, allocationID, totalLeaves)
	if err != nil {
		return Allocation{}, apperr.Wrap(apperr.Internal, "error updating leave allocation", err)
	}
	if !ok {
		return Allocation{}, apperr.New(apperr.NotFound, "leave allocation not found")
	}
	return a, nil
}

func (s *Service) List(ctx context.Context) (Listing, error) {
	allocations, err := s.store.List(ctx)
	if err != nil {
		return Listing{}, apperr.Wrap(apperr.Internal, "error fetching leave allocations", err)
	}
	unallocated, err := s.store.UnallocatedEmployees(ctx)
	if err != nil {
		return Listing{}, apperr.Wrap(apperr.Internal, "error fetching leave allocations", err)
	}
	if allocations == nil {
		allocations = []Allocation{}
	}
	if unallocated == nil {
		unallocated = []user.Ref{}
	}
	return Listing{Allocations: allocations, UnallocatedEmployees: unallocated}, nil
}
