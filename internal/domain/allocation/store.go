package allocation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lms/internal/domain/user"
	"lms/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const allocationSelect = `
  SELECT a.id, a.employee_id, a.total_leaves, a.leaves_taken, a.created_at, a.updated_at,
         u.id, u.name, u.email, COALESCE(u.avatar, ''), u.role
  FROM leave_allocations a
  JOIN users u ON u.id = a.employee_id`

func scanAllocation(row pgx.Row) (Allocation, error) {
	var a Allocation
	var employee user.Ref
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.TotalLeaves, &a.LeavesTaken, &a.CreatedAt, &a.UpdatedAt,
		&employee.ID, &employee.Name, &employee.Email, &employee.Avatar, &employee.Role,
	)
	if err != nil {
		return Allocation{}, err
	}
	a.Employee = &employee
	a.LeavesRemaining = a.TotalLeaves - a.LeavesTaken
	return a, nil
}

func (s *Store) Upsert(ctx context.Context, employeeID string, totalLeaves int) (Allocation, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_allocations (employee_id, total_leaves)
    VALUES ($1, $2)
    ON CONFLICT (employee_id)
    DO UPDATE SET total_leaves = EXCLUDED.total_leaves, updated_at = NOW()
    RETURNING id
  `, employeeID, totalLeaves).Scan(&id)
	if err != nil {
		return Allocation{}, err
	}
	a, _, err := s.Get(ctx, id)
	return a, err
}

func (s *Store) Get(ctx context.Context, id string) (Allocation, bool, error) {
	a, err := scanAllocation(s.DB.QueryRow(ctx, allocationSelect+` WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Allocation{}, false, nil
	}
	if err != nil {
		return Allocation{}, false, err
	}
	return a, true, nil
}

func (s *Store) GetByEmployee(ctx context.Context, employeeID string) (Allocation, bool, error) {
	a, err := scanAllocation(s.DB.QueryRow(ctx, allocationSelect+` WHERE a.employee_id = $1`, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Allocation{}, false, nil
	}
	if err != nil {
		return Allocation{}, false, err
	}
	return a, true, nil
}

func (s *Store) SetTotal(ctx context.Context, id string, totalLeaves int) (Allocation, bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_allocations
    SET total_leaves = $2, updated_at = NOW()
    WHERE id = $1
  `, id, totalLeaves)
	if err != nil {
		return Allocation{}, false, err
	}
	if tag.RowsAffected() == 0 {
		return Allocation{}, false, nil
	}
	return s.Get(ctx, id)
}

func (s *Store) List(ctx context.Context) ([]Allocation, error) {
	rows, err := s.DB.Query(ctx, allocationSelect+` ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) UnallocatedEmployees(ctx context.Context) ([]user.Ref, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.name, u.email, COALESCE(u.avatar, ''), u.role
    FROM users u
    WHERE u.role = 'employee'
      AND NOT EXISTS (SELECT 1 FROM leave_allocations a WHERE a.employee_id = u.id)
    ORDER BY u.created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []user.Ref
	for rows.Next() {
		var r user.Ref
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Avatar, &r.Role); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) AddTaken(ctx context.Context, employeeID string, days int) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE leave_allocations
    SET leaves_taken = leaves_taken + $2, updated_at = NOW()
    WHERE employee_id = $1
  `, employeeID, days)
	return err
}

// Balance reads the ledger for advisory checks. found is false when the
// employee has no allocation row.
func (s *Store) Balance(ctx context.Context, employeeID string) (int, int, bool, error) {
	var total, taken int
	err := s.DB.QueryRow(ctx, `
    SELECT total_leaves, leaves_taken FROM leave_allocations WHERE employee_id = $1
  `, employeeID).Scan(&total, &taken)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	return total, taken, true, nil
}
