package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lms/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const userColumns = `id, name, email, role, COALESCE(designation, ''), COALESCE(avatar, ''), manager_id, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Designation, &u.Avatar, &u.ManagerID, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func collectUsers(rows pgx.Rows) ([]User, error) {
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, payload NewUser) (User, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO users (name, email, password_hash, role)
    VALUES ($1, $2, $3, $4)
    RETURNING `+userColumns+`
  `, payload.Name, payload.Email, payload.PasswordHash, payload.Role)
	return scanUser(row)
}

func (s *Store) Get(ctx context.Context, id string) (User, bool, error) {
	u, err := scanUser(s.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (User, string, bool, error) {
	var u User
	var hash string
	err := s.DB.QueryRow(ctx, `
    SELECT `+userColumns+`, password_hash
    FROM users
    WHERE email = $1
  `, email).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Designation, &u.Avatar, &u.ManagerID, &u.CreatedAt, &u.UpdatedAt, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, "", false, nil
	}
	if err != nil {
		return User{}, "", false, err
	}
	return u, hash, true, nil
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListByRole(ctx context.Context, role string) ([]User, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at DESC`, role)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (s *Store) ListAll(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id, name, designation, avatar string) (User, bool, error) {
	u, err := scanUser(s.DB.QueryRow(ctx, `
    UPDATE users
    SET name = $2, designation = $3, avatar = $4, updated_at = now()
    WHERE id = $1
    RETURNING `+userColumns+`
  `, id, name, designation, avatar))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (s *Store) PasswordHash(ctx context.Context, id string) (string, bool, error) {
	var hash string
	err := s.DB.QueryRow(ctx, "SELECT password_hash FROM users WHERE id = $1", id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id, hash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1", id, hash)
	return err
}

func (s *Store) UnassignedEmployees(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+userColumns+`
    FROM users
    WHERE role = 'employee' AND manager_id IS NULL
    ORDER BY created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (s *Store) SetManager(ctx context.Context, employeeID string, managerID *string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET manager_id = $2, updated_at = now() WHERE id = $1", employeeID, managerID)
	return err
}

func (s *Store) DirectReports(ctx context.Context, managerID string) ([]User, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+userColumns+` FROM users WHERE manager_id = $1 ORDER BY name`, managerID)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (s *Store) CountsByRole(ctx context.Context) (map[string]int, error) {
	rows, err := s.DB.Query(ctx, "SELECT role, COUNT(1) FROM users GROUP BY role")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[role] = count
	}
	return counts, rows.Err()
}

func (s *Store) RecentUsers(ctx context.Context, limit int) ([]User, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (s *Store) CountAllocated(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM leave_allocations").Scan(&count)
	return count, err
}

func (s *Store) UnallocatedEmployeeList(ctx context.Context, limit int) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+userColumns+`
    FROM users u
    WHERE u.role = 'employee'
      AND NOT EXISTS (SELECT 1 FROM leave_allocations a WHERE a.employee_id = u.id)
    ORDER BY u.created_at DESC
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}
