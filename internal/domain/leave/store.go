package leave

import (
	"context"
	"errors"
	"time"

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

const leaveSelect = `
  SELECT l.id, l.employee_id, l.leave_type, l.start_date, l.end_date, l.reason,
         l.number_of_days, l.status, l.manager_note, l.reviewed_at,
         l.escalated_to_admin, l.admin_override, l.admin_note, l.admin_reviewed_at,
         l.created_at, l.updated_at,
         e.id, e.name, e.email, COALESCE(e.avatar, ''), e.role,
         r.id, r.name, r.email,
         a.id, a.name, a.email
  FROM leaves l
  JOIN users e ON e.id = l.employee_id
  LEFT JOIN users r ON r.id = l.reviewed_by
  LEFT JOIN users a ON a.id = l.admin_reviewed_by`

func scanLeave(row pgx.Row) (Leave, error) {
	var l Leave
	var employee user.Ref
	var rID, rName, rEmail *string
	var aID, aName, aEmail *string
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.LeaveType, &l.StartDate, &l.EndDate, &l.Reason,
		&l.NumberOfDays, &l.Status, &l.ManagerNote, &l.ReviewedAt,
		&l.EscalatedToAdmin, &l.AdminOverride, &l.AdminNote, &l.AdminReviewedAt,
		&l.CreatedAt, &l.UpdatedAt,
		&employee.ID, &employee.Name, &employee.Email, &employee.Avatar, &employee.Role,
		&rID, &rName, &rEmail,
		&aID, &aName, &aEmail,
	)
	if err != nil {
		return Leave{}, err
	}
	l.Employee = &employee
	if rID != nil {
		l.ReviewedBy = &user.Ref{ID: *rID, Name: *rName, Email: *rEmail}
	}
	if aID != nil {
		l.AdminReviewedBy = &user.Ref{ID: *aID, Name: *aName, Email: *aEmail}
	}
	return l, nil
}

func collectLeaves(rows pgx.Rows) ([]Leave, error) {
	defer rows.Close()
	var out []Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, payload NewLeave) (Leave, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leaves (employee_id, leave_type, start_date, end_date, reason, number_of_days)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, payload.EmployeeID, payload.LeaveType, payload.StartDate, payload.EndDate, payload.Reason, payload.NumberOfDays).Scan(&id)
	if err != nil {
		return Leave{}, err
	}
	l, _, err := s.Get(ctx, id)
	return l, err
}

func (s *Store) Get(ctx context.Context, id string) (Leave, bool, error) {
	l, err := scanLeave(s.DB.QueryRow(ctx, leaveSelect+` WHERE l.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Leave{}, false, nil
	}
	if err != nil {
		return Leave{}, false, err
	}
	return l, true, nil
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID, status string) ([]Leave, error) {
	query := leaveSelect + ` WHERE l.employee_id = $1`
	args := []any{employeeID}
	if status != "" {
		query += ` AND l.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY l.created_at DESC`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectLeaves(rows)
}

func (s *Store) ListTeam(ctx context.Context, managerID, status, employeeID string) ([]Leave, error) {
	query := leaveSelect + `
    WHERE l.employee_id IN (
      SELECT DISTINCT tm.employee_id
      FROM team_members tm
      JOIN teams t ON t.id = tm.team_id
      WHERE t.manager_id = $1
    )`
	args := []any{managerID}
	if status != "" {
		args = append(args, status)
		query += ` AND l.status = $2`
	}
	if employeeID != "" {
		args = append(args, employeeID)
		if status != "" {
			query += ` AND l.employee_id = $3`
		} else {
			query += ` AND l.employee_id = $2`
		}
	}
	query += ` ORDER BY l.created_at DESC`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectLeaves(rows)
}

func (s *Store) ListManagerOwned(ctx context.Context, status string) ([]Leave, error) {
	query := leaveSelect + ` WHERE e.role = 'manager'`
	var args []any
	if status != "" {
		args = append(args, status)
		query += ` AND l.status = $1`
	}
	query += ` ORDER BY l.created_at DESC`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectLeaves(rows)
}

func (s *Store) ListEscalated(ctx context.Context) ([]Leave, error) {
	rows, err := s.DB.Query(ctx, leaveSelect+`
    WHERE l.escalated_to_admin
    ORDER BY l.created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	return collectLeaves(rows)
}

func (s *Store) CountPending(ctx context.Context, employeeID string) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM leaves WHERE employee_id = $1 AND status = 'pending'
  `, employeeID).Scan(&n)
	return n, err
}

// MarkReviewed flips a pending case to its reviewed status. The guard on the
// current status makes a racing double review lose with zero rows affected.
func (s *Store) MarkReviewed(ctx context.Context, id, status, note, reviewerID string, escalate bool) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leaves
    SET status = $2, manager_note = $3, reviewed_by = $4, reviewed_at = $5,
        escalated_to_admin = $6, updated_at = $5
    WHERE id = $1 AND status = 'pending'
  `, id, status, note, reviewerID, time.Now(), escalate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ApplyOverride(ctx context.Context, id, override, note, adminID string, approve bool) (bool, error) {
	query := `
    UPDATE leaves
    SET admin_override = $2, admin_note = $3, admin_reviewed_by = $4, admin_reviewed_at = $5,
        updated_at = $5
    WHERE id = $1 AND escalated_to_admin AND admin_override = 'none'`
	if approve {
		query = `
    UPDATE leaves
    SET admin_override = $2, admin_note = $3, admin_reviewed_by = $4, admin_reviewed_at = $5,
        updated_at = $5, status = 'approved'
    WHERE id = $1 AND escalated_to_admin AND admin_override = 'none'`
	}
	tag, err := s.DB.Exec(ctx, query, id, override, note, adminID, time.Now())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MarkWithdrawn(ctx context.Context, id, employeeID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leaves
    SET status = 'withdrawn', updated_at = NOW()
    WHERE id = $1 AND employee_id = $2 AND status = 'pending'
  `, id, employeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
