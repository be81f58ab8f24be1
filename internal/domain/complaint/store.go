package complaint

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

const complaintSelect = `
  SELECT c.id, c.employee_id, c.subject, c.description, c.category, c.status,
         c.manager_note, c.reviewed_at, c.created_at, c.updated_at,
         e.id, e.name, e.email, COALESCE(e.avatar, ''), e.role,
         r.id, r.name, r.email
  FROM complaints c
  JOIN users e ON e.id = c.employee_id
  LEFT JOIN users r ON r.id = c.reviewed_by`

func scanComplaint(row pgx.Row) (Complaint, error) {
	var c Complaint
	var employee user.Ref
	var rID, rName, rEmail *string
	err := row.Scan(
		&c.ID, &c.EmployeeID, &c.Subject, &c.Description, &c.Category, &c.Status,
		&c.ManagerNote, &c.ReviewedAt, &c.CreatedAt, &c.UpdatedAt,
		&employee.ID, &employee.Name, &employee.Email, &employee.Avatar, &employee.Role,
		&rID, &rName, &rEmail,
	)
	if err != nil {
		return Complaint{}, err
	}
	c.Employee = &employee
	if rID != nil {
		c.ReviewedBy = &user.Ref{ID: *rID, Name: *rName, Email: *rEmail}
	}
	return c, nil
}

func collectComplaints(rows pgx.Rows) ([]Complaint, error) {
	defer rows.Close()
	var out []Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, employeeID, subject, description, category string) (Complaint, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO complaints (employee_id, subject, description, category)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, employeeID, subject, description, category).Scan(&id)
	if err != nil {
		return Complaint{}, err
	}
	c, _, err := s.Get(ctx, id)
	return c, err
}

func (s *Store) Get(ctx context.Context, id string) (Complaint, bool, error) {
	c, err := scanComplaint(s.DB.QueryRow(ctx, complaintSelect+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Complaint{}, false, nil
	}
	if err != nil {
		return Complaint{}, false, err
	}
	return c, true, nil
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID, status string) ([]Complaint, error) {
	query := complaintSelect + ` WHERE c.employee_id = $1`
	args := []any{employeeID}
	if status != "" {
		query += ` AND c.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY c.created_at DESC`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectComplaints(rows)
}

func (s *Store) ListTeam(ctx context.Context, managerID, status string) ([]Complaint, error) {
	query := complaintSelect + `
    WHERE c.employee_id IN (
      SELECT DISTINCT tm.employee_id
      FROM team_members tm
      JOIN teams t ON t.id = tm.team_id
      WHERE t.manager_id = $1
    )`
	args := []any{managerID}
	if status != "" {
		query += ` AND c.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY c.created_at DESC`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectComplaints(rows)
}

func (s *Store) MarkReviewed(ctx context.Context, id, status, note, reviewerID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE complaints
    SET status = $2, manager_note = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $5
    WHERE id = $1 AND status = 'pending'
  `, id, status, note, reviewerID, time.Now())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MarkWithdrawn(ctx context.Context, id, employeeID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE complaints
    SET status = 'withdrawn', updated_at = NOW()
    WHERE id = $1 AND employee_id = $2 AND status = 'pending'
  `, id, employeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
