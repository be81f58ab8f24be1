package reimbursement

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

const reimbursementSelect = `
  SELECT r.id, r.applicant_id, r.applicant_role, r.title, r.description, r.amount,
         r.category, r.receipt, r.status, r.manager_note, r.manager_reviewed_at,
         r.admin_note, r.admin_reviewed_at, r.created_at, r.updated_at,
         u.id, u.name, u.email, COALESCE(u.avatar, ''), u.role,
         m.id, m.name, m.email,
         a.id, a.name, a.email
  FROM reimbursements r
  JOIN users u ON u.id = r.applicant_id
  LEFT JOIN users m ON m.id = r.manager_reviewed_by
  LEFT JOIN users a ON a.id = r.admin_reviewed_by`

func scanReimbursement(row pgx.Row) (Reimbursement, error) {
	var rb Reimbursement
	var applicant user.Ref
	var mID, mName, mEmail *string
	var aID, aName, aEmail *string
	err := row.Scan(
		&rb.ID, &rb.ApplicantID, &rb.ApplicantRole, &rb.Title, &rb.Description, &rb.Amount,
		&rb.Category, &rb.Receipt, &rb.Status, &rb.ManagerNote, &rb.ManagerReviewedAt,
		&rb.AdminNote, &rb.AdminReviewedAt, &rb.CreatedAt, &rb.UpdatedAt,
		&applicant.ID, &applicant.Name, &applicant.Email, &applicant.Avatar, &applicant.Role,
		&mID, &mName, &mEmail,
		&aID, &aName, &aEmail,
	)
	if err != nil {
		return Reimbursement{}, err
	}
	rb.Applicant = &applicant
	if mID != nil {
		rb.ManagerReviewedBy = &user.Ref{ID: *mID, Name: *mName, Email: *mEmail}
	}
	if aID != nil {
		rb.AdminReviewedBy = &user.Ref{ID: *aID, Name: *aName, Email: *aEmail}
	}
	return rb, nil
}

func collectReimbursements(rows pgx.Rows) ([]Reimbursement, error) {
	defer rows.Close()
	var out []Reimbursement
	for rows.Next() {
		rb, err := scanReimbursement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rb)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, payload NewReimbursement) (Reimbursement, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO reimbursements (applicant_id, applicant_role, title, description, amount, category, receipt)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id
  `, payload.ApplicantID, payload.ApplicantRole, payload.Title, payload.Description,
		payload.Amount, payload.Category, payload.Receipt).Scan(&id)
	if err != nil {
		return Reimbursement{}, err
	}
	rb, _, err := s.Get(ctx, id)
	return rb, err
}

func (s *Store) Get(ctx context.Context, id string) (Reimbursement, bool, error) {
	rb, err := scanReimbursement(s.DB.QueryRow(ctx, reimbursementSelect+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Reimbursement{}, false, nil
	}
	if err != nil {
		return Reimbursement{}, false, err
	}
	return rb, true, nil
}

func (s *Store) ListByApplicant(ctx context.Context, applicantID, status string) ([]Reimbursement, error) {
	query := reimbursementSelect + ` WHERE r.applicant_id = $1`
	args := []any{applicantID}
	if status != "" {
		query += ` AND r.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY r.created_at DESC`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectReimbursements(rows)
}

// ListTeam returns employee claims from the manager's team members. Without
// a status filter only the claims awaiting the manager stage are shown.
func (s *Store) ListTeam(ctx context.Context, managerID, status string) ([]Reimbursement, error) {
	if status == "" {
		status = StatusPending
	}
	rows, err := s.DB.Query(ctx, reimbursementSelect+`
    WHERE r.applicant_role = 'employee'
      AND r.status = $2
      AND r.applicant_id IN (
        SELECT DISTINCT tm.employee_id
        FROM team_members tm
        JOIN teams t ON t.id = tm.team_id
        WHERE t.manager_id = $1
      )
    ORDER BY r.created_at DESC
  `, managerID, status)
	if err != nil {
		return nil, err
	}
	return collectReimbursements(rows)
}

// ListAdminQueue defaults to the claims actionable by an admin: employee
// claims past the manager stage plus manager claims still pending.
func (s *Store) ListAdminQueue(ctx context.Context, status string) ([]Reimbursement, error) {
	if status != "" {
		rows, err := s.DB.Query(ctx, reimbursementSelect+`
      WHERE r.status = $1
      ORDER BY r.created_at DESC
    `, status)
		if err != nil {
			return nil, err
		}
		return collectReimbursements(rows)
	}

	rows, err := s.DB.Query(ctx, reimbursementSelect+`
    WHERE (r.applicant_role = 'employee' AND r.status = 'manager_approved')
       OR (r.applicant_role = 'manager' AND r.status = 'pending')
    ORDER BY r.created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	return collectReimbursements(rows)
}

func (s *Store) MarkManagerReviewed(ctx context.Context, id, status, note, managerID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE reimbursements
    SET status = $2, manager_note = $3, manager_reviewed_by = $4, manager_reviewed_at = $5, updated_at = $5
    WHERE id = $1 AND status = 'pending' AND applicant_role = 'employee'
  `, id, status, note, managerID, time.Now())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MarkAdminReviewed(ctx context.Context, id, status, note, adminID, fromStatus string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE reimbursements
    SET status = $2, admin_note = $3, admin_reviewed_by = $4, admin_reviewed_at = $5, updated_at = $5
    WHERE id = $1 AND status = $6
  `, id, status, note, adminID, time.Now(), fromStatus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MarkWithdrawn(ctx context.Context, id, applicantID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE reimbursements
    SET status = 'withdrawn', updated_at = NOW()
    WHERE id = $1 AND applicant_id = $2 AND status = 'pending'
  `, id, applicantID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
