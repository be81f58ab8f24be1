package team

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

const teamColumns = `id, name, COALESCE(description, ''), manager_id, created_at, updated_at`

func scanTeam(row pgx.Row) (Team, error) {
	var t Team
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.ManagerID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (s *Store) Create(ctx context.Context, managerID, name, description string) (Team, error) {
	t, err := scanTeam(s.DB.QueryRow(ctx, `
    INSERT INTO teams (name, description, manager_id)
    VALUES ($1, $2, $3)
    RETURNING `+teamColumns+`
  `, name, description, managerID))
	if err != nil {
		return Team{}, err
	}
	t.Members = []user.Ref{}
	return t, nil
}

func (s *Store) Get(ctx context.Context, teamID, managerID string) (Team, bool, error) {
	t, err := scanTeam(s.DB.QueryRow(ctx, `
    SELECT `+teamColumns+`
    FROM teams
    WHERE id = $1 AND manager_id = $2
  `, teamID, managerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Team{}, false, nil
	}
	if err != nil {
		return Team{}, false, err
	}
	if err := s.loadMembers(ctx, &t); err != nil {
		return Team{}, false, err
	}
	return t, true, nil
}

func (s *Store) ListByManager(ctx context.Context, managerID string) ([]Team, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+teamColumns+`
    FROM teams
    WHERE manager_id = $1
    ORDER BY created_at DESC
  `, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range teams {
		if err := s.loadMembers(ctx, &teams[i]); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

func (s *Store) loadMembers(ctx context.Context, t *Team) error {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.name, u.email, COALESCE(u.avatar, ''), u.role
    FROM team_members tm
    JOIN users u ON u.id = tm.employee_id
    WHERE tm.team_id = $1
    ORDER BY tm.added_at
  `, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	t.Members = []user.Ref{}
	for rows.Next() {
		var r user.Ref
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Avatar, &r.Role); err != nil {
			return err
		}
		t.Members = append(t.Members, r)
	}
	return rows.Err()
}

func (s *Store) NameExists(ctx context.Context, managerID, name, excludeTeamID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM teams
    WHERE manager_id = $1 AND name = $2 AND id::text <> $3
  `, managerID, name, excludeTeamID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Update(ctx context.Context, teamID, managerID, name, description string) (Team, bool, error) {
	t, err := scanTeam(s.DB.QueryRow(ctx, `
    UPDATE teams
    SET name = $3, description = $4, updated_at = NOW()
    WHERE id = $1 AND manager_id = $2
    RETURNING `+teamColumns+`
  `, teamID, managerID, name, description))
	if errors.Is(err, pgx.ErrNoRows) {
		return Team{}, false, nil
	}
	if err != nil {
		return Team{}, false, err
	}
	if err := s.loadMembers(ctx, &t); err != nil {
		return Team{}, false, err
	}
	return t, true, nil
}

func (s *Store) Delete(ctx context.Context, teamID, managerID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM teams WHERE id = $1 AND manager_id = $2", teamID, managerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) AddMember(ctx context.Context, teamID, employeeID string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO team_members (team_id, employee_id)
    VALUES ($1, $2)
    ON CONFLICT DO NOTHING
  `, teamID, employeeID)
	return err
}

func (s *Store) RemoveMember(ctx context.Context, teamID, employeeID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM team_members
    WHERE team_id = $1 AND employee_id = $2
  `, teamID, employeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const managedEmployees = `
  SELECT DISTINCT tm.employee_id
  FROM team_members tm
  JOIN teams t ON t.id = tm.team_id
  WHERE t.manager_id = $1`

func (s *Store) LeaveStatusCounts(ctx context.Context, managerID string) (map[string]int, error) {
	return s.statusCounts(ctx, "leaves", managerID)
}

func (s *Store) ComplaintStatusCounts(ctx context.Context, managerID string) (map[string]int, error) {
	return s.statusCounts(ctx, "complaints", managerID)
}

func (s *Store) statusCounts(ctx context.Context, table, managerID string) (map[string]int, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT status, COUNT(1)
    FROM `+table+`
    WHERE employee_id IN (`+managedEmployees+`)
    GROUP BY status
  `, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (s *Store) PendingLeaveSummaries(ctx context.Context, managerID string, limit int) ([]CaseSummary, error) {
	return s.pendingSummaries(ctx, `
    SELECT l.id, l.leave_type, l.status, l.created_at,
           u.id, u.name, u.email, COALESCE(u.avatar, ''), u.role
    FROM leaves l
    JOIN users u ON u.id = l.employee_id
    WHERE l.status = 'pending' AND l.employee_id IN (`+managedEmployees+`)
    ORDER BY l.created_at DESC
    LIMIT $2
  `, managerID, limit)
}

func (s *Store) PendingComplaintSummaries(ctx context.Context, managerID string, limit int) ([]CaseSummary, error) {
	return s.pendingSummaries(ctx, `
    SELECT c.id, c.subject, c.status, c.created_at,
           u.id, u.name, u.email, COALESCE(u.avatar, ''), u.role
    FROM complaints c
    JOIN users u ON u.id = c.employee_id
    WHERE c.status = 'pending' AND c.employee_id IN (`+managedEmployees+`)
    ORDER BY c.created_at DESC
    LIMIT $2
  `, managerID, limit)
}

func (s *Store) pendingSummaries(ctx context.Context, query, managerID string, limit int) ([]CaseSummary, error) {
	rows, err := s.DB.Query(ctx, query, managerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CaseSummary
	for rows.Next() {
		var cs CaseSummary
		err := rows.Scan(&cs.ID, &cs.Title, &cs.Status, &cs.CreatedAt,
			&cs.Employee.ID, &cs.Employee.Name, &cs.Employee.Email, &cs.Employee.Avatar, &cs.Employee.Role)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
