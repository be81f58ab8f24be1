package message

import (
	"context"

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

const messageSelect = `
  SELECT m.id, m.sender_id, m.receiver_id, m.content, m.read, m.created_at,
         s.id, s.name, s.email, COALESCE(s.avatar, ''), s.role,
         r.id, r.name, r.email, COALESCE(r.avatar, ''), r.role
  FROM messages m
  JOIN users s ON s.id = m.sender_id
  JOIN users r ON r.id = m.receiver_id`

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	var sender, receiver user.Ref
	err := row.Scan(
		&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Read, &m.CreatedAt,
		&sender.ID, &sender.Name, &sender.Email, &sender.Avatar, &sender.Role,
		&receiver.ID, &receiver.Name, &receiver.Email, &receiver.Avatar, &receiver.Role,
	)
	if err != nil {
		return Message{}, err
	}
	m.Sender = &sender
	m.Receiver = &receiver
	return m, nil
}

func collectMessages(rows pgx.Rows) ([]Message, error) {
	defer rows.Close()
	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, senderID, receiverID, content string) (Message, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO messages (sender_id, receiver_id, content)
    VALUES ($1, $2, $3)
    RETURNING id
  `, senderID, receiverID, content).Scan(&id)
	if err != nil {
		return Message{}, err
	}
	return scanMessage(s.DB.QueryRow(ctx, messageSelect+` WHERE m.id = $1`, id))
}

func (s *Store) Conversation(ctx context.Context, userID, otherID string) ([]Message, error) {
	rows, err := s.DB.Query(ctx, messageSelect+`
    WHERE (m.sender_id = $1 AND m.receiver_id = $2)
       OR (m.sender_id = $2 AND m.receiver_id = $1)
    ORDER BY m.created_at
  `, userID, otherID)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (s *Store) LatestPerCounterpart(ctx context.Context, userID string) ([]Message, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT ON (other_id) id, sender_id, receiver_id, content, read, created_at,
           s_id, s_name, s_email, s_avatar, s_role,
           r_id, r_name, r_email, r_avatar, r_role
    FROM (
      SELECT m.id, m.sender_id, m.receiver_id, m.content, m.read, m.created_at,
             CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS other_id,
             s.id AS s_id, s.name AS s_name, s.email AS s_email, COALESCE(s.avatar, '') AS s_avatar, s.role AS s_role,
             r.id AS r_id, r.name AS r_name, r.email AS r_email, COALESCE(r.avatar, '') AS r_avatar, r.role AS r_role
      FROM messages m
      JOIN users s ON s.id = m.sender_id
      JOIN users r ON r.id = m.receiver_id
      WHERE m.sender_id = $1 OR m.receiver_id = $1
    ) x
    ORDER BY other_id, created_at DESC
  `, userID)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (s *Store) MarkRead(ctx context.Context, senderID, receiverID string) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE messages
    SET read = TRUE
    WHERE sender_id = $1 AND receiver_id = $2 AND NOT read
  `, senderID, receiverID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) UnreadCount(ctx context.Context, receiverID string) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM messages WHERE receiver_id = $1 AND NOT read
  `, receiverID).Scan(&n)
	return n, err
}

func (s *Store) UnreadFrom(ctx context.Context, senderID, receiverID string) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM messages WHERE sender_id = $1 AND receiver_id = $2 AND NOT read
  `, senderID, receiverID).Scan(&n)
	return n, err
}
