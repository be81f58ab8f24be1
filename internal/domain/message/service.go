package message

import (
	"context"
	"strings"

	"lms/internal/auth"
	"lms/internal/domain/apperr"
	"lms/internal/domain/user"
)

// UserDirectory resolves receivers and role-based contact lists.
type UserDirectory interface {
	Get(ctx context.Context, id string) (user.User, bool, error)
	ListByRole(ctx context.Context, role string) ([]user.User, error)
}

// TeamScope answers the team questions the messaging policy needs.
type TeamScope interface {
	IsManaged(ctx context.Context, managerID, employeeID string) (bool, error)
	ManagedEmployees(ctx context.Context, managerID string) ([]user.Ref, error)
}

type Service struct {
	store StoreAPI
	users UserDirectory
	teams TeamScope
	hub   *Hub
}

func NewService(store StoreAPI, users UserDirectory, teams TeamScope, hub *Hub) *Service {
	return &Service{store: store, users: users, teams: teams, hub: hub}
}

// Send persists the message, then notifies the receiver's live connections.
// The notification is best effort; the message exists regardless.
func (s *Service) Send(ctx context.Context, senderID, senderRole, receiverID, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if receiverID == "" || content == "" {
		return Message{}, apperr.New(apperr.Validation, "please provide receiverId and content")
	}
	if len(content) > maxContentLength {
		return Message{}, apperr.Newf(apperr.Validation, "message cannot exceed %d characters", maxContentLength)
	}

	receiver, ok, err := s.users.Get(ctx, receiverID)
	if err != nil {
		return Message{}, apperr.Wrap(apperr.Internal, "error sending message", err)
	}
	if !ok {
		return Message{}, apperr.New(apperr.NotFound, "receiver not found")
	}

	switch Policy(senderRole, receiver.Role) {
	case Allow:
	case RequireTeam:
		managed, err := s.teams.IsManaged(ctx, senderID, receiverID)
		if err != nil {
			return Message{}, apperr.Wrap(apperr.Internal, "error sending message", err)
		}
		if !managed {
			return Message{}, apperr.New(apperr.Authorization, "you can only message employees in your teams")
		}
	default:
		return Message{}, apperr.New(apperr.Authorization, DenialMessage(senderRole))
	}

	m, err := s.store.Create(ctx, senderID, receiverID, content)
	if err != nil {
		return Message{}, apperr.Wrap(apperr.Internal, "error sending message", err)
	}

	s.hub.Send(receiverID, Event{Type: EventMessage, Data: m})
	if unread, err := s.store.UnreadCount(ctx, receiverID); err == nil {
		s.hub.Send(receiverID, Event{Type: EventUnreadCount, Data: unread})
	}
	return m, nil
}

// Conversation returns the full exchange with one user and marks their
// messages read, pushing the read receipt back to them.
func (s *Service) Conversation(ctx context.Context, userID, otherID string) ([]Message, error) {
	messages, err := s.store.Conversation(ctx, userID, otherID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching conversation", err)
	}

	flipped, err := s.store.MarkRead(ctx, otherID, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching conversation", err)
	}
	if flipped > 0 {
		s.hub.Send(otherID, Event{Type: EventMessagesRead, Data: map[string]string{"readBy": userID}})
	}

	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}

func (s *Service) Conversations(ctx context.Context, userID string) ([]Conversation, error) {
	latest, err := s.store.LatestPerCounterpart(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error fetching conversations", err)
	}

	conversations := make([]Conversation, 0, len(latest))
	for _, m := range latest {
		other := m.Sender
		if m.SenderID == userID {
			other = m.Receiver
		}
		unread, err := s.store.UnreadFrom(ctx, other.ID, userID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "error fetching conversations", err)
		}
		conversations = append(conversations, Conversation{
			User:        *other,
			LastMessage: m,
			UnreadCount: unread,
		})
	}
	return conversations, nil
}

// Contacts derives who the user may start a conversation with, mirroring the
// send policy.
func (s *Service) Contacts(ctx context.Context, userID, role string) ([]user.Ref, error) {
	switch role {
	case auth.RoleEmployee, auth.RoleAdmin:
		managers, err := s.users.ListByRole(ctx, auth.RoleManager)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "error fetching contacts", err)
		}
		return toRefs(managers), nil
	case auth.RoleManager:
		members, err := s.teams.ManagedEmployees(ctx, userID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "error fetching contacts", err)
		}
		admins, err := s.users.ListByRole(ctx, auth.RoleAdmin)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "error fetching contacts", err)
		}
		return append(members, toRefs(admins)...), nil
	}
	return []user.Ref{}, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "error fetching unread count", err)
	}
	return n, nil
}

// MarkRead flips a counterpart's messages to read outside of a full
// conversation fetch and pushes the updated counts both ways.
func (s *Service) MarkRead(ctx context.Context, userID, senderID string) (int, error) {
	flipped, err := s.store.MarkRead(ctx, senderID, userID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "error marking messages read", err)
	}
	if flipped > 0 {
		s.hub.Send(senderID, Event{Type: EventMessagesRead, Data: map[string]string{"readBy": userID}})
	}
	unread, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "error marking messages read", err)
	}
	return unread, nil
}

// Online reports the currently connected user ids.
func (s *Service) Online() []string {
	return s.hub.Online()
}

// Hub exposes the fan-out layer for the events transport.
func (s *Service) Hub() *Hub {
	return s.hub
}

func toRefs(users []user.User) []user.Ref {
	refs := make([]user.Ref, 0, len(users))
	for _, u := range users {
		refs = append(refs, user.Ref{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar, Role: u.Role})
	}
	return refs
}
