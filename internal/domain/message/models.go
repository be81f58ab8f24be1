package message

import (
	"time"

	"lms/internal/domain/user"
)

const maxContentLength = 1000

// Message is one persisted direct message. Persistence is the source of
// truth; live delivery over the hub is best effort on top.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	Sender     *user.Ref `json:"sender,omitempty"`
	ReceiverID string    `json:"receiverId"`
	Receiver   *user.Ref `json:"receiver,omitempty"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Conversation is one contact with the latest message exchanged and how many
// of their messages are still unread.
type Conversation struct {
	User        user.Ref `json:"user"`
	LastMessage Message  `json:"lastMessage"`
	UnreadCount int      `json:"unreadCount"`
}

// Event is a best-effort notification pushed to connected clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	EventMessage      = "receive_message"
	EventUnreadCount  = "unread_count"
	EventMessagesRead = "messages_read"
	EventUserOnline   = "user_online"
	EventUserOffline  = "user_offline"
)
