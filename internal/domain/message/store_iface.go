package message

import "context"

type StoreAPI interface {
	Create(ctx context.Context, senderID, receiverID, content string) (Message, error)
	Conversation(ctx context.Context, userID, otherID string) ([]Message, error)
	LatestPerCounterpart(ctx context.Context, userID string) ([]Message, error)

	// MarkRead flags the unread messages sent by senderID to receiverID and
	// reports how many were flipped.
	MarkRead(ctx context.Context, senderID, receiverID string) (int, error)
	UnreadCount(ctx context.Context, receiverID string) (int, error)
	UnreadFrom(ctx context.Context, senderID, receiverID string) (int, error)
}
