package repository

import (
	"context"

	"unimarket/internal/domain/entity"
)

type ConversationRepository interface {
	Create(ctx context.Context, conv *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	// ListByParticipant returns the user's conversations sorted by
	// lastMessageAt descending. Sorting happens client-side; the store query
	// carries only the participant filter.
	ListByParticipant(ctx context.Context, userID string, limit int) ([]*entity.Conversation, error)
	// SetLastMessage merges the snippet and a server-assigned timestamp onto
	// the conversation document.
	SetLastMessage(ctx context.Context, id, text string) error
	// SetUnreadCount writes the unread counter for one participant. Callers
	// compute the new value themselves; the write is not atomic with the read.
	SetUnreadCount(ctx context.Context, id, userID string, count int) error
	SubscribeByParticipant(ctx context.Context, userID string, limit int, fn func([]*entity.Conversation)) (CancelFunc, error)
}

// MessageRepository stores messages in a top-level collection keyed by
// conversation id, not as a subcollection.
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// ListByConversation returns messages oldest first.
	ListByConversation(ctx context.Context, conversationID string, limit int) ([]*entity.Message, error)
	// ListUnreadForReceiver returns the receiver's messages in the
	// conversation whose status is not "read".
	ListUnreadForReceiver(ctx context.Context, conversationID, receiverID string) ([]*entity.Message, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SubscribeByConversation(ctx context.Context, conversationID string, limit int, fn func([]*entity.Message)) (CancelFunc, error)
}
