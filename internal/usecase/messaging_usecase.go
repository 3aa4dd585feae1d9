package usecase

import (
	"context"
	"encoding/json"
	"time"

	"unimarket/internal/domain/entity"
	"unimarket/internal/domain/repository"
	"unimarket/internal/infrastructure/ratelimit"
	ws "unimarket/internal/infrastructure/websocket"
	"unimarket/pkg/errors"
	"unimarket/pkg/logger"
)

const (
	conversationListLimit = 50
	messageListLimit      = 100
)

// MessagingUseCase owns conversation identity, message flow and unread
// bookkeeping on top of the conversation and message repositories.
type MessagingUseCase struct {
	convRepo    repository.ConversationRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
}

func NewMessagingUseCase(
	convRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	wsManager *ws.Manager,
	rateLimiter *ratelimit.RateLimiter,
) *MessagingUseCase {
	return &MessagingUseCase{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
	}
}

type SendMessageInput struct {
	ConversationID string
	Text           string
}

type ConversationResponse struct {
	*entity.Conversation
	OtherUser *entity.UserProfile `json:"other_user,omitempty"`
}

// ResolveConversation returns the one conversation for the unordered pair
// {userID, otherUserID}, creating it when absent. Two users resolving the
// same fresh pair concurrently can each miss the other's uncommitted document
// and create a duplicate; there is no lock or dedup pass for that case.
func (uc *MessagingUseCase) ResolveConversation(ctx context.Context, userID, otherUserID string) (*entity.Conversation, error) {
	if userID == otherUserID {
		return nil, errors.BadRequest("You cannot start a conversation with yourself", nil)
	}

	if allowed, _ := uc.rateLimiter.Allow(userID, "resolve_conversation"); !allowed {
		return nil, errors.TooManyRequests("Please wait before starting another conversation")
	}

	if _, err := uc.userRepo.GetByID(ctx, otherUserID); err != nil {
		return nil, errors.NotFound("Recipient", err)
	}

	convs, err := uc.convRepo.ListByParticipant(ctx, userID, conversationListLimit)
	if err != nil {
		return nil, err
	}
	for _, conv := range convs {
		if len(conv.Participants) == 2 && conv.HasParticipant(otherUserID) {
			return conv, nil
		}
	}

	conv := &entity.Conversation{
		Participants: []string{userID, otherUserID},
		UnreadCount:  map[string]int{userID: 0, otherUserID: 0},
	}
	if err := uc.convRepo.Create(ctx, conv); err != nil {
		return nil, err
	}

	return conv, nil
}

// SendMessage persists the message, updates the conversation snippet and
// bumps the receiver's unread counter. The three writes are independent;
// there is no rollback if a later one fails.
func (uc *MessagingUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	if allowed, _ := uc.rateLimiter.Allow(senderID, "send_message"); !allowed {
		return nil, errors.TooManyRequests("You are sending messages too quickly. Please slow down")
	}

	conv, err := uc.convRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, errors.Forbidden("You are not a participant in this conversation", nil)
	}
	receiverID := conv.OtherParticipant(senderID)

	message := &entity.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           input.Text,
		Status:         entity.MessageStatusSent,
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if err := uc.convRepo.SetLastMessage(ctx, conv.ID, input.Text); err != nil {
		logger.Warn("Failed to update conversation %s snippet: %v", conv.ID, err)
	}

	// Read-modify-write without a transaction: concurrent sends to the same
	// receiver can lose an increment.
	if err := uc.convRepo.SetUnreadCount(ctx, conv.ID, receiverID, conv.UnreadCount[receiverID]+1); err != nil {
		logger.Warn("Failed to bump unread count on conversation %s: %v", conv.ID, err)
	}

	uc.notifyNewMessage(conv, message)

	return message, nil
}

func (uc *MessagingUseCase) notifyNewMessage(conv *entity.Conversation, message *entity.Message) {
	notification, _ := json.Marshal(map[string]interface{}{
		"type":            "new_message",
		"conversation_id": conv.ID,
		"message":         message,
	})
	uc.wsManager.SendToConversation(conv.ID, notification, message.SenderID)

	listUpdate, _ := json.Marshal(map[string]interface{}{
		"type":            "conversation_update",
		"conversation_id": conv.ID,
		"last_message":    message.Text,
		"sender_id":       message.SenderID,
		"sent_at":         time.Now().UTC().Format(time.RFC3339),
	})
	uc.wsManager.SendToUser(message.ReceiverID, listUpdate)
}

func (uc *MessagingUseCase) GetMessages(ctx context.Context, userID, conversationID string) ([]*entity.Message, error) {
	conv, err := uc.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant in this conversation", nil)
	}

	return uc.messageRepo.ListByConversation(ctx, conversationID, messageListLimit)
}

// MarkAsRead zeroes the reader's unread counter and flips their unread
// received messages to "read". The per-message updates are independent
// writes; a mid-loop failure leaves the remainder untouched and is reported
// to the caller.
func (uc *MessagingUseCase) MarkAsRead(ctx context.Context, userID, conversationID string) error {
	conv, err := uc.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant in this conversation", nil)
	}

	if err := uc.convRepo.SetUnreadCount(ctx, conversationID, userID, 0); err != nil {
		return err
	}

	unread, err := uc.messageRepo.ListUnreadForReceiver(ctx, conversationID, userID)
	if err != nil {
		return err
	}

	var firstErr error
	for _, message := range unread {
		if err := uc.messageRepo.UpdateStatus(ctx, message.ID, entity.MessageStatusRead); err != nil {
			logger.Warn("Failed to mark message %s read: %v", message.ID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}

	receipt, _ := json.Marshal(map[string]interface{}{
		"type":            "read_receipt",
		"conversation_id": conversationID,
		"reader_id":       userID,
	})
	uc.wsManager.SendToUser(conv.OtherParticipant(userID), receipt)

	return nil
}

// ListConversations returns the user's conversations newest first, each
// enriched with the other participant's profile when it loads.
func (uc *MessagingUseCase) ListConversations(ctx context.Context, userID string) ([]*ConversationResponse, error) {
	convs, err := uc.convRepo.ListByParticipant(ctx, userID, conversationListLimit)
	if err != nil {
		return nil, err
	}

	responses := make([]*ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		resp := &ConversationResponse{Conversation: conv}

		otherID := conv.OtherParticipant(userID)
		if otherID != "" {
			otherUser, err := uc.userRepo.GetByID(ctx, otherID)
			if err == nil {
				resp.OtherUser = otherUser
			} else {
				logger.Warn("Other participant %s not found for conversation %s: %v", otherID, conv.ID, err)
			}
		}

		responses = append(responses, resp)
	}

	return responses, nil
}

func (uc *MessagingUseCase) SubscribeConversations(ctx context.Context, userID string, fn func([]*entity.Conversation)) (repository.CancelFunc, error) {
	return uc.convRepo.SubscribeByParticipant(ctx, userID, conversationListLimit, fn)
}

// SubscribeMessages opens a live message feed for a conversation the user
// participates in.
func (uc *MessagingUseCase) SubscribeMessages(ctx context.Context, userID, conversationID string, fn func([]*entity.Message)) (repository.CancelFunc, error) {
	conv, err := uc.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant in this conversation", nil)
	}

	return uc.messageRepo.SubscribeByConversation(ctx, conversationID, messageListLimit, fn)
}
