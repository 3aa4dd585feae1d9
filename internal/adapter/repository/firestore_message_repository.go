package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"unimarket/internal/domain/entity"
	"unimarket/internal/domain/repository"
	"unimarket/pkg/errors"
	"unimarket/pkg/logger"
)

const messagesCollection = "messages"

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Status == "" {
		message.Status = entity.MessageStatusSent
	}

	_, err := r.client.Collection(messagesCollection).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) conversationQuery(conversationID string, limit int) firestore.Query {
	return r.client.Collection(messagesCollection).Query.
		Where("conversationId", "==", conversationID).
		Limit(limit)
}

func (r *firestoreMessageRepository) ListByConversation(ctx context.Context, conversationID string, limit int) ([]*entity.Message, error) {
	base := r.conversationQuery(conversationID, limit)

	docs, err := base.OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		if !isMissingIndex(err) {
			return nil, errors.Internal("Failed to fetch messages", err)
		}
		logger.Warn("Message index missing for conversation %s, falling back to client-side sort", conversationID)
		docs, err = base.Documents(ctx).GetAll()
		if err != nil {
			return nil, errors.Internal("Failed to fetch messages", err)
		}
		messages, err := decodeMessages(docs)
		if err != nil {
			return nil, err
		}
		sortMessagesOldestFirst(messages)
		return messages, nil
	}

	return decodeMessages(docs)
}

func (r *firestoreMessageRepository) ListUnreadForReceiver(ctx context.Context, conversationID, receiverID string) ([]*entity.Message, error) {
	docs, err := r.client.Collection(messagesCollection).
		Where("conversationId", "==", conversationID).
		Where("receiverId", "==", receiverID).
		Where("status", "!=", entity.MessageStatusRead).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch unread messages", err)
	}

	return decodeMessages(docs)
}

func (r *firestoreMessageRepository) UpdateStatus(ctx context.Context, id, msgStatus string) error {
	_, err := r.client.Collection(messagesCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: msgStatus},
	})
	if err != nil {
		return errors.Internal("Failed to update message status", err)
	}

	return nil
}

func (r *firestoreMessageRepository) SubscribeByConversation(ctx context.Context, conversationID string, limit int, fn func([]*entity.Message)) (repository.CancelFunc, error) {
	ctx, cancel := context.WithCancel(ctx)
	go r.streamConversation(ctx, conversationID, limit, false, fn)
	return repository.CancelFunc(cancel), nil
}

func (r *firestoreMessageRepository) streamConversation(ctx context.Context, conversationID string, limit int, clientSort bool, fn func([]*entity.Message)) {
	query := r.conversationQuery(conversationID, limit)
	if !clientSort {
		query = query.OrderBy("createdAt", firestore.Asc)
	}

	snaps := query.Snapshots(ctx)
	defer snaps.Stop()

	for {
		snap, err := snaps.Next()
		if err != nil {
			if status.Code(err) == codes.Canceled || err == iterator.Done {
				return
			}
			if isMissingIndex(err) && !clientSort {
				logger.Warn("Message subscription index missing for conversation %s, resubscribing with client-side sort", conversationID)
				r.streamConversation(ctx, conversationID, limit, true, fn)
				return
			}
			logger.Error("Message subscription failed for conversation %s: %v", conversationID, err)
			return
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			logger.Error("Failed to read message snapshot: %v", err)
			continue
		}

		messages, err := decodeMessages(docs)
		if err != nil {
			logger.Error("Failed to decode message snapshot: %v", err)
			continue
		}
		if clientSort {
			sortMessagesOldestFirst(messages)
		}
		fn(messages)
	}
}

func decodeMessages(docs []*firestore.DocumentSnapshot) ([]*entity.Message, error) {
	messages := make([]*entity.Message, 0, len(docs))
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		message.ID = doc.Ref.ID
		messages = append(messages, &message)
	}
	return messages, nil
}
