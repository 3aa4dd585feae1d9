package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"unimarket/internal/domain/entity"
	"unimarket/internal/domain/repository"
	"unimarket/pkg/errors"
	"unimarket/pkg/logger"
)

const conversationsCollection = "conversations"

type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

func (r *firestoreConversationRepository) Create(ctx context.Context, conv *entity.Conversation) error {
	if conv.ID == "" {
		conv.ID = r.client.Collection(conversationsCollection).NewDoc().ID
	}
	if conv.UnreadCount == nil {
		conv.UnreadCount = make(map[string]int)
	}

	_, err := r.client.Collection(conversationsCollection).Doc(conv.ID).Set(ctx, conv)
	if err != nil {
		return errors.Internal("Failed to create conversation", err)
	}

	return nil
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.client.Collection(conversationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conv entity.Conversation
	if err := doc.DataTo(&conv); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}
	conv.ID = doc.Ref.ID

	return &conv, nil
}

// ListByParticipant queries by participant only and sorts client-side, so no
// composite index on participants+lastMessageAt is ever required.
func (r *firestoreConversationRepository) ListByParticipant(ctx context.Context, userID string, limit int) ([]*entity.Conversation, error) {
	docs, err := r.client.Collection(conversationsCollection).
		Where("participants", "array-contains", userID).
		Limit(limit).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch conversations", err)
	}

	convs, err := decodeConversations(docs)
	if err != nil {
		return nil, err
	}
	sortConversationsNewestFirst(convs)
	return convs, nil
}

func (r *firestoreConversationRepository) SetLastMessage(ctx context.Context, id, text string) error {
	_, err := r.client.Collection(conversationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: text},
		{Path: "lastMessageAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return errors.Internal("Failed to update conversation", err)
	}

	return nil
}

func (r *firestoreConversationRepository) SetUnreadCount(ctx context.Context, id, userID string, count int) error {
	_, err := r.client.Collection(conversationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"unreadCount", userID}, Value: count},
	})
	if err != nil {
		return errors.Internal("Failed to update unread count", err)
	}

	return nil
}

func (r *firestoreConversationRepository) SubscribeByParticipant(ctx context.Context, userID string, limit int, fn func([]*entity.Conversation)) (repository.CancelFunc, error) {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		snaps := r.client.Collection(conversationsCollection).
			Where("participants", "array-contains", userID).
			Limit(limit).
			Snapshots(ctx)
		defer snaps.Stop()

		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || err == iterator.Done {
					return
				}
				logger.Error("Conversation subscription failed for user %s: %v", userID, err)
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("Failed to read conversation snapshot: %v", err)
				continue
			}

			convs, err := decodeConversations(docs)
			if err != nil {
				logger.Error("Failed to decode conversation snapshot: %v", err)
				continue
			}
			sortConversationsNewestFirst(convs)
			fn(convs)
		}
	}()

	return repository.CancelFunc(cancel), nil
}

func decodeConversations(docs []*firestore.DocumentSnapshot) ([]*entity.Conversation, error) {
	convs := make([]*entity.Conversation, 0, len(docs))
	for _, doc := range docs {
		var conv entity.Conversation
		if err := doc.DataTo(&conv); err != nil {
			return nil, errors.Internal("Failed to parse conversation data", err)
		}
		conv.ID = doc.Ref.ID
		convs = append(convs, &conv)
	}
	return convs, nil
}
