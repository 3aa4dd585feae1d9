package entity

import "time"

const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderID       string    `json:"sender_id" firestore:"senderId"`
	ReceiverID     string    `json:"receiver_id" firestore:"receiverId"`
	Text           string    `json:"text" firestore:"text"`
	Status         string    `json:"status" firestore:"status"` // "sent", "delivered", "read"
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}
