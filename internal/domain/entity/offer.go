package entity

import "time"

const (
	OfferTypeBuy  = "buy"
	OfferTypeSell = "sell"

	OfferStatusActive    = "active"
	OfferStatusPending   = "pending"
	OfferStatusCompleted = "completed"
	OfferStatusCancelled = "cancelled"
)

// ExchangeOffer is a peer-to-peer currency exchange offer. User display fields
// are denormalized from the owner's profile at creation time.
//
// Status moves active -> pending -> completed, or active -> cancelled. The
// store does not enforce this; it is an application-level contract.
type ExchangeOffer struct {
	ID              string    `json:"id" firestore:"id"`
	UserID          string    `json:"user_id" firestore:"userId"`
	UserDisplayName string    `json:"user_display_name" firestore:"userDisplayName"`
	UserAvatar      string    `json:"user_avatar,omitempty" firestore:"userAvatar,omitempty"`
	UserTrustScore  int       `json:"user_trust_score" firestore:"userTrustScore"`
	Type            string    `json:"type" firestore:"type"` // "buy", "sell"
	Amount          float64   `json:"amount" firestore:"amount"`
	Rate            float64   `json:"rate" firestore:"rate"`
	Status          string    `json:"status" firestore:"status"`
	CompletedTrades int       `json:"completed_trades" firestore:"completedTrades"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
	UpdatedAt       time.Time `json:"updated_at" firestore:"updatedAt,serverTimestamp"`
}

func ValidOfferStatus(s string) bool {
	switch s {
	case OfferStatusActive, OfferStatusPending, OfferStatusCompleted, OfferStatusCancelled:
		return true
	}
	return false
}
