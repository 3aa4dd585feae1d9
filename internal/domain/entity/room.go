package entity

import "time"

const (
	RoomStatusActive    = "active"
	RoomStatusRented    = "rented"
	RoomStatusCancelled = "cancelled"

	RoomTypeSingle = "Single Room"
	RoomTypeDouble = "Double Room"
	RoomTypeStudio = "Studio"
	RoomTypeShared = "Shared Room"

	GenderAny        = "Any"
	GenderMaleOnly   = "Male Only"
	GenderFemaleOnly = "Female Only"
)

// RoomListing is a room-for-rent listing with denormalized owner fields.
type RoomListing struct {
	ID              string    `json:"id" firestore:"id"`
	UserID          string    `json:"user_id" firestore:"userId"`
	UserDisplayName string    `json:"user_display_name" firestore:"userDisplayName"`
	UserAvatar      string    `json:"user_avatar,omitempty" firestore:"userAvatar,omitempty"`
	UserTrustScore  int       `json:"user_trust_score" firestore:"userTrustScore"`
	Area            string    `json:"area" firestore:"area"`
	Rent            float64   `json:"rent" firestore:"rent"`
	Type            string    `json:"type" firestore:"type"`     // Single Room, Double Room, Studio, Shared Room
	Gender          string    `json:"gender" firestore:"gender"` // Any, Male Only, Female Only
	FoodPreference  string    `json:"food_preference,omitempty" firestore:"foodPreference,omitempty"`
	MoveIn          string    `json:"move_in,omitempty" firestore:"moveIn,omitempty"`
	Tags            []string  `json:"tags" firestore:"tags"`
	Description     string    `json:"description,omitempty" firestore:"description,omitempty"`
	Images          []string  `json:"images,omitempty" firestore:"images,omitempty"`
	Status          string    `json:"status" firestore:"status"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
	UpdatedAt       time.Time `json:"updated_at" firestore:"updatedAt,serverTimestamp"`
}

func ValidRoomStatus(s string) bool {
	switch s {
	case RoomStatusActive, RoomStatusRented, RoomStatusCancelled:
		return true
	}
	return false
}
