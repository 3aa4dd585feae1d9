package entity

import "time"

const (
	RoleStudent  = "student"
	RoleProvider = "provider"

	// InitialTrustScore is assigned to every new profile.
	InitialTrustScore = 50
)

type Preferences struct {
	FoodPreference string `json:"food_preference,omitempty" firestore:"foodPreference,omitempty"`
	SleepSchedule  string `json:"sleep_schedule,omitempty" firestore:"sleepSchedule,omitempty"`
	Cleanliness    string `json:"cleanliness,omitempty" firestore:"cleanliness,omitempty"`
}

// UserProfile is keyed by the identity provider uid.
type UserProfile struct {
	ID                 string       `json:"id" firestore:"id"`
	Email              string       `json:"email" firestore:"email"`
	DisplayName        string       `json:"display_name" firestore:"displayName"`
	Role               string       `json:"role" firestore:"role"` // "student", "provider"
	PhotoURL           string       `json:"photo_url,omitempty" firestore:"photoURL,omitempty"`
	TrustScore         int          `json:"trust_score" firestore:"trustScore"`
	CompletedExchanges int          `json:"completed_exchanges" firestore:"completedExchanges"`
	ReviewCount        int          `json:"review_count" firestore:"reviewCount"`
	IsVerified         bool         `json:"is_verified" firestore:"isVerified"`
	Bio                string       `json:"bio,omitempty" firestore:"bio,omitempty"`
	University         string       `json:"university,omitempty" firestore:"university,omitempty"`
	Preferences        *Preferences `json:"preferences,omitempty" firestore:"preferences,omitempty"`
	CreatedAt          time.Time    `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleProvider
}
