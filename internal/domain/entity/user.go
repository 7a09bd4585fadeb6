package entity

import "time"

type User struct {
	ID       string `json:"id" firestore:"id"`
	Email    string `json:"email" firestore:"email"`
	Username string `json:"username" firestore:"username"`
	Bio      string `json:"bio,omitempty" firestore:"bio,omitempty"`
	Role     string `json:"role" firestore:"role"` // "user", "admin"
	Status   string `json:"status" firestore:"status"`

	AvatarURL string `json:"avatar_url,omitempty" firestore:"avatarURL,omitempty"`

	// Connected payments account state, mirrored from the gateway.
	StripeAccountID string `json:"stripe_account_id,omitempty" firestore:"stripeAccountId,omitempty"`
	PayoutsEnabled  bool   `json:"payouts_enabled" firestore:"payoutsEnabled"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
