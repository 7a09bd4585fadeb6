package entity

import "time"

const (
	OfferStatusPending   = "pending"
	OfferStatusAccepted  = "accepted"
	OfferStatusDeclined  = "declined"
	OfferStatusCountered = "countered"
)

// Offer is one proposal in a negotiation lineage. BuyerID is the party who
// proposed this amount and SellerID the party who may respond; on a counter
// the new row swaps them, so the check "responder must be the seller of
// record" holds for every row in the chain.
type Offer struct {
	ID          string    `json:"id" firestore:"id"`
	ListingID   string    `json:"listing_id" firestore:"listingId"`
	BuyerID     string    `json:"buyer_id" firestore:"buyerId"`
	SellerID    string    `json:"seller_id" firestore:"sellerId"`
	Amount      float64   `json:"amount" firestore:"amount"`
	Status      string    `json:"status" firestore:"status"`
	CounterOfID string    `json:"counter_of_id,omitempty" firestore:"counterOfId,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

// Resolved reports whether this row can no longer be acted on.
func (o *Offer) Resolved() bool {
	return o.Status != OfferStatusPending
}
