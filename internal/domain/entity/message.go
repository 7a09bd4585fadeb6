package entity

import (
	"sort"
	"strings"
	"time"
)

const (
	MessageKindText    = "text"
	MessageKindOffer   = "offer"
	MessageKindCounter = "counter"
	MessageKindAccept  = "accept"
	MessageKindDecline = "decline"
)

type Attachment struct {
	URL      string `json:"url" firestore:"url"`
	Name     string `json:"name" firestore:"name"`
	MimeType string `json:"mime_type" firestore:"mimeType"`
}

// Message is a directed message between two users, optionally scoped to a
// listing. Every non-text kind carries the id of exactly one offer row; a
// counter additionally records the row it supersedes in CounterOfID, so the
// open/closed state of every offer is derivable from the history alone.
// Rows are immutable after creation except for the read flag.
type Message struct {
	ID              string      `json:"id" firestore:"id"`
	ConversationKey string      `json:"conversation_key" firestore:"conversationKey"`
	SenderID        string      `json:"sender_id" firestore:"senderId"`
	ReceiverID      string      `json:"receiver_id" firestore:"receiverId"`
	ListingID       string      `json:"listing_id,omitempty" firestore:"listingId,omitempty"`
	Body            string      `json:"body" firestore:"body"`
	Kind            string      `json:"kind" firestore:"kind"`
	OfferID         string      `json:"offer_id,omitempty" firestore:"offerId,omitempty"`
	CounterOfID     string      `json:"counter_of_id,omitempty" firestore:"counterOfId,omitempty"`
	Attachment      *Attachment `json:"attachment,omitempty" firestore:"attachment,omitempty"`
	Read            bool        `json:"read" firestore:"read"`
	IsSystem        bool        `json:"is_system" firestore:"isSystem"`
	CreatedAt       time.Time   `json:"created_at" firestore:"createdAt"`

	// Participants duplicates sender and receiver so the store can filter
	// with a single array-contains clause. Populated on insert.
	Participants []string `json:"-" firestore:"participants"`
}

// IsProposal reports whether this message puts an amount on the table.
func (m *Message) IsProposal() bool {
	return m.Kind == MessageKindOffer || m.Kind == MessageKindCounter
}

// IsResolution reports whether this message closes an offer.
func (m *Message) IsResolution() bool {
	return m.Kind == MessageKindAccept || m.Kind == MessageKindDecline
}

// ConversationKey builds the grouping key for a two-party conversation.
// Participant order does not matter; the listing id scopes conversations
// about different listings between the same pair.
func ConversationKey(userA, userB, listingID string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return strings.Join([]string{pair[0], pair[1], listingID}, ":")
}
