package websocket

import (
	"encoding/json"
	"log"
)

const (
	EventNewMessage  = "new_message"
	EventOfferUpdate = "offer_update"
	EventRateLimited = "rate_limit_exceeded"
)

// Event is the envelope pushed to connected clients. Payload carries the
// message or offer that changed; receivers refetch the conversation rather
// than trusting the payload order.
type Event struct {
	Type            string      `json:"type"`
	ConversationKey string      `json:"conversation_key,omitempty"`
	OfferID         string      `json:"offer_id,omitempty"`
	Payload         interface{} `json:"payload,omitempty"`
}

// Notify marshals the event and sends it to each listed user.
func (m *Manager) Notify(event Event, userIDs ...string) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal websocket event %s: %v", event.Type, err)
		return
	}

	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		m.SendToUser(userID, data)
	}
}
