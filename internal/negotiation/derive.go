// Package negotiation derives the current state of an offer from the
// conversation's message history. The store's timestamp order is the only
// ordering authority, so every function here is a pure scan over the
// message list and must be recomputed whenever new messages arrive.
package negotiation

import (
	"toolmart/internal/domain/entity"
)

// Resolution returns the accept or decline message for the offer id, or nil
// when the offer is still open in the message history.
func Resolution(history []*entity.Message, offerID string) *entity.Message {
	for _, m := range history {
		if m.OfferID == offerID && m.IsResolution() {
			return m
		}
	}
	return nil
}

// Superseded returns the counter message that replaced the offer id, or nil
// when no counter in the history points back at it. The replacement carries
// a new offer id, so a resolution scan alone never closes the original.
func Superseded(history []*entity.Message, offerID string) *entity.Message {
	for _, m := range history {
		if m.Kind == entity.MessageKindCounter && m.CounterOfID == offerID {
			return m
		}
	}
	return nil
}

// LatestProposal returns the most recently created offer- or counter-kind
// message carrying the offer id. Ties on the timestamp fall back to the
// message id, which is time-ordered (ULID).
func LatestProposal(history []*entity.Message, offerID string) *entity.Message {
	var latest *entity.Message
	for _, m := range history {
		if m.OfferID != offerID || !m.IsProposal() {
			continue
		}
		if latest == nil || newer(m, latest) {
			latest = m
		}
	}
	return latest
}

// IsActionable reports whether the viewer should see respond controls on the
// message: the viewer must be its receiver, it must be the latest proposal
// for its offer id, and the offer must be neither resolved nor superseded
// by a counter.
func IsActionable(viewerID string, msg *entity.Message, history []*entity.Message) bool {
	if msg == nil || !msg.IsProposal() || msg.OfferID == "" {
		return false
	}
	if msg.ReceiverID != viewerID || msg.SenderID == viewerID {
		return false
	}
	if Resolution(history, msg.OfferID) != nil || Superseded(history, msg.OfferID) != nil {
		return false
	}
	latest := LatestProposal(history, msg.OfferID)
	return latest != nil && latest.ID == msg.ID
}

// LineageResolved reports whether the history closes the offer id, either by
// an accept/decline message or by a counter that superseded it.
func LineageResolved(history []*entity.Message, offerID string) bool {
	return Resolution(history, offerID) != nil || Superseded(history, offerID) != nil
}

func newer(a, b *entity.Message) bool {
	if a.CreatedAt.After(b.CreatedAt) {
		return true
	}
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return false
}
