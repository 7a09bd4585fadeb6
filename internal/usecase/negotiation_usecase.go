package usecase

import (
	"context"
	"fmt"
	"log"
	"math"

	"toolmart/internal/domain/entity"
	"toolmart/internal/domain/repository"
	"toolmart/internal/infrastructure/ratelimit"
	ws "toolmart/internal/infrastructure/websocket"
	"toolmart/internal/negotiation"
	"toolmart/pkg/errors"
)

// NegotiationUseCase owns the offer lifecycle: it validates proposals,
// records every step as an offer-ledger mutation plus a typed message, and
// leaves "is this still actionable" to be derived from message history.
type NegotiationUseCase struct {
	offerRepo   repository.OfferRepository
	messageRepo repository.MessageRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
}

func NewNegotiationUseCase(
	offerRepo repository.OfferRepository,
	messageRepo repository.MessageRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	wsManager *ws.Manager,
) *NegotiationUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &NegotiationUseCase{
		offerRepo:   offerRepo,
		messageRepo: messageRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
	}
}

type SubmitOfferInput struct {
	ListingID string
	Amount    float64
}

const (
	OfferActionAccept  = "accept"
	OfferActionDecline = "decline"
	OfferActionCounter = "counter"
)

type RespondToOfferInput struct {
	OfferID       string
	Action        string
	CounterAmount float64
}

type OfferResponse struct {
	Offer           *entity.Offer   `json:"offer"`
	Message         *entity.Message `json:"message"`
	ConversationKey string          `json:"conversation_key"`
}

// SubmitOffer validates a buyer's proposal and records it. The
// duplicate-pending check is query-then-insert, so two racing submissions
// can both slip through; the guarded transition on respond keeps the
// lineage consistent even then.
func (uc *NegotiationUseCase) SubmitOffer(ctx context.Context, buyerID string, input SubmitOfferInput) (*OfferResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(buyerID, "submit_offer")
	if !allowed {
		log.Printf("SubmitOffer Rate Limited: User %s must wait %v", buyerID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before submitting another offer", waitTime)
	}

	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		log.Printf("SubmitOffer Error: Listing %s not found: %v", input.ListingID, err)
		return nil, err
	}

	if listing.Status != entity.ListingStatusActive {
		return nil, errors.BadRequest("Listing is not available for offers", nil)
	}

	if listing.SellerID == buyerID {
		return nil, errors.BadRequest("You cannot make an offer on your own listing", nil)
	}

	if err := validateOfferAmount(input.Amount, listing.Price); err != nil {
		return nil, err
	}

	existing, err := uc.offerRepo.FindPending(ctx, input.ListingID, buyerID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		log.Printf("SubmitOffer Error: Failed to check pending offers for listing %s: %v", input.ListingID, err)
		return nil, err
	}
	if existing != nil {
		return nil, errors.Conflict("You already have a pending offer on this listing", nil)
	}

	buyer, err := uc.userRepo.GetByID(ctx, buyerID)
	if err != nil {
		return nil, errors.NotFound("Buyer", err)
	}

	offer := &entity.Offer{
		ListingID: input.ListingID,
		BuyerID:   buyerID,
		SellerID:  listing.SellerID,
		Amount:    input.Amount,
		Status:    entity.OfferStatusPending,
	}

	message := &entity.Message{
		ConversationKey: entity.ConversationKey(buyerID, listing.SellerID, listing.ID),
		SenderID:        buyerID,
		ReceiverID:      listing.SellerID,
		ListingID:       listing.ID,
		Body:            fmt.Sprintf("%s offered %s for \"%s\"", buyer.Username, formatAmount(input.Amount), listing.Title),
		Kind:            entity.MessageKindOffer,
	}

	if err := uc.offerRepo.CreateWithMessage(ctx, offer, message); err != nil {
		log.Printf("SubmitOffer Error: Failed to persist offer for listing %s: %v", input.ListingID, err)
		return nil, err
	}

	uc.wsManager.Notify(ws.Event{
		Type:            ws.EventNewMessage,
		ConversationKey: message.ConversationKey,
		OfferID:         offer.ID,
		Payload:         message,
	}, buyerID, listing.SellerID)

	return &OfferResponse{
		Offer:           offer,
		Message:         message,
		ConversationKey: message.ConversationKey,
	}, nil
}

// RespondToOffer applies a seller decision to a pending offer. The status
// transition is guarded at the store, so a stale or duplicated response
// comes back as a conflict instead of double-applying.
func (uc *NegotiationUseCase) RespondToOffer(ctx context.Context, responderID string, input RespondToOfferInput) (*OfferResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(responderID, "respond_offer")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before responding again", waitTime)
	}

	offer, err := uc.offerRepo.GetByID(ctx, input.OfferID)
	if err != nil {
		return nil, err
	}

	if offer.SellerID != responderID {
		return nil, errors.Forbidden("Only the offer recipient can respond", nil)
	}

	if offer.Resolved() {
		return nil, errors.Conflict("Offer is no longer actionable", nil)
	}

	switch input.Action {
	case OfferActionAccept:
		return uc.resolveOffer(ctx, responderID, offer, entity.OfferStatusAccepted, entity.MessageKindAccept)
	case OfferActionDecline:
		return uc.resolveOffer(ctx, responderID, offer, entity.OfferStatusDeclined, entity.MessageKindDecline)
	case OfferActionCounter:
		return uc.counterOffer(ctx, responderID, offer, input.CounterAmount)
	default:
		return nil, errors.BadRequest("Action must be one of: accept, decline, counter", nil)
	}
}

func (uc *NegotiationUseCase) resolveOffer(ctx context.Context, responderID string, offer *entity.Offer, status, kind string) (*OfferResponse, error) {
	responder, err := uc.userRepo.GetByID(ctx, responderID)
	if err != nil {
		return nil, errors.NotFound("Responder", err)
	}

	verb := "accepted"
	if status == entity.OfferStatusDeclined {
		verb = "declined"
	}

	message := &entity.Message{
		ConversationKey: entity.ConversationKey(offer.BuyerID, offer.SellerID, offer.ListingID),
		SenderID:        responderID,
		ReceiverID:      offer.BuyerID,
		ListingID:       offer.ListingID,
		Body:            fmt.Sprintf("%s %s the offer of %s", responder.Username, verb, formatAmount(offer.Amount)),
		Kind:            kind,
		IsSystem:        true,
	}

	if err := uc.offerRepo.UpdateStatusFrom(ctx, offer.ID, entity.OfferStatusPending, status, message, nil); err != nil {
		return nil, err
	}
	offer.Status = status

	uc.wsManager.Notify(ws.Event{
		Type:            ws.EventOfferUpdate,
		ConversationKey: message.ConversationKey,
		OfferID:         offer.ID,
		Payload:         message,
	}, offer.BuyerID, offer.SellerID)

	return &OfferResponse{
		Offer:           offer,
		Message:         message,
		ConversationKey: message.ConversationKey,
	}, nil
}

func (uc *NegotiationUseCase) counterOffer(ctx context.Context, responderID string, offer *entity.Offer, counterAmount float64) (*OfferResponse, error) {
	listing, err := uc.listingRepo.GetByID(ctx, offer.ListingID)
	if err != nil {
		return nil, err
	}

	if err := validateOfferAmount(counterAmount, listing.Price); err != nil {
		return nil, err
	}

	responder, err := uc.userRepo.GetByID(ctx, responderID)
	if err != nil {
		return nil, errors.NotFound("Responder", err)
	}

	// The counter swaps proposer and responder: the original seller now
	// proposes, and the original buyer is the one who may respond.
	counter := &entity.Offer{
		ListingID:   offer.ListingID,
		BuyerID:     offer.SellerID,
		SellerID:    offer.BuyerID,
		Amount:      counterAmount,
		Status:      entity.OfferStatusPending,
		CounterOfID: offer.ID,
	}

	message := &entity.Message{
		ConversationKey: entity.ConversationKey(offer.BuyerID, offer.SellerID, offer.ListingID),
		SenderID:        responderID,
		ReceiverID:      offer.BuyerID,
		ListingID:       offer.ListingID,
		Body:            fmt.Sprintf("%s countered with %s", responder.Username, formatAmount(counterAmount)),
		Kind:            entity.MessageKindCounter,
		CounterOfID:     offer.ID,
	}

	if err := uc.offerRepo.UpdateStatusFrom(ctx, offer.ID, entity.OfferStatusPending, entity.OfferStatusCountered, message, counter); err != nil {
		return nil, err
	}
	offer.Status = entity.OfferStatusCountered

	uc.wsManager.Notify(ws.Event{
		Type:            ws.EventOfferUpdate,
		ConversationKey: message.ConversationKey,
		OfferID:         counter.ID,
		Payload:         message,
	}, offer.BuyerID, offer.SellerID)

	return &OfferResponse{
		Offer:           counter,
		Message:         message,
		ConversationKey: message.ConversationKey,
	}, nil
}

// ListUserOffers returns offers where the user is proposer or responder.
func (uc *NegotiationUseCase) ListUserOffers(ctx context.Context, userID string, limit, offset int) ([]*entity.Offer, int64, error) {
	return uc.offerRepo.ListByUser(ctx, userID, limit, offset)
}

type OfferDetail struct {
	Offer      *entity.Offer     `json:"offer"`
	Messages   []*entity.Message `json:"messages"`
	Actionable bool              `json:"actionable"`
}

// GetOffer returns one offer with its message thread and whether the viewer
// can still act on it. Actionability is derived from the thread on every
// call, never read from the row.
func (uc *NegotiationUseCase) GetOffer(ctx context.Context, viewerID, offerID string) (*OfferDetail, error) {
	offer, err := uc.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if offer.BuyerID != viewerID && offer.SellerID != viewerID {
		return nil, errors.Forbidden("You are not part of this negotiation", nil)
	}

	thread, err := uc.messageRepo.ListByOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	actionable := false
	if offer.SellerID == viewerID && !offer.Resolved() && !negotiation.LineageResolved(thread, offerID) {
		actionable = true
	}

	return &OfferDetail{
		Offer:      offer,
		Messages:   thread,
		Actionable: actionable,
	}, nil
}

// validateOfferAmount enforces 0 < amount < listingPrice. An offer at or
// above the asking price is rejected; that path is a direct purchase.
func validateOfferAmount(amount, listingPrice float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return errors.Validation("Offer amount must be a number", nil)
	}
	if amount <= 0 {
		return errors.Validation("Offer amount must be greater than zero", nil)
	}
	if amount >= listingPrice {
		return errors.Validation("Offer must be below the asking price; use direct purchase instead", nil)
	}
	return nil
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
