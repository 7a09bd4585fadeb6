package usecase

import (
	"context"
	"fmt"
	"math"

	"toolmart/internal/domain/entity"
	"toolmart/internal/domain/repository"
	"toolmart/internal/domain/service"
	"toolmart/internal/infrastructure/websocket"
	"toolmart/pkg/errors"
	"toolmart/pkg/logger"
)

type CheckoutUseCase struct {
	gateway     service.PaymentGatewayService
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	offerRepo   repository.OfferRepository
	messageRepo repository.MessageRepository
	wsManager   *websocket.Manager
	baseURL     string
}

func NewCheckoutUseCase(
	gateway service.PaymentGatewayService,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	offerRepo repository.OfferRepository,
	messageRepo repository.MessageRepository,
	wsManager *websocket.Manager,
	baseURL string,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		gateway:     gateway,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		offerRepo:   offerRepo,
		messageRepo: messageRepo,
		wsManager:   wsManager,
		baseURL:     baseURL,
	}
}

type SellerAccountResult struct {
	AccountID      string `json:"account_id"`
	OnboardingURL  string `json:"onboarding_url,omitempty"`
	PayoutsEnabled bool   `json:"payouts_enabled"`
}

// CreateSellerAccount provisions a connected account for the seller and
// returns an onboarding link. Calling it again for an onboarded seller
// just reports the current state.
func (uc *CheckoutUseCase) CreateSellerAccount(ctx context.Context, userID string) (*SellerAccountResult, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.StripeAccountID == "" {
		account, err := uc.gateway.CreateConnectedAccount(ctx, service.ConnectedAccountRequest{
			Email:    user.Email,
			Country:  "US",
			UserID:   user.ID,
			Username: user.Username,
		})
		if err != nil {
			return nil, errors.Internal("Failed to create seller account", err)
		}
		user.StripeAccountID = account.ID
		if err := uc.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	if user.PayoutsEnabled {
		return &SellerAccountResult{
			AccountID:      user.StripeAccountID,
			PayoutsEnabled: true,
		}, nil
	}

	link, err := uc.gateway.CreateOnboardingLink(ctx, user.StripeAccountID)
	if err != nil {
		return nil, errors.Internal("Failed to create onboarding link", err)
	}

	return &SellerAccountResult{
		AccountID:     user.StripeAccountID,
		OnboardingURL: link.URL,
	}, nil
}

// GetAccountStatus refreshes the seller's payout capability from the gateway.
func (uc *CheckoutUseCase) GetAccountStatus(ctx context.Context, userID string) (*SellerAccountResult, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.StripeAccountID == "" {
		return nil, errors.NotFound("Seller account not set up", nil)
	}

	account, err := uc.gateway.GetAccount(ctx, user.StripeAccountID)
	if err != nil {
		return nil, errors.Internal("Failed to fetch seller account", err)
	}

	if account.PayoutsEnabled != user.PayoutsEnabled {
		user.PayoutsEnabled = account.PayoutsEnabled
		if err := uc.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return &SellerAccountResult{
		AccountID:      user.StripeAccountID,
		PayoutsEnabled: user.PayoutsEnabled,
	}, nil
}

type CreateCheckoutInput struct {
	ListingID string `json:"listing_id" validate:"required"`
	OfferID   string `json:"offer_id"`
}

// CreateCheckoutSession starts payment for a listing, either at the listed
// price or at the amount of an accepted offer the buyer holds.
func (uc *CheckoutUseCase) CreateCheckoutSession(ctx context.Context, buyerID string, input CreateCheckoutInput) (*service.CheckoutSession, error) {
	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != entity.ListingStatusActive {
		return nil, errors.BadRequest("Listing is not available for purchase", nil)
	}
	if listing.SellerID == buyerID {
		return nil, errors.BadRequest("Cannot purchase your own listing", nil)
	}

	amount := listing.Price
	if input.OfferID != "" {
		offer, err := uc.offerRepo.GetByID(ctx, input.OfferID)
		if err != nil {
			return nil, err
		}
		if offer.Status != entity.OfferStatusAccepted {
			return nil, errors.BadRequest("Offer has not been accepted", nil)
		}
		if offer.BuyerID != buyerID || offer.ListingID != listing.ID {
			return nil, errors.Forbidden("Offer does not belong to this purchase", nil)
		}
		amount = offer.Amount
	}

	seller, err := uc.userRepo.GetByID(ctx, listing.SellerID)
	if err != nil {
		return nil, err
	}
	if seller.StripeAccountID == "" || !seller.PayoutsEnabled {
		return nil, errors.BadRequest("Seller has not completed payout setup", nil)
	}

	session, err := uc.gateway.CreateCheckoutSession(ctx, service.CheckoutSessionRequest{
		AmountMinor:     int64(math.Round(amount * 100)),
		Currency:        "usd",
		ProductName:     listing.Title,
		ListingID:       listing.ID,
		OfferID:         input.OfferID,
		BuyerID:         buyerID,
		SellerAccountID: seller.StripeAccountID,
		SuccessURL:      uc.baseURL + "/checkout/success",
		CancelURL:       uc.baseURL + "/checkout/cancel",
	})
	if err != nil {
		return nil, errors.Internal("Failed to create checkout session", err)
	}

	return session, nil
}

type CompletedSessionInput struct {
	SessionID string
	ListingID string
	OfferID   string
	BuyerID   string
}

// HandleCompletedSession is the webhook path: mark the listing sold and
// drop a system message into the buyer/seller conversation.
func (uc *CheckoutUseCase) HandleCompletedSession(ctx context.Context, input CompletedSessionInput) error {
	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		return err
	}
	if listing.Status == entity.ListingStatusSold {
		return nil
	}

	listing.Status = entity.ListingStatusSold
	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return err
	}

	if input.BuyerID == "" {
		return nil
	}

	message := &entity.Message{
		ConversationKey: entity.ConversationKey(input.BuyerID, listing.SellerID, listing.ID),
		SenderID:        input.BuyerID,
		ReceiverID:      listing.SellerID,
		ListingID:       listing.ID,
		Body:            fmt.Sprintf("Payment completed for \"%s\"", listing.Title),
		Kind:            entity.MessageKindText,
		OfferID:         input.OfferID,
		IsSystem:        true,
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		logger.Error("Failed to record purchase message: %v", err)
	} else {
		uc.wsManager.Notify(websocket.Event{
			Type:            websocket.EventNewMessage,
			ConversationKey: message.ConversationKey,
			Payload:         message,
		}, input.BuyerID, listing.SellerID)
	}

	return nil
}
