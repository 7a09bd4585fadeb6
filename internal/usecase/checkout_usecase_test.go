package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolmart/internal/domain/entity"
	ws "toolmart/internal/infrastructure/websocket"
	"toolmart/pkg/errors"
)

type checkoutEnv struct {
	*negotiationEnv
	gateway  *fakePaymentGateway
	checkout *CheckoutUseCase
}

func newCheckoutEnv(t *testing.T) *checkoutEnv {
	t.Helper()

	base := newNegotiationEnv(t)
	gateway := newFakePaymentGateway()
	checkout := NewCheckoutUseCase(gateway, base.users, base.listings, base.offers, base.messages, ws.NewManager(), "https://toolmart.example.com")

	return &checkoutEnv{
		negotiationEnv: base,
		gateway:        gateway,
		checkout:       checkout,
	}
}

func (env *checkoutEnv) onboardSeller(t *testing.T, userID string) {
	t.Helper()
	ctx := context.Background()

	result, err := env.checkout.CreateSellerAccount(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, result.OnboardingURL)

	env.gateway.accounts[result.AccountID].PayoutsEnabled = true
	status, err := env.checkout.GetAccountStatus(ctx, userID)
	require.NoError(t, err)
	require.True(t, status.PayoutsEnabled)
}

func TestCreateSellerAccountIsIdempotent(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()

	first, err := env.checkout.CreateSellerAccount(ctx, "seller-1")
	require.NoError(t, err)
	second, err := env.checkout.CreateSellerAccount(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, first.AccountID, second.AccountID)

	user, err := env.users.GetByID(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, first.AccountID, user.StripeAccountID)
}

func TestCheckoutAtListingPrice(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()
	env.onboardSeller(t, "seller-1")

	session, err := env.checkout.CreateCheckoutSession(ctx, "buyer-1", CreateCheckoutInput{ListingID: "listing-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.URL)

	require.Len(t, env.gateway.sessions, 1)
	assert.Equal(t, int64(10000), env.gateway.sessions[0].AmountMinor)
	assert.Equal(t, "usd", env.gateway.sessions[0].Currency)
}

func TestCheckoutAtAcceptedOfferAmount(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()
	env.onboardSeller(t, "seller-1")

	submitted, err := env.negotiation.SubmitOffer(ctx, "buyer-1", SubmitOfferInput{ListingID: "listing-1", Amount: 80})
	require.NoError(t, err)
	_, err = env.negotiation.RespondToOffer(ctx, "seller-1", RespondToOfferInput{OfferID: submitted.Offer.ID, Action: OfferActionAccept})
	require.NoError(t, err)

	_, err = env.checkout.CreateCheckoutSession(ctx, "buyer-1", CreateCheckoutInput{
		ListingID: "listing-1",
		OfferID:   submitted.Offer.ID,
	})
	require.NoError(t, err)

	require.Len(t, env.gateway.sessions, 1)
	assert.Equal(t, int64(8000), env.gateway.sessions[0].AmountMinor)
	assert.Equal(t, submitted.Offer.ID, env.gateway.sessions[0].OfferID)
}

func TestCheckoutRejectsUnacceptedOffer(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()
	env.onboardSeller(t, "seller-1")

	submitted, err := env.negotiation.SubmitOffer(ctx, "buyer-1", SubmitOfferInput{ListingID: "listing-1", Amount: 80})
	require.NoError(t, err)

	_, err = env.checkout.CreateCheckoutSession(ctx, "buyer-1", CreateCheckoutInput{
		ListingID: "listing-1",
		OfferID:   submitted.Offer.ID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestCheckoutRejectsForeignOffer(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()
	env.onboardSeller(t, "seller-1")
	require.NoError(t, env.users.Create(ctx, &entity.User{ID: "buyer-2", Email: "b2@example.com", Username: "b2", Role: "user", Status: "active"}))

	submitted, err := env.negotiation.SubmitOffer(ctx, "buyer-1", SubmitOfferInput{ListingID: "listing-1", Amount: 80})
	require.NoError(t, err)
	_, err = env.negotiation.RespondToOffer(ctx, "seller-1", RespondToOfferInput{OfferID: submitted.Offer.ID, Action: OfferActionAccept})
	require.NoError(t, err)

	_, err = env.checkout.CreateCheckoutSession(ctx, "buyer-2", CreateCheckoutInput{
		ListingID: "listing-1",
		OfferID:   submitted.Offer.ID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestCheckoutRequiresPayoutSetup(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()

	_, err := env.checkout.CreateCheckoutSession(ctx, "buyer-1", CreateCheckoutInput{ListingID: "listing-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestHandleCompletedSessionMarksSold(t *testing.T) {
	env := newCheckoutEnv(t)
	ctx := context.Background()

	err := env.checkout.HandleCompletedSession(ctx, CompletedSessionInput{
		SessionID: "cs_001",
		ListingID: "listing-1",
		BuyerID:   "buyer-1",
	})
	require.NoError(t, err)

	listing, err := env.listings.GetByID(ctx, "listing-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusSold, listing.Status)

	key := entity.ConversationKey("buyer-1", "seller-1", "listing-1")
	feed, _, err := env.messages.ListByConversation(ctx, key, 0, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.True(t, feed[0].IsSystem)

	// Replayed webhook deliveries are a no-op.
	err = env.checkout.HandleCompletedSession(ctx, CompletedSessionInput{
		SessionID: "cs_001",
		ListingID: "listing-1",
		BuyerID:   "buyer-1",
	})
	require.NoError(t, err)
	feed, _, err = env.messages.ListByConversation(ctx, key, 0, 0)
	require.NoError(t, err)
	assert.Len(t, feed, 1)
}
