package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolmart/internal/domain/entity"
	"toolmart/pkg/errors"
)

func TestSendMessageCreatesTextMessage(t *testing.T) {
	env := newNegotiationEnv(t)
	ctx := context.Background()

	message, err := env.messaging.SendMessage(ctx, "buyer-1", SendMessageInput{
		ReceiverID: "seller-1",
		ListingID:  "listing-1",
		Body:       "Does the agent support Go projects?",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MessageKindText, message.Kind)
	assert.Equal(t, entity.ConversationKey("buyer-1", "seller-1", "listing-1"), message.ConversationKey)
	assert.Empty(t, message.OfferID)
	assert.False(t, message.Read)
}

func TestSendMessageValidation(t *testing.T) {
	env := newNegotiationEnv(t)
	ctx := context.Background()

	_, err := env.messaging.SendMessage(ctx, "buyer-1", SendMessageInput{ReceiverID: "buyer-1", Body: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = env.messaging.SendMessage(ctx, "buyer-1", SendMessageInput{ReceiverID: "seller-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = env.messaging.SendMessage(ctx, "buyer-1", SendMessageInput{ReceiverID: "ghost", Body: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestGetConversationDerivesActionability(t *testing.T) {
	env := newNegotiationEnv(t)
	ctx := context.Background()

	submitted, err := env.negotiation.SubmitOffer(ctx, "buyer-1", SubmitOfferInput{ListingID: "listing-1", Amount: 80})
	require.NoError(t, err)

	// The pending offer is actionable for its recipient only.
	sellerFeed, _, err := env.messaging.GetConversation(ctx, "seller-1", "buyer-1", "listing-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, sellerFeed, 1)
	assert.True(t, sellerFeed[0].Actionable)

	buyerFeed, _, err := env.messaging.GetConversation(ctx, "buyer-1", "seller-1", "listing-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, buyerFeed, 1)
	assert.False(t, buyerFeed[0].Actionable)

	_, err = env.negotiation.RespondToOffer(ctx, "seller-1", RespondToOfferInput{OfferID: submitted.Offer.ID, Action: OfferActionDecline})
	require.NoError(t, err)

	// After resolution the earlier answer changes too.
	sellerFeed, _, err = env.messaging.GetConversation(ctx, "seller-1", "buyer-1", "listing-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, sellerFeed, 2)
	assert.False(t, sellerFeed[0].Actionable)
	assert.False(t, sellerFeed[1].Actionable)
}

func TestGetConversationCounterMovesActionability(t *testing.T) {
	env := newNegotiationEnv(t)
	ctx := context.Background()

	submitted, err := env.negotiation.SubmitOffer(ctx, "buyer-1", SubmitOfferInput{ListingID: "listing-1", Amount: 80})
	require.NoError(t, err)
	_, err = env.negotiation.RespondToOffer(ctx, "seller-1", RespondToOfferInput{
		OfferID:       submitted.Offer.ID,
		Action:        OfferActionCounter,
		CounterAmount: 90,
	})
	require.NoError(t, err)

	// Only the counter is live now, and only for the original buyer.
	buyerFeed, _, err := env.messaging.GetConversation(ctx, "buyer-1", "seller-1", "listing-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, buyerFeed, 2)
	assert.False(t, buyerFeed[0].Actionable)
	assert.True(t, buyerFeed[1].Actionable)

	sellerFeed, _, err := env.messaging.GetConversation(ctx, "seller-1", "buyer-1", "listing-1", 0, 0)
	require.NoError(t, err)
	assert.False(t, sellerFeed[0].Actionable)
	assert.False(t, sellerFeed[1].Actionable)
}

func TestGetConversationPaginatesAfterDerivation(t *testing.T) {
	env := newNegotiationEnv(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := env.messaging.SendMessage(ctx, "buyer-1", SendMessageInput{
			ReceiverID: "seller-1",
			ListingID:  "listing-1",
			Body:       "ping",
		})
		require.NoError(t, err)
	}

	page, total, err := env.messaging.GetConversation(ctx, "buyer-1", "seller-1", "listing-1", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, page, 2)
}

func TestListConversationsAndUnread(t *testing.T) {
	env := newNegotiationEnv(t)
	ctx := context.Background()

	_, err := env.messaging.SendMessage(ctx, "buyer-1", SendMessageInput{
		ReceiverID: "seller-1",
		ListingID:  "listing-1",
		Body:       "first",
	})
	require.NoError(t, err)
	_, err = env.messaging.SendMessage(ctx, "buyer-1", SendMessageInput{
		ReceiverID: "seller-1",
		ListingID:  "listing-1",
		Body:       "second",
	})
	require.NoError(t, err)

	summaries, total, err := env.messaging.ListConversations(ctx, "seller-1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, summaries, 1)

	summary := summaries[0]
	assert.Equal(t, "second", summary.LastMessage.Body)
	assert.Equal(t, int64(2), summary.UnreadCount)
	require.NotNil(t, summary.OtherUser)
	assert.Equal(t, "buyer-1", summary.OtherUser.ID)

	updated, err := env.messaging.MarkConversationRead(ctx, "seller-1", "buyer-1", "listing-1")
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	summaries, _, err = env.messaging.ListConversations(ctx, "seller-1", 20, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(0), summaries[0].UnreadCount)
}
