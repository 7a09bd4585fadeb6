package repository

import (
	"context"

	"toolmart/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	GetByID(ctx context.Context, id string) (*entity.Message, error)

	// ListByConversation returns messages for one conversation key ordered
	// by creation time ascending.
	ListByConversation(ctx context.Context, conversationKey string, limit, offset int) ([]*entity.Message, int64, error)

	// ListByOffer returns every message referencing an offer id, oldest
	// first. Used by the derivation fold and by reconciliation.
	ListByOffer(ctx context.Context, offerID string) ([]*entity.Message, error)

	// ListConversations returns the newest message per conversation key the
	// user participates in, newest conversation first.
	ListConversations(ctx context.Context, userID string, limit, offset int) ([]*entity.Message, int64, error)

	// MarkConversationRead flips the read flag on messages addressed to
	// userID within the conversation. Returns how many were updated.
	MarkConversationRead(ctx context.Context, conversationKey, userID string) (int, error)

	CountUnread(ctx context.Context, conversationKey, userID string) (int64, error)
}
