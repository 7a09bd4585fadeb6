package repository

import (
	"context"

	"toolmart/internal/domain/entity"
)

type OfferRepository interface {
	// CreateWithMessage writes the offer row and its announcing message in a
	// single transaction so no offer can exist without its narrative entry.
	CreateWithMessage(ctx context.Context, offer *entity.Offer, message *entity.Message) error

	GetByID(ctx context.Context, id string) (*entity.Offer, error)

	// FindPending returns the pending offer proposed by buyerID on
	// listingID, or a NOT_FOUND error when none exists.
	FindPending(ctx context.Context, listingID, buyerID string) (*entity.Offer, error)

	// UpdateStatusFrom transitions the offer from the expected status to the
	// new one inside a transaction, failing with a CONFLICT error when the
	// stored status no longer matches. The message, and the spawned counter
	// offer when non-nil, are written in the same transaction.
	UpdateStatusFrom(ctx context.Context, id, from, to string, message *entity.Message, counter *entity.Offer) error

	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Offer, int64, error)
}
