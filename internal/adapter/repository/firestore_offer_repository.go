package repository

import (
	"context"
	"log"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"toolmart/internal/domain/entity"
	"toolmart/internal/domain/repository"
	"toolmart/pkg/errors"
)

type firestoreOfferRepository struct {
	client *firestore.Client
}

func NewFirestoreOfferRepository(client *firestore.Client) repository.OfferRepository {
	return &firestoreOfferRepository{
		client: client,
	}
}

func (r *firestoreOfferRepository) CreateWithMessage(ctx context.Context, offer *entity.Offer, message *entity.Message) error {
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}

	now := time.Now()
	offer.CreatedAt = now
	offer.UpdatedAt = now

	message.OfferID = offer.ID
	prepareMessage(message)

	offerRef := r.client.Collection("offers").Doc(offer.ID)
	messageRef := r.client.Collection("messages").Doc(message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(offerRef, offer); err != nil {
			return err
		}
		return tx.Create(messageRef, message)
	})
	if err != nil {
		return errors.Internal("Failed to create offer", err)
	}

	return nil
}

func (r *firestoreOfferRepository) GetByID(ctx context.Context, id string) (*entity.Offer, error) {
	doc, err := r.client.Collection("offers").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Offer", err)
		}
		return nil, errors.Internal("Failed to get offer", err)
	}

	var offer entity.Offer
	if err := doc.DataTo(&offer); err != nil {
		return nil, errors.Internal("Failed to parse offer data", err)
	}

	return &offer, nil
}

func (r *firestoreOfferRepository) FindPending(ctx context.Context, listingID, buyerID string) (*entity.Offer, error) {
	query := r.client.Collection("offers").
		Where("listingId", "==", listingID).
		Where("buyerId", "==", buyerID).
		Where("status", "==", entity.OfferStatusPending).
		Limit(1)

	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Pending offer", nil)
		}
		return nil, errors.Internal("Failed to query pending offer", err)
	}

	var offer entity.Offer
	if err := doc.DataTo(&offer); err != nil {
		return nil, errors.Internal("Failed to parse offer data", err)
	}

	return &offer, nil
}

// UpdateStatusFrom re-reads the offer inside the transaction so a stale
// responder loses the race here instead of double-applying a transition.
func (r *firestoreOfferRepository) UpdateStatusFrom(ctx context.Context, id, from, to string, message *entity.Message, counter *entity.Offer) error {
	offerRef := r.client.Collection("offers").Doc(id)

	if counter != nil {
		if counter.ID == "" {
			counter.ID = uuid.New().String()
		}
		now := time.Now()
		counter.CreatedAt = now
		counter.UpdatedAt = now
		message.OfferID = counter.ID
	} else {
		message.OfferID = id
	}
	prepareMessage(message)
	messageRef := r.client.Collection("messages").Doc(message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(offerRef)
		if err != nil {
			return err
		}

		var current entity.Offer
		if err := doc.DataTo(&current); err != nil {
			return err
		}

		if current.Status != from {
			return errors.Conflict("Offer is no longer actionable", nil)
		}

		if err := tx.Update(offerRef, []firestore.Update{
			{Path: "status", Value: to},
			{Path: "updatedAt", Value: time.Now()},
		}); err != nil {
			return err
		}

		if counter != nil {
			counterRef := r.client.Collection("offers").Doc(counter.ID)
			if err := tx.Create(counterRef, counter); err != nil {
				return err
			}
		}

		return tx.Create(messageRef, message)
	})
	if err != nil {
		if errors.Is(err, "CONFLICT") {
			return err
		}
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Offer", err)
		}
		log.Printf("Offer transition %s -> %s failed for %s: %v", from, to, id, err)
		return errors.Internal("Failed to update offer status", err)
	}

	return nil
}

func (r *firestoreOfferRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Offer, int64, error) {
	// Two equality queries because the user can sit on either side of the
	// negotiation.
	var all []*entity.Offer
	for _, field := range []string{"buyerId", "sellerId"} {
		query := r.client.Collection("offers").
			Where(field, "==", userID).
			OrderBy("createdAt", firestore.Desc)

		docs, err := query.Documents(ctx).GetAll()
		if err != nil {
			return nil, 0, errors.Internal("Failed to fetch offers", err)
		}

		for _, doc := range docs {
			var offer entity.Offer
			if err := doc.DataTo(&offer); err != nil {
				log.Printf("Error parsing offer data for user %s: %v", userID, err)
				continue
			}
			all = append(all, &offer)
		}
	}

	offers, total := orderAndPageOffers(all, limit, offset)
	return offers, total, nil
}

// orderAndPageOffers re-sorts the merged buyer- and seller-side rows newest
// first before slicing. The two query blocks are each ordered but their
// concatenation is not, and offsets must address one consistent order.
func orderAndPageOffers(all []*entity.Offer, limit, offset int) ([]*entity.Offer, int64) {
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := int64(len(all))

	start := offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return all[start:end], total
}
