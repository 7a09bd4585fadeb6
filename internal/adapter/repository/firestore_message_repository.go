package repository

import (
	"context"
	"log"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"toolmart/internal/domain/entity"
	"toolmart/internal/domain/repository"
	"toolmart/pkg/errors"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

// prepareMessage fills the store-managed fields before an insert. Message
// ids are ULIDs so they sort by creation time, which the derivation uses as
// a tiebreak for equal timestamps.
func prepareMessage(message *entity.Message) {
	if message.ID == "" {
		message.ID = ulid.Make().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	participants := []string{message.SenderID, message.ReceiverID}
	sort.Strings(participants)
	message.Participants = participants
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	prepareMessage(message)

	_, err := r.client.Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	doc, err := r.client.Collection("messages").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

func (r *firestoreMessageRepository) ListByConversation(ctx context.Context, conversationKey string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("messages").
		Where("conversationKey", "==", conversationKey).
		OrderBy("createdAt", firestore.Asc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching conversation %s: %v", conversationKey, err)
		return nil, 0, errors.Internal("Failed to fetch conversation messages", err)
	}

	total := int64(len(allDocs))

	start := offset
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	if start > len(allDocs) {
		start = len(allDocs)
	}

	var messages []*entity.Message
	for i := start; i < end; i++ {
		var message entity.Message
		if err := allDocs[i].DataTo(&message); err != nil {
			log.Printf("Error parsing message data in conversation %s: %v", conversationKey, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreMessageRepository) ListByOffer(ctx context.Context, offerID string) ([]*entity.Message, error) {
	query := r.client.Collection("messages").
		Where("offerId", "==", offerID).
		OrderBy("createdAt", firestore.Asc)

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate offer messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreMessageRepository) ListConversations(ctx context.Context, userID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("messages").
		Where("participants", "array-contains", userID).
		OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching conversations for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to fetch conversations", err)
	}

	// Keep only the newest message per conversation key; docs arrive newest
	// first.
	seen := make(map[string]bool)
	var heads []*entity.Message
	for _, doc := range allDocs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing message data for user %s: %v", userID, err)
			continue
		}
		if seen[message.ConversationKey] {
			continue
		}
		seen[message.ConversationKey] = true
		heads = append(heads, &message)
	}

	total := int64(len(heads))

	start := offset
	end := len(heads)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	if start > len(heads) {
		start = len(heads)
	}

	return heads[start:end], total, nil
}

func (r *firestoreMessageRepository) MarkConversationRead(ctx context.Context, conversationKey, userID string) (int, error) {
	query := r.client.Collection("messages").
		Where("conversationKey", "==", conversationKey).
		Where("receiverId", "==", userID).
		Where("read", "==", false)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to query unread messages", err)
	}

	updated := 0
	for _, doc := range docs {
		_, err := doc.Ref.Update(ctx, []firestore.Update{
			{Path: "read", Value: true},
		})
		if err != nil {
			log.Printf("Failed to mark message %s as read: %v", doc.Ref.ID, err)
			continue
		}
		updated++
	}

	return updated, nil
}

func (r *firestoreMessageRepository) CountUnread(ctx context.Context, conversationKey, userID string) (int64, error) {
	query := r.client.Collection("messages").
		Where("conversationKey", "==", conversationKey).
		Where("receiverId", "==", userID).
		Where("read", "==", false)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}

	return int64(len(docs)), nil
}
