package usecase

import (
	"context"
	"log"

	"toolmart/internal/domain/entity"
	"toolmart/internal/domain/repository"
	"toolmart/internal/infrastructure/ratelimit"
	ws "toolmart/internal/infrastructure/websocket"
	"toolmart/internal/negotiation"
	"toolmart/pkg/errors"
)

type MessagingUseCase struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
}

func NewMessagingUseCase(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	wsManager *ws.Manager,
) *MessagingUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &MessagingUseCase{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
	}
}

type SendMessageInput struct {
	ReceiverID string
	ListingID  string
	Body       string
	Attachment *entity.Attachment
}

// MessageView decorates a message with its derived actionability for the
// requesting viewer.
type MessageView struct {
	*entity.Message
	Actionable bool `json:"actionable"`
}

type ConversationSummary struct {
	ConversationKey string          `json:"conversation_key"`
	LastMessage     *entity.Message `json:"last_message"`
	OtherUser       *entity.User    `json:"other_user,omitempty"`
	UnreadCount     int64           `json:"unread_count"`
}

// SendMessage writes a plain text message. Offer-typed messages never go
// through here; only the negotiation engine may create them.
func (uc *MessagingUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
	if !allowed {
		log.Printf("SendMessage Rate Limited: User %s must wait %v", senderID, waitTime)
		uc.wsManager.Notify(ws.Event{
			Type:    ws.EventRateLimited,
			Payload: map[string]interface{}{"wait_time": waitTime.Seconds()},
		}, senderID)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	if senderID == input.ReceiverID {
		return nil, errors.BadRequest("You cannot message yourself", nil)
	}

	if input.Body == "" && input.Attachment == nil {
		return nil, errors.Validation("Message body is required", nil)
	}

	if _, err := uc.userRepo.GetByID(ctx, input.ReceiverID); err != nil {
		log.Printf("SendMessage Error: Recipient %s not found: %v", input.ReceiverID, err)
		return nil, errors.NotFound("Recipient", err)
	}

	if input.ListingID != "" {
		if _, err := uc.listingRepo.GetByID(ctx, input.ListingID); err != nil {
			return nil, errors.NotFound("Listing", err)
		}
	}

	message := &entity.Message{
		ConversationKey: entity.ConversationKey(senderID, input.ReceiverID, input.ListingID),
		SenderID:        senderID,
		ReceiverID:      input.ReceiverID,
		ListingID:       input.ListingID,
		Body:            input.Body,
		Kind:            entity.MessageKindText,
		Attachment:      input.Attachment,
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		log.Printf("SendMessage Error: Failed to create message: %v", err)
		return nil, err
	}

	uc.wsManager.Notify(ws.Event{
		Type:            ws.EventNewMessage,
		ConversationKey: message.ConversationKey,
		Payload:         message,
	}, input.ReceiverID)

	return message, nil
}

// GetConversation returns the timestamp-ordered feed for one conversation,
// each message decorated with its actionability for the viewer. The
// derivation runs over the full history on every call; it is never cached
// because a new resolution message changes earlier answers.
func (uc *MessagingUseCase) GetConversation(ctx context.Context, userID, otherUserID, listingID string, limit, offset int) ([]*MessageView, int64, error) {
	key := entity.ConversationKey(userID, otherUserID, listingID)

	history, total, err := uc.messageRepo.ListByConversation(ctx, key, 0, 0)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*MessageView, 0, len(history))
	for _, m := range history {
		views = append(views, &MessageView{
			Message:    m,
			Actionable: negotiation.IsActionable(userID, m, history),
		})
	}

	start := offset
	end := len(views)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	if start > len(views) {
		start = len(views)
	}

	return views[start:end], total, nil
}

// ListConversations returns the user's conversations, newest first, with
// the counterparty profile and unread count attached.
func (uc *MessagingUseCase) ListConversations(ctx context.Context, userID string, limit, offset int) ([]*ConversationSummary, int64, error) {
	heads, total, err := uc.messageRepo.ListConversations(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]*ConversationSummary, 0, len(heads))
	for _, head := range heads {
		otherID := head.SenderID
		if otherID == userID {
			otherID = head.ReceiverID
		}

		summary := &ConversationSummary{
			ConversationKey: head.ConversationKey,
			LastMessage:     head,
		}

		if other, err := uc.userRepo.GetByID(ctx, otherID); err == nil {
			summary.OtherUser = other
		}

		if unread, err := uc.messageRepo.CountUnread(ctx, head.ConversationKey, userID); err == nil {
			summary.UnreadCount = unread
		}

		summaries = append(summaries, summary)
	}

	return summaries, total, nil
}

// MarkConversationRead flips the read flag on every message addressed to
// the caller in the conversation.
func (uc *MessagingUseCase) MarkConversationRead(ctx context.Context, userID, otherUserID, listingID string) (int, error) {
	key := entity.ConversationKey(userID, otherUserID, listingID)
	return uc.messageRepo.MarkConversationRead(ctx, key, userID)
}
