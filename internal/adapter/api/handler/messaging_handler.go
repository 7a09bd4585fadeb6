package handler

import (
	"toolmart/internal/domain/entity"
	"toolmart/internal/usecase"
	"toolmart/pkg/response"
	"toolmart/pkg/utils"

	"github.com/labstack/echo/v4"
)

type MessagingHandler struct {
	messagingUseCase *usecase.MessagingUseCase
}

func NewMessagingHandler(messagingUseCase *usecase.MessagingUseCase) *MessagingHandler {
	return &MessagingHandler{
		messagingUseCase: messagingUseCase,
	}
}

type sendMessageRequest struct {
	ListingID  string `json:"listing_id,omitempty"`
	Body       string `json:"body"`
	Attachment *struct {
		URL      string `json:"url" validate:"required,url"`
		Name     string `json:"name"`
		MimeType string `json:"mime_type"`
	} `json:"attachment,omitempty"`
}

func (h *MessagingHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	senderID := c.Get("uid").(string)

	input := usecase.SendMessageInput{
		ReceiverID: c.Param("userId"),
		ListingID:  req.ListingID,
		Body:       req.Body,
	}
	if req.Attachment != nil {
		input.Attachment = &entity.Attachment{
			URL:      req.Attachment.URL,
			Name:     req.Attachment.Name,
			MimeType: req.Attachment.MimeType,
		}
	}

	message, err := h.messagingUseCase.SendMessage(c.Request().Context(), senderID, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// GetConversation returns the timestamp-ordered feed with the other user,
// scoped to a listing via the listing_id query param.
func (h *MessagingHandler) GetConversation(c echo.Context) error {
	userID := c.Get("uid").(string)
	otherUserID := c.Param("userId")
	listingID := c.QueryParam("listing_id")
	pagination := utils.GetPaginationParams(c)

	messages, total, err := h.messagingUseCase.GetConversation(
		c.Request().Context(),
		userID,
		otherUserID,
		listingID,
		pagination.PageSize,
		pagination.Offset,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, pagination.Page, pagination.PageSize)
}

func (h *MessagingHandler) ListConversations(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	conversations, total, err := h.messagingUseCase.ListConversations(c.Request().Context(), userID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, conversations, total, pagination.Page, pagination.PageSize)
}

func (h *MessagingHandler) MarkConversationRead(c echo.Context) error {
	userID := c.Get("uid").(string)
	otherUserID := c.Param("userId")
	listingID := c.QueryParam("listing_id")

	updated, err := h.messagingUseCase.MarkConversationRead(c.Request().Context(), userID, otherUserID, listingID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"updated": updated,
	})
}
