package handler

import (
	"toolmart/internal/usecase"
	"toolmart/pkg/response"
	"toolmart/pkg/utils"

	"github.com/labstack/echo/v4"
)

type NegotiationHandler struct {
	negotiationUseCase *usecase.NegotiationUseCase
}

func NewNegotiationHandler(negotiationUseCase *usecase.NegotiationUseCase) *NegotiationHandler {
	return &NegotiationHandler{
		negotiationUseCase: negotiationUseCase,
	}
}

type submitOfferRequest struct {
	ListingID string  `json:"listing_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

type respondToOfferRequest struct {
	Action        string  `json:"action" validate:"required,oneof=accept decline counter"`
	CounterAmount float64 `json:"counter_amount,omitempty"`
}

func (h *NegotiationHandler) SubmitOffer(c echo.Context) error {
	var req submitOfferRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	buyerID := c.Get("uid").(string)

	result, err := h.negotiationUseCase.SubmitOffer(
		c.Request().Context(),
		buyerID,
		usecase.SubmitOfferInput{
			ListingID: req.ListingID,
			Amount:    req.Amount,
		},
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

func (h *NegotiationHandler) RespondToOffer(c echo.Context) error {
	var req respondToOfferRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	responderID := c.Get("uid").(string)

	result, err := h.negotiationUseCase.RespondToOffer(
		c.Request().Context(),
		responderID,
		usecase.RespondToOfferInput{
			OfferID:       c.Param("id"),
			Action:        req.Action,
			CounterAmount: req.CounterAmount,
		},
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *NegotiationHandler) GetOffer(c echo.Context) error {
	viewerID := c.Get("uid").(string)

	detail, err := h.negotiationUseCase.GetOffer(c.Request().Context(), viewerID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

func (h *NegotiationHandler) ListMyOffers(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	offers, total, err := h.negotiationUseCase.ListUserOffers(c.Request().Context(), userID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, offers, total, pagination.Page, pagination.PageSize)
}
