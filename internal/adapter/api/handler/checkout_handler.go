package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"toolmart/internal/usecase"
	"toolmart/pkg/errors"
	"toolmart/pkg/response"
)

type CheckoutHandler struct {
	checkoutUseCase *usecase.CheckoutUseCase
	webhookKey      string
}

func NewCheckoutHandler(checkoutUseCase *usecase.CheckoutUseCase, webhookKey string) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutUseCase: checkoutUseCase,
		webhookKey:      webhookKey,
	}
}

func (h *CheckoutHandler) CreateSellerAccount(c echo.Context) error {
	userID := c.Get("uid").(string)

	result, err := h.checkoutUseCase.CreateSellerAccount(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *CheckoutHandler) GetAccountStatus(c echo.Context) error {
	userID := c.Get("uid").(string)

	result, err := h.checkoutUseCase.GetAccountStatus(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *CheckoutHandler) CreateCheckoutSession(c echo.Context) error {
	var req usecase.CreateCheckoutInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	buyerID := c.Get("uid").(string)

	session, err := h.checkoutUseCase.CreateCheckoutSession(c.Request().Context(), buyerID, req)
	if err != nil {
		log.Printf("Failed to create checkout session: %v", err)
		return response.Error(c, err)
	}

	return response.Success(c, session)
}

type stripeWebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// StripeWebhook handles checkout.session.completed events. The signature
// header is verified against the shared webhook secret before anything in
// the payload is trusted.
func (h *CheckoutHandler) StripeWebhook(c echo.Context) error {
	log.Printf("Received Stripe webhook from IP: %s", c.RealIP())

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to read payload"})
	}

	if err := verifyStripeSignature(payload, c.Request().Header.Get("Stripe-Signature"), h.webhookKey); err != nil {
		log.Printf("Stripe webhook signature verification failed: %v", err)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})
	}

	var event stripeWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
	}

	if event.Type != "checkout.session.completed" {
		log.Printf("Ignoring Stripe event %s of type %s", event.ID, event.Type)
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}

	session := event.Data.Object
	err = h.checkoutUseCase.HandleCompletedSession(c.Request().Context(), usecase.CompletedSessionInput{
		SessionID: session.ID,
		ListingID: session.Metadata["listing_id"],
		OfferID:   session.Metadata["offer_id"],
		BuyerID:   session.Metadata["buyer_id"],
	})
	if err != nil {
		log.Printf("Failed to process completed session %s: %v", session.ID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Processing failed"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// verifyStripeSignature checks the v1 scheme: HMAC-SHA256 over
// "<timestamp>.<payload>" keyed with the endpoint secret.
func verifyStripeSignature(payload []byte, header, secret string) error {
	if header == "" {
		return fmt.Errorf("missing signature header")
	}

	var timestamp, signature string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signature = kv[1]
		}
	}
	if timestamp == "" || signature == "" {
		return fmt.Errorf("malformed signature header")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
