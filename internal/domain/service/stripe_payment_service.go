package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StripePaymentService talks to the Stripe Connect HTTP API directly. Only
// the four operations the marketplace needs are implemented.
type StripePaymentService struct {
	secretKey string
	baseURL   string
	isLive    bool
}

func NewStripePaymentService(secretKey string, isLive bool) *StripePaymentService {
	return &StripePaymentService{
		secretKey: secretKey,
		baseURL:   "https://api.stripe.com/v1",
		isLive:    isLive,
	}
}

type stripeAccount struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
}

type stripeAccountLink struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

type stripeCheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *StripePaymentService) CreateConnectedAccount(ctx context.Context, req ConnectedAccountRequest) (*ConnectedAccount, error) {
	log.Printf("Creating connected account for user %s", req.UserID)

	form := url.Values{}
	form.Set("type", "express")
	form.Set("email", req.Email)
	if req.Country != "" {
		form.Set("country", req.Country)
	}
	form.Set("metadata[user_id]", req.UserID)
	form.Set("metadata[username]", req.Username)
	form.Set("capabilities[transfers][requested]", "true")

	var account stripeAccount
	if err := s.post(ctx, "/accounts", form, &account); err != nil {
		return nil, err
	}

	log.Printf("Connected account created: %s", account.ID)
	return toConnectedAccount(&account), nil
}

func (s *StripePaymentService) CreateOnboardingLink(ctx context.Context, accountID string) (*OnboardingLink, error) {
	form := url.Values{}
	form.Set("account", accountID)
	form.Set("type", "account_onboarding")
	form.Set("refresh_url", s.callbackURL("/payments/onboarding/refresh"))
	form.Set("return_url", s.callbackURL("/payments/onboarding/return"))

	var link stripeAccountLink
	if err := s.post(ctx, "/account_links", form, &link); err != nil {
		return nil, err
	}

	return &OnboardingLink{URL: link.URL, ExpiresAt: link.ExpiresAt}, nil
}

func (s *StripePaymentService) GetAccount(ctx context.Context, accountID string) (*ConnectedAccount, error) {
	var account stripeAccount
	if err := s.get(ctx, "/accounts/"+accountID, &account); err != nil {
		return nil, err
	}
	return toConnectedAccount(&account), nil
}

func (s *StripePaymentService) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error) {
	log.Printf("Creating checkout session for listing %s, amount %d %s", req.ListingID, req.AmountMinor, req.Currency)

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", req.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountMinor, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.ProductName)
	form.Set("payment_intent_data[transfer_data][destination]", req.SellerAccountID)
	form.Set("metadata[listing_id]", req.ListingID)
	form.Set("metadata[buyer_id]", req.BuyerID)
	if req.OfferID != "" {
		form.Set("metadata[offer_id]", req.OfferID)
	}

	var session stripeCheckoutSession
	if err := s.post(ctx, "/checkout/sessions", form, &session); err != nil {
		return nil, err
	}

	log.Printf("Checkout session created: %s", session.ID)
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (s *StripePaymentService) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(httpReq, out)
}

func (s *StripePaymentService) get(ctx context.Context, path string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	return s.do(httpReq, out)
}

func (s *StripePaymentService) do(httpReq *http.Request, out interface{}) error {
	httpReq.Header.Set("Authorization", "Bearer "+s.secretKey)
	httpReq.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %v", err)
	}

	if resp.StatusCode >= 400 {
		var stripeErr stripeErrorBody
		if err := json.Unmarshal(body, &stripeErr); err == nil && stripeErr.Error.Message != "" {
			log.Printf("Stripe API error: %s (%s)", stripeErr.Error.Message, stripeErr.Error.Type)
			return fmt.Errorf("stripe API error: %s", stripeErr.Error.Message)
		}
		log.Printf("Stripe API error: %s", string(body))
		return fmt.Errorf("stripe API error: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}

	return nil
}

func (s *StripePaymentService) callbackURL(path string) string {
	base := "http://localhost:8080"
	if s.isLive {
		base = "https://toolmart.app"
	}
	return base + path
}

func toConnectedAccount(a *stripeAccount) *ConnectedAccount {
	return &ConnectedAccount{
		ID:               a.ID,
		Email:            a.Email,
		PayoutsEnabled:   a.PayoutsEnabled,
		ChargesEnabled:   a.ChargesEnabled,
		DetailsSubmitted: a.DetailsSubmitted,
	}
}
