package service

import "context"

// PaymentGatewayService wraps the external payments provider. The provider
// is opaque to the rest of the system: connected accounts, onboarding links
// and checkout sessions are created here and referenced by id elsewhere.
type PaymentGatewayService interface {
	CreateConnectedAccount(ctx context.Context, req ConnectedAccountRequest) (*ConnectedAccount, error)
	CreateOnboardingLink(ctx context.Context, accountID string) (*OnboardingLink, error)
	GetAccount(ctx context.Context, accountID string) (*ConnectedAccount, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
}

type ConnectedAccountRequest struct {
	Email    string
	Country  string
	UserID   string
	Username string
}

type ConnectedAccount struct {
	ID               string
	Email            string
	PayoutsEnabled   bool
	ChargesEnabled   bool
	DetailsSubmitted bool
}

type OnboardingLink struct {
	URL       string
	ExpiresAt int64
}

type CheckoutSessionRequest struct {
	// Amount in the currency's minor unit (cents).
	AmountMinor      int64
	Currency         string
	ProductName      string
	ListingID        string
	OfferID          string
	BuyerID          string
	SellerAccountID  string
	SuccessURL       string
	CancelURL        string
}

type CheckoutSession struct {
	ID  string
	URL string
}
