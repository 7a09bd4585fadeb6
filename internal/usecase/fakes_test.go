package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"toolmart/internal/domain/entity"
	"toolmart/internal/domain/service"
	"toolmart/pkg/errors"
)

// The fakes below mirror the store's contract closely enough for the
// usecases to run against them: CreateWithMessage assigns ids and writes
// both rows, and UpdateStatusFrom enforces the expected-status guard the
// same way the transactional implementation does.

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*entity.Message
	seq      int
	now      time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (r *fakeMessageRepo) insert(message *entity.Message) {
	r.seq++
	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%03d", r.seq)
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = r.now.Add(time.Duration(r.seq) * time.Second)
	}
	participants := []string{message.SenderID, message.ReceiverID}
	sort.Strings(participants)
	message.Participants = participants
	r.messages = append(r.messages, message)
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(message)
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (r *fakeMessageRepo) sortedByTime() []*entity.Message {
	out := make([]*entity.Message, len(r.messages))
	copy(out, r.messages)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakeMessageRepo) ListByConversation(ctx context.Context, conversationKey string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Message
	for _, m := range r.sortedByTime() {
		if m.ConversationKey == conversationKey {
			result = append(result, m)
		}
	}
	total := int64(len(result))

	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, total, nil
}

func (r *fakeMessageRepo) ListByOffer(ctx context.Context, offerID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Message
	for _, m := range r.sortedByTime() {
		if m.OfferID == offerID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) ListConversations(ctx context.Context, userID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := r.sortedByTime()
	seen := make(map[string]bool)
	var heads []*entity.Message
	for i := len(sorted) - 1; i >= 0; i-- {
		m := sorted[i]
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		if seen[m.ConversationKey] {
			continue
		}
		seen[m.ConversationKey] = true
		heads = append(heads, m)
	}
	total := int64(len(heads))

	if offset > len(heads) {
		offset = len(heads)
	}
	heads = heads[offset:]
	if limit > 0 && limit < len(heads) {
		heads = heads[:limit]
	}
	return heads, total, nil
}

func (r *fakeMessageRepo) MarkConversationRead(ctx context.Context, conversationKey, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := 0
	for _, m := range r.messages {
		if m.ConversationKey == conversationKey && m.ReceiverID == userID && !m.Read {
			m.Read = true
			updated++
		}
	}
	return updated, nil
}

func (r *fakeMessageRepo) CountUnread(ctx context.Context, conversationKey, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, m := range r.messages {
		if m.ConversationKey == conversationKey && m.ReceiverID == userID && !m.Read {
			count++
		}
	}
	return count, nil
}

type fakeOfferRepo struct {
	mu       sync.Mutex
	offers   map[string]*entity.Offer
	seq      int
	messages *fakeMessageRepo
}

func newFakeOfferRepo(messages *fakeMessageRepo) *fakeOfferRepo {
	return &fakeOfferRepo{
		offers:   make(map[string]*entity.Offer),
		messages: messages,
	}
}

func (r *fakeOfferRepo) CreateWithMessage(ctx context.Context, offer *entity.Offer, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	if offer.ID == "" {
		offer.ID = fmt.Sprintf("offer-%03d", r.seq)
	}
	now := time.Now()
	offer.CreatedAt = now
	offer.UpdatedAt = now
	r.offers[offer.ID] = offer

	message.OfferID = offer.ID
	r.messages.mu.Lock()
	r.messages.insert(message)
	r.messages.mu.Unlock()
	return nil
}

func (r *fakeOfferRepo) GetByID(ctx context.Context, id string) (*entity.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	offer, ok := r.offers[id]
	if !ok {
		return nil, errors.NotFound("Offer", nil)
	}
	copied := *offer
	return &copied, nil
}

func (r *fakeOfferRepo) FindPending(ctx context.Context, listingID, buyerID string) (*entity.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, offer := range r.offers {
		if offer.ListingID == listingID && offer.BuyerID == buyerID && offer.Status == entity.OfferStatusPending {
			copied := *offer
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Pending offer", nil)
}

func (r *fakeOfferRepo) UpdateStatusFrom(ctx context.Context, id, from, to string, message *entity.Message, counter *entity.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	offer, ok := r.offers[id]
	if !ok {
		return errors.NotFound("Offer", nil)
	}
	if offer.Status != from {
		return errors.Conflict("Offer is no longer actionable", nil)
	}
	offer.Status = to
	offer.UpdatedAt = time.Now()

	if counter != nil {
		r.seq++
		if counter.ID == "" {
			counter.ID = fmt.Sprintf("offer-%03d", r.seq)
		}
		now := time.Now()
		counter.CreatedAt = now
		counter.UpdatedAt = now
		r.offers[counter.ID] = counter
		message.OfferID = counter.ID
	} else {
		message.OfferID = id
	}

	r.messages.mu.Lock()
	r.messages.insert(message)
	r.messages.mu.Unlock()
	return nil
}

func (r *fakeOfferRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Offer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Offer
	for _, offer := range r.offers {
		if offer.BuyerID == userID || offer.SellerID == userID {
			copied := *offer
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))

	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, total, nil
}

type fakeListingRepo struct {
	mu       sync.Mutex
	listings map[string]*entity.Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: make(map[string]*entity.Listing)}
}

func (r *fakeListingRepo) Create(ctx context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if listing.ID == "" {
		listing.ID = fmt.Sprintf("listing-%03d", len(r.listings)+1)
	}
	r.listings[listing.ID] = listing
	return nil
}

func (r *fakeListingRepo) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	copied := *listing
	return &copied, nil
}

func (r *fakeListingRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Listing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Listing
	for _, listing := range r.listings {
		match := true
		for field, value := range filter {
			switch field {
			case "status":
				match = match && listing.Status == value
			case "category":
				match = match && listing.Category == value
			}
		}
		if match {
			copied := *listing
			result = append(result, &copied)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeListingRepo) ListBySellerID(ctx context.Context, sellerID string, status string, limit, offset int) ([]*entity.Listing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Listing
	for _, listing := range r.listings {
		if listing.SellerID != sellerID {
			continue
		}
		if status != "" && listing.Status != status {
			continue
		}
		copied := *listing
		result = append(result, &copied)
	}
	return result, int64(len(result)), nil
}

func (r *fakeListingRepo) Update(ctx context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[listing.ID]; !ok {
		return errors.NotFound("Listing", nil)
	}
	r.listings[listing.ID] = listing
	return nil
}

func (r *fakeListingRepo) IncrementViews(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if listing, ok := r.listings[id]; ok {
		listing.Views++
	}
	return nil
}

func (r *fakeListingRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.listings, id)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUserByRole(ctx context.Context, role string, limit int) []*entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.User
	for _, user := range r.users {
		if user.Role == role {
			copied := *user
			result = append(result, &copied)
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result
}

type fakeAuthClient struct {
	emails map[string]string
}

func (c *fakeAuthClient) GetUserEmail(ctx context.Context, uid string) (string, error) {
	email, ok := c.emails[uid]
	if !ok {
		return "", errors.NotFound("User", nil)
	}
	return email, nil
}

type fakePaymentGateway struct {
	mu       sync.Mutex
	accounts map[string]*service.ConnectedAccount
	sessions []service.CheckoutSessionRequest
	seq      int
}

func newFakePaymentGateway() *fakePaymentGateway {
	return &fakePaymentGateway{accounts: make(map[string]*service.ConnectedAccount)}
}

func (g *fakePaymentGateway) CreateConnectedAccount(ctx context.Context, req service.ConnectedAccountRequest) (*service.ConnectedAccount, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	account := &service.ConnectedAccount{
		ID:    fmt.Sprintf("acct_%03d", g.seq),
		Email: req.Email,
	}
	g.accounts[account.ID] = account
	return account, nil
}

func (g *fakePaymentGateway) CreateOnboardingLink(ctx context.Context, accountID string) (*service.OnboardingLink, error) {
	return &service.OnboardingLink{URL: "https://connect.example.com/onboard/" + accountID}, nil
}

func (g *fakePaymentGateway) GetAccount(ctx context.Context, accountID string) (*service.ConnectedAccount, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	account, ok := g.accounts[accountID]
	if !ok {
		return nil, errors.NotFound("Account", nil)
	}
	return account, nil
}

func (g *fakePaymentGateway) CreateCheckoutSession(ctx context.Context, req service.CheckoutSessionRequest) (*service.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.sessions = append(g.sessions, req)
	return &service.CheckoutSession{
		ID:  fmt.Sprintf("cs_%03d", g.seq),
		URL: fmt.Sprintf("https://checkout.example.com/cs_%03d", g.seq),
	}, nil
}
