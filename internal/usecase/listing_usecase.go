package usecase

import (
	"context"
	"log"
	"time"

	"toolmart/internal/domain/entity"
	"toolmart/internal/domain/repository"
	"toolmart/pkg/errors"
)

type ListingUseCase struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
}

func NewListingUseCase(listingRepo repository.ListingRepository, userRepo repository.UserRepository) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: listingRepo,
		userRepo:    userRepo,
	}
}

type CreateListingInput struct {
	Title       string
	Description string
	Category    string
	Price       float64
	ImageURL    string
	DemoURL     string
}

var listingCategories = map[string]bool{
	"agent":       true,
	"prompt-pack": true,
	"model":       true,
	"plugin":      true,
	"dataset":     true,
}

func (uc *ListingUseCase) CreateListing(ctx context.Context, sellerID string, input CreateListingInput) (*entity.Listing, error) {
	if _, err := uc.userRepo.GetByID(ctx, sellerID); err != nil {
		return nil, errors.BadRequest("Invalid seller", err)
	}

	if !listingCategories[input.Category] {
		return nil, errors.BadRequest("Invalid listing category", nil)
	}

	if input.Price <= 0 {
		return nil, errors.Validation("Listing price must be greater than zero", nil)
	}

	listing := &entity.Listing{
		SellerID:    sellerID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		DemoURL:     input.DemoURL,
		Status:      entity.ListingStatusActive,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

func (uc *ListingUseCase) GetListing(ctx context.Context, id string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.listingRepo.IncrementViews(ctx, id); err != nil {
		log.Printf("Failed to increment views for listing %s: %v", id, err)
	}

	return listing, nil
}

func (uc *ListingUseCase) ListListings(ctx context.Context, category, status string, limit, offset int) ([]*entity.Listing, int64, error) {
	filter := map[string]interface{}{}
	if category != "" {
		filter["category"] = category
	}
	if status == "" {
		status = entity.ListingStatusActive
	}
	filter["status"] = status

	return uc.listingRepo.List(ctx, filter, limit, offset)
}

func (uc *ListingUseCase) ListSellerListings(ctx context.Context, sellerID, status string, limit, offset int) ([]*entity.Listing, int64, error) {
	return uc.listingRepo.ListBySellerID(ctx, sellerID, status, limit, offset)
}

// SetStatus changes a listing's lifecycle status. Sellers may manage their
// own listings; admins may suspend anyone's.
func (uc *ListingUseCase) SetStatus(ctx context.Context, callerID, listingID, newStatus string) (*entity.Listing, error) {
	if newStatus != entity.ListingStatusActive &&
		newStatus != entity.ListingStatusSold &&
		newStatus != entity.ListingStatusSuspended {
		return nil, errors.BadRequest("Invalid listing status", nil)
	}

	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if listing.SellerID != callerID {
		caller, err := uc.userRepo.GetByID(ctx, callerID)
		if err != nil {
			return nil, errors.Forbidden("You cannot modify this listing", err)
		}
		if caller.Role != "admin" {
			return nil, errors.Forbidden("You cannot modify this listing", nil)
		}
	}

	listing.Status = newStatus
	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}
