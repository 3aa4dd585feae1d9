package usecase

import (
	"context"

	"unimarket/internal/domain/entity"
	"unimarket/internal/domain/repository"
	"unimarket/internal/infrastructure/ratelimit"
	"unimarket/pkg/errors"
)

const activeListingsLimit = 100

type RoomUseCase struct {
	roomRepo    repository.RoomRepository
	userRepo    repository.UserRepository
	rateLimiter *ratelimit.RateLimiter
}

func NewRoomUseCase(roomRepo repository.RoomRepository, userRepo repository.UserRepository, rateLimiter *ratelimit.RateLimiter) *RoomUseCase {
	return &RoomUseCase{
		roomRepo:    roomRepo,
		userRepo:    userRepo,
		rateLimiter: rateLimiter,
	}
}

type CreateListingInput struct {
	Area           string
	Rent           float64
	Type           string
	Gender         string
	FoodPreference string
	MoveIn         string
	Tags           []string
	Description    string
	Images         []string
}

func validRoomType(t string) bool {
	switch t {
	case entity.RoomTypeSingle, entity.RoomTypeDouble, entity.RoomTypeStudio, entity.RoomTypeShared:
		return true
	}
	return false
}

func validGender(g string) bool {
	switch g {
	case entity.GenderAny, entity.GenderMaleOnly, entity.GenderFemaleOnly:
		return true
	}
	return false
}

func (uc *RoomUseCase) CreateListing(ctx context.Context, userID string, input CreateListingInput) (*entity.RoomListing, error) {
	if allowed, _ := uc.rateLimiter.Allow(userID, "create_listing"); !allowed {
		return nil, errors.TooManyRequests("You are creating listings too quickly. Please wait a moment")
	}

	if !validRoomType(input.Type) {
		return nil, errors.BadRequest("Invalid room type", nil)
	}
	if !validGender(input.Gender) {
		return nil, errors.BadRequest("Invalid gender preference", nil)
	}
	if input.Rent <= 0 {
		return nil, errors.BadRequest("Rent must be positive", nil)
	}

	profile, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	listing := &entity.RoomListing{
		UserID:          userID,
		UserDisplayName: profile.DisplayName,
		UserAvatar:      profile.PhotoURL,
		UserTrustScore:  profile.TrustScore,
		Area:            input.Area,
		Rent:            input.Rent,
		Type:            input.Type,
		Gender:          input.Gender,
		FoodPreference:  input.FoodPreference,
		MoveIn:          input.MoveIn,
		Tags:            input.Tags,
		Description:     input.Description,
		Images:          input.Images,
		Status:          entity.RoomStatusActive,
	}

	if err := uc.roomRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

// ListActiveListings fetches active listings and applies the non-indexed
// filters client-side. An out-of-range price filter yields an empty set, not
// an error.
func (uc *RoomUseCase) ListActiveListings(ctx context.Context, filter repository.RoomFilter) ([]*entity.RoomListing, error) {
	return uc.roomRepo.ListActive(ctx, filter, activeListingsLimit)
}

func (uc *RoomUseCase) MyListings(ctx context.Context, userID string) ([]*entity.RoomListing, error) {
	return uc.roomRepo.ListByUserID(ctx, userID)
}

func (uc *RoomUseCase) UpdateListingStatus(ctx context.Context, userID, listingID, status string) error {
	if !entity.ValidRoomStatus(status) {
		return errors.BadRequest("Invalid listing status", nil)
	}

	listing, err := uc.roomRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.UserID != userID {
		return errors.Forbidden("You can only update your own listings", nil)
	}

	return uc.roomRepo.UpdateStatus(ctx, listingID, status)
}

func (uc *RoomUseCase) DeleteListing(ctx context.Context, userID, listingID string) error {
	listing, err := uc.roomRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.UserID != userID {
		return errors.Forbidden("You can only delete your own listings", nil)
	}

	return uc.roomRepo.Delete(ctx, listingID)
}

func (uc *RoomUseCase) SubscribeActiveListings(ctx context.Context, filter repository.RoomFilter, fn func([]*entity.RoomListing)) (repository.CancelFunc, error) {
	return uc.roomRepo.SubscribeActive(ctx, filter, activeListingsLimit, fn)
}
