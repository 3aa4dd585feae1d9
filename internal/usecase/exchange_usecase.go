package usecase

import (
	"context"

	"unimarket/internal/domain/entity"
	"unimarket/internal/domain/repository"
	"unimarket/internal/infrastructure/ratelimit"
	"unimarket/pkg/errors"
)

// activeOffersLimit caps every active-offers fetch and subscription.
const activeOffersLimit = 50

type ExchangeUseCase struct {
	offerRepo   repository.OfferRepository
	userRepo    repository.UserRepository
	rateLimiter *ratelimit.RateLimiter
}

func NewExchangeUseCase(offerRepo repository.OfferRepository, userRepo repository.UserRepository, rateLimiter *ratelimit.RateLimiter) *ExchangeUseCase {
	return &ExchangeUseCase{
		offerRepo:   offerRepo,
		userRepo:    userRepo,
		rateLimiter: rateLimiter,
	}
}

type CreateOfferInput struct {
	Type   string
	Amount float64
	Rate   float64
}

// CreateOffer writes a new active offer with the owner's display fields
// denormalized from their profile.
func (uc *ExchangeUseCase) CreateOffer(ctx context.Context, userID string, input CreateOfferInput) (*entity.ExchangeOffer, error) {
	if allowed, _ := uc.rateLimiter.Allow(userID, "create_offer"); !allowed {
		return nil, errors.TooManyRequests("You are creating offers too quickly. Please wait a moment")
	}

	if input.Type != entity.OfferTypeBuy && input.Type != entity.OfferTypeSell {
		return nil, errors.BadRequest("Offer type must be buy or sell", nil)
	}
	if input.Amount <= 0 || input.Rate <= 0 {
		return nil, errors.BadRequest("Amount and rate must be positive", nil)
	}

	profile, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	offer := &entity.ExchangeOffer{
		UserID:          userID,
		UserDisplayName: profile.DisplayName,
		UserAvatar:      profile.PhotoURL,
		UserTrustScore:  profile.TrustScore,
		Type:            input.Type,
		Amount:          input.Amount,
		Rate:            input.Rate,
		Status:          entity.OfferStatusActive,
		CompletedTrades: profile.CompletedExchanges,
	}

	if err := uc.offerRepo.Create(ctx, offer); err != nil {
		return nil, err
	}

	return offer, nil
}

func (uc *ExchangeUseCase) ListActiveOffers(ctx context.Context, offerType string) ([]*entity.ExchangeOffer, error) {
	if offerType != "" && offerType != entity.OfferTypeBuy && offerType != entity.OfferTypeSell {
		return nil, errors.BadRequest("Offer type must be buy or sell", nil)
	}
	return uc.offerRepo.ListActive(ctx, offerType, activeOffersLimit)
}

func (uc *ExchangeUseCase) MyOffers(ctx context.Context, userID string) ([]*entity.ExchangeOffer, error) {
	return uc.offerRepo.ListByUserID(ctx, userID)
}

// UpdateOfferStatus writes a new status. Transitions are a documented
// contract, not enforced here beyond value validation.
func (uc *ExchangeUseCase) UpdateOfferStatus(ctx context.Context, userID, offerID, status string) error {
	if !entity.ValidOfferStatus(status) {
		return errors.BadRequest("Invalid offer status", nil)
	}

	offer, err := uc.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.UserID != userID {
		return errors.Forbidden("You can only update your own offers", nil)
	}

	return uc.offerRepo.UpdateStatus(ctx, offerID, status)
}

func (uc *ExchangeUseCase) DeleteOffer(ctx context.Context, userID, offerID string) error {
	offer, err := uc.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.UserID != userID {
		return errors.Forbidden("You can only delete your own offers", nil)
	}

	return uc.offerRepo.Delete(ctx, offerID)
}

// SubscribeActiveOffers opens a live feed of active offers. The caller owns
// the returned cancel handle.
func (uc *ExchangeUseCase) SubscribeActiveOffers(ctx context.Context, offerType string, fn func([]*entity.ExchangeOffer)) (repository.CancelFunc, error) {
	if offerType != "" && offerType != entity.OfferTypeBuy && offerType != entity.OfferTypeSell {
		return nil, errors.BadRequest("Offer type must be buy or sell", nil)
	}
	return uc.offerRepo.SubscribeActive(ctx, offerType, activeOffersLimit, fn)
}
