package repository

import (
	"context"

	"unimarket/internal/domain/entity"
)

type OfferRepository interface {
	Create(ctx context.Context, offer *entity.ExchangeOffer) error
	GetByID(ctx context.Context, id string) (*entity.ExchangeOffer, error)
	// ListActive returns active offers newest first, optionally restricted to
	// one offer type ("buy" or "sell"; empty means both).
	ListActive(ctx context.Context, offerType string, limit int) ([]*entity.ExchangeOffer, error)
	ListByUserID(ctx context.Context, userID string) ([]*entity.ExchangeOffer, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	// SubscribeActive invokes fn with the full current result set of
	// ListActive on every change until the returned handle is cancelled.
	SubscribeActive(ctx context.Context, offerType string, limit int, fn func([]*entity.ExchangeOffer)) (CancelFunc, error)
}
