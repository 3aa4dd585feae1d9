package repository

import (
	"context"

	"unimarket/internal/domain/entity"
)

// RoomFilter holds attributes that are not indexed server-side; they are
// applied client-side after the status query.
type RoomFilter struct {
	Area     string
	MinRent  float64
	MaxRent  float64
	Gender   string
	RoomType string
}

type RoomRepository interface {
	Create(ctx context.Context, listing *entity.RoomListing) error
	GetByID(ctx context.Context, id string) (*entity.RoomListing, error)
	ListActive(ctx context.Context, filter RoomFilter, limit int) ([]*entity.RoomListing, error)
	ListByUserID(ctx context.Context, userID string) ([]*entity.RoomListing, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	SubscribeActive(ctx context.Context, filter RoomFilter, limit int, fn func([]*entity.RoomListing)) (CancelFunc, error)
}
