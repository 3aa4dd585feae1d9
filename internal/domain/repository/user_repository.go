package repository

import (
	"context"

	"unimarket/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.UserProfile) error
	GetByID(ctx context.Context, id string) (*entity.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error)
	// Update merges non-empty fields onto the profile document.
	Update(ctx context.Context, user *entity.UserProfile) error
}
