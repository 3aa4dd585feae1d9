package usecase

import (
	"context"

	"unimarket/internal/infrastructure/firebase"
)

// AuthClient is the identity provider surface the use cases need. The
// concrete implementation lives in internal/infrastructure/firebase.
type AuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyIDToken(ctx context.Context, idToken string) (*firebase.Identity, error)
	UpdateDisplayName(ctx context.Context, uid, displayName string) error
	SignInWithEmailPassword(ctx context.Context, email, password string) (string, error)
	SendVerificationEmail(ctx context.Context, idToken string) error
	SendPasswordResetEmail(ctx context.Context, email string) error
}
