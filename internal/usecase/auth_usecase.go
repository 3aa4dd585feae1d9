package usecase

import (
	"context"

	"unimarket/internal/domain/entity"
	"unimarket/internal/domain/repository"
	"unimarket/pkg/errors"
	"unimarket/pkg/logger"
)

// AuthUseCase binds identity provider accounts to profile documents: every
// authenticated user gets exactly one profile keyed by their uid.
type AuthUseCase struct {
	userRepo   repository.UserRepository
	authClient AuthClient
}

func NewAuthUseCase(userRepo repository.UserRepository, authClient AuthClient) *AuthUseCase {
	return &AuthUseCase{
		userRepo:   userRepo,
		authClient: authClient,
	}
}

type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
}

type AuthResult struct {
	Profile *entity.UserProfile `json:"profile"`
	Token   string              `json:"token"`
}

type UpdateProfileInput struct {
	DisplayName string
	PhotoURL    string
	Bio         string
	University  string
	Preferences *entity.Preferences
}

func defaultProfile(uid, email, displayName, role, photoURL string) *entity.UserProfile {
	return &entity.UserProfile{
		ID:                 uid,
		Email:              email,
		DisplayName:        displayName,
		Role:               role,
		PhotoURL:           photoURL,
		TrustScore:         entity.InitialTrustScore,
		CompletedExchanges: 0,
		ReviewCount:        0,
		IsVerified:         false,
	}
}

// SignUp creates the provider account, triggers the verification email and
// writes the default profile document.
func (uc *AuthUseCase) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	if !entity.ValidRole(input.Role) {
		return nil, errors.BadRequest("Role must be student or provider", nil)
	}

	uid, err := uc.authClient.CreateUser(ctx, input.Email, input.Password, input.DisplayName)
	if err != nil {
		return nil, err
	}

	token, err := uc.authClient.SignInWithEmailPassword(ctx, input.Email, input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to sign in new account", err)
	}

	if err := uc.authClient.SendVerificationEmail(ctx, token); err != nil {
		// Account and profile still stand; the user can request a resend.
		logger.Warn("Verification email for %s failed: %v", uid, err)
	}

	profile := defaultProfile(uid, input.Email, input.DisplayName, input.Role, "")
	if err := uc.userRepo.Create(ctx, profile); err != nil {
		return nil, errors.Internal("Failed to create user profile", err)
	}

	return &AuthResult{
		Profile: profile,
		Token:   token,
	}, nil
}

func (uc *AuthUseCase) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	token, err := uc.authClient.SignInWithEmailPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	identity, err := uc.authClient.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, errors.Internal("Failed to verify token", err)
	}

	profile, err := uc.userRepo.GetByID(ctx, identity.UID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Profile: profile,
		Token:   token,
	}, nil
}

// GoogleSignIn verifies a provider-issued ID token. First sign-in creates a
// profile from the provider's display name and photo plus the caller-supplied
// role; later sign-ins load the existing profile.
func (uc *AuthUseCase) GoogleSignIn(ctx context.Context, idToken, role string) (*AuthResult, error) {
	identity, err := uc.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	profile, err := uc.userRepo.GetByID(ctx, identity.UID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}

		if role == "" {
			role = entity.RoleStudent
		}
		if !entity.ValidRole(role) {
			return nil, errors.BadRequest("Role must be student or provider", nil)
		}

		profile = defaultProfile(identity.UID, identity.Email, identity.DisplayName, role, identity.PhotoURL)
		profile.IsVerified = identity.EmailVerified
		if err := uc.userRepo.Create(ctx, profile); err != nil {
			return nil, errors.Internal("Failed to create user profile", err)
		}
	}

	return &AuthResult{
		Profile: profile,
		Token:   idToken,
	}, nil
}

func (uc *AuthUseCase) ResetPassword(ctx context.Context, email string) error {
	return uc.authClient.SendPasswordResetEmail(ctx, email)
}

func (uc *AuthUseCase) ResendVerificationEmail(ctx context.Context, idToken string) error {
	return uc.authClient.SendVerificationEmail(ctx, idToken)
}

func (uc *AuthUseCase) GetProfile(ctx context.Context, uid string) (*entity.UserProfile, error) {
	return uc.userRepo.GetByID(ctx, uid)
}

func (uc *AuthUseCase) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*entity.UserProfile, error) {
	profile, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != "" && input.DisplayName != profile.DisplayName {
		if err := uc.authClient.UpdateDisplayName(ctx, uid, input.DisplayName); err != nil {
			return nil, errors.Internal("Failed to update display name", err)
		}
		profile.DisplayName = input.DisplayName
	}
	if input.PhotoURL != "" {
		profile.PhotoURL = input.PhotoURL
	}
	if input.Bio != "" {
		profile.Bio = input.Bio
	}
	if input.University != "" {
		profile.University = input.University
	}
	if input.Preferences != nil {
		profile.Preferences = input.Preferences
	}

	if err := uc.userRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// ProviderErrorMessage maps client-reported provider error codes to the
// user-facing messages shown for them. Unrecognized codes get a generic
// message.
func ProviderErrorMessage(code string) string {
	switch code {
	case "auth/email-already-in-use":
		return "This email is already registered"
	case "auth/invalid-credential", "auth/wrong-password", "auth/user-not-found":
		return "Invalid email or password"
	case "auth/popup-blocked":
		return "Sign-in popup was blocked by the browser. Please allow popups and try again"
	case "auth/popup-closed-by-user":
		return "Sign-in was cancelled"
	default:
		return "Sign-in failed. Please try again"
	}
}
