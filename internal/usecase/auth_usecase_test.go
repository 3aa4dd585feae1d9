package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unimarket/internal/domain/entity"
	"unimarket/internal/infrastructure/firebase"
	"unimarket/pkg/errors"
)

func newAuthUseCaseForTest() (*AuthUseCase, *fakeUserRepo, *fakeAuthClient) {
	userRepo := newFakeUserRepo()
	authClient := newFakeAuthClient()
	return NewAuthUseCase(userRepo, authClient), userRepo, authClient
}

func TestSignUpCreatesDefaultProfile(t *testing.T) {
	uc, userRepo, authClient := newAuthUseCaseForTest()

	result, err := uc.SignUp(context.Background(), SignUpInput{
		Email:       "asha@university.edu",
		Password:    "correct-horse",
		DisplayName: "Asha",
		Role:        entity.RoleStudent,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Profile)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "asha@university.edu", result.Profile.Email)
	assert.Equal(t, entity.RoleStudent, result.Profile.Role)
	assert.Equal(t, entity.InitialTrustScore, result.Profile.TrustScore)
	assert.Equal(t, 0, result.Profile.CompletedExchanges)
	assert.False(t, result.Profile.IsVerified)
	assert.Equal(t, 1, authClient.sentVerify)

	stored, err := userRepo.GetByID(context.Background(), result.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", stored.DisplayName)
}

func TestSignUpRejectsUnknownRole(t *testing.T) {
	uc, _, _ := newAuthUseCaseForTest()

	_, err := uc.SignUp(context.Background(), SignUpInput{
		Email:       "asha@university.edu",
		Password:    "correct-horse",
		DisplayName: "Asha",
		Role:        "admin",
	})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSignUpDuplicateEmail(t *testing.T) {
	uc, _, _ := newAuthUseCaseForTest()

	input := SignUpInput{
		Email:       "asha@university.edu",
		Password:    "correct-horse",
		DisplayName: "Asha",
		Role:        entity.RoleStudent,
	}
	_, err := uc.SignUp(context.Background(), input)
	require.NoError(t, err)

	_, err = uc.SignUp(context.Background(), input)
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestSignInReturnsProfileAndToken(t *testing.T) {
	uc, _, _ := newAuthUseCaseForTest()

	signedUp, err := uc.SignUp(context.Background(), SignUpInput{
		Email:       "asha@university.edu",
		Password:    "correct-horse",
		DisplayName: "Asha",
		Role:        entity.RoleStudent,
	})
	require.NoError(t, err)

	result, err := uc.SignIn(context.Background(), "asha@university.edu", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, signedUp.Profile.ID, result.Profile.ID)
	assert.NotEmpty(t, result.Token)
}

func TestSignInWrongPassword(t *testing.T) {
	uc, _, _ := newAuthUseCaseForTest()

	_, err := uc.SignUp(context.Background(), SignUpInput{
		Email:       "asha@university.edu",
		Password:    "correct-horse",
		DisplayName: "Asha",
		Role:        entity.RoleStudent,
	})
	require.NoError(t, err)

	_, err = uc.SignIn(context.Background(), "asha@university.edu", "wrong")
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
}

func TestGoogleSignInFirstTimeCreatesProfile(t *testing.T) {
	uc, userRepo, authClient := newAuthUseCaseForTest()

	token := authClient.addIdentity(&firebase.Identity{
		UID:           "google-1",
		Email:         "ravi@university.edu",
		DisplayName:   "Ravi",
		PhotoURL:      "https://example.com/ravi.png",
		EmailVerified: true,
	})

	result, err := uc.GoogleSignIn(context.Background(), token, "")
	require.NoError(t, err)

	assert.Equal(t, "google-1", result.Profile.ID)
	assert.Equal(t, entity.RoleStudent, result.Profile.Role)
	assert.Equal(t, entity.InitialTrustScore, result.Profile.TrustScore)
	assert.Equal(t, "https://example.com/ravi.png", result.Profile.PhotoURL)
	assert.True(t, result.Profile.IsVerified)

	_, err = userRepo.GetByID(context.Background(), "google-1")
	assert.NoError(t, err)
}

func TestGoogleSignInReturningUserKeepsProfile(t *testing.T) {
	uc, userRepo, authClient := newAuthUseCaseForTest()

	token := authClient.addIdentity(&firebase.Identity{
		UID:         "google-1",
		Email:       "ravi@university.edu",
		DisplayName: "Ravi",
	})
	_, err := uc.GoogleSignIn(context.Background(), token, entity.RoleProvider)
	require.NoError(t, err)

	// Mutate the stored profile; a second sign-in must not reset it.
	stored, err := userRepo.GetByID(context.Background(), "google-1")
	require.NoError(t, err)
	stored.TrustScore = 80

	result, err := uc.GoogleSignIn(context.Background(), token, "")
	require.NoError(t, err)
	assert.Equal(t, 80, result.Profile.TrustScore)
	assert.Equal(t, entity.RoleProvider, result.Profile.Role)
}

func TestGoogleSignInBadToken(t *testing.T) {
	uc, _, _ := newAuthUseCaseForTest()

	_, err := uc.GoogleSignIn(context.Background(), "token-nobody", "")
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
}

func TestResetPasswordSendsEmail(t *testing.T) {
	uc, _, authClient := newAuthUseCaseForTest()

	err := uc.ResetPassword(context.Background(), "asha@university.edu")
	require.NoError(t, err)
	assert.Equal(t, []string{"asha@university.edu"}, authClient.sentReset)
}

func TestUpdateProfileMergesFields(t *testing.T) {
	uc, _, authClient := newAuthUseCaseForTest()

	signedUp, err := uc.SignUp(context.Background(), SignUpInput{
		Email:       "asha@university.edu",
		Password:    "correct-horse",
		DisplayName: "Asha",
		Role:        entity.RoleStudent,
	})
	require.NoError(t, err)
	uid := signedUp.Profile.ID

	updated, err := uc.UpdateProfile(context.Background(), uid, UpdateProfileInput{
		DisplayName: "Asha K",
		Bio:         "Third-year economics",
		Preferences: &entity.Preferences{FoodPreference: "veg"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Asha K", updated.DisplayName)
	assert.Equal(t, "Third-year economics", updated.Bio)
	assert.Equal(t, "asha@university.edu", updated.Email)
	require.NotNil(t, updated.Preferences)
	assert.Equal(t, "veg", updated.Preferences.FoodPreference)

	// Display name changes propagate to the identity provider.
	assert.Equal(t, "Asha K", authClient.identities[uid].DisplayName)
}

func TestProviderErrorMessage(t *testing.T) {
	assert.Equal(t, "This email is already registered", ProviderErrorMessage("auth/email-already-in-use"))
	assert.Equal(t, "Sign-in was cancelled", ProviderErrorMessage("auth/popup-closed-by-user"))
	assert.Equal(t, "Sign-in failed. Please try again", ProviderErrorMessage("auth/some-new-code"))
}
