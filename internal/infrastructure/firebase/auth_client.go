package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"

	"unimarket/pkg/errors"
)

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// Identity is the authenticated-user view returned by the provider.
type Identity struct {
	UID           string
	Email         string
	DisplayName   string
	PhotoURL      string
	EmailVerified bool
}

// AuthClient wraps the Firebase Admin SDK plus the Identity Toolkit REST API
// for the operations the admin SDK does not expose (password sign-in, OOB
// emails).
type AuthClient struct {
	client     *auth.Client
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewAuthClient(client *auth.Client, apiKey string) *AuthClient {
	return &AuthClient{
		client:     client,
		apiKey:     apiKey,
		baseURL:    identityToolkitURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *AuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", errors.Conflict("This email is already registered", err)
		}
		return "", err
	}

	return user.UID, nil
}

func (f *AuthClient) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	identity := &Identity{UID: token.UID}
	if v, ok := token.Claims["email"].(string); ok {
		identity.Email = v
	}
	if v, ok := token.Claims["name"].(string); ok {
		identity.DisplayName = v
	}
	if v, ok := token.Claims["picture"].(string); ok {
		identity.PhotoURL = v
	}
	if v, ok := token.Claims["email_verified"].(bool); ok {
		identity.EmailVerified = v
	}

	return identity, nil
}

func (f *AuthClient) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	params := (&auth.UserToUpdate{}).DisplayName(displayName)

	_, err := f.client.UpdateUser(ctx, uid, params)
	return err
}

// SignInWithEmailPassword exchanges credentials for an ID token via the
// Identity Toolkit REST API; the admin SDK has no password sign-in.
func (f *AuthClient) SignInWithEmailPassword(ctx context.Context, email, password string) (string, error) {
	body := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	var result struct {
		IDToken string `json:"idToken"`
	}
	if err := f.post(ctx, "accounts:signInWithPassword", body, &result); err != nil {
		return "", err
	}

	return result.IDToken, nil
}

// SendVerificationEmail triggers the provider's verification email for the
// user holding idToken.
func (f *AuthClient) SendVerificationEmail(ctx context.Context, idToken string) error {
	body := map[string]interface{}{
		"requestType": "VERIFY_EMAIL",
		"idToken":     idToken,
	}
	return f.post(ctx, "accounts:sendOobCode", body, nil)
}

// SendPasswordResetEmail triggers the provider's password reset email.
func (f *AuthClient) SendPasswordResetEmail(ctx context.Context, email string) error {
	body := map[string]interface{}{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}
	return f.post(ctx, "accounts:sendOobCode", body, nil)
}

func (f *AuthClient) post(ctx context.Context, endpoint string, body map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Internal("Failed to encode auth request", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", f.baseURL, endpoint, f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Internal("Failed to build auth request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return errors.Internal("Authentication provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return errors.Internal("Authentication provider error", err)
		}
		return mapProviderError(errResp.Error.Message)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Internal("Failed to decode auth response", err)
		}
	}

	return nil
}

// mapProviderError turns the Identity Toolkit error codes the app cares about
// into user-facing messages; everything else passes through as a generic
// provider error.
func mapProviderError(code string) error {
	switch code {
	case "EMAIL_EXISTS":
		return errors.Conflict("This email is already registered", nil)
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return errors.Unauthorized("Invalid email or password", nil)
	case "USER_DISABLED":
		return errors.Forbidden("This account has been disabled", nil)
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return errors.TooManyRequests("Too many attempts. Please try again later")
	default:
		return errors.Internal("Authentication provider error: "+code, nil)
	}
}
