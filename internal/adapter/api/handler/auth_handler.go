package handler

import (
	"github.com/labstack/echo/v4"

	"unimarket/internal/usecase"
	"unimarket/pkg/errors"
	"unimarket/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type signUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required,min=2"`
	Role        string `json:"role" validate:"required,oneof=student provider"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleSignInRequest struct {
	IDToken string `json:"id_token"`
	Role    string `json:"role" validate:"omitempty,oneof=student provider"`
	// ErrorCode carries a provider error the client hit before reaching us,
	// e.g. a blocked or dismissed sign-in popup.
	ErrorCode string `json:"error_code"`
}

type resetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.SignUp(c.Request().Context(), usecase.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *AuthHandler) GoogleSignIn(c echo.Context) error {
	var req googleSignInRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if req.ErrorCode != "" {
		return response.Error(c, errors.BadRequest(usecase.ProviderErrorMessage(req.ErrorCode), nil))
	}
	if req.IDToken == "" {
		return response.Error(c, errors.BadRequest("id_token is required", nil))
	}

	result, err := h.authUseCase.GoogleSignIn(c.Request().Context(), req.IDToken, req.Role)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.authUseCase.ResetPassword(c.Request().Context(), req.Email); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Password reset email sent"})
}

func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req struct {
		IDToken string `json:"id_token" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.authUseCase.ResendVerificationEmail(c.Request().Context(), req.IDToken); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Verification email sent"})
}
