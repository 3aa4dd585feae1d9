package handler

import (
	"github.com/labstack/echo/v4"

	"unimarket/internal/domain/entity"
	"unimarket/internal/usecase"
	"unimarket/pkg/response"
)

type UserHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewUserHandler(authUseCase *usecase.AuthUseCase) *UserHandler {
	return &UserHandler{
		authUseCase: authUseCase,
	}
}

type updateProfileRequest struct {
	DisplayName string              `json:"display_name" validate:"omitempty,min=2"`
	PhotoURL    string              `json:"photo_url" validate:"omitempty,url"`
	Bio         string              `json:"bio" validate:"omitempty,max=500"`
	University  string              `json:"university" validate:"omitempty,max=120"`
	Preferences *entity.Preferences `json:"preferences"`
}

func (h *UserHandler) GetMe(c echo.Context) error {
	uid := c.Get("uid").(string)

	profile, err := h.authUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	profile, err := h.authUseCase.UpdateProfile(c.Request().Context(), uid, usecase.UpdateProfileInput{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Bio:         req.Bio,
		University:  req.University,
		Preferences: req.Preferences,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *UserHandler) GetByID(c echo.Context) error {
	profile, err := h.authUseCase.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}
