package handler

import (
	"github.com/labstack/echo/v4"

	"unimarket/internal/usecase"
	"unimarket/pkg/response"
	"unimarket/pkg/utils"
)

type ExchangeHandler struct {
	exchangeUseCase *usecase.ExchangeUseCase
}

func NewExchangeHandler(exchangeUseCase *usecase.ExchangeUseCase) *ExchangeHandler {
	return &ExchangeHandler{
		exchangeUseCase: exchangeUseCase,
	}
}

type createOfferRequest struct {
	Type   string  `json:"type" validate:"required,oneof=buy sell"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Rate   float64 `json:"rate" validate:"required,gt=0"`
}

type updateOfferStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active pending completed cancelled"`
}

func (h *ExchangeHandler) CreateOffer(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req createOfferRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	offer, err := h.exchangeUseCase.CreateOffer(c.Request().Context(), userID, usecase.CreateOfferInput{
		Type:   req.Type,
		Amount: req.Amount,
		Rate:   req.Rate,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, offer)
}

// ListOffers returns active offers, optionally filtered by type.
func (h *ExchangeHandler) ListOffers(c echo.Context) error {
	offers, err := h.exchangeUseCase.ListActiveOffers(c.Request().Context(), c.QueryParam("type"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, offers)
}

func (h *ExchangeHandler) MyOffers(c echo.Context) error {
	userID := c.Get("uid").(string)

	offers, err := h.exchangeUseCase.MyOffers(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c)
	start, end := pageBounds(len(offers), params)

	return response.Paginated(c, offers[start:end], int64(len(offers)), params.Page, params.PageSize)
}

func (h *ExchangeHandler) UpdateOfferStatus(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req updateOfferStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.exchangeUseCase.UpdateOfferStatus(c.Request().Context(), userID, c.Param("id"), req.Status); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": req.Status})
}

func (h *ExchangeHandler) DeleteOffer(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.exchangeUseCase.DeleteOffer(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Offer deleted"})
}
