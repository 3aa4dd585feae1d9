package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"unimarket/internal/domain/repository"
	"unimarket/internal/usecase"
	"unimarket/pkg/response"
	"unimarket/pkg/utils"
)

type RoomHandler struct {
	roomUseCase *usecase.RoomUseCase
}

func NewRoomHandler(roomUseCase *usecase.RoomUseCase) *RoomHandler {
	return &RoomHandler{
		roomUseCase: roomUseCase,
	}
}

type createListingRequest struct {
	Area           string   `json:"area" validate:"required"`
	Rent           float64  `json:"rent" validate:"required,gt=0"`
	Type           string   `json:"type" validate:"required"`
	Gender         string   `json:"gender" validate:"required"`
	FoodPreference string   `json:"food_preference"`
	MoveIn         string   `json:"move_in"`
	Tags           []string `json:"tags"`
	Description    string   `json:"description"`
	Images         []string `json:"images"`
}

type updateListingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active rented cancelled"`
}

func (h *RoomHandler) CreateListing(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	listing, err := h.roomUseCase.CreateListing(c.Request().Context(), userID, usecase.CreateListingInput{
		Area:           req.Area,
		Rent:           req.Rent,
		Type:           req.Type,
		Gender:         req.Gender,
		FoodPreference: req.FoodPreference,
		MoveIn:         req.MoveIn,
		Tags:           req.Tags,
		Description:    req.Description,
		Images:         req.Images,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, listing)
}

// ListListings returns active listings matched against the query filters.
// Rent bounds and gender are applied client-side after the status query.
func (h *RoomHandler) ListListings(c echo.Context) error {
	listings, err := h.roomUseCase.ListActiveListings(c.Request().Context(), roomFilterFromQuery(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listings)
}

func (h *RoomHandler) MyListings(c echo.Context) error {
	userID := c.Get("uid").(string)

	listings, err := h.roomUseCase.MyListings(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c)
	start, end := pageBounds(len(listings), params)

	return response.Paginated(c, listings[start:end], int64(len(listings)), params.Page, params.PageSize)
}

func (h *RoomHandler) UpdateListingStatus(c echo.Context) error {
	userID := c.Get("uid").(string)

	var req updateListingStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.roomUseCase.UpdateListingStatus(c.Request().Context(), userID, c.Param("id"), req.Status); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": req.Status})
}

func (h *RoomHandler) DeleteListing(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.roomUseCase.DeleteListing(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Listing deleted"})
}

func roomFilterFromQuery(c echo.Context) repository.RoomFilter {
	filter := repository.RoomFilter{
		Area:     c.QueryParam("area"),
		Gender:   c.QueryParam("gender"),
		RoomType: c.QueryParam("type"),
	}
	if v, err := strconv.ParseFloat(c.QueryParam("min_price"), 64); err == nil {
		filter.MinRent = v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("max_price"), 64); err == nil {
		filter.MaxRent = v
	}
	return filter
}
