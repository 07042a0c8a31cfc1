package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campus-market/trading-api/internal/core/domain"
	"github.com/campus-market/trading-api/internal/core/ports"
)

// UserHandler handles profile endpoints for the authenticated user.
type UserHandler struct {
	userService  ports.UserService
	itemService  ports.ItemService
	orderService ports.OrderService
}

func NewUserHandler(userService ports.UserService, itemService ports.ItemService, orderService ports.OrderService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		itemService:  itemService,
		orderService: orderService,
	}
}

type updateProfileRequest struct {
	Name      *string  `json:"name"`
	Avatar    *string  `json:"avatar"`
	Bio       *string  `json:"bio"`
	Location  *string  `json:"location"`
	Phone     *string  `json:"phone"`
	Interests []string `json:"interests"`
}

type profileResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
}

// Profile handles GET /api/users/profile.
//
// @Summary      Get the caller's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.userService.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Success: true, User: user})
}

// UpdateProfile handles PUT /api/users/profile.
//
// @Summary      Update the caller's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  profileResponse
// @Router       /api/users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), userID, ports.ProfilePatch{
		Name:      req.Name,
		Avatar:    req.Avatar,
		Bio:       req.Bio,
		Location:  req.Location,
		Phone:     req.Phone,
		Interests: req.Interests,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Success: true, User: user})
}

// Items handles GET /api/users/items — listings published by the caller.
//
// @Summary      List the caller's own listings
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  itemsResponse
// @Router       /api/users/items [get]
func (h *UserHandler) Items(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	items, err := h.itemService.ListBySeller(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itemsResponse{Success: true, Items: items})
}

// Orders handles GET /api/users/orders — the caller's order history.
//
// @Summary      List the caller's orders
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        type    query     string  false  "buy | sell"
// @Param        status  query     string  false  "Order status"
// @Success      200     {object}  ordersResponse
// @Router       /api/users/orders [get]
func (h *UserHandler) Orders(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.ListForUser(c.Request().Context(), userID, ports.OrderListFilter{
		TradeType: c.QueryParam("type"),
		Status:    domain.OrderStatus(c.QueryParam("status")),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ordersResponse{Success: true, Orders: orders})
}
