package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/campus-market/trading-api/internal/api/metrics"
	"github.com/campus-market/trading-api/internal/core/domain"
	"github.com/campus-market/trading-api/internal/core/ports"
)

// ItemHandler handles HTTP requests for listings.
type ItemHandler struct {
	service ports.ItemService
}

func NewItemHandler(service ports.ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

type coordinatesRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type createItemRequest struct {
	Title         string              `json:"title"          validate:"required"`
	Description   string              `json:"description"    validate:"required"`
	Price         float64             `json:"price"          validate:"required,gt=0"`
	OriginalPrice float64             `json:"original_price" validate:"omitempty,gt=0"`
	Category      string              `json:"category"       validate:"required"`
	Tags          []string            `json:"tags"`
	Condition     string              `json:"condition"      validate:"required"`
	Images        []string            `json:"images"`
	Location      string              `json:"location"       validate:"required"`
	Coordinates   *coordinatesRequest `json:"coordinates"`
}

type updateItemRequest struct {
	Title         *string             `json:"title"`
	Description   *string             `json:"description"`
	Price         *float64            `json:"price"          validate:"omitempty,gt=0"`
	OriginalPrice *float64            `json:"original_price" validate:"omitempty,gt=0"`
	Category      *string             `json:"category"`
	Tags          []string            `json:"tags"`
	Condition     *string             `json:"condition"`
	Images        []string            `json:"images"`
	Location      *string             `json:"location"`
	Coordinates   *coordinatesRequest `json:"coordinates"`
}

type itemResponse struct {
	Success bool         `json:"success"`
	Item    *domain.Item `json:"item"`
}

type itemsResponse struct {
	Success bool           `json:"success"`
	Items   []*domain.Item `json:"items"`
}

// Create handles POST /api/items.
//
// @Summary      Publish a listing
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createItemRequest  true  "Listing details"
// @Success      201   {object}  itemResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := ports.CreateItemInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Category:      req.Category,
		Tags:          req.Tags,
		Condition:     req.Condition,
		Images:        req.Images,
		Location:      req.Location,
		SellerID:      userID,
	}
	if req.Coordinates != nil {
		input.Coordinates = &domain.Coordinates{Lat: req.Coordinates.Lat, Lng: req.Coordinates.Lng}
	}

	item, err := h.service.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}

	metrics.ItemsCreatedTotal.WithLabelValues(item.Category).Inc()
	return c.JSON(http.StatusCreated, itemResponse{Success: true, Item: item})
}

// List handles GET /api/items.
//
// @Summary      List all items, newest first
// @Tags         items
// @Produce      json
// @Success      200  {object}  itemsResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c echo.Context) error {
	items, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itemsResponse{Success: true, Items: items})
}

// Get handles GET /api/items/:id. Each call counts as one view.
//
// @Summary      Get item detail
// @Tags         items
// @Produce      json
// @Param        id  path      string  true  "Item id"
// @Success      200  {object}  itemResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) Get(c echo.Context) error {
	item, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itemResponse{Success: true, Item: item})
}

// Update handles PUT /api/items/:id (owner only).
//
// @Summary      Update a listing
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Item id"
// @Param        body  body      updateItemRequest  true  "Fields to change"
// @Success      200   {object}  itemResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/items/{id} [put]
func (h *ItemHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	patch := ports.ItemPatch{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Category:      req.Category,
		Tags:          req.Tags,
		Condition:     req.Condition,
		Images:        req.Images,
		Location:      req.Location,
	}
	if req.Coordinates != nil {
		patch.Coordinates = &domain.Coordinates{Lat: req.Coordinates.Lat, Lng: req.Coordinates.Lng}
	}

	item, err := h.service.Update(c.Request().Context(), c.Param("id"), patch, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itemResponse{Success: true, Item: item})
}

// Delete handles DELETE /api/items/:id (owner only).
//
// @Summary      Delete a listing
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Item id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "item deleted"})
}

// Search handles GET /api/items/search?keyword=.
//
// @Summary      Keyword search over title, description and tags
// @Tags         items
// @Produce      json
// @Param        keyword  query     string  true  "Search keyword"
// @Success      200      {object}  itemsResponse
// @Failure      400      {object}  errorResponse
// @Router       /api/items/search [get]
func (h *ItemHandler) Search(c echo.Context) error {
	items, err := h.service.Search(c.Request().Context(), c.QueryParam("keyword"))
	if err != nil {
		return err
	}
	metrics.ItemSearchesTotal.Inc()
	return c.JSON(http.StatusOK, itemsResponse{Success: true, Items: items})
}

// Filter handles GET /api/items/filter.
//
// @Summary      Filter items by category and price range
// @Tags         items
// @Produce      json
// @Param        category  query     string  false  "Category"
// @Param        minPrice  query     number  false  "Minimum price"
// @Param        maxPrice  query     number  false  "Maximum price"
// @Param        sortBy    query     string  false  "price-asc | price-desc | newest | popular"
// @Success      200       {object}  itemsResponse
// @Router       /api/items/filter [get]
func (h *ItemHandler) Filter(c echo.Context) error {
	filter := ports.ItemFilter{
		Category: c.QueryParam("category"),
		SortBy:   c.QueryParam("sortBy"),
	}
	if raw := c.QueryParam("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "minPrice must be a number")
		}
		filter.MinPrice = &v
	}
	if raw := c.QueryParam("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "maxPrice must be a number")
		}
		filter.MaxPrice = &v
	}

	items, err := h.service.Filter(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, itemsResponse{Success: true, Items: items})
}
