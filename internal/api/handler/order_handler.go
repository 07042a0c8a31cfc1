package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campus-market/trading-api/internal/api/metrics"
	"github.com/campus-market/trading-api/internal/core/domain"
	"github.com/campus-market/trading-api/internal/core/ports"
)

// OrderHandler exposes the order lifecycle engine over HTTP.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type createOrderRequest struct {
	ItemID        string `json:"item_id"        validate:"required"`
	SellerID      string `json:"seller_id"      validate:"required"`
	TradeMethod   string `json:"trade_method"   validate:"required,oneof=face-to-face campus"`
	TradeLocation string `json:"trade_location"`
}

type payOrderRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
	TransactionID string `json:"transaction_id"`
}

type setOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type rateOrderRequest struct {
	Score   int    `json:"score"   validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type orderResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
}

type ordersResponse struct {
	Success bool            `json:"success"`
	Orders  []*domain.Order `json:"orders"`
}

// Create handles POST /api/orders — a buyer initiates a purchase.
//
// @Summary      Create an order against a selling item
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOrderRequest  true  "Purchase details"
// @Success      201   {object}  orderResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	buyerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.service.Create(c.Request().Context(), ports.CreateOrderInput{
		ItemID:        req.ItemID,
		BuyerID:       buyerID,
		SellerID:      req.SellerID,
		TradeMethod:   req.TradeMethod,
		TradeLocation: req.TradeLocation,
	})
	if err != nil {
		return err
	}

	metrics.OrdersCreatedTotal.WithLabelValues(order.TradeMethod).Inc()
	return c.JSON(http.StatusCreated, orderResponse{Success: true, Order: order})
}

// Get handles GET /api/orders/:orderId.
//
// @Summary      Get an order by its order id
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        orderId  path      string  true  "Order id (e.g. ORD17259...)"
// @Success      200      {object}  orderResponse
// @Failure      404      {object}  errorResponse
// @Router       /api/orders/{orderId} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.service.Get(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderResponse{Success: true, Order: order})
}

// Pay handles POST /api/orders/:orderId/pay.
//
// @Summary      Record payment and move the order to pending_shipment
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orderId  path      string           true  "Order id"
// @Param        body     body      payOrderRequest  true  "Payment metadata"
// @Success      200      {object}  orderResponse
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /api/orders/{orderId}/pay [post]
func (h *OrderHandler) Pay(c echo.Context) error {
	var req payOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.service.Pay(c.Request().Context(), c.Param("orderId"), ports.PayInput{
		Method:        req.PaymentMethod,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		return err
	}

	metrics.OrderTransitionsTotal.WithLabelValues("pay").Inc()
	return c.JSON(http.StatusOK, orderResponse{Success: true, Order: order})
}

// Ship handles POST /api/orders/:orderId/ship.
//
// @Summary      Confirm dispatch and move the order to pending_receipt
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        orderId  path      string  true  "Order id"
// @Success      200      {object}  orderResponse
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /api/orders/{orderId}/ship [post]
func (h *OrderHandler) Ship(c echo.Context) error {
	order, err := h.service.Ship(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return err
	}

	metrics.OrderTransitionsTotal.WithLabelValues("ship").Inc()
	return c.JSON(http.StatusOK, orderResponse{Success: true, Order: order})
}

// Receive handles POST /api/orders/:orderId/receive.
//
// @Summary      Confirm receipt, complete the order and mark the item sold
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        orderId  path      string  true  "Order id"
// @Success      200      {object}  orderResponse
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /api/orders/{orderId}/receive [post]
func (h *OrderHandler) Receive(c echo.Context) error {
	order, err := h.service.Receive(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return err
	}

	metrics.OrderTransitionsTotal.WithLabelValues("receive").Inc()
	return c.JSON(http.StatusOK, orderResponse{Success: true, Order: order})
}

// Cancel handles POST /api/orders/:orderId/cancel.
//
// @Summary      Cancel the order and put the item back on sale
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        orderId  path      string  true  "Order id"
// @Success      200      {object}  orderResponse
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /api/orders/{orderId}/cancel [post]
func (h *OrderHandler) Cancel(c echo.Context) error {
	order, err := h.service.Cancel(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return err
	}

	metrics.OrderTransitionsTotal.WithLabelValues("cancel").Inc()
	return c.JSON(http.StatusOK, orderResponse{Success: true, Order: order})
}

// SetStatus handles PUT /api/orders/:orderId/status — the generic status
// write.
//
// @Summary      Set the order status directly
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orderId  path      string                 true  "Order id"
// @Param        body     body      setOrderStatusRequest  true  "Target status"
// @Success      200      {object}  orderResponse
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /api/orders/{orderId}/status [put]
func (h *OrderHandler) SetStatus(c echo.Context) error {
	var req setOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.service.SetStatus(c.Request().Context(), c.Param("orderId"), domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}

	metrics.OrderTransitionsTotal.WithLabelValues("set_status").Inc()
	return c.JSON(http.StatusOK, orderResponse{Success: true, Order: order})
}

// Rate handles POST /api/orders/:orderId/rate.
//
// @Summary      Leave a post-completion rating
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orderId  path      string            true  "Order id"
// @Param        body     body      rateOrderRequest  true  "Rating"
// @Success      200      {object}  orderResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /api/orders/{orderId}/rate [post]
func (h *OrderHandler) Rate(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req rateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.service.Rate(c.Request().Context(), c.Param("orderId"), userID, ports.RateInput{
		Score:   req.Score,
		Comment: req.Comment,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderResponse{Success: true, Order: order})
}

// ListForUser handles GET /api/orders/user/:userId.
//
// @Summary      List a user's orders as buyer or seller
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true   "User id"
// @Param        type    query     string  false  "buy | sell"
// @Param        status  query     string  false  "Order status"
// @Success      200     {object}  ordersResponse
// @Router       /api/orders/user/{userId} [get]
func (h *OrderHandler) ListForUser(c echo.Context) error {
	orders, err := h.service.ListForUser(c.Request().Context(), c.Param("userId"), ports.OrderListFilter{
		TradeType: c.QueryParam("type"),
		Status:    domain.OrderStatus(c.QueryParam("status")),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ordersResponse{Success: true, Orders: orders})
}
