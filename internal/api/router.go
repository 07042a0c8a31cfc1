package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campus-market/trading-api/internal/api/handler"
	"github.com/campus-market/trading-api/internal/api/middleware"
	"github.com/campus-market/trading-api/internal/core/ports"
	"github.com/campus-market/trading-api/internal/infrastructure/http/handlers"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Item    *handler.ItemHandler
	Order   *handler.OrderHandler
	Message *handler.MessageHandler
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(h Handlers, authService ports.AuthService, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("trading"))

	authGate := middleware.Auth(authService)

	// --- Auth ---
	auth := e.Group("/api/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)

	// --- Users (all auth-gated) ---
	users := e.Group("/api/users", authGate)
	users.GET("/profile", h.User.Profile)
	users.PUT("/profile", h.User.UpdateProfile)
	users.GET("/items", h.User.Items)
	users.GET("/orders", h.User.Orders)

	// --- Items ---
	// Static routes before :id so "search" and "filter" are not captured.
	items := e.Group("/api/items")
	items.GET("", h.Item.List)
	items.GET("/search", h.Item.Search)
	items.GET("/filter", h.Item.Filter)
	items.GET("/:id", h.Item.Get)
	items.POST("", h.Item.Create, authGate)
	items.PUT("/:id", h.Item.Update, authGate)
	items.DELETE("/:id", h.Item.Delete, authGate)

	// --- Orders (all auth-gated) ---
	orders := e.Group("/api/orders", authGate)
	orders.POST("", h.Order.Create)
	orders.GET("/user/:userId", h.Order.ListForUser)
	orders.GET("/:orderId", h.Order.Get)
	orders.PUT("/:orderId/status", h.Order.SetStatus)
	orders.POST("/:orderId/pay", h.Order.Pay)
	orders.POST("/:orderId/ship", h.Order.Ship)
	orders.POST("/:orderId/receive", h.Order.Receive)
	orders.POST("/:orderId/cancel", h.Order.Cancel)
	orders.POST("/:orderId/rate", h.Order.Rate)

	// --- Messages (all auth-gated) ---
	messages := e.Group("/api/messages", authGate)
	messages.POST("", h.Message.Send)
	messages.GET("/conversations", h.Message.ListConversations)
	messages.GET("/conversation/:conversationId", h.Message.ListConversation)
	messages.PUT("/:messageId/read", h.Message.MarkRead)
	messages.DELETE("/:messageId", h.Message.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
