package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/marketplace/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Listing *apiHandler.ListingHandler
	Cart    *apiHandler.CartHandler
	Order   *apiHandler.OrderHandler
	User    *apiHandler.UserHandler
	Stats   *apiHandler.StatsHandler
	Health  *apiHandler.HealthHandler
}

// Middleware wraps a handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New wires every route. require rejects anonymous callers; optional only
// resolves the caller when a token is present.
func New(h Handlers, require, optional Middleware) *router.Router {
	r := router.New()

	r.GET("/health", h.Health.Check)

	api := r.Group("/api/v1")

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/logout", optional(h.Auth.Logout))
	api.POST("/auth/refresh", require(h.Auth.Refresh))
	api.GET("/auth/me", require(h.Auth.Me))

	api.GET("/listings", h.Listing.List)
	api.GET("/listings/{id}", h.Listing.Get)
	api.POST("/listings", require(h.Listing.Create))
	api.PUT("/listings/{id}", require(h.Listing.Update))
	api.DELETE("/listings/{id}", require(h.Listing.Delete))

	api.GET("/cart", require(h.Cart.Get))
	api.DELETE("/cart", require(h.Cart.Clear))
	api.POST("/cart/items", require(h.Cart.AddItem))
	api.PUT("/cart/items/{id}", require(h.Cart.UpdateItem))
	api.DELETE("/cart/items/{id}", require(h.Cart.RemoveItem))

	api.POST("/orders", require(h.Order.Create))
	api.GET("/orders", require(h.Order.List))
	api.GET("/orders/{id}", require(h.Order.Get))
	api.PUT("/orders/{id}/status", require(h.Order.UpdateStatus))
	api.GET("/orders/{id}/pickup-code", require(h.Order.PickupCode))

	api.GET("/users", require(h.User.List))
	api.PUT("/users/{id}", require(h.User.Update))
	api.PUT("/users/{id}/status", require(h.User.UpdateStatus))

	api.GET("/stats", require(h.Stats.Get))

	return r
}
