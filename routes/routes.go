package routes

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"recipebook/auth"
	"recipebook/cart"
	"recipebook/middleware"
	"recipebook/orderfeed"
	"recipebook/orders"
	"recipebook/ratelim"
	"recipebook/recipes"
)

// Handlers bundles everything the router dispatches to.
type Handlers struct {
	Auth      *auth.Handler
	Recipes   *recipes.Handler
	Cart      *cart.Handler
	Orders    *orders.Handler
	Feed      *orderfeed.Hub
	Session   *middleware.Auth
	UploadDir string
}

// Health is a liveness check.
func Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func AddStaticRoutes(router *httprouter.Router, h Handlers) {
	router.ServeFiles("/uploads/*filepath", http.Dir(h.UploadDir))
}

func AddAuthRoutes(router *httprouter.Router, h Handlers, rateLimiter *ratelim.RateLimiter) {
	router.GET("/login", h.Session.OptionalAuth(h.Auth.LoginForm))
	router.GET("/register", h.Session.OptionalAuth(h.Auth.RegisterForm))
	router.POST("/login", rateLimiter.Limit(h.Auth.Login))
	router.POST("/register", rateLimiter.Limit(h.Auth.Register))
	router.GET("/logout", h.Session.OptionalAuth(h.Auth.Logout))
}

func AddRecipeRoutes(router *httprouter.Router, h Handlers) {
	router.GET("/", h.Session.OptionalAuth(h.Recipes.Index))
	router.GET("/recipe/:id", h.Session.OptionalAuth(h.Recipes.Get))
	router.GET("/add-recipe", h.Session.OptionalAuth(h.Recipes.AddForm))
	router.POST("/add-recipe", h.Session.Authenticate(h.Recipes.Create))
}

func AddCartRoutes(router *httprouter.Router, h Handlers) {
	router.POST("/add-to-cart/:recipeId", h.Session.Authenticate(h.Cart.AddToCart))
	router.GET("/cart", h.Session.Authenticate(h.Cart.ViewCart))
	router.POST("/update-cart/:itemId", h.Session.Authenticate(h.Cart.UpdateCart))
}

func AddOrderRoutes(router *httprouter.Router, h Handlers) {
	router.GET("/order", h.Session.OptionalAuth(h.Orders.OrderForm))
	router.POST("/order", h.Session.OptionalAuth(h.Orders.PlaceOrder))
	router.GET("/order/:orderId/receipt", h.Orders.Receipt)
	router.GET("/thank-you/:orderId", h.Session.OptionalAuth(h.Orders.ThankYou))
	router.GET("/orders/live", h.Session.Authenticate(h.Feed.ServeWS))
}
