package routes

import (
	"github.com/julienschmidt/httprouter"

	"recipebook/ratelim"
)

// RoutesWrapper builds the router with every route registered.
func RoutesWrapper(h Handlers, rateLimiter *ratelim.RateLimiter) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Health)

	AddStaticRoutes(router, h)
	AddAuthRoutes(router, h, rateLimiter)
	AddRecipeRoutes(router, h)
	AddCartRoutes(router, h)
	AddOrderRoutes(router, h)

	return router
}
