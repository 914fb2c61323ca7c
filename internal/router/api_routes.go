package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/shop-admin/internal/middleware"
	"github.com/iliyamo/shop-admin/internal/model"
)

// uploadBodyLimit leaves room for the 5 MB image plus the form fields.
const uploadBodyLimit = "6M"

// RegisterAuth registers /api/auth. Register and login are rate limited;
// /me requires a valid token.
func RegisterAuth(e *echo.Echo, d Deps) {
	limit := middleware.NewTokenBucket(d.Config.RateLimit, d.Redis, d.Log)

	g := e.Group("/api/auth")
	g.POST("/register", d.Auth.Register, limit)
	g.POST("/login", d.Auth.Login, limit)
	g.GET("/logout", d.Auth.Logout)
	g.GET("/me", d.Auth.Me, middleware.Authenticate(d.Gate, middleware.ModeAPI))
}

// RegisterProducts registers /api/products. Reads are public and cached;
// writes need an admin token and purge the cache on success. The body limit
// on create runs after the gate so anonymous callers always get 401.
func RegisterProducts(e *echo.Echo, d Deps) {
	g := e.Group("/api/products")

	cache := middleware.NewRedisCache(d.Config.Cache, d.Redis)
	g.GET("", d.Products.List, cache)
	g.GET("/:id", d.Products.Get, cache)

	admin := []echo.MiddlewareFunc{
		middleware.Authenticate(d.Gate, middleware.ModeAPI),
		middleware.RequireRole(middleware.ModeAPI, model.RoleAdmin),
		middleware.PurgeOnWrite(d.Config.Cache, d.Redis, d.Log),
	}
	create := append(append([]echo.MiddlewareFunc{}, admin...), echomw.BodyLimit(uploadBodyLimit))
	g.POST("", d.Products.Create, create...)
	g.PUT("/:id", d.Products.Update, admin...)
	g.DELETE("/:id", d.Products.Delete, admin...)
}
