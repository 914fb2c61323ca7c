package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-admin/internal/handler"
	"github.com/iliyamo/shop-admin/internal/middleware"
	"github.com/iliyamo/shop-admin/internal/model"
)

// RegisterPanel registers the rendered pages. Everything under /admin
// redirects to /login without a session and renders the login page with an
// error for non-admins.
func RegisterPanel(e *echo.Echo, d Deps) {
	e.GET("/", handler.Index)
	e.GET("/login", handler.LoginPage)

	g := e.Group("/admin")
	g.Use(middleware.Authenticate(d.Gate, middleware.ModePanel))
	g.Use(middleware.RequireRole(middleware.ModePanel, model.RoleAdmin))
	g.GET("/products", handler.AdminProductList)
	g.GET("/products/add", handler.AdminProductAdd)
	g.GET("/products/edit/:id", handler.AdminProductEdit)
}
