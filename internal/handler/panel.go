package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-admin/internal/view"
)

// Index renders the storefront page with the live comment feed.
func Index(c echo.Context) error {
	return c.Render(http.StatusOK, view.Index, view.Page{Title: "Shop Admin"})
}

// LoginPage renders the sign-in form.
func LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, view.Login, view.Page{Title: "Sign in"})
}

// AdminProductList renders the product table. Data is loaded by the page
// from /api/products.
func AdminProductList(c echo.Context) error {
	return c.Render(http.StatusOK, view.ProductList, view.Page{Title: "Admin Panel - Products"})
}

// AdminProductAdd renders the create form.
func AdminProductAdd(c echo.Context) error {
	return c.Render(http.StatusOK, view.ProductAdd, view.Page{Title: "Admin Panel - New Product"})
}

// AdminProductEdit renders the edit form for one product id.
func AdminProductEdit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.ProductEdit, view.Page{
		Title:     fmt.Sprintf("Admin Panel - Edit Product %d", id),
		ProductID: id,
	})
}
