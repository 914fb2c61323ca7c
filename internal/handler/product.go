package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-admin/internal/middleware"
	"github.com/iliyamo/shop-admin/internal/model"
	"github.com/iliyamo/shop-admin/internal/repository"
	"github.com/iliyamo/shop-admin/internal/service"
	"github.com/iliyamo/shop-admin/internal/upload"
)

// Catalog is what the product endpoints need from the service layer.
type Catalog interface {
	List(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id uint64) (model.Product, error)
	Create(ctx context.Context, actorID uint64, in service.ProductInput, image *multipart.FileHeader) (model.Product, error)
	Update(ctx context.Context, actorID, id uint64, in service.ProductInput) (model.Product, error)
	Delete(ctx context.Context, actorID, id uint64) error
}

// ProductHandler serves /api/products.
type ProductHandler struct {
	svc Catalog
}

func NewProductHandler(svc Catalog) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// priceField accepts a JSON number or string and keeps its literal text so
// the service can apply one parsing rule to forms and JSON alike.
type priceField string

func (p *priceField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*p = priceField(s)
		return nil
	}
	*p = priceField(b)
	return nil
}

type productReq struct {
	Name        string     `json:"name" form:"name" validate:"required,max=255"`
	Price       priceField `json:"price" form:"price" validate:"required"`
	Description string     `json:"description" form:"description"`
}

func (r productReq) input() service.ProductInput {
	return service.ProductInput{Name: r.Name, Price: string(r.Price), Description: r.Description}
}

// List returns every product, newest first.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.svc.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(items), "data": items})
}

// Get returns one product.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.svc.Get(ctx, id)
	if err != nil {
		return notFound(err, "Product ID %d not found.", id)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": p})
}

// Create accepts a multipart form with an optional productImage, or a
// plain JSON/urlencoded body without an image.
func (h *ProductHandler) Create(c echo.Context) error {
	var (
		in    service.ProductInput
		image *multipart.FileHeader
	)
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return badRequest("invalid multipart form")
		}
		if image, err = upload.Pick(form); err != nil {
			return err
		}
		in = service.ProductInput{
			Name:        firstValue(form, "name"),
			Price:       firstValue(form, "price"),
			Description: firstValue(form, "description"),
		}
	} else {
		var req productReq
		if err := c.Bind(&req); err != nil {
			return badRequest("invalid request body")
		}
		in = req.input()
	}

	actor, _ := middleware.IdentityFrom(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	p, err := h.svc.Create(ctx, actor.ID, in, image)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Product created.", "data": p})
}

// Update rewrites name, price and description.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	actor, _ := middleware.IdentityFrom(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.svc.Update(ctx, actor.ID, id, req.input())
	if err != nil {
		return notFound(err, "Product ID %d to update not found.", id)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Product updated.", "data": p})
}

// Delete removes a product; its stored image is removed in the background.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, actor.ID, id); err != nil {
		return notFound(err, "Product ID %d to delete not found.", id)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": fmt.Sprintf("Product ID %d deleted.", id),
		"data":    echo.Map{},
	})
}

func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid product id")
	}
	return id, nil
}

// notFound turns repository.ErrNotFound into a 404 carrying the product id.
func notFound(err error, format string, id uint64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf(format, id))
	}
	return err
}

func firstValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}
