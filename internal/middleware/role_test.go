package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/shop-admin/internal/model"
	"github.com/iliyamo/shop-admin/internal/view"
)

func TestAuthorize(t *testing.T) {
	admin := model.Identity{ID: 1, Role: model.RoleAdmin}
	user := model.Identity{ID: 2, Role: model.RoleUser}

	assert.Equal(t, Ok, Authorize(admin, true, model.RoleAdmin).Kind)
	assert.Equal(t, Forbidden, Authorize(user, true, model.RoleAdmin).Kind)
	assert.Equal(t, Ok, Authorize(user, true, model.RoleAdmin, model.RoleUser).Kind)
	assert.Equal(t, Forbidden, Authorize(model.Identity{}, false, model.RoleAdmin).Kind)
}

func TestRequireRole_API(t *testing.T) {
	e := echo.New()
	g, tokens := newGate(t)
	chain := []echo.MiddlewareFunc{Authenticate(g, ModeAPI), RequireRole(ModeAPI, model.RoleAdmin)}

	req := httptest.NewRequest(http.MethodDelete, "/api/products/1", nil)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, tokens, 2))
	rec := serve(e, req, chain...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	req = httptest.NewRequest(http.MethodDelete, "/api/products/1", nil)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, tokens, 1))
	rec = serve(e, req, chain...)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_WithoutIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := serve(e, req, RequireRole(ModeAPI, model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_PanelRendersLogin(t *testing.T) {
	e := echo.New()
	r, err := view.NewRenderer()
	require.NoError(t, err)
	e.Renderer = r
	g, tokens := newGate(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, tokens, 2))
	rec := serve(e, req, Authenticate(g, ModePanel), RequireRole(ModePanel, model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Forbidden: requires role admin.")
	assert.Contains(t, rec.Body.String(), `id="login-form"`)
}
