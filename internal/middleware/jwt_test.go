package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/shop-admin/internal/model"
	"github.com/iliyamo/shop-admin/internal/repository"
	"github.com/iliyamo/shop-admin/internal/utils"
)

type stubUsers struct {
	users map[uint64]model.User
	err   error
}

func (s stubUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func newGate(t *testing.T) (*Gate, *utils.TokenService) {
	t.Helper()
	tokens := utils.NewTokenService("secret", time.Hour)
	users := stubUsers{users: map[uint64]model.User{
		1: {ID: 1, Username: "admin", Email: "a@x.io", PasswordHash: "h", Role: model.RoleAdmin},
		2: {ID: 2, Username: "bob", Email: "b@x.io", PasswordHash: "h", Role: model.RoleUser},
	}}
	return &Gate{Tokens: tokens, Users: users}, tokens
}

func bearer(t *testing.T, tokens *utils.TokenService, id uint64) string {
	t.Helper()
	tok, err := tokens.Issue(id)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestGate_Resolve(t *testing.T) {
	g, tokens := newGate(t)
	ctx := context.Background()

	out, err := g.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, Outcome{Kind: Unauthenticated, Reason: ReasonMissingToken}, out)

	out, _ = g.Resolve(ctx, "Basic abc")
	assert.Equal(t, ReasonMissingToken, out.Reason)

	out, _ = g.Resolve(ctx, "Bearer garbage")
	assert.Equal(t, ReasonInvalidToken, out.Reason)

	out, _ = g.Resolve(ctx, bearer(t, tokens, 99))
	assert.Equal(t, ReasonStaleIdentity, out.Reason)

	out, err = g.Resolve(ctx, bearer(t, tokens, 1))
	require.NoError(t, err)
	assert.Equal(t, Ok, out.Kind)
	assert.Equal(t, "admin", out.Identity.Username)
	assert.Equal(t, model.RoleAdmin, out.Identity.Role)
}

func TestGate_Resolve_StoreFailure(t *testing.T) {
	tokens := utils.NewTokenService("secret", time.Hour)
	g := &Gate{Tokens: tokens, Users: stubUsers{err: errors.New("db down")}}

	_, err := g.Resolve(context.Background(), bearer(t, tokens, 1))
	assert.Error(t, err)
}

func serve(e *echo.Echo, req *http.Request, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h := func(c echo.Context) error {
		id, _ := IdentityFrom(c)
		return c.JSON(http.StatusOK, id)
	}
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthenticate_API(t *testing.T) {
	e := echo.New()
	g, tokens := newGate(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := serve(e, req, Authenticate(g, ModeAPI))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Unauthorized: no token provided."}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, tokens, 2))
	rec = serve(e, req, Authenticate(g, ModeAPI))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"bob"`)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAuthenticate_API_ExpiredToken(t *testing.T) {
	e := echo.New()
	g, _ := newGate(t)
	expired := utils.NewTokenService("secret", -time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, expired, 1))
	rec := serve(e, req, Authenticate(g, ModeAPI))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired")
}

func TestAuthenticate_Panel(t *testing.T) {
	e := echo.New()
	g, _ := newGate(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	rec := serve(e, req, Authenticate(g, ModePanel))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Empty(t, rec.Header().Values("Set-Cookie"))

	req = httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tampered"})
	rec = serve(e, req, CookieToHeader(), Authenticate(g, ModePanel))
	assert.Equal(t, http.StatusFound, rec.Code)
	cookie := rec.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, CookieName+"=;")
	assert.Contains(t, cookie, "Max-Age=0")
}

func TestCookieToHeader(t *testing.T) {
	e := echo.New()
	g, tokens := newGate(t)
	tok := bearer(t, tokens, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok[len("Bearer "):]})
	rec := serve(e, req, CookieToHeader(), Authenticate(g, ModeAPI))
	assert.Equal(t, http.StatusOK, rec.Code)

	// an explicit header is left alone
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, tokens, 2))
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "none"})
	rec = serve(e, req, CookieToHeader(), Authenticate(g, ModeAPI))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"bob"`)
}

func TestAuthenticate_StoreFailureIsInternal(t *testing.T) {
	e := echo.New()
	tokens := utils.NewTokenService("secret", time.Hour)
	g := &Gate{Tokens: tokens, Users: stubUsers{err: errors.New("db down")}}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, tokens, 1))
	rec := serve(e, req, Authenticate(g, ModeAPI))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
