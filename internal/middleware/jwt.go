package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-admin/internal/model"
	"github.com/iliyamo/shop-admin/internal/repository"
)

// CookieName is the http-only cookie carrying the identity token.
const CookieName = "jwt_token"

// Mode selects how an unauthenticated or forbidden request is answered.
type Mode int

const (
	// ModeAPI answers with a JSON error body.
	ModeAPI Mode = iota
	// ModePanel redirects to the login page or renders it.
	ModePanel
)

// Reason explains why a request is unauthenticated.
type Reason int

const (
	ReasonMissingToken Reason = iota + 1
	ReasonInvalidToken
	ReasonStaleIdentity
)

func (r Reason) message() string {
	switch r {
	case ReasonMissingToken:
		return "Unauthorized: no token provided."
	case ReasonStaleIdentity:
		return "Unauthorized: user no longer exists."
	default:
		return "Unauthorized: token is invalid or expired."
	}
}

// Kind classifies an Outcome.
type Kind int

const (
	Unauthenticated Kind = iota
	Forbidden
	Ok
)

// Outcome is the decision for one request. Identity is set for Ok and
// Forbidden, Reason for Unauthenticated.
type Outcome struct {
	Kind     Kind
	Identity model.Identity
	Reason   Reason
}

// TokenVerifier checks a raw token and returns the user id inside it.
type TokenVerifier interface {
	Verify(raw string) (uint64, error)
}

// IdentityLoader loads the user a token refers to.
type IdentityLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Gate turns an Authorization header into an Outcome.
type Gate struct {
	Tokens TokenVerifier
	Users  IdentityLoader
}

// Resolve decides whether header carries a valid token for an existing
// user. The returned error is set only when the user lookup itself failed.
func (g *Gate) Resolve(ctx context.Context, header string) (Outcome, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return Outcome{Kind: Unauthenticated, Reason: ReasonMissingToken}, nil
	}
	id, err := g.Tokens.Verify(raw)
	if err != nil {
		return Outcome{Kind: Unauthenticated, Reason: ReasonInvalidToken}, nil
	}
	u, err := g.Users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return Outcome{Kind: Unauthenticated, Reason: ReasonStaleIdentity}, nil
	}
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: Ok, Identity: u.Identity()}, nil
}

// CookieToHeader copies the jwt_token cookie into the Authorization header
// when the request does not already carry one.
func CookieToHeader() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Header.Get(echo.HeaderAuthorization) == "" {
				if ck, err := req.Cookie(CookieName); err == nil && ck.Value != "" {
					req.Header.Set(echo.HeaderAuthorization, "Bearer "+ck.Value)
				}
			}
			return next(c)
		}
	}
}

// Authenticate runs the gate and attaches the identity on success. API
// routes get a 401 JSON body; panel routes are redirected to /login, and an
// invalid token cookie is cleared first.
func Authenticate(g *Gate, mode Mode) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			out, err := g.Resolve(ctx, c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}
			if out.Kind != Ok {
				if mode == ModePanel {
					if out.Reason == ReasonInvalidToken {
						ClearTokenCookie(c)
					}
					return c.Redirect(http.StatusFound, "/login")
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": out.Reason.message()})
			}
			SetIdentity(c, out.Identity)
			return next(c)
		}
	}
}

// ClearTokenCookie expires the token cookie on the client.
func ClearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
}
