package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-admin/internal/model"
	"github.com/iliyamo/shop-admin/internal/view"
)

// Authorize decides whether id may proceed given the allowed roles. present
// is false when no identity was attached; that is forbidden too.
func Authorize(id model.Identity, present bool, roles ...string) Outcome {
	if present {
		for _, r := range roles {
			if id.Role == r {
				return Outcome{Kind: Ok, Identity: id}
			}
		}
	}
	return Outcome{Kind: Forbidden, Identity: id}
}

// RequireRole runs after Authenticate. API routes get a 403 JSON body,
// panel routes the login page with an error.
func RequireRole(mode Mode, roles ...string) echo.MiddlewareFunc {
	msg := fmt.Sprintf("Forbidden: requires role %s.", strings.Join(roles, " or "))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, present := IdentityFrom(c)
			if Authorize(id, present, roles...).Kind == Ok {
				return next(c)
			}
			if mode == ModePanel {
				return c.Render(http.StatusForbidden, view.Login, view.Page{Title: "Login", Error: msg})
			}
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": msg})
		}
	}
}
