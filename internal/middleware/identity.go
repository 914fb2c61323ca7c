package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-admin/internal/model"
)

const identityKey = "identity"

// SetIdentity stores the authenticated identity on the request context.
func SetIdentity(c echo.Context, id model.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok
}
