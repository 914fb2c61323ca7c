package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-admin/internal/metrics"
	"github.com/iliyamo/shop-admin/internal/middleware"
	"github.com/iliyamo/shop-admin/internal/service"
)

// AuthService is what the auth endpoints need from the service layer.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (service.AuthResult, error)
	Login(ctx context.Context, email, password string) (service.AuthResult, error)
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	svc    AuthService
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewAuthHandler wires the service. ttl is the cookie lifetime and matches the
// token lifetime; secure marks the cookie HTTPS-only.
func NewAuthHandler(svc AuthService, ttl time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{svc: svc, ttl: ttl, secure: secure, now: time.Now}
}

type registerReq struct {
	Username string `json:"username" form:"username" validate:"required,max=100"`
	Email    string `json:"email" form:"email" validate:"required,max=100"`
	Password string `json:"password" form:"password" validate:"required"`
	Role     string `json:"role" form:"role"`
}

type loginReq struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type authResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    any    `json:"user"`
}

// Register creates an account and signs the caller in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.svc.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "failed").Inc()
		return err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("register", "ok").Inc()
	h.setTokenCookie(c, res.Token)
	return c.JSON(http.StatusCreated, authResp{Success: true, Message: "Registration successful.", Token: res.Token, User: res.User})
}

// Login checks credentials and sets the token cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		result := "error"
		if errors.Is(err, service.ErrInvalidCredentials) {
			result = "invalid"
		}
		metrics.AuthAttemptsTotal.WithLabelValues("login", result).Inc()
		return err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("login", "ok").Inc()
	h.setTokenCookie(c, res.Token)
	return c.JSON(http.StatusOK, authResp{Success: true, Message: "Login successful.", Token: res.Token, User: res.User})
}

// Logout overwrites the token cookie with an expired placeholder. Tokens are
// stateless, so nothing is revoked server-side.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    "none",
		Path:     "/",
		Expires:  h.now().Add(-time.Hour),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out."})
}

// Me returns the identity attached by the auth gate.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: no token provided.")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": id})
}

func (h *AuthHandler) setTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  h.now().Add(h.ttl),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
