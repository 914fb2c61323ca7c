package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/shop-admin/internal/repository"
	"github.com/iliyamo/shop-admin/internal/service"
	"github.com/iliyamo/shop-admin/internal/upload"
	"github.com/iliyamo/shop-admin/internal/utils"
)

// errorResponse is the envelope of every error answer.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler maps domain errors to statuses and renders
// {"success":false,"message":...}. Unexpected errors are logged and answered
// with a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Success: false, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusRequestEntityTooLarge {
			return http.StatusBadRequest, upload.ErrTooLarge.Error()
		}
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Int("status", he.Code).Msg("request rejected")
		}
		if s, ok := he.Message.(string); ok {
			return he.Code, s
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, upload.ErrUnexpectedFile),
		errors.Is(err, upload.ErrUnsupportedType),
		errors.Is(err, upload.ErrTooLarge):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials."
	case errors.Is(err, utils.ErrInvalidToken):
		return http.StatusUnauthorized, "Unauthorized: token is invalid or expired."
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "Email or username is already registered."
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "Resource not found."
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
	return http.StatusInternalServerError, "Internal server error."
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
