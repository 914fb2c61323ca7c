package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// CommentHub accepts websocket connections for the comment feed.
type CommentHub interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

// Comments upgrades GET /ws/comments to a websocket attached to hub.
func Comments(hub CommentHub, log zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := hub.ServeWS(c.Response(), c.Request()); err != nil {
			// the upgrader has already answered the client
			log.Debug().Err(err).Msg("websocket upgrade failed")
		}
		return nil
	}
}
