package router // package router wires middleware and handlers onto an Echo instance

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/shop-admin/internal/config"
	"github.com/iliyamo/shop-admin/internal/handler"
	"github.com/iliyamo/shop-admin/internal/middleware"
	"github.com/iliyamo/shop-admin/internal/view"
)

// Deps carries everything the routes need. Redis may be nil.
type Deps struct {
	Config    config.Config
	Log       zerolog.Logger
	Redis     *redis.Client
	Gate      *middleware.Gate
	Auth      *handler.AuthHandler
	Products  *handler.ProductHandler
	GraphQL   *handler.GraphQLHandler
	Readiness *handler.ReadinessHandler
	Comments  echo.HandlerFunc
}

// New builds the Echo instance with the global middleware chain and every
// route registered.
func New(d Deps) (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(d.Log)
	e.Renderer = renderer

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	// the cookie must be in the header before any gate runs
	e.Use(middleware.CookieToHeader())

	if d.Config.PublicDir != "" {
		e.Static("/", d.Config.PublicDir)
	}

	RegisterRoutes(e, d)
	RegisterAuth(e, d)
	RegisterProducts(e, d)
	RegisterPanel(e, d)
	return e, nil
}

// RegisterRoutes exposes the operational endpoints, GraphQL and the comment
// socket. None of them require authentication.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	if d.Readiness != nil {
		e.GET("/readyz", d.Readiness.Readiness)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/graphql", d.GraphQL.Serve)
	e.POST("/graphql", d.GraphQL.Serve)

	if d.Comments != nil {
		e.GET("/ws/comments", d.Comments)
	}
}
