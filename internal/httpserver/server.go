package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/models"
	"github.com/elkhamyyali/ecommerceback/internal/service"
	"github.com/elkhamyyali/ecommerceback/internal/transport"
	"github.com/elkhamyyali/ecommerceback/internal/webhook"
	"github.com/elkhamyyali/ecommerceback/pkg/metrics"
	authmw "github.com/elkhamyyali/ecommerceback/pkg/middleware/auth"
	loggingmw "github.com/elkhamyyali/ecommerceback/pkg/middleware/logging"
)

const (
	webhookPath = "/webhook-checkout"
	bodyLimit   = "10M"
)

type Deps struct {
	Environment string
	FrontendURL string
	UploadsDir  string

	Logger  *slog.Logger
	Metrics *metrics.ServerMetrics
	Auth    *authmw.Verifier
	Webhook *webhook.Verifier

	Orders  *service.OrderService
	Catalog *service.CatalogService
	Users   *service.UserService
	Carts   *service.CartService

	// Ready reports whether dependencies (the database) are reachable.
	Ready func(ctx context.Context) error
	// OnFatal is told about panics that escaped a handler.
	OnFatal func(error)
}

// New builds the echo instance with the full middleware chain and every route.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(d.Environment == "development")
	e.Validator = transport.EchoValidator{}

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(FatalRecover(d.OnFatal))

	origin := d.FrontendURL
	if origin == "" {
		origin = "*"
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{origin},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit:   bodyLimit,
		Skipper: func(c echo.Context) bool { return c.Request().URL.Path == webhookPath },
	}))
	e.Use(middleware.Gzip())

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "OK", "environment": d.Environment})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}
	if d.UploadsDir != "" {
		e.Static("/uploads", d.UploadsDir)
	}

	wh := &WebhookHTTP{Verifier: d.Webhook, Orders: d.Orders}
	e.POST(webhookPath, wh.Checkout)

	requireAuth := d.Auth.RequireAuth
	staff := d.Auth.RequireRole(models.RoleAdmin, models.RoleManager)
	admin := d.Auth.RequireRole(models.RoleAdmin)

	v1 := e.Group("/api/v1")

	oh := &OrderHTTP{Svc: d.Orders}
	orders := v1.Group("/orders")
	orders.POST("", oh.CreateOrder, requireAuth)
	orders.POST("/:cartId", oh.CreateCashOrder, requireAuth)
	orders.GET("", oh.GetOrders, requireAuth)
	orders.GET("/:id", oh.GetOrder, requireAuth)
	orders.PUT("/:id/pay", oh.MarkPaid, staff)
	orders.PUT("/:id/deliver", oh.MarkDelivered, staff)

	ph := &ProductHTTP{Svc: d.Catalog}
	products := v1.Group("/products")
	products.GET("", ph.GetProducts)
	products.GET("/search", ph.Search)
	products.GET("/:id", ph.GetProduct)
	products.POST("", ph.CreateProduct, admin)
	products.PATCH("/:id", ph.PatchProduct, admin)
	products.DELETE("/:id", ph.DeleteProduct, admin)

	uh := &UserHTTP{Svc: d.Users}
	users := v1.Group("/users")
	users.POST("", uh.CreateUser, admin)
	users.GET("/:id", uh.GetUser, admin)

	ch := &CartHTTP{Svc: d.Carts}
	cart := v1.Group("/cart")
	cart.GET("", ch.GetCart, requireAuth)
	cart.POST("", ch.AddToCart, requireAuth)
	cart.DELETE("", ch.ClearCart, requireAuth)
	cart.DELETE("/:itemId", ch.RemoveItem, requireAuth)

	e.RouteNotFound("/*", routeNotFound)
}

func routeNotFound(c echo.Context) error {
	return apperr.NotFound("Can't find this route: " + c.Request().URL.RequestURI())
}
