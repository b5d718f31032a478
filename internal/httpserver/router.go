package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/AditRobertho/eshop-backend/internal/logging"
	"github.com/AditRobertho/eshop-backend/internal/metrics"
	authmw "github.com/AditRobertho/eshop-backend/internal/middleware/auth"
	"github.com/AditRobertho/eshop-backend/internal/middleware/csrf"
	loggingmw "github.com/AditRobertho/eshop-backend/internal/middleware/logging"
	"github.com/AditRobertho/eshop-backend/internal/middleware/ratelimit"
	"github.com/AditRobertho/eshop-backend/internal/storage"
)

type Deps struct {
	DB         *gorm.DB
	Gate       *authmw.Gate
	Users      *UsersHTTP
	Categories *CategoriesHTTP
	Products   *ProductsHTTP

	APIPrefix  string
	UploadDir  string
	LoginLimit ratelimit.Config
	Gatherer   prometheus.Gatherer
}

// New builds an echo instance with the shared middleware chain. m may be nil.
func New(log *slog.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(log))
	if m != nil {
		e.Use(m.Middleware())
	}
	e.Use(middleware.BodyLimit("60M"))
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			logging.FromContext(c.Request().Context()).Error("ready_check_failed", "status", 503, "error", err)
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	}
	if d.UploadDir != "" {
		e.Static(storage.PublicPrefix, d.UploadDir)
	}

	prefix := d.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = true
	csrfCfg.Skipper = csrf.CookieSessionOnly(authmw.AccessCookie)
	v1 := e.Group(prefix, csrf.Middleware(csrfCfg))

	admin := d.Gate.RequireAdmin

	users := v1.Group("/users")
	users.POST("/login", d.Users.Login, ratelimit.Middleware(d.LoginLimit))
	users.POST("/logout", d.Users.Logout)
	users.POST("/register", d.Users.Register)
	users.POST("", d.Users.Create, admin)
	users.GET("", d.Users.List, admin)
	users.GET("/get/count", d.Users.Count, admin)
	users.GET("/:id", d.Users.Get, admin)
	users.DELETE("/:id", d.Users.Delete, admin)

	categories := v1.Group("/categories")
	categories.GET("", d.Categories.List)
	categories.GET("/:id", d.Categories.Get)
	categories.POST("", d.Categories.Create, admin)
	categories.PUT("/:id", d.Categories.Update, admin)
	categories.DELETE("/:id", d.Categories.Delete, admin)

	products := v1.Group("/products")
	products.GET("", d.Products.List)
	products.GET("/search", d.Products.Search)
	products.GET("/get/count", d.Products.Count)
	products.GET("/get/featured/:count", d.Products.Featured)
	products.GET("/:id", d.Products.Get)
	products.POST("", d.Products.Create, admin)
	products.PUT("/gallery-images/:id", d.Products.UploadGallery, admin)
	products.PUT("/:id", d.Products.Update, admin)
	products.DELETE("/:id", d.Products.Delete, admin)
}
