package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmaware/counterpos-api/internal/config"
	"github.com/pharmaware/counterpos-api/internal/presentation/http/handler"
	"github.com/pharmaware/counterpos-api/internal/presentation/http/middleware"
	"github.com/pharmaware/counterpos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Inventory *handler.InventoryHandler
	Session   *handler.SessionHandler
	Printer   *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager *utils.JWTManager
	Cfg        *config.Config
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", h.Auth.Login)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: requestsPerSecond(deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerInventoryRoutes(protected, h)
		registerSessionRoutes(protected, h)
		registerPrinterRoutes(protected, h)
	}

	return router
}

// requestsPerSecond converts the requests-per-window config into a rate,
// clamping degenerate values that would yield an infinite or zero limit.
func requestsPerSecond(requests, duration int) float64 {
	if requests <= 0 {
		requests = 1
	}
	if duration <= 0 {
		duration = 60
	}
	return float64(requests) / float64(duration)
}

func registerInventoryRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/medicines", h.Inventory.ListNames)
	protected.GET("/medicines/:name", h.Inventory.Get)
	protected.POST("/inventory/reload", h.Inventory.Reload)
}

func registerSessionRoutes(protected *gin.RouterGroup, h *Handlers) {
	session := protected.Group("/session")
	{
		session.GET("/selection", h.Session.GetSelection)
		session.POST("/select", h.Session.Select)
		session.POST("/items", h.Session.AddItem)
		session.GET("/cart", h.Session.GetCart)
		session.POST("/checkout", h.Session.Checkout)
		session.POST("/commit", h.Session.RetryCommit)
		session.POST("/clear", h.Session.Clear)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printerGroup := protected.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
	}
}
