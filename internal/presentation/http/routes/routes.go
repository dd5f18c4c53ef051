package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salespos-api/internal/config"
	domainRepo "github.com/sangkips/salespos-api/internal/domain/repository"
	"github.com/sangkips/salespos-api/internal/presentation/http/handler"
	"github.com/sangkips/salespos-api/internal/presentation/http/middleware"
	"github.com/sangkips/salespos-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth        *handler.AuthHandler
	Catalog     *handler.CatalogHandler
	Transaction *handler.TransactionHandler
	Report      *handler.ReportHandler
	Settings    *handler.SettingsHandler
	Printer     *handler.PrinterHandler
	Admin       *handler.AdminHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Logger          *zap.Logger
	// RateLimiter is optional; Setup builds one from Cfg when nil
	RateLimiter *middleware.ClientRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.SecureHeaders(deps.Cfg.App.Env == "production"))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = NewRateLimiter(&deps.Cfg.RateLimit)
		deps.RateLimiter = rateLimiter
	}
	router.Use(rateLimiter.Middleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Till routes (no authentication required)
		registerAuthRoutes(v1, h, deps)
		registerItemRoutes(v1, h)
		registerTransactionRoutes(v1, h, deps, log)
		registerPrinterRoutes(v1, h)
		v1.GET("/settings", h.Settings.GetSettings)

		// Back-office routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(deps.JWTManager))
		admin.Use(middleware.RequireRole(utils.RoleAdmin))
		registerAdminRoutes(admin, h)
	}

	return router
}

// NewRateLimiter converts the configured requests-per-window into a
// per-client token bucket.
func NewRateLimiter(cfg *config.RateLimitConfig) *middleware.ClientRateLimiter {
	rlc := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rlc.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rlc.BurstSize = cfg.Requests
	}
	rlc.CleanupInterval = 5 * time.Minute
	rlc.EntryTTL = 10 * time.Minute
	return middleware.NewClientRateLimiter(rlc)
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", middleware.AuthMiddleware(deps.JWTManager), h.Auth.Me)
	}
}

func registerItemRoutes(v1 *gin.RouterGroup, h *Handlers) {
	items := v1.Group("/items")
	{
		items.GET("", h.Catalog.List)
		items.GET("/:id", h.Catalog.Get)
	}
}

func registerTransactionRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps, log *zap.Logger) {
	idempotency := middleware.IdempotencyConfig{
		Repo:     deps.IdempotencyRepo,
		InFlight: middleware.NewKeyReservations(),
		Logger:   log,
	}

	transactions := v1.Group("/transactions")
	{
		// Checkout retries from a flaky till must not record the sale twice
		transactions.POST("", middleware.Idempotency(idempotency), h.Transaction.Create)
		transactions.GET("", h.Transaction.List)
		transactions.GET("/:id", h.Transaction.Get)
		transactions.POST("/:id/repayments", middleware.Idempotency(idempotency), h.Transaction.Repay)
		transactions.GET("/:id/receipt", h.Printer.ReceiptText)
		transactions.GET("/:id/receipt/escpos", h.Printer.ReceiptBytes)
		transactions.POST("/:id/print", h.Printer.PrintTransaction)
	}
}

func registerPrinterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	printerGroup := v1.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/connect", h.Printer.Connect)
		printerGroup.POST("/disconnect", h.Printer.Disconnect)
		printerGroup.POST("/test", h.Printer.TestPrint)
	}
}

func registerAdminRoutes(admin *gin.RouterGroup, h *Handlers) {
	items := admin.Group("/items")
	{
		items.POST("", h.Catalog.Create)
		items.PUT("/:id", h.Catalog.Update)
		items.DELETE("/:id", h.Catalog.Delete)
		items.POST("/import", h.Catalog.Import)
		items.GET("/export", h.Catalog.Export)
		items.POST("/spreadsheet", h.Catalog.ImportSpreadsheet)
		items.GET("/spreadsheet", h.Catalog.ExportSpreadsheet)
	}

	admin.PUT("/settings", h.Settings.UpdateSettings)

	reports := admin.Group("/reports")
	{
		reports.GET("/daily", h.Report.Daily)
		reports.GET("/outstanding", h.Report.Outstanding)
		reports.GET("/customers", h.Report.Customers)
	}

	admin.DELETE("/transactions/:id", h.Transaction.Delete)

	admin.GET("/backup", h.Admin.ExportBackup)
	admin.POST("/backup", h.Admin.ImportBackup)
	admin.POST("/clear", h.Admin.ClearData)
}
