package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salespos-api/internal/application/service"
	"github.com/sangkips/salespos-api/internal/config"
	domainRepo "github.com/sangkips/salespos-api/internal/domain/repository"
	"github.com/sangkips/salespos-api/internal/infrastructure/database"
	"github.com/sangkips/salespos-api/internal/infrastructure/repository"
	"github.com/sangkips/salespos-api/internal/presentation/http/handler"
	"github.com/sangkips/salespos-api/internal/presentation/http/routes"
	"github.com/sangkips/salespos-api/pkg/logger"
	"github.com/sangkips/salespos-api/pkg/printer"
	"github.com/sangkips/salespos-api/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.Init(cfg.Logger)
	defer func() { _ = log.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatal("failed to open record store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("close record store", zap.Error(err))
		}
	}()

	if err := utils.InitIDNode(cfg.App.NodeID); err != nil {
		log.Fatal("failed to initialise id generator", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.App.Name, cfg.JWT.ExpiryHours)

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(store)
	txRepo := repository.NewTransactionRepository(store)
	settingsRepo := repository.NewSettingsRepository(store)
	idempotencyRepo := repository.NewIdempotencyRepository(store)

	// Initialize services
	authService, err := service.NewAuthService(cfg.Auth.AdminPIN, cfg.Auth.AdminPINHash, jwtManager)
	if err != nil {
		log.Fatal("failed to initialise auth", zap.Error(err))
	}
	loc := cfg.Ledger.Location()
	ledgerService := service.NewLedgerService(txRepo, catalogRepo, settingsRepo, log.Named("ledger"))
	reportService := service.NewReportService(txRepo, loc)
	catalogService := service.NewCatalogService(catalogRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	backupService := service.NewBackupService(store, catalogRepo, txRepo, settingsRepo, log.Named("backup")).GuardLedger(ledgerService)

	encoder := service.NewReceiptEncoder(service.ReceiptOptions{
		Charset:   printer.ParseCharset(cfg.Printer.Charset),
		AutoCut:   cfg.Printer.AutoCut,
		WebsiteQR: cfg.Printer.WebsiteQR,
		Location:  loc,
	})

	// Initialize the printer link
	central, err := printer.NewCentralFromConfig(cfg.Printer.Type, cfg.Printer.DevicePath, cfg.Printer.Address, cfg.Printer.Name)
	if err != nil {
		log.Warn("printer link disabled", zap.Error(err))
		central = nil
	}
	transport := printer.NewTransport(central, printer.Options{
		ChunkSize:      cfg.Printer.ChunkSize,
		ConnectTimeout: cfg.Printer.ConnectTimeout,
		WriteTimeout:   cfg.Printer.WriteTimeout,
		Logger:         log.Named("printer"),
	})
	defer transport.Disconnect()
	printerService := service.NewPrinterService(transport, encoder, ledgerService, cfg.Printer.Type, cfg.Printer.BridgeEnabled, log.Named("dispatch"))

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Catalog:     handler.NewCatalogHandler(catalogService),
		Transaction: handler.NewTransactionHandler(ledgerService, loc),
		Report:      handler.NewReportHandler(reportService),
		Settings:    handler.NewSettingsHandler(settingsService),
		Printer:     handler.NewPrinterHandler(printerService),
		Admin:       handler.NewAdminHandler(backupService),
	}

	deps := &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Logger:          log,
	}
	router := routes.Setup(handlers, deps)
	defer deps.RateLimiter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", zap.String("service", cfg.App.Name), zap.String("port", port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		purgeIdempotencyKeys(gctx, idempotencyRepo, log)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
	}
}

// openStore picks the record store backend from configuration
func openStore(cfg *config.Config) (domainRepo.RecordStore, error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
		return repository.NewGormRecordStore(db), nil
	case "memory":
		return repository.NewMemoryRecordStore(), nil
	default:
		db, err := database.NewBoltDB(&cfg.Store, domainRepo.Collections)
		if err != nil {
			return nil, err
		}
		return repository.NewBoltRecordStore(db), nil
	}
}

func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				log.Warn("purge idempotency keys", zap.Error(err))
			}
		}
	}
}
