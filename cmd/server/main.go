package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	crmapp "github.com/institute/backend/internal/application/crm"
	enrollmentapp "github.com/institute/backend/internal/application/enrollment"
	financeapp "github.com/institute/backend/internal/application/finance"
	identityapp "github.com/institute/backend/internal/application/identity"
	printingapp "github.com/institute/backend/internal/application/printing"
	"github.com/institute/backend/internal/infrastructure/cache"
	"github.com/institute/backend/internal/infrastructure/config"
	"github.com/institute/backend/internal/infrastructure/event"
	"github.com/institute/backend/internal/infrastructure/logger"
	"github.com/institute/backend/internal/infrastructure/notification"
	"github.com/institute/backend/internal/infrastructure/persistence"
	"github.com/institute/backend/internal/infrastructure/printing"
	"github.com/institute/backend/internal/infrastructure/printing/providers"
	"github.com/institute/backend/internal/infrastructure/storage"
	"github.com/institute/backend/internal/interfaces/http/handler"
	"github.com/institute/backend/internal/interfaces/http/middleware"
	"github.com/institute/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Institute Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)

	// Transaction scopes for multi-aggregate operations
	txScope := persistence.NewGormTransactionScope(db.DB)
	convScope := persistence.NewGormConversionScope(db.DB)

	// Idempotency store (Redis when enabled, in-memory otherwise)
	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := idempotencyFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Object storage for tenant logos
	var objectStorage identityapp.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage initialized", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewInMemoryObjectStorage()
		log.Warn("Object storage disabled, using in-memory stub")
	}

	// Initialize event bus and notification handlers
	eventBus := event.NewInMemoryEventBus(log)
	mailSender := notification.NewSender(cfg.Mail)

	receiptHandler := notification.NewPaymentReceiptHandler(studentRepo, tenantRepo, mailSender, log)
	eventBus.Subscribe(receiptHandler)

	confirmationHandler := notification.NewEnrollmentConfirmationHandler(tenantRepo, mailSender, log)
	eventBus.Subscribe(confirmationHandler)

	log.Info("Event handlers registered",
		zap.Strings("payment_receipt_events", receiptHandler.EventTypes()),
		zap.Strings("enrollment_confirmation_events", confirmationHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// PDF rendering pipeline
	pdfRenderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Printing.RenderTimeout,
		RemoteURL:      cfg.Printing.ChromeRemoteURL,
		NoSandbox:      cfg.Printing.NoSandbox,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	templateEngine := printing.NewTemplateEngine()
	invoiceProvider := providers.NewInvoiceProvider(paymentRepo, studentRepo, batchRepo, tenantRepo, objectStorage, log)

	// Initialize application services
	paymentService := financeapp.NewPaymentService(txScope, studentRepo, paymentRepo, idempotencyStore, eventBus, log)
	studentService := enrollmentapp.NewStudentService(txScope, studentRepo, batchRepo, eventBus, log)
	batchService := enrollmentapp.NewBatchService(batchRepo, log)
	leadService := crmapp.NewLeadService(convScope, leadRepo, eventBus, log)
	tenantService := identityapp.NewTenantService(tenantRepo, objectStorage, log)
	invoiceService := printingapp.NewInvoiceService(invoiceProvider, templateEngine, pdfRenderer, log)

	// Initialize HTTP handlers
	paymentHandler := handler.NewPaymentHandler(paymentService)
	studentHandler := handler.NewStudentHandler(studentService)
	batchHandler := handler.NewBatchHandler(batchService)
	leadHandler := handler.NewLeadHandler(leadService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Report validation failures using JSON field names
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. CORS - Handle cross-origin requests
	// 5. BodyLimit - Limit request body size
	// 6. Tenant - Resolve tenant context from X-Tenant-ID
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.Use(middleware.TenantMiddlewareWithConfig(middleware.TenantMiddlewareConfig{
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
			"/api/v1/system/info",
		},
		Required: true,
		Logger:   log,
	}))

	// Plain health endpoint outside API versioning for load balancer probes
	engine.GET("/health", systemHandler.Health)

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler).
		Register(tenantHandler).
		Register(batchHandler).
		Register(studentHandler).
		Register(leadHandler).
		Register(paymentHandler).
		Register(invoiceHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
