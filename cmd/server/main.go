package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountapp "github.com/brightcart/backend/internal/application/account"
	catalogapp "github.com/brightcart/backend/internal/application/catalog"
	reconapp "github.com/brightcart/backend/internal/application/reconciliation"
	tradeapp "github.com/brightcart/backend/internal/application/trade"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/infrastructure/auth"
	"github.com/brightcart/backend/internal/infrastructure/cache"
	"github.com/brightcart/backend/internal/infrastructure/config"
	"github.com/brightcart/backend/internal/infrastructure/idp"
	"github.com/brightcart/backend/internal/infrastructure/logger"
	"github.com/brightcart/backend/internal/infrastructure/persistence"
	"github.com/brightcart/backend/internal/infrastructure/reporting"
	"github.com/brightcart/backend/internal/infrastructure/storage"
	"github.com/brightcart/backend/internal/infrastructure/telemetry"
	"github.com/brightcart/backend/internal/interfaces/http/handler"
	"github.com/brightcart/backend/internal/interfaces/http/middleware"
	"github.com/brightcart/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/brightcart/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			BrightCart Backend API
//	@version		1.0
//	@description	Storefront backend with an identity reconciliation engine keeping store accounts consistent with the hosted identity provider.

//	@contact.name	API Support
//	@contact.email	support@brightcart.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Provider-issued bearer token. Format: "Bearer {token}"

// version is stamped at build time via -ldflags "-X main.version=..."
var version = "dev"

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

	log.Info("Starting BrightCart Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// OpenTelemetry tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// OpenTelemetry metrics
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Continuous profiling (Pyroscope)
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Profiling.Enabled,
		ServerAddress:       cfg.Profiling.ServerAddress,
		ApplicationName:     cfg.Profiling.ApplicationName,
		BasicAuthUser:       cfg.Profiling.BasicAuthUser,
		BasicAuthPassword:   cfg.Profiling.BasicAuthPassword,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
		ProfileGoroutines:   true,
	}, log)
	if err != nil {
		log.Warn("Failed to start profiler, continuing without profiling", zap.Error(err))
	} else {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()
		if profiler.IsEnabled() && tracerProvider.IsEnabled() {
			if err := tracerProvider.EnableSpanProfiles(); err != nil {
				log.Warn("Failed to enable span profiles", zap.Error(err))
			}
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Database query tracing (otelgorm)
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Database metrics (query durations, pool stats)
	if cfg.Telemetry.Enabled {
		dbMetrics, err := telemetry.NewDBMetrics(
			meterProvider.Meter("brightcart/db"),
			telemetry.DefaultDBMetricsConfig(),
			log,
		)
		if err != nil {
			log.Warn("Failed to initialize database metrics", zap.Error(err))
		} else {
			if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
				log.Warn("Failed to register database metrics plugin", zap.Error(err))
			}
			if sqlDB, err := db.DB.DB(); err == nil {
				dbMetrics.SetSQLDB(sqlDB)
				dbMetrics.StartPoolStatsCollection(ctx)
				defer dbMetrics.Stop()
			}
		}
	}

	// Initialize repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	runRepo := persistence.NewGormRunRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Identity provider client. Every call carries the acting principal's
	// credential; the client itself holds no token.
	idpConfig := idp.NewConfig(cfg.Provider.BaseURL)
	if cfg.Provider.Timeout > 0 {
		idpConfig.TimeoutSeconds = int(cfg.Provider.Timeout / time.Second)
	}
	provider, err := idp.NewClient(idpConfig)
	if err != nil {
		log.Fatal("Failed to initialize identity provider client", zap.Error(err))
	}

	// Token verification for provider-issued JWTs
	verifier := auth.NewTokenVerifier(cfg.Auth)

	// Object storage for product images
	var objectStorage catalogapp.ObjectStorageService
	if cfg.Storage.Driver == "s3" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
	} else {
		log.Warn("Using stub object storage; presigned URLs are not real")
		objectStorage = storage.NewStubObjectStorage()
	}

	// PDF rendering for reconciliation run reports
	pdfRenderer, err := reporting.NewChromedpRenderer(&reporting.ChromedpConfig{Logger: log})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	// Initialize application services
	accountService := accountapp.NewAccountService(accountRepo, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, log)
	imageService := catalogapp.NewImageService(productRepo, objectStorage, log)
	orderService := tradeapp.NewOrderService(orderRepo, productRepo, log)

	// Reconciliation engine services
	statusService := reconapp.NewStatusService(accountRepo, log)
	comparisonService := reconapp.NewComparisonService(provider, accountRepo, log)
	importService := reconapp.NewImportService(accountRepo, runRepo, provider, log)
	resolutionService := reconapp.NewResolutionService(
		accountRepo, runRepo, provider,
		cfg.Reconciliation.MaxConcurrentPushes, log,
	)
	cleanupService := reconapp.NewCleanupService(accountRepo, runRepo, log)
	runService := reconapp.NewRunService(runRepo, log)
	reportService := reconapp.NewReportService(runRepo, reporting.NewTemplateEngine(), pdfRenderer, log)

	// Business metrics: link-state gauges collected periodically
	if cfg.Telemetry.Enabled {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           meterProvider.Meter("brightcart/business"),
			Logger:          log,
			AccountProvider: telemetry.NewGormAccountMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(ctx, 5*time.Minute)
		}
	}

	// Idempotency store (Redis with in-memory fallback outside production)
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()
	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Store:    idempotencyStore,
		Settings: shared.DefaultIdempotencyConfig(),
		Logger:   log,
	})

	// Initialize HTTP handlers
	accountHandler := handler.NewAccountHandler(accountService)
	productHandler := handler.NewProductHandler(productService, imageService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	orderHandler := handler.NewOrderHandler(orderService, accountService)
	reconciliationHandler := handler.NewReconciliationHandler(
		statusService, comparisonService, importService,
		resolutionService, cleanupService, runService, reportService,
		cfg.Provider,
	)
	systemHandler := handler.NewSystemHandler(version,
		handler.ReadinessCheck{Name: "database", Check: func(ctx context.Context) error {
			return db.Ping()
		}},
		handler.ReadinessCheck{Name: "idempotency_store", Check: func(ctx context.Context) error {
			_, err := idempotencyStore.IsProcessed(ctx, "readiness-probe")
			return err
		}},
	)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first: request ID, panic recovery,
	// request logging, security headers, CORS, body limit, telemetry,
	// rate limiting, then authentication.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}
	if cfg.Profiling.Enabled {
		engine.Use(middleware.ProfilingWithConfig(middleware.DefaultProfilingConfig()))
	}

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Authentication: everything requires a provider-issued token except
	// health probes, docs, signup, and catalog browsing.
	engine.Use(middleware.RequireAuthWithConfig(middleware.AuthMiddlewareConfig{
		Verifier: verifier,
		SkipPaths: []string{
			"/health",
			"/health/ready",
			"/version",
			"/api/v1/accounts/signup",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api/v1/catalog",
		},
		Logger: log,
	}))

	// Health probes and version (outside API versioning)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/health/ready", systemHandler.Ready)
	engine.GET("/version", systemHandler.Version)

	// Swagger documentation endpoint, guarded per config
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, middleware.RequireAuth(verifier, log)),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Public account routes (signup only; authentication is skipped above)
	accountRoutes := router.NewDomainGroup("accounts", "/accounts")
	accountRoutes.POST("/signup", accountHandler.Signup)

	// Authenticated caller profile
	profileRoutes := router.NewDomainGroup("profile", "/profile")
	profileRoutes.GET("", accountHandler.GetProfile)
	profileRoutes.POST("/resolve", reconciliationHandler.ResolveSelf)

	// Public catalog browsing
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.GET("/products/:id/image", productHandler.GetImageURL)
	catalogRoutes.GET("/categories", categoryHandler.List)
	catalogRoutes.GET("/categories/:id", categoryHandler.GetByID)

	// Authenticated storefront orders
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", idempotency, orderHandler.Place)
	orderRoutes.GET("", orderHandler.ListOwn)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)

	// Administrative surface: store accounts, catalog management, order
	// operations, and the reconciliation engine.
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(middleware.RequireAdministrator(accountRepo, log))

	adminRoutes.GET("/accounts", accountHandler.List)
	adminRoutes.GET("/accounts/:id", accountHandler.GetByID)
	adminRoutes.PUT("/accounts/:id", accountHandler.Update)
	adminRoutes.PUT("/accounts/:id/role", accountHandler.ChangeRole)
	adminRoutes.POST("/accounts/:id/deactivate", accountHandler.Deactivate)
	adminRoutes.POST("/accounts/:id/reactivate", accountHandler.Reactivate)
	adminRoutes.DELETE("/accounts/:id", accountHandler.Delete)

	adminRoutes.POST("/catalog/products", productHandler.Create)
	adminRoutes.PUT("/catalog/products/:id", productHandler.Update)
	adminRoutes.DELETE("/catalog/products/:id", productHandler.Delete)
	adminRoutes.POST("/catalog/products/:id/activate", productHandler.Activate)
	adminRoutes.POST("/catalog/products/:id/deactivate", productHandler.Deactivate)
	adminRoutes.POST("/catalog/products/:id/image", productHandler.RequestImageUpload)
	adminRoutes.POST("/catalog/products/:id/image/confirm", productHandler.ConfirmImageUpload)
	adminRoutes.DELETE("/catalog/products/:id/image", productHandler.DeleteImage)
	adminRoutes.POST("/catalog/categories", categoryHandler.Create)
	adminRoutes.PUT("/catalog/categories/:id", categoryHandler.Rename)
	adminRoutes.DELETE("/catalog/categories/:id", categoryHandler.Delete)

	adminRoutes.GET("/orders", orderHandler.AdminList)
	adminRoutes.PUT("/orders/:id/status", orderHandler.UpdateStatus)

	// Reconciliation triggers fetch full directory snapshots; keep them on
	// a tighter rate budget than general traffic.
	reconTrigger := func(h gin.HandlerFunc) []gin.HandlerFunc {
		handlers := make([]gin.HandlerFunc, 0, 3)
		if cfg.HTTP.ReconRateLimitEnabled {
			limiter := middleware.NewRateLimiter(cfg.HTTP.ReconRateLimitRequests, cfg.HTTP.ReconRateLimitWindow)
			handlers = append(handlers, middleware.ReconRateLimit(limiter))
		}
		return append(handlers, idempotency, h)
	}

	adminRoutes.GET("/reconciliation/status", reconciliationHandler.GetStatus)
	adminRoutes.GET("/reconciliation/comparison", reconciliationHandler.Compare)
	adminRoutes.POST("/reconciliation/import", reconTrigger(reconciliationHandler.Import)...)
	adminRoutes.POST("/reconciliation/conflicts/resolve", reconTrigger(reconciliationHandler.ResolveConflicts)...)
	adminRoutes.POST("/reconciliation/conflicts/:external_id/resolve", reconciliationHandler.ResolveOne)
	adminRoutes.POST("/reconciliation/cleanup", reconTrigger(reconciliationHandler.Cleanup)...)
	adminRoutes.GET("/reconciliation/runs", reconciliationHandler.ListRuns)
	adminRoutes.GET("/reconciliation/runs/:id", reconciliationHandler.GetRun)
	adminRoutes.GET("/reconciliation/runs/:id/report", reconciliationHandler.ExportRunReport)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(accountRoutes).
		Register(profileRoutes).
		Register(catalogRoutes).
		Register(orderRoutes).
		Register(adminRoutes).
		Register(systemRoutes)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
