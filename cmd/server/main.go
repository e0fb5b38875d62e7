package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/moldshop/backend/internal/application/inventory"
	planningapp "github.com/moldshop/backend/internal/application/planning"
	"github.com/moldshop/backend/internal/infrastructure/cache"
	"github.com/moldshop/backend/internal/infrastructure/config"
	"github.com/moldshop/backend/internal/infrastructure/event"
	"github.com/moldshop/backend/internal/infrastructure/logger"
	"github.com/moldshop/backend/internal/infrastructure/persistence"
	"github.com/moldshop/backend/internal/infrastructure/telemetry"
	"github.com/moldshop/backend/internal/interfaces/http/handler"
	"github.com/moldshop/backend/internal/interfaces/http/middleware"
	"github.com/moldshop/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
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

	log.Info("Starting Moldshop Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

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

	// Initialize OpenTelemetry (no-op providers when disabled)
	ctx := context.Background()

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
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

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
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Bridge zap logs to the OTEL Collector alongside the configured output
	if cfg.Telemetry.Enabled {
		logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Warn("Failed to initialize OTEL logs provider", zap.Error(err))
		} else {
			defer func() {
				if err := logsProvider.Shutdown(context.Background()); err != nil {
					log.Error("Error shutting down logs provider", zap.Error(err))
				}
			}()
			bridged, err := telemetry.CreateBridgedLoggerFromConfig(&telemetry.BaseLoggerConfig{
				Level:      cfg.Log.Level,
				Format:     cfg.Log.Format,
				Output:     cfg.Log.Output,
				TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			}, logsProvider, cfg.Telemetry.ServiceName)
			if err != nil {
				log.Warn("Failed to bridge logger to OTEL", zap.Error(err))
			} else {
				log = bridged
			}
		}
	}

	// Database query tracing via otelgorm
	if cfg.Telemetry.DBTraceEnabled {
		dbTracingCfg := telemetry.DefaultDBTracingConfig()
		dbTracingCfg.Enabled = true
		dbTracingCfg.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		if cfg.Telemetry.DBSlowQueryThresh > 0 {
			dbTracingCfg.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		}
		dbTracing := telemetry.NewDBTracingPlugin(dbTracingCfg, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Query latency and connection pool metrics
	if cfg.Telemetry.Enabled {
		dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
		if cfg.Telemetry.DBSlowQueryThresh > 0 {
			dbMetricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
		}
		dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsCfg, log)
		if err != nil {
			log.Warn("Failed to register database metrics", zap.Error(err))
		} else if dbMetrics != nil {
			dbMetrics.StartPoolStatsCollection(ctx)
			defer dbMetrics.Stop()
		}
	}

	// Business metrics with periodic stock health collection
	var businessMetrics *telemetry.BusinessMetrics
	if cfg.Telemetry.Enabled {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:         meterProvider.Meter("moldshop-business"),
			Logger:        log,
			StockProvider: telemetry.NewGormStockMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		businessMetrics.StartPeriodicCollection(ctx, telemetry.NewGormOrgProvider(db.DB), 5*time.Minute)
		defer businessMetrics.Stop()
	}

	// Initialize repositories
	materialRepo := persistence.NewGormMaterialRepository(db.DB)
	lotRepo := persistence.NewGormStockLotRepository(db.DB)
	alertRepo := persistence.NewGormStockAlertRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	bomRepo := persistence.NewGormBOMRepository(db.DB)

	// Transaction scopes: movements and order trees commit atomically
	movementTxScope := persistence.NewGormTransactionScope(db.DB)
	planningTxScope := persistence.NewGormPlanningTransactionScope(db.DB)

	// Idempotency store (Redis when configured, in-memory otherwise)
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Initialize application services
	materialService := inventoryapp.NewMaterialService(materialRepo, lotRepo, alertRepo, log)
	movementService := inventoryapp.NewMovementService(movementTxScope, eventBus, log)
	bomService := planningapp.NewBOMService(productRepo, bomRepo, log)
	planningGateway := planningapp.NewRepositoryPlanningGateway(materialRepo, productRepo, bomRepo)
	mrpService := planningapp.NewMRPService(planningGateway, log)
	orderService := planningapp.NewOrderService(planningTxScope, mrpService, movementService, eventBus, log)

	// Low-stock alerting: threshold-crossing events open deduplicated alerts.
	// The handler is wrapped for idempotency so redelivered events never
	// double-open an alert.
	if cfg.Alerting.Enabled {
		lowStockHandler := inventoryapp.NewLowStockHandler(alertRepo, log).
			WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log))
		eventBus.Subscribe(event.NewIdempotentHandler(lowStockHandler, idempotencyStore, log))
		log.Info("Low-stock alert handler registered",
			zap.Strings("event_types", lowStockHandler.EventTypes()),
		)
	}

	// Start event bus
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	materialHandler := handler.NewMaterialHandler(materialService)
	movementHandler := handler.NewMovementHandler(movementService).WithIdempotencyStore(idempotencyStore)
	productHandler := handler.NewProductHandler(bomService)
	planningHandler := handler.NewPlanningHandler(mrpService)
	orderHandler := handler.NewProductionOrderHandler(orderService)
	systemHandler := handler.NewSystemHandler()

	if businessMetrics != nil {
		movementHandler = movementHandler.WithMetrics(businessMetrics)
		planningHandler = planningHandler.WithMetrics(businessMetrics)
		orderHandler = orderHandler.WithMetrics(businessMetrics)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
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
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Tracing/metrics - when telemetry is enabled
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (per client IP)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow))
	}

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
		engine.Use(middleware.TracingAttributeInjector())
		engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("moldshop-http"), true))
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Every org-scoped route requires the X-Org-ID header; system endpoints
	// and health checks stay reachable without it
	orgConfig := middleware.DefaultOrgConfig()
	orgConfig.SkipPaths = append(orgConfig.SkipPaths,
		"/api/v1/ping",
		"/api/v1/system/ping",
		"/api/v1/system/info",
	)
	orgConfig.Logger = log
	r.Use(middleware.OrgMiddlewareWithConfig(orgConfig))

	// Materials: master data, the derived ledger view and lot inventory
	materialRoutes := router.NewDomainGroup("materials", "/materials")
	materialRoutes.POST("", materialHandler.Create)
	materialRoutes.GET("", materialHandler.List)
	materialRoutes.GET("/below-minimum", materialHandler.ListBelowMinimum)
	materialRoutes.GET("/:code", materialHandler.Get)
	materialRoutes.PATCH("/:code", materialHandler.Update)
	materialRoutes.GET("/:code/lots", materialHandler.ListLots)
	materialRoutes.GET("/:code/ledger", movementHandler.Ledger)
	materialRoutes.GET("/:code/balance", movementHandler.Balance)

	// Movements: the append-only stock ledger
	movementRoutes := router.NewDomainGroup("movements", "/movements")
	movementRoutes.POST("", movementHandler.Record)

	// Lot quality state transitions
	lotRoutes := router.NewDomainGroup("lots", "/lots")
	lotRoutes.POST("/:id/block", materialHandler.BlockLot)
	lotRoutes.POST("/:id/approve", materialHandler.ApproveLot)

	// Low-stock alerts
	alertRoutes := router.NewDomainGroup("alerts", "/alerts")
	alertRoutes.GET("", materialHandler.ListAlerts)

	// Products and BOM versions
	productRoutes := router.NewDomainGroup("products", "/products")
	productRoutes.POST("", productHandler.CreateProduct)
	productRoutes.GET("", productHandler.ListProducts)
	productRoutes.GET("/:code", productHandler.GetProduct)
	productRoutes.POST("/:code/boms", productHandler.CreateBOM)
	productRoutes.GET("/:code/boms", productHandler.ListBOMVersions)
	productRoutes.GET("/:code/boms/active", productHandler.GetActiveBOM)

	bomRoutes := router.NewDomainGroup("boms", "/boms")
	bomRoutes.POST("/:id/activate", productHandler.ActivateBOM)

	// MRP simulation
	planningRoutes := router.NewDomainGroup("planning", "/planning")
	planningRoutes.POST("/simulate", planningHandler.Simulate)

	// Production order lifecycle
	orderRoutes := router.NewDomainGroup("production-orders", "/production-orders")
	orderRoutes.POST("", orderHandler.CreateFromPlan)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/:id", orderHandler.Get)
	orderRoutes.POST("/:id/start", orderHandler.Start)
	orderRoutes.POST("/:id/complete", orderHandler.Complete)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(materialRoutes).
		Register(movementRoutes).
		Register(lotRoutes).
		Register(alertRoutes).
		Register(productRoutes).
		Register(bomRoutes).
		Register(planningRoutes).
		Register(orderRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
