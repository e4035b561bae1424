package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/homeops/backend/internal/application/catalog"
	identityapp "github.com/homeops/backend/internal/application/identity"
	partnerapp "github.com/homeops/backend/internal/application/partner"
	planapp "github.com/homeops/backend/internal/application/plan"
	proposalapp "github.com/homeops/backend/internal/application/proposal"
	reportapp "github.com/homeops/backend/internal/application/report"
	"github.com/homeops/backend/internal/domain/identity"
	"github.com/homeops/backend/internal/domain/shared"
	"github.com/homeops/backend/internal/infrastructure/auth"
	"github.com/homeops/backend/internal/infrastructure/cache"
	"github.com/homeops/backend/internal/infrastructure/config"
	"github.com/homeops/backend/internal/infrastructure/logger"
	"github.com/homeops/backend/internal/infrastructure/persistence"
	"github.com/homeops/backend/internal/infrastructure/proposal"
	"github.com/homeops/backend/internal/infrastructure/telemetry"
	"github.com/homeops/backend/internal/interfaces/http/handler"
	"github.com/homeops/backend/internal/interfaces/http/middleware"
	"github.com/homeops/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting HomeOps Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
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

	// Telemetry
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

	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:  true,
			DBSystem: "postgresql",
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meterProvider.Meter("homeops-business"),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}

	// Idempotency store: Redis when configured, in-process fallback otherwise
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idempotencyStore = redisStore
		log.Info("Using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Info("Using in-memory idempotency store")
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// PDF renderer
	pdfRenderer, err := proposal.NewChromedpRenderer(&proposal.ChromedpConfig{
		DefaultTimeout: cfg.Proposal.RenderTimeout,
		RemoteURL:      cfg.Proposal.ChromeRemoteURL,
		NoSandbox:      cfg.Proposal.NoSandbox,
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

	// Repositories
	deviceRepo := persistence.NewGormDeviceRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	buildSystemRepo := persistence.NewGormBuildSystemRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)

	// Application services
	deviceService := catalogapp.NewDeviceService(deviceRepo)
	clientService := partnerapp.NewClientService(clientRepo)
	buildSystemService := planapp.NewBuildSystemService(buildSystemRepo, deviceRepo, idempotencyStore, businessMetrics)
	projectService := planapp.NewProjectService(projectRepo, buildSystemRepo, deviceRepo, clientRepo, idempotencyStore, businessMetrics)
	proposalService := proposalapp.NewProposalService(projectRepo, clientRepo, pdfRenderer, proposal.CompanyInfo{
		Name:    cfg.Proposal.CompanyName,
		Address: cfg.Proposal.CompanyAddress,
	}, businessMetrics)
	reportService := reportapp.NewReportService(reportRepo)
	userService := identityapp.NewUserService(userRepo, roleRepo)
	roleService := identityapp.NewRoleService(roleRepo)

	// HTTP handlers
	deviceHandler := handler.NewDeviceHandler(deviceService)
	clientHandler := handler.NewClientHandler(clientService)
	buildSystemHandler := handler.NewBuildSystemHandler(buildSystemService)
	projectHandler := handler.NewProjectHandler(projectService, proposalService)
	reportHandler := handler.NewReportHandler(reportService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	systemHandler := handler.NewSystemHandler(db.DB, cfg.App.Name, version)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       cfg.Telemetry.Enabled,
	}))

	// Liveness and readiness outside API versioning
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	if cfg.JWT.Enabled {
		verifier := auth.NewVerifier(cfg.JWT)
		jwtConfig := middleware.DefaultJWTConfig(verifier)
		jwtConfig.Logger = log
		r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
	} else {
		log.Warn("JWT verification disabled, all endpoints are unauthenticated")
	}
	r.Use(middleware.TracingAttributeInjector())

	registerRoutes(r,
		deviceHandler, clientHandler, buildSystemHandler, projectHandler,
		reportHandler, userHandler, roleHandler, systemHandler,
		cfg.JWT.Enabled,
	)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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

// registerRoutes wires every domain group into the router. Write operations
// require the matching permission when JWT verification is on; reads only
// need an authenticated token.
func registerRoutes(
	r *router.Router,
	deviceHandler *handler.DeviceHandler,
	clientHandler *handler.ClientHandler,
	buildSystemHandler *handler.BuildSystemHandler,
	projectHandler *handler.ProjectHandler,
	reportHandler *handler.ReportHandler,
	userHandler *handler.UserHandler,
	roleHandler *handler.RoleHandler,
	systemHandler *handler.SystemHandler,
	enforcePermissions bool,
) {
	requirePerm := func(permission string) gin.HandlerFunc {
		if !enforcePermissions {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RequirePermission(permission)
	}

	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/devices", deviceHandler.List)
	catalogRoutes.GET("/devices/:id", deviceHandler.Get)
	catalogRoutes.POST("/devices", requirePerm(identity.PermCatalogWrite), deviceHandler.Create)
	catalogRoutes.PUT("/devices/:id", requirePerm(identity.PermCatalogWrite), deviceHandler.Update)
	catalogRoutes.POST("/devices/:id/activate", requirePerm(identity.PermCatalogWrite), deviceHandler.Activate)
	catalogRoutes.POST("/devices/:id/deactivate", requirePerm(identity.PermCatalogWrite), deviceHandler.Deactivate)
	catalogRoutes.POST("/devices/:id/discontinue", requirePerm(identity.PermCatalogWrite), deviceHandler.Discontinue)
	catalogRoutes.DELETE("/devices/:id", requirePerm(identity.PermCatalogWrite), deviceHandler.Delete)

	partnerRoutes := router.NewDomainGroup("partners", "/partners")
	partnerRoutes.GET("/clients", clientHandler.List)
	partnerRoutes.GET("/clients/:id", clientHandler.Get)
	partnerRoutes.POST("/clients", requirePerm(identity.PermClientsWrite), clientHandler.Create)
	partnerRoutes.PUT("/clients/:id", requirePerm(identity.PermClientsWrite), clientHandler.Update)
	partnerRoutes.POST("/clients/:id/activate", requirePerm(identity.PermClientsWrite), clientHandler.Activate)
	partnerRoutes.POST("/clients/:id/deactivate", requirePerm(identity.PermClientsWrite), clientHandler.Deactivate)
	partnerRoutes.DELETE("/clients/:id", requirePerm(identity.PermClientsWrite), clientHandler.Delete)

	planRoutes := router.NewDomainGroup("plan", "/plan")
	planRoutes.GET("/build-systems", buildSystemHandler.List)
	planRoutes.GET("/build-systems/:id", buildSystemHandler.Get)
	planRoutes.POST("/build-systems", requirePerm(identity.PermPlansWrite), buildSystemHandler.Create)
	planRoutes.PUT("/build-systems/:id", requirePerm(identity.PermPlansWrite), buildSystemHandler.Update)
	planRoutes.POST("/build-systems/:id/activate", requirePerm(identity.PermPlansWrite), buildSystemHandler.Activate)
	planRoutes.POST("/build-systems/:id/deactivate", requirePerm(identity.PermPlansWrite), buildSystemHandler.Deactivate)
	planRoutes.POST("/build-systems/:id/clone", requirePerm(identity.PermPlansWrite), buildSystemHandler.Clone)
	planRoutes.DELETE("/build-systems/:id", requirePerm(identity.PermPlansWrite), buildSystemHandler.Delete)

	planRoutes.GET("/projects", projectHandler.List)
	planRoutes.GET("/projects/:id", projectHandler.Get)
	planRoutes.GET("/projects/:id/proposal", projectHandler.Proposal)
	planRoutes.POST("/projects", requirePerm(identity.PermProjectsWrite), projectHandler.Create)
	planRoutes.PUT("/projects/:id", requirePerm(identity.PermProjectsWrite), projectHandler.Update)
	planRoutes.PUT("/projects/:id/status", requirePerm(identity.PermProjectsWrite), projectHandler.UpdateStatus)
	planRoutes.POST("/projects/:id/clone", requirePerm(identity.PermProjectsWrite), projectHandler.Clone)
	planRoutes.POST("/projects/:id/import", requirePerm(identity.PermProjectsWrite), projectHandler.Import)
	planRoutes.DELETE("/projects/:id", requirePerm(identity.PermProjectsWrite), projectHandler.Delete)

	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.GET("/portfolio", requirePerm(identity.PermReportsRead), reportHandler.Portfolio)
	reportRoutes.GET("/top-devices", requirePerm(identity.PermReportsRead), reportHandler.TopDevices)

	identityRoutes := router.NewDomainGroup("identity", "/identity")
	identityRoutes.Use(requirePerm(identity.PermUsersManage))
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.GET("/users/:id", userHandler.Get)
	identityRoutes.POST("/users", userHandler.Create)
	identityRoutes.PUT("/users/:id", userHandler.Update)
	identityRoutes.PUT("/users/:id/password", userHandler.ChangePassword)
	identityRoutes.POST("/users/:id/activate", userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)
	identityRoutes.DELETE("/users/:id", userHandler.Delete)
	identityRoutes.GET("/roles", roleHandler.List)
	identityRoutes.GET("/roles/:id", roleHandler.Get)
	identityRoutes.POST("/roles", roleHandler.Create)
	identityRoutes.PUT("/roles/:id", roleHandler.Update)
	identityRoutes.DELETE("/roles/:id", roleHandler.Delete)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.Info)

	r.Register(catalogRoutes).
		Register(partnerRoutes).
		Register(planRoutes).
		Register(reportRoutes).
		Register(identityRoutes).
		Register(systemRoutes)
}
