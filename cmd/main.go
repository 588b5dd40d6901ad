package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"analytics"
	"analytics/internal/api/handler/endpoints"
	"analytics/internal/api/models"
	"analytics/internal/api/repo"
	"analytics/internal/api/service"
	"analytics/internal/audit"
	"analytics/internal/nlsql"
	"analytics/internal/warehouse"
	"analytics/pkg"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
)

const geminiHost = "https://generativelanguage.googleapis.com"

func main() {
	analytics.InitConfig(".env")
	cfg := analytics.GetConfig()
	gin.SetMode(gin.ReleaseMode)

	clients, err := analytics.Connect(cfg)
	pkg.AssertNoError(err)
	defer func() {
		if err := clients.Close(); err != nil {
			analytics.Logger.Error().Err(err).Msg("Failed to close connections")
		}
	}()

	if err := clients.DB.AutoMigrate(models.All()...); err != nil {
		analytics.Logger.Fatal().Err(err).Msg("Failed to migrate database")
	}
	analytics.Logger.Info().Msg("Database migrated successfully")
	if cfg.Mode == "dev" {
		gin.SetMode(gin.DebugMode)
	}

	publisher := newPublisher(cfg)
	defer publisher.Close()

	services := buildServices(cfg, clients, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(":" + cfg.ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	initAPI(router, services)

	analytics.Logger.Debug().Msgf("Starting analytics API on port %s", cfg.ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		analytics.Logger.Fatal().Msg(err.Error())
		panic(err)
	}
}

func initAPI(router *graceful.Graceful, services *endpoints.Services) {
	endpoints.AuthHandler(router, services)
	endpoints.DatasetHandler(router, services)
	endpoints.ChartHandler(router, services)
	endpoints.DashboardHandler(router, services)
	endpoints.ChatHandler(router, services)
	endpoints.AdminHandler(router, services)
	endpoints.DatabaseMetadataHandler(router, services)
}

func newPublisher(cfg analytics.AppConfig) audit.Publisher {
	if cfg.NATS.URL == "" {
		analytics.Logger.Info().Msg("NATS_URL not set, query audit events are disabled")
		return audit.NopPublisher{}
	}
	publisher, err := audit.NewNATSPublisher(cfg.NATS.URL, cfg.Tenant, analytics.Logger)
	if err != nil {
		analytics.Logger.Warn().Err(err).Msg("Audit bus unreachable, query audit events are disabled")
		return audit.NopPublisher{}
	}
	return publisher
}

func newGenerator(cfg analytics.AppConfig) nlsql.Generator {
	switch cfg.LLM.Provider {
	case "gemini":
		host := cfg.LLM.Host
		if host == "" || host == "http://localhost:11434" {
			host = geminiHost
		}
		return pkg.NewGeminiClient(host, cfg.LLM.Model, cfg.LLM.APIKey, cfg.LLM.Timeout)
	default:
		return pkg.NewOllamaClient(cfg.LLM.Host, cfg.LLM.Model, nlsql.ResponseSchema, cfg.LLM.Timeout)
	}
}

func buildServices(cfg analytics.AppConfig, clients *analytics.Clients, publisher audit.Publisher) *endpoints.Services {
	logger := analytics.Logger
	db := clients.DB

	warehouseCfg := warehouse.Config{
		Host:     cfg.Warehouse.Host,
		Port:     cfg.Warehouse.Port,
		Database: cfg.Warehouse.DatabaseName,
		User:     cfg.Warehouse.User,
		Password: cfg.Warehouse.Password,
		SSLMode:  cfg.Warehouse.SSLMode,
	}
	chartWarehouse := warehouse.NewExecutor(warehouse.NewPostgresProvider(warehouseCfg), logger)
	chatWarehouse := warehouse.NewExecutor(warehouse.NewClickHouseProvider(warehouse.ClickHouseConfig{
		Addr:         cfg.ClickHouse.Addr,
		Database:     cfg.ClickHouse.DatabaseName,
		User:         cfg.ClickHouse.User,
		Password:     cfg.ClickHouse.Password,
		MaxExecution: cfg.ClickHouse.MaxExecution,
	}), logger)

	introspector := service.NewPgxIntrospector(warehouseCfg)

	var columns service.ColumnCatalog
	if cfg.Warehouse.StrictColumnCheck {
		columns = service.NewColumnCatalogService(clients.Redis, cfg.Warehouse.ColumnCacheTTL, service.IntrospectorColumnFetcher(introspector), logger)
		logger.Info().Dur("ttl", cfg.Warehouse.ColumnCacheTTL).Msg("Strict column check enabled")
	}

	roleRepo := repo.NewRoleRepository(db)
	shareRepo := repo.NewShareRepository(db)
	chartRepo := repo.NewChartRepository(db)

	datasets := service.NewDatasetService(repo.NewDatasetRepository(db), logger)
	queries := service.NewChartQueryService(datasets, chartWarehouse, columns, publisher, logger)
	dashboards := service.NewDashboardService(repo.NewDashboardRepository(db), chartRepo, shareRepo, logger)
	throttle := service.NewRedisLoginThrottle(clients.Redis, cfg.Lockout.MaxAttempts, cfg.Lockout.Window)
	translator := nlsql.NewTranslator(newGenerator(cfg), roleRepo, logger)

	return &endpoints.Services{
		Config:     cfg,
		Logger:     logger,
		Roles:      roleRepo,
		Auth:       service.NewAuthService(repo.NewUserRepository(db), roleRepo, throttle, cfg, logger),
		Datasets:   datasets,
		Charts:     service.NewChartService(chartRepo, shareRepo, datasets, queries, logger),
		Dashboards: dashboards,
		Comments:   service.NewCommentService(repo.NewCommentRepository(db), dashboards, logger),
		Chat:       service.NewChatService(translator, chatWarehouse, repo.NewHistoryRepository(db), publisher, logger),
		RoleAdmin:  service.NewRoleService(roleRepo, logger),
		Metadata:   service.NewDatabaseMetadataService(introspector, logger),
	}
}
