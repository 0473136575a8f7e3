package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/plantops/assetmodeler/pkg/config"
	"github.com/plantops/assetmodeler/pkg/database"
	"github.com/plantops/assetmodeler/pkg/handlers"
	"github.com/plantops/assetmodeler/pkg/metrics"
	"github.com/plantops/assetmodeler/pkg/middleware"
	"github.com/plantops/assetmodeler/pkg/repositories"
	"github.com/plantops/assetmodeler/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.Int("hierarchy_max_depth", cfg.Converter.HierarchyMaxDepth),
		zap.String("tag_alias_prefix", cfg.Converter.TagAliasPrefix),
		zap.Bool("save_snapshots", cfg.Converter.SaveSnapshots))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations run through database/sql (required by golang-migrate)
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	modelRepo := repositories.NewModelRepository(db)
	assetRepo := repositories.NewAssetRepository(db)

	writer := services.NewRecordWriter(modelRepo, assetRepo, cfg.Converter.WriteDelay, logger)
	conversionService := services.NewConversionService(cfg.Converter, writer, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	convertHandler := handlers.NewConvertHandler(conversionService, logger)
	convertHandler.RegisterRoutes(mux)

	mux.Handle("/metrics", promhttp.Handler())

	handler := metrics.Middleware(middleware.RequestLogger(logger)(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting assetmodeler", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newLogger builds a development logger for local runs and a production
// logger everywhere else.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
