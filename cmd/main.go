package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/suteetoe/notabase/internal/handler"
	"github.com/suteetoe/notabase/internal/middleware"
	"github.com/suteetoe/notabase/internal/model"
	"github.com/suteetoe/notabase/internal/repository"
	"github.com/suteetoe/notabase/internal/service"
	"github.com/suteetoe/notabase/pkg/config"
	"github.com/suteetoe/notabase/pkg/database"
	"github.com/suteetoe/notabase/pkg/jwtutil"
	"github.com/suteetoe/notabase/pkg/logger"
	"github.com/suteetoe/notabase/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting notabase...", zap.String("environment", cfg.Server.Env))
	log.Info("Configuration loaded", cfg.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.Tenant{},
		&model.User{},
		&model.Database{},
		&model.Record{},
		&model.ActivityLog{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations applied")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Wire repositories and services
	repos := repository.New(db)
	activityService := service.NewActivityService(repos.Activity)
	identityService := service.NewIdentityService(repos.Users, repos.Tenants)
	schemaService := service.NewSchemaService(repos.Databases, activityService)
	recordService := service.NewRecordService(repos.Records, repos.Databases, activityService)

	authHandler := handler.NewAuthHandler(identityService)
	databaseHandler := handler.NewDatabaseHandler(schemaService)
	recordHandler := handler.NewRecordHandler(recordService)
	activityHandler := handler.NewActivityHandler(activityService)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover()) // Add recovery middleware
	e.Use(echomiddleware.CORS())    // Add CORS middleware
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(middleware.PrincipalMiddleware(identityService))

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware(&cfg.RateLimit))
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)

	// API routes - handlers enforce authentication and roles per operation
	api := e.Group("/api")
	api.Use(middleware.RateLimitMiddleware(&cfg.RateLimit))

	// Schema registry
	databases := api.Group("/databases")
	databases.POST("", databaseHandler.CreateDatabase)
	databases.GET("", databaseHandler.ListDatabases)
	databases.GET("/:id", databaseHandler.GetDatabase)
	databases.PATCH("/:id", databaseHandler.UpdateDatabase)
	databases.DELETE("/:id", databaseHandler.DeleteDatabase)
	databases.POST("/:id/fields", databaseHandler.AddField)
	databases.PATCH("/:id/fields/:fieldId", databaseHandler.UpdateField)
	databases.DELETE("/:id/fields/:fieldId", databaseHandler.RemoveField)

	// Record store and query engine
	databases.POST("/:id/records", recordHandler.CreateRecord)
	databases.POST("/:id/records/query", recordHandler.QueryRecords)
	records := api.Group("/records")
	records.GET("/:id", recordHandler.GetRecord)
	records.PATCH("/:id", recordHandler.UpdateRecord)
	records.DELETE("/:id", recordHandler.DeleteRecord)

	// Audit trail
	api.GET("/activity", activityHandler.ListActivity)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
