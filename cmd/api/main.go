// @title Quizforge API
// @version 1.0
// @description Generates open and multiple-choice questions from study texts.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "quizforge/cmd/api/docs"
	"quizforge/internal/app"
	"quizforge/internal/config"
	"quizforge/internal/handler"
	"quizforge/internal/logger"
	"quizforge/internal/middleware"
	"quizforge/internal/observability"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()
	shutdownTracing := observability.InitTracing(ctx, cfg.Tracing, cfg.Logger.Env, appLogger)

	components, err := app.Build(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize components", zap.Error(err))
	}
	appLogger.Info("Engine initialized",
		zap.Int("topics", len(components.Catalog.Topics)),
		zap.Int("templates", len(components.Catalog.GenericTemplates)),
		zap.Int("keyword_templates", len(components.Catalog.KeywordTemplates)),
		zap.Bool("embeddings", components.Detector.CanEmbed()),
	)

	quizHandler := handler.NewQuizHandler(components.Service)
	healthHandler := handler.NewHealthHandler(components.Cache)

	server := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	server.Use(recover.New())
	server.Use(middleware.RequestID())
	server.Use(middleware.RequestLogger())
	server.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID", MaxAge: 300}))

	server.Get("/swagger/*", swagger.HandlerDefault)
	server.Get("/health", healthHandler.Check)

	apiGroup := server.Group("/api")
	quizHandler.RegisterRoutes(apiGroup, middleware.NewValidationMiddleware())

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := server.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := components.Close(); err != nil {
		appLogger.Warn("Failed to close backends", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Warn("Failed to flush traces", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
