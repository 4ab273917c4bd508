package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	_ "github.com/lib/pq"
	"github.com/lmittmann/tint"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	experimentHttp "github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/adapters/http/fiber"
	experimentRepoPg "github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/adapters/postgres"
	experimentUsecase "github.com/RamenMachine/Marketing-Analysis-ABTest/internal/experiment/core/usecase"

	impactHttp "github.com/RamenMachine/Marketing-Analysis-ABTest/internal/impact/adapters/http/fiber"
	impactUsecase "github.com/RamenMachine/Marketing-Analysis-ABTest/internal/impact/core/usecase"

	_ "github.com/RamenMachine/Marketing-Analysis-ABTest/docs"
)

// @title Experiment Analysis Service API
// @version 1.0
// @description Bayesian and frequentist analysis of two-arm conversion experiments
// @BasePath /
func main() {
	// Logging
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	// Config
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		logger.Error("POSTGRES_DSN is not set")
		os.Exit(1)
	}
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// DB connection
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Error("failed to open postgres", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping postgres", "err", err)
		os.Exit(1)
	}

	// Repositories
	resultRepository := experimentRepoPg.NewResultRepository(experimentRepoPg.NewSQLDB(db))

	// Use cases
	analyzeUC := experimentUsecase.NewAnalyzeExperimentUseCase(resultRepository, logger)
	getResultUC := experimentUsecase.NewGetResultUseCase(resultRepository)
	assessImpactUC := impactUsecase.NewAssessImpactUseCase(resultRepository)

	// HTTP (Fiber) app + handlers
	app := fiber.New()

	experimentHandler := experimentHttp.NewExperimentHandler(analyzeUC, getResultUC)
	app.Post("/experiments/analyze", experimentHandler.AnalyzeExperiment)
	app.Get("/experiments/:id", experimentHandler.GetResult)

	impactHandler := impactHttp.NewImpactHandler(assessImpactUC)
	app.Post("/impact", impactHandler.AssessImpact)

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	// Graceful shutdown
	go func() {
		if err := app.Listen(addr); err != nil {
			logger.Error("fiber stopped", "err", err)
		}
	}()

	logger.Info("server started", "addr", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("fiber shutdown error", "err", err)
	}

	logger.Info("server exiting")
}
