package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	httpadapter "certificate-generator/internal/adapter/http"
	repo "certificate-generator/internal/adapter/repository"
	"certificate-generator/internal/compose"
	"certificate-generator/internal/config"
	"certificate-generator/internal/infrastructure/migration"
	"certificate-generator/internal/usecase"
	infra "certificate-generator/pkg/infrastructure"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// infra setup
	jobsPool, err := infra.NewJobsPool(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Warn("jobs DB not available", zap.Error(err))
	}
	if jobsPool != nil {
		defer jobsPool.Close()
		if err := migration.RunMigrations(ctx, jobsPool, logger.Named("migration")); err != nil {
			logger.Warn("migrations failed", zap.Error(err))
		}
	}

	host := infra.NewChromedpHost(infra.HostOptions{
		ChromePath: cfg.Render.ChromePath,
		TempDir:    cfg.Render.TempDir,
	}, logger.Named("chrome"))
	defer host.Close()

	composer := compose.NewComposer(compose.DefaultRegistry(), cfg.Certificate.Brand, nil)
	generator := usecase.NewGenerator(composer, host, infra.NewGofpdfSerializer(), cfg.Generator(), logger.Named("generator"))
	applications := repo.NewApplicationsRepo(jobsPool, logger.Named("applications"))

	app := fiber.New(fiber.Config{
		AppName:      "certificate-generator",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Render.Timeout + 30*time.Second,
	})

	h := httpadapter.NewHandler(generator, applications, cfg.Certificate.PublicBaseURL, logger.Named("http"))
	h.Register(app)

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()
	logger.Info("certificate service listening", zap.String("addr", cfg.Addr()))

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}
