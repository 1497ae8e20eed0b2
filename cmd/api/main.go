package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/praxis-go-api/internal/config"
	"github.com/noah-isme/praxis-go-api/internal/database"
	"github.com/noah-isme/praxis-go-api/internal/handler"
	"github.com/noah-isme/praxis-go-api/internal/middleware"
	"github.com/noah-isme/praxis-go-api/internal/models"
	"github.com/noah-isme/praxis-go-api/internal/repository"
	"github.com/noah-isme/praxis-go-api/internal/router"
	"github.com/noah-isme/praxis-go-api/internal/service"
	"github.com/noah-isme/praxis-go-api/pkg/judge"
	"github.com/noah-isme/praxis-go-api/pkg/llm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Activity{}, &models.GeneratedProblem{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	llmClient, err := buildLLMClient(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	judgeAdapter, err := judge.NewDockerJudge(judge.Config{
		Host:          cfg.DockerHost,
		Timeout:       cfg.JudgeTimeout,
		MemoryLimitMB: int64(cfg.JudgeMemoryMB),
		CPUShares:     int64(cfg.JudgeCPUShares),
		WorkspaceRoot: cfg.JudgeWorkspace,
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("failed to create judge: %v", err)
	}
	defer judgeAdapter.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	runCtx, stopServices := context.WithCancel(context.Background())
	defer stopServices()

	activityRepo := repository.NewActivityRepository(db)
	progressService := service.NewProgressService(redisClient, "praxis", natsConn, logger)
	progressService.Start(runCtx)
	activityService := service.NewActivityService(activityRepo, llmClient, judgeAdapter, progressService, validate, logger, service.ActivityConfig{
		MaxAttemptsPerSlot:  cfg.MaxAttemptsPerSlot,
		TestCaseCount:       cfg.TestCaseCount,
		SoftFallbackEnabled: cfg.SoftFallbackEnabled,
		TraceTestSuites:     cfg.TraceTestSuites,
	})

	activityHandler := handler.NewActivityHandler(activityService, progressService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ActivityHandler: activityHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildLLMClient(cfg config.Config, logger zerolog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "anthropic":
		return llm.NewAnthropicClient(llm.AnthropicConfig{APIKey: cfg.AnthropicAPIKey, Model: cfg.LLMModel})
	default:
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
			Logger:  logger,
		})
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
