package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/arsalan-rana/cricket-bracket/config"
	"github.com/arsalan-rana/cricket-bracket/db"
	"github.com/arsalan-rana/cricket-bracket/handlers"
	"github.com/arsalan-rana/cricket-bracket/live"
	"github.com/arsalan-rana/cricket-bracket/models"
	"github.com/arsalan-rana/cricket-bracket/repositories"
	api "github.com/arsalan-rana/cricket-bracket/routes"
	"github.com/arsalan-rana/cricket-bracket/services"
	"github.com/arsalan-rana/cricket-bracket/storage"
	"github.com/arsalan-rana/cricket-bracket/tournament"
)

const schedulerInterval = 60 * time.Second // How often the deadline scheduler runs

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Загрузка и валидация конфигурации турнира
	tournamentCfg, err := models.LoadTournamentConfig(cfg.TournamentConfigPath)
	if err != nil {
		logger.Error("failed to load tournament config", slog.Any("error", err))
		os.Exit(1)
	}
	if err := tournament.ValidateConfig(tournamentCfg); err != nil {
		logger.Error("invalid tournament config", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("tournament config loaded",
		slog.String("tournament", tournamentCfg.Name),
		slog.Int("phases", len(tournamentCfg.Phases)),
		slog.Int("fixtures", len(tournamentCfg.Fixtures)))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Загрузчик снимков таблицы лидеров (Cloudflare R2, опционально)
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 not configured, leaderboard snapshots disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	pickRepo := repositories.NewPostgresPickRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	chipRepo := repositories.NewPostgresChipRepository(dbConn)
	submissionRepo := repositories.NewPostgresSubmissionRepository(dbConn)
	bonusRepo := repositories.NewPostgresBonusRepository(dbConn)
	activityRepo := repositories.NewPostgresActivityRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo, cfg.AdminEmail)
	submissionService := services.NewSubmissionService(tournamentCfg, pickRepo, submissionRepo, bonusRepo, activityRepo, logger)
	chipService := services.NewChipService(tournamentCfg, pickRepo, chipRepo, activityRepo, logger)
	scoringService := services.NewScoringService(tournamentCfg, pickRepo, resultRepo, chipRepo, submissionRepo, bonusRepo, wsHub, uploader, logger)
	resultService := services.NewResultService(tournamentCfg, resultRepo, bonusRepo, scoringService, activityRepo, logger)
	activityFeed := services.NewActivityFeed(activityRepo)
	logger.Info("Services initialized")

	// Планировщик: автофинализация черновиков после дедлайна фазы
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("Draft finalization scheduler started", slog.Duration("interval", schedulerInterval))

		if err := scoringService.RecomputeAll(context.Background()); err != nil {
			logger.Error("Scheduler: initial recompute failed", slog.Any("error", err))
		}

		for range ticker.C {
			finalizePastPhases(context.Background(), tournamentCfg, submissionService, logger)
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	fixtureHandler := handlers.NewFixtureHandler(tournamentCfg, resultService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	chipHandler := handlers.NewChipHandler(chipService)
	bonusHandler := handlers.NewBonusHandler(tournamentCfg, submissionService, resultService)
	leaderboardHandler := handlers.NewLeaderboardHandler(scoringService, activityFeed)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		fixtureHandler,
		submissionHandler,
		chipHandler,
		bonusHandler,
		leaderboardHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// finalizePastPhases переводит черновики в SUBMITTED для каждой фазы,
// чей дедлайн уже прошёл.
func finalizePastPhases(ctx context.Context, cfg *models.TournamentConfig, submissions *services.SubmissionService, logger *slog.Logger) {
	now := time.Now()
	for _, phase := range cfg.Phases {
		past, err := tournament.IsPastDeadline(cfg, phase.ID, now)
		if err != nil {
			logger.Error("Scheduler: failed to resolve deadline", slog.String("phase", phase.ID), slog.Any("error", err))
			continue
		}
		if !past {
			continue
		}
		finalized, err := submissions.FinalizeDrafts(ctx, phase.ID)
		if err != nil {
			logger.Error("Scheduler: draft finalization failed", slog.String("phase", phase.ID), slog.Any("error", err))
			continue
		}
		if len(finalized) > 0 {
			logger.Info("Scheduler: drafts finalized", slog.String("phase", phase.ID), slog.Int("count", len(finalized)))
		}
	}
}
