package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Pab1o16/turing-chat/internal/config"
	"github.com/Pab1o16/turing-chat/internal/handler"
	"github.com/Pab1o16/turing-chat/internal/middleware"
	"github.com/Pab1o16/turing-chat/internal/redis"
	"github.com/Pab1o16/turing-chat/internal/repository"
	"github.com/Pab1o16/turing-chat/internal/responder"
	"github.com/Pab1o16/turing-chat/internal/service"
	"github.com/Pab1o16/turing-chat/internal/sse"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env file")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	if cfg.LogFile != "" {
		rotator, err := rotatelogs.New(
			cfg.LogFile+".%Y%m%d",
			rotatelogs.WithLinkName(cfg.LogFile),
			rotatelogs.WithRotationTime(config.LogRotationTime),
			rotatelogs.WithMaxAge(config.LogMaxAge),
		)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.LogFile).Msg("failed to open log file")
		}
		defer rotator.Close()

		log.Logger = log.Output(zerolog.MultiLevelWriter(
			zerolog.ConsoleWriter{Out: os.Stderr},
			io.Writer(rotator),
		))
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	var limiter middleware.Limiter = middleware.NewRateLimiter()
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		limiter = middleware.NewRedisRateLimiter(redisClient)
		log.Info().Msg("redis connected, using shared rate limiter")
	}

	sessionRepo := repository.NewMemorySessionRepository()

	broker := sse.NewBroker()

	chatService := service.NewChatService(sessionRepo, responder.New(cfg), broker, service.ChatConfig{
		DefaultMode:  cfg.DefaultMode,
		SystemPrompt: cfg.SystemPrompt,
	})
	inboxService := service.NewInboxService(sessionRepo)
	exportService := service.NewExportService(sessionRepo)

	r := handler.NewRouter(handler.RouterDeps{
		Config:        cfg,
		ChatService:   chatService,
		InboxService:  inboxService,
		ExportService: exportService,
		Broker:        broker,
		Limiter:       limiter,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Str("defaultMode", cfg.DefaultMode).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	// Close SSE streams first so Shutdown does not wait on them.
	broker.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
