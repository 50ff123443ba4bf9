package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"productpulse-backend/internal/config"
	"productpulse-backend/internal/database"
	"productpulse-backend/internal/handlers"
	"productpulse-backend/internal/logger"
	"productpulse-backend/internal/mailer"
	"productpulse-backend/internal/notify"
	"productpulse-backend/internal/onboarding"
	"productpulse-backend/internal/repository"
	"productpulse-backend/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Connect(ctx, cfg.MongoURI, cfg.DBName, log); err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}

	// Initialize repositories
	submissionRepo := repository.NewSubmissionRepo(cfg.SubmissionsCollection)
	postRepo := repository.NewPostRepo()
	tokenRepo := repository.NewAuthTokenRepo()

	// Ensure indexes
	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := submissionRepo.EnsureIndexes(idxCtx); err != nil {
		log.Warn("failed to create submission indexes", zap.Error(err))
	}
	if err := postRepo.EnsureIndexes(idxCtx); err != nil {
		log.Warn("failed to create post indexes", zap.Error(err))
	}
	if err := tokenRepo.EnsureIndexes(idxCtx); err != nil {
		log.Warn("failed to create token indexes", zap.Error(err))
	}
	cancel()

	// Onboarding session store
	var sessions onboarding.SessionStore
	if cfg.RedisURL != "" {
		rdb, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		sessions = onboarding.NewRedisStore(rdb, cfg.SessionTTL)
		log.Info("onboarding sessions stored in Redis")
	} else {
		mem := onboarding.NewMemoryStore(cfg.SessionTTL)
		go mem.RunSweeper(ctx, time.Minute)
		sessions = mem
		log.Info("onboarding sessions stored in memory")
	}

	gateway := onboarding.NewGateway(submissionRepo, log)
	onboardingSvc := onboarding.NewService(sessions, gateway, log)

	notifier := notify.NewLogNotifier(log)
	mail := mailer.New(cfg.ResendAPIKey, cfg.FromEmail, log)

	// Initialize handlers
	onboardingHandler := handlers.NewOnboardingHandler(onboardingSvc, gateway, notifier, mail, log)
	blogHandler := handlers.NewBlogHandler(postRepo, log)
	authHandler := handlers.NewAuthHandler(tokenRepo, mail, handlers.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		BaseURL:   cfg.BaseURL,
		SiteURL:   cfg.SiteURL,
		IsAdmin:   cfg.IsAdmin,
	}, log)

	router := server.NewRouter(server.Deps{
		Onboarding:     onboardingHandler,
		Blog:           blogHandler,
		Auth:           authHandler,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("productpulse backend starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	onboardingHandler.Wait()
	if err := database.Disconnect(shutdownCtx); err != nil {
		log.Error("error disconnecting MongoDB", zap.Error(err))
	}
}
