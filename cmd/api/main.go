package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/cache"
	"github.com/Yespecom/server-updated-sub001/internal/config"
	"github.com/Yespecom/server-updated-sub001/internal/database"
	"github.com/Yespecom/server-updated-sub001/internal/handlers"
	"github.com/Yespecom/server-updated-sub001/internal/logger"
	"github.com/Yespecom/server-updated-sub001/internal/mailer"
	"github.com/Yespecom/server-updated-sub001/internal/middleware"
	"github.com/Yespecom/server-updated-sub001/internal/repository"
	"github.com/Yespecom/server-updated-sub001/internal/server"
	"github.com/Yespecom/server-updated-sub001/internal/token"
	"github.com/Yespecom/server-updated-sub001/internal/verify"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	platformPool, err := database.NewPlatformPool(ctx, cfg)
	if err != nil {
		log.Fatal("failed to connect to platform database", zap.Error(err))
	}
	log.Info("platform database pool initialized")

	registry := database.NewRegistry(
		database.NewPgxDialer(cfg, log),
		log,
		database.WithDialTimeout(time.Duration(cfg.TenantDB.DialTimeoutSeconds)*time.Second),
		database.WithHealthInterval(time.Duration(cfg.TenantDB.HealthCheckSeconds)*time.Second),
	)

	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}

	captcha, err := verify.NewCaptchaVerifier(&cfg.Captcha, log)
	if err != nil {
		log.Fatal("failed to build captcha verifier", zap.Error(err))
	}
	otp, err := verify.NewOTPProvider(&cfg.OTP, log)
	if err != nil {
		log.Fatal("failed to build OTP provider", zap.Error(err))
	}
	mail, err := mailer.New(&cfg.Mail, log)
	if err != nil {
		log.Fatal("failed to build mailer", zap.Error(err))
	}

	accounts := repository.NewAccountRepository(platformPool)
	codec := token.NewCodec(&cfg.JWT)

	authPipeline := middleware.NewAuthMiddleware(codec, accounts, registry, log)
	storeResolver := middleware.NewStoreResolver(accounts, registry, redisClient, log)

	router := server.New(server.Deps{
		Log:           log,
		Health:        handlers.NewHealthHandler(cfg.App.Env),
		Auth:          handlers.NewAuthHandler(accounts, codec, captcha, cfg.Captcha.MinScore, log),
		OTP:           handlers.NewOTPHandler(otp, log),
		PasswordReset: handlers.NewPasswordResetHandler(accounts, registry, redisClient, mail, log),
		Admin:         handlers.NewAdminHandler(registry, log),
		Store:         handlers.NewStoreHandler(codec, log),
		AuthPipeline:  authPipeline,
		StoreResolver: storeResolver,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("API listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	// Drain every tenant connection before exiting.
	registry.CloseAll()
	platformPool.Close()
	if err := redisClient.Close(); err != nil {
		log.Warn("redis close failed", zap.Error(err))
	}

	log.Info("exited")
}
