package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cms-service/internal/config"
	"cms-service/internal/delivery"
	"cms-service/internal/service"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using system environment variables")
	} else {
		log.Info("Environment variables loaded from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	sanityClient, err := service.NewSanityClient(cfg.Sanity)
	if err != nil {
		log.Fatalf("Failed to initialize Sanity client: %v", err)
	}

	smsSender, err := service.NewTwilioSender(cfg.SMS)
	if err != nil {
		log.Fatalf("Failed to initialize SMS sender: %v", err)
	}

	otpService := service.NewOTPService(sanityClient, smsSender, cfg.OTP.TTL)
	defer otpService.Stop()

	if cfg.Zitadel.Enabled() {
		zitadelService, err := service.NewZitadelService(context.Background(), cfg.Zitadel)
		if err != nil {
			log.Fatalf("Failed to initialize Zitadel service: %v", err)
		}
		otpService.WithIdentityRegistrar(zitadelService)
	}

	if cfg.OTP.SweepEnabled {
		sweeper, err := service.NewOTPSweeper(sanityClient, cfg.OTP.SweepSchedule)
		if err != nil {
			log.Fatalf("Failed to initialize OTP sweeper: %v", err)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	handler := delivery.NewHandler(
		service.NewEventService(sanityClient),
		service.NewContactService(sanityClient),
		service.NewClientService(sanityClient),
		otpService,
		newSessionStore(cfg),
	)

	app := newApp(cfg, handler)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	log.Infof("Server is running on http://localhost:%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Error("Server stopped")
	}
}
