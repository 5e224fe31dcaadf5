package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/msellami/medigate/pkg/db"
	"github.com/msellami/medigate/pkg/logging"
	loggingmw "github.com/msellami/medigate/pkg/middleware/logging"
	"github.com/msellami/medigate/pkg/mykafka"
	"github.com/msellami/medigate/pkg/tokens"
	"github.com/msellami/medigate/services/auth/internal/config"
	"github.com/msellami/medigate/services/auth/internal/httpserver"
	"github.com/msellami/medigate/services/auth/internal/repo"
	"github.com/msellami/medigate/services/auth/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gormDB, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := repo.Migrate(gormDB); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	issuer := &tokens.Issuer{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}

	svc := &service.AuthService{
		Repo:   &repo.GormRepo{DB: gormDB},
		Issuer: issuer,
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer := mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		svc.Events = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, registration events disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(ecM.Recover(), ecM.RequestID(), loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &httpserver.AuthHTTP{Svc: svc},
		UsersHandler: &httpserver.UsersHTTP{Svc: svc},
		Issuer:       issuer,
	})

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
