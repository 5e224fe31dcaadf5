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

	"github.com/msellami/medigate/gateway/internal/config"
	"github.com/msellami/medigate/gateway/internal/httpserver"
	"github.com/msellami/medigate/pkg/logging"
	loggingmw "github.com/msellami/medigate/pkg/middleware/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(loggingmw.RequestLogger(logger))

	if err := httpserver.Register(e, &httpserver.Deps{
		AuthURL:         cfg.AuthURL,
		PatientURL:      cfg.PatientURL,
		DoctorURL:       cfg.DoctorURL,
		AppointmentURL:  cfg.AppointmentURL,
		ImagingURL:      cfg.ImagingURL,
		RecordURL:       cfg.RecordURL,
		NotificationURL: cfg.NotificationURL,
		JWTSecret:       cfg.JWTSecret,
		JWTIssuer:       cfg.JWTIssuer,
		JWTAudience:     cfg.JWTAudience,
	}); err != nil {
		log.Fatal(err)
	}

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
