package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/events"
	httpapi "storefront/internal/http"
	"storefront/internal/logger"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/trace"

	_ "storefront/docs"
)

// @title Storefront API
// @version 1.0
// @description Backend for the pizzeria storefront: menu, cart, checkout and back-office.
// @BasePath /api/v1
func main() {
	cfg := config.Load()

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := trace.InitTracer(ctx, cfg.Tracing.ServiceName)
		if err != nil {
			lg.Fatal("tracer init failed", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	client := api.New(api.Options{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout, Logger: lg})

	menu := cache.New[[]domain.Product](cfg.API.MenuCacheTTL, max(cfg.API.MenuCacheTTL, time.Minute), lg)
	go func() {
		if err := menu.GC(ctx); err != nil && !errors.Is(err, context.Canceled) {
			lg.Warn("menu cache gc stopped", zap.Error(err))
		}
	}()

	notifier, closeNotifier := buildNotifier(cfg, lg)
	defer closeNotifier()

	sessions := repository.NewMemorySessions(httpapi.SessionFactory(client, notifier, lg), lg)
	go sessions.RunSweeper(ctx, max(cfg.Session.TTL/4, time.Minute), cfg.Session.TTL)

	srv := httpapi.NewServer(httpapi.Deps{
		Sessions: sessions,
		Auth:     auth.NewService(client, lg),
		Products: service.NewProductService(client, menu, lg),
		Orders:   service.NewOrderService(client, lg),
		Users:    service.NewUserService(client, lg),
		HTTP:     cfg.HTTP,
		Session:  cfg.Session,
		Service:  cfg.Tracing.ServiceName,
		Logger:   lg,
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		lg.Info("HTTP server listening", zap.String("addr", httpServer.Addr), zap.String("api", cfg.API.BaseURL))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown error", zap.Error(err))
	}
}

// buildNotifier fans checkout events out to the configured sinks
func buildNotifier(cfg *config.Config, lg *zap.Logger) (checkout.Notifier, func()) {
	var sinks events.Multi
	closeFn := func() {}

	if cfg.Kafka.Enabled() {
		pub, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, lg)
		if err != nil {
			lg.Error("kafka disabled", zap.Error(err))
		} else {
			sinks = append(sinks, pub)
			closeFn = func() {
				if err := pub.Close(); err != nil {
					lg.Warn("kafka close", zap.Error(err))
				}
			}
		}
	}
	if cfg.Mail.Enabled() {
		sinks = append(sinks, events.NewMailer(cfg.Mail.ServerToken, cfg.Mail.Sender, lg))
	}

	if len(sinks) == 0 {
		return events.Nop{}, closeFn
	}
	return sinks, closeFn
}
