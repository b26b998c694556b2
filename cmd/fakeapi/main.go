// Command fakeapi serves a seeded in-memory restaurant API for local
// development of the storefront.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storefront/internal/fakeapi"
	"storefront/internal/logger"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	secret := flag.String("secret", "", "token signing secret")
	flag.Parse()

	lg, err := logger.New("debug", "console")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	fake := fakeapi.New(fakeapi.Options{Secret: *secret, Logger: lg})
	fx, err := fake.Seed()
	if err != nil {
		lg.Fatal("seed failed", zap.Error(err))
	}
	lg.Info("seeded",
		zap.String("admin", fx.Admin.Email),
		zap.String("customer", fx.Customer.Email),
		zap.String("password", fakeapi.SeedPassword),
		zap.Int("products", len(fx.Products)),
	)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", fake.Handler()))
	httpServer := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		lg.Info("fake API listening", zap.String("addr", *addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		lg.Error("shutdown error", zap.Error(err))
	}
}
