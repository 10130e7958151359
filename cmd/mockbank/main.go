// Command mockbank serves the in-memory banking API for local development
// and manual testing of the client. Business rules live in internal/mockbank.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"teller/internal/mockbank"
	"teller/internal/platform/logger"
)

func main() {
	log := logger.New()

	addr := os.Getenv("MOCKBANK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	opts := []mockbank.Option{mockbank.WithLogger(log)}
	if key := os.Getenv("MOCKBANK_SIGNING_KEY"); key != "" {
		opts = append(opts, mockbank.WithSigningKey([]byte(key)))
	}
	if ttl := os.Getenv("MOCKBANK_TOKEN_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			opts = append(opts, mockbank.WithTokenTTL(parsed))
		} else {
			log.Warn("invalid MOCKBANK_TOKEN_TTL, using default", slog.String("value", ttl))
		}
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      mockbank.NewServer(opts...).Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting mockbank", slog.String("addr", addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down mockbank")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
}
