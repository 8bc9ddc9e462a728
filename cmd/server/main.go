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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rkhatri/munim/internal/backup"
	"github.com/rkhatri/munim/internal/middleware"
	"github.com/rkhatri/munim/internal/service"
	"github.com/rkhatri/munim/internal/storage/sqlite"
	"github.com/rkhatri/munim/pkg/logging"
)

const defaultPort = "8080"

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real env always wins.
	_ = godotenv.Load()
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/munim.db")
	backupPath := getEnv("BACKUP_PATH", "./data/backup.json")
	port := getEnv("PORT", defaultPort)

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", dbPath)

	svc := service.NewLedgerService(store)

	// Every committed mutation schedules a debounced JSON export.
	exporter := backup.NewExporter(store, backupPath, 5*time.Second)
	svc.Mutator().OnCommit(exporter.Notify)

	mux := http.NewServeMux()
	svc.Routes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: middleware.Logging(middleware.CORS(mux)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	// Flush any pending export before the store closes.
	exporter.Close()
}
