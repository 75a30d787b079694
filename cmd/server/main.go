package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"binance-profit-tracker-go/internal/binance"
	"binance-profit-tracker-go/internal/config"
	"binance-profit-tracker-go/internal/database"
	"binance-profit-tracker-go/internal/logger"
	"binance-profit-tracker-go/internal/store"
	"binance-profit-tracker-go/internal/tracker"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Open the ledger cache
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open ledger cache", zap.Error(err))
	}

	// Warm the store from the cache so the UI has data before the first
	// refresh completes.
	ledgers := store.NewLedgerStore()
	if err := store.Load(db, ledgers); err != nil {
		log.Warn("Failed to load cached ledgers", zap.Error(err))
	}

	// Initialize Binance REST client
	restClient := binance.NewRestClient(&cfg.Binance, log)
	if _, err := restClient.GetServerTime(context.Background()); err != nil {
		log.Fatal("Failed to connect to Binance API", zap.Error(err))
	}
	log.Info("Successfully connected to Binance API.")

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start the background refresh loop
	tr := tracker.NewTracker(log, &cfg.Tracker, restClient, db, ledgers)
	go tr.Run(ctx)

	// Setup HTTP server
	mux := http.NewServeMux()

	apiHandler := NewAPIHandler(log, tr)

	mux.HandleFunc("/api/status", apiHandler.StatusHandler)
	mux.HandleFunc("/api/summary", apiHandler.SummaryHandler)
	mux.HandleFunc("/api/series", apiHandler.SeriesHandler)
	mux.HandleFunc("/api/trades", apiHandler.TradesHandler)
	mux.HandleFunc("/api/sync", apiHandler.SyncHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting web server", zap.String("address", addr))

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Web server failed", zap.Error(err))
	}

	log.Info("Tracker has been shut down.")
}
