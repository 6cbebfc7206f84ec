package main

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tradepool/internal/config"
	"tradepool/internal/database"
	"tradepool/internal/ledger"
	"tradepool/internal/logger"
	"tradepool/internal/trading"
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

	// Connect to the database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	accountLedger := ledger.NewLedger(log, db)
	manager := trading.NewManager(log, db, accountLedger)

	mux := http.NewServeMux()
	apiHandler := NewAPIHandler(log, accountLedger, manager)
	apiHandler.Register(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateLimitBurst)
	handler := rateLimit(limiter, mux)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting API server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal("API server failed", zap.Error(err))
	}
}

// rateLimit rejects requests above the configured rate with 429 instead of
// queueing them; the clients are interactive and retry themselves.
func rateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
