package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"banking-ledger/internal/config"
	"banking-ledger/internal/events"
	"banking-ledger/internal/gateway"
	"banking-ledger/internal/handler"
	"banking-ledger/internal/logger"
	"banking-ledger/internal/repository"
	"banking-ledger/internal/service"
)

const version = "1.0.0"

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(os.Stdout, cfg.Logger)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	log.Info("database connection established")

	if err := repository.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewAccountTransactionRepository(db, accountRepo)

	// Services
	sink := events.NewLogSink(log)
	payments := gateway.New(log)
	accountService := service.NewAccountService(accountRepo, cfg.Loan, log)
	transactionService := service.NewTransactionService(
		accountRepo, transactionRepo, payments, sink, cfg.Approval, log)

	// Handlers
	healthHandler := handler.NewHealthHandler(db, version)
	accountHandler := handler.NewAccountHandler(accountService)
	transactionHandler := handler.NewTransactionHandler(transactionService)

	server := initServer(cfg, log, healthHandler, accountHandler, transactionHandler)

	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Info("server exited")
}

func initDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping database")
	}
	return db, nil
}

func initServer(
	cfg *config.Config,
	log *logrus.Logger,
	healthHandler *handler.HealthHandler,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/healthz", healthHandler)

	mux.HandleFunc("/v1/accounts", accountHandler.CreateAccount)
	mux.HandleFunc("/v1/accounts/groups", accountHandler.CreateGroupAccount)
	mux.HandleFunc("/v1/accounts/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/suspend"):
			accountHandler.SuspendAccount(w, r)
		case strings.HasSuffix(path, "/close"):
			accountHandler.CloseAccount(w, r)
		case strings.HasSuffix(path, "/ledger"):
			transactionHandler.GetAccountLedger(w, r)
		default:
			accountHandler.GetAccount(w, r)
		}
	})

	mux.HandleFunc("/v1/transactions/deposit", transactionHandler.Deposit)
	mux.HandleFunc("/v1/transactions/withdraw", transactionHandler.Withdraw)
	mux.HandleFunc("/v1/transactions/transfer", transactionHandler.Transfer)
	mux.HandleFunc("/v1/transactions/approve", transactionHandler.Approve)
	mux.HandleFunc("/v1/transactions/", transactionHandler.GetTransaction)

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      loggingMiddleware(log, mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapped.statusCode,
			"duration": time.Since(start).String(),
		}).Info("request handled")
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
