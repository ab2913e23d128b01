package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/tally-money/tally/internal/account"
	accountMemstore "github.com/tally-money/tally/internal/account/memstore"
	accountStore "github.com/tally-money/tally/internal/account/store"
	"github.com/tally-money/tally/internal/auth"
	"github.com/tally-money/tally/internal/config"
	"github.com/tally-money/tally/internal/database"
	"github.com/tally-money/tally/internal/events"
	"github.com/tally-money/tally/internal/events/kafka"
	tallyHttp "github.com/tally-money/tally/internal/http"
	accountHandler "github.com/tally-money/tally/internal/http/account"
	ledgerHandler "github.com/tally-money/tally/internal/http/ledger"
	"github.com/tally-money/tally/internal/ledger"
	"github.com/tally-money/tally/internal/ledger/memstore"
	ledgerStore "github.com/tally-money/tally/internal/ledger/store"
	"github.com/tally-money/tally/pkg/logging"
)

func main() {
	logging.Setup()

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var (
		accountRepo account.Repository
		ledgerRepo  ledger.Repository
	)

	switch cfg.DB.Driver {
	case "memory":
		slog.Warn("using in-memory storage, data will not survive restarts")

		// The account store deletes an owner's ledger data through the
		// ledger store, standing in for the cascade constraints Postgres
		// applies on its own.
		ledgerMem := memstore.New()
		accountRepo = accountMemstore.New(ledgerMem)
		ledgerRepo = ledgerMem
	default:
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		accountRepo = accountStore.New(db)
		ledgerRepo = ledgerStore.New(db)
	}

	var pub events.Publisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub := kafka.NewPublisher(cfg.Kafka.Brokers)
		defer kafkaPub.Close()

		pub = kafkaPub
		slog.Info("publishing events to kafka", "brokers", cfg.Kafka.Brokers)
	}

	var (
		tokens         = auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		accountService = account.NewService(accountRepo)
		ledgerService  = ledger.NewService(ledgerRepo, pub)
	)

	var (
		authH   = accountHandler.NewHandler(accountService, tokens)
		ledgerH = ledgerHandler.NewHandler(ledgerService)
	)

	router := tallyHttp.New(tokens, authH, ledgerH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
