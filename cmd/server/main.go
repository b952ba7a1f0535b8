package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/acrefund/landbank-backend/internal/adapter/httpapi"
	"github.com/acrefund/landbank-backend/internal/adapter/repository/postgres"
	"github.com/acrefund/landbank-backend/internal/config"
	"github.com/acrefund/landbank-backend/internal/domain"
	"github.com/acrefund/landbank-backend/internal/logger"
	"github.com/acrefund/landbank-backend/internal/store"
	"github.com/acrefund/landbank-backend/internal/usecase/seeder"
	"github.com/acrefund/landbank-backend/internal/usecase/simulation"
)

func main() {
	// Load .env if present without overwriting already-set variables, so
	// container environments always win over local files.
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	cfg, err := config.Load(os.Getenv("LANDBANK_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		File:        cfg.Logging.File,
		Development: cfg.Logging.Development,
	})
	defer log.Sync()

	db, err := postgres.NewDB(cfg.Database.ConnString(), log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.EnsureSchema(); err != nil {
		log.Fatal("failed to ensure database schema", zap.Error(err))
	}

	stateRepo := postgres.NewStateRepository(db)
	snapRepo := postgres.NewSnapshotRepository(db)
	eventRepo := postgres.NewEventRepository(db)

	fundStore := store.New(stateRepo, snapRepo, eventRepo, log)
	fresh, err := fundStore.Init(context.Background(), cfg.Fund.ToDomain())
	if err != nil {
		log.Fatal("failed to initialize fund state", zap.Error(err))
	}

	if fresh && cfg.Seed.DemoMembers > 0 {
		_, err := fundStore.Dispatch(context.Background(), func(st *domain.FundState) ([]domain.SimulationEvent, error) {
			return nil, seeder.SeedDemoMembers(st, cfg.Seed.DemoMembers)
		})
		if err != nil {
			log.Fatal("failed to seed demo members", zap.Error(err))
		}
		log.Info("seeded demo members", zap.Int("count", cfg.Seed.DemoMembers))
	}

	engine := simulation.NewEngine(seeder.NewPersonaGenerator(cfg.Fund.RandomSeed))

	api := httpapi.NewServer(fundStore, engine, eventRepo, log)
	router := api.Router(cfg.Server.APIToken)

	handler := handlers.RecoveryHandler()(handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(router))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv, log)
}

// waitForShutdown blocks until SIGTERM or SIGINT, then drains requests.
func waitForShutdown(srv *http.Server, log *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("http server stopped")
}
