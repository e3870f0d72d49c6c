// Package main provides the HTTP API server for campaignforge.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dadmor/campaignforge/internal/config"
	"github.com/dadmor/campaignforge/internal/db"
	"github.com/dadmor/campaignforge/internal/flows"
	"github.com/dadmor/campaignforge/internal/llm"
	"github.com/dadmor/campaignforge/internal/metrics"
	"github.com/dadmor/campaignforge/internal/server"
	"github.com/dadmor/campaignforge/internal/service"
	"github.com/dadmor/campaignforge/internal/wizard"
)

const version = "0.1.0"

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	configFile := flag.String("config", "", "path to YAML config file overlaying the environment")
	flag.Parse()

	cfg := config.Load()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadFile(cfg, *configFile)
		if err != nil {
			os.Stderr.WriteString("Error: " + err.Error() + "\n")
			os.Exit(1)
		}
	}

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("campaignforge-server starting",
		"version", version,
		"port", cfg.ServerPort,
		"surrealdb_url", cfg.SurrealDBURL,
		"llm_provider", cfg.LLMProvider,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	dbCfg := db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, 30*time.Second)
	dbClient, err := db.NewClient(connectCtx, dbCfg, logger)
	connectCancel()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database connection")
		_ = dbClient.Close(context.Background())
	}()

	if err := dbClient.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	if *wipeDB || os.Getenv("CAMPAIGNFORGE_WIPE_DB") == "true" {
		if err := dbClient.WipeData(ctx); err != nil {
			logger.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
		logger.Warn("database wiped on startup")
	}

	completer, err := llm.NewCompleter(ctx, cfg)
	if err != nil {
		logger.Error("failed to create AI completer", "error", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector()

	opts := []wizard.EngineOption{
		wizard.WithObserver(func(op string, duration time.Duration, err error) {
			if op == wizard.DraftSaveOp {
				collector.RecordOutcome(metrics.OpDraftSave, duration, err)
				return
			}
			collector.RecordOutcome(metrics.OpLLMExecute, duration, err)
		}),
	}
	if cfg.PersistDrafts {
		opts = append(opts, wizard.WithDrafts(db.NewDraftStore(dbClient)))
	}

	engine := wizard.NewEngine(wizard.NewRegistry(), wizard.NewStore(), completer, logger, opts...)
	for _, flow := range []wizard.Flow{flows.CampaignFlow(), flows.StrategyFlow(), flows.RegistrationFlow()} {
		if err := engine.RegisterFlow(flow); err != nil {
			logger.Error("failed to register flow", "process", flow.Process.ID, "error", err)
			os.Exit(1)
		}
	}

	campaigns := service.NewCampaignService(dbClient, logger, collector)
	registration := service.NewRegistrationService(dbClient, logger)

	srv := server.New(server.Config{
		Port:     cfg.ServerPort,
		APIToken: cfg.APIToken,
	}, engine, campaigns, registration, dbClient, collector, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
