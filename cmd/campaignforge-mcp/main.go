// Package main provides the entry point for the campaignforge MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dadmor/campaignforge/internal/config"
	"github.com/dadmor/campaignforge/internal/db"
	"github.com/dadmor/campaignforge/internal/flows"
	"github.com/dadmor/campaignforge/internal/llm"
	"github.com/dadmor/campaignforge/internal/mcpserver"
	"github.com/dadmor/campaignforge/internal/mcptools"
	"github.com/dadmor/campaignforge/internal/service"
	"github.com/dadmor/campaignforge/internal/wizard"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON). Stdout is
	// reserved for the MCP stdio transport.
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("campaignforge-mcp starting",
		"version", version,
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

	dbClient, err := db.NewClient(ctx, dbCfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database connection")
		_ = dbClient.Close(ctx)
	}()

	if err := dbClient.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	completer, err := llm.NewCompleter(ctx, cfg)
	if err != nil {
		logger.Error("failed to create AI completer", "error", err)
		os.Exit(1)
	}

	engine := wizard.NewEngine(wizard.NewRegistry(), wizard.NewStore(), completer, logger,
		wizard.WithObserver(func(op string, duration time.Duration, err error) {
			logger.Debug("operation finished", "operation", op, "duration", duration, "error", err)
		}))
	for _, flow := range []wizard.Flow{flows.CampaignFlow(), flows.StrategyFlow(), flows.RegistrationFlow()} {
		if err := engine.RegisterFlow(flow); err != nil {
			logger.Error("failed to register flow", "process", flow.Process.ID, "error", err)
			os.Exit(1)
		}
	}

	campaigns := service.NewCampaignService(dbClient, logger, nil)

	srv := mcpserver.New(version, logger)
	srv.Setup()

	deps := &mcptools.Dependencies{
		Engine:    engine,
		Completer: completer,
		Campaigns: campaigns,
		Data:      dbClient,
		Logger:    logger,
	}
	mcptools.RegisterAll(srv.MCPServer(), deps)
	logger.Info("tools registered", "count", 7)

	logger.Info("server ready, awaiting connections")

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
