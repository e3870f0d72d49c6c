// Package cli provides the command-line interface for campaignforge.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dadmor/campaignforge/internal/config"
	"github.com/dadmor/campaignforge/internal/db"
	"github.com/dadmor/campaignforge/internal/flows"
	"github.com/dadmor/campaignforge/internal/llm"
	"github.com/dadmor/campaignforge/internal/metrics"
	"github.com/dadmor/campaignforge/internal/service"
	"github.com/dadmor/campaignforge/internal/wizard"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and db client
	cfg      config.Config
	dbClient *db.Client

	// Lazy-initialized wizard engine and services
	engine    *wizard.Engine
	campaigns *service.CampaignService
	accounts  *service.RegistrationService
	collector *metrics.Collector
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "campaignforge",
	Short: "AI-assisted marketing campaign wizards",
	Long: `Campaignforge turns a website URL into a marketing campaign through
guided multi-step wizards: website analysis, industry adjustment,
AI-generated strategy, and persistence into the campaign database.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		dbClient, err = db.NewClient(ctx, dbCfg, nil)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		collector = metrics.NewCollector()
		campaigns = service.NewCampaignService(dbClient, nil, collector)
		accounts = service.NewRegistrationService(dbClient, nil)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
	},
}

// getEngine creates the wizard engine on first use. Commands that never
// touch the AI service skip completer construction entirely.
func getEngine(ctx context.Context) (*wizard.Engine, error) {
	if engine != nil {
		return engine, nil
	}

	completer, err := llm.NewCompleter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init completer: %w", err)
	}

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

	engine = wizard.NewEngine(wizard.NewRegistry(), wizard.NewStore(), completer, nil, opts...)
	for _, flow := range []wizard.Flow{flows.CampaignFlow(), flows.StrategyFlow(), flows.RegistrationFlow()} {
		if err := engine.RegisterFlow(flow); err != nil {
			return nil, fmt.Errorf("register flow: %w", err)
		}
	}
	return engine, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statsCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
