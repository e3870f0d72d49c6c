package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dadmor/campaignforge/internal/flows"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Run an interactive wizard",
	Long: `Run one of the interactive wizards in the terminal.

Subcommands:
  campaign           Full campaign wizard: URL -> analysis -> strategy -> save
  strategy <id>      Strategy wizard for an existing website analysis
  register           Account registration`,
}

var wizardCampaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Run the campaign wizard",
	RunE:  runWizardCampaign,
}

var wizardStrategyCmd = &cobra.Command{
	Use:   "strategy <analysis-id>",
	Short: "Run the strategy wizard for an existing website analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runWizardStrategy,
}

var wizardRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Run the account registration wizard",
	RunE:  runWizardRegister,
}

func init() {
	wizardCmd.AddCommand(wizardCampaignCmd)
	wizardCmd.AddCommand(wizardStrategyCmd)
	wizardCmd.AddCommand(wizardRegisterCmd)
}

func runWizardCampaign(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	eng, err := getEngine(ctx)
	if err != nil {
		return err
	}

	if cfg.PersistDrafts {
		if err := eng.RestoreDraft(ctx, flows.CampaignProcessID); err != nil {
			fmt.Printf("Warning: could not restore draft: %v\n", err)
		}
	}

	return runWizardUI(eng, flows.CampaignProcessID,
		func(ctx context.Context, data map[string]any) (string, error) {
			saved, err := campaigns.SaveCampaign(ctx, data)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Saved analysis %s and strategy %s", saved.AnalysisID, saved.StrategyID), nil
		})
}

func runWizardStrategy(cmd *cobra.Command, args []string) error {
	analysisID := args[0]
	ctx := context.Background()

	eng, err := getEngine(ctx)
	if err != nil {
		return err
	}

	analysis, err := dbClient.GetWebsiteAnalysis(ctx, analysisID)
	if err != nil {
		return fmt.Errorf("load analysis: %w", err)
	}
	if analysis == nil {
		exitWithError("website analysis %q not found", analysisID)
	}

	// Seed the process record like opening the wizard from an analysis
	// detail view would.
	keywords := make([]any, 0, len(analysis.Keywords))
	for _, k := range analysis.Keywords {
		keywords = append(keywords, k)
	}
	eng.Store().SetData(flows.StrategyProcessID, map[string]any{
		"url":              analysis.URL,
		"description":      analysis.Description,
		"keywords":         keywords,
		"industry":         analysis.Industry,
		"originalIndustry": analysis.Industry,
	})

	return runWizardUI(eng, flows.StrategyProcessID,
		func(ctx context.Context, data map[string]any) (string, error) {
			strategyID, err := campaigns.SaveStrategy(ctx, analysisID, data)
			if err != nil {
				return "", err
			}
			return "Saved strategy " + strategyID, nil
		})
}

func runWizardRegister(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	eng, err := getEngine(ctx)
	if err != nil {
		return err
	}

	return runWizardUI(eng, flows.RegistrationProcessID,
		func(ctx context.Context, data map[string]any) (string, error) {
			profileID, err := accounts.Register(ctx, data)
			if err != nil {
				return "", err
			}
			return "Registered profile " + profileID, nil
		})
}
