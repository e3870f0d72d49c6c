package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dadmor/campaignforge/internal/flows"
	"github.com/dadmor/campaignforge/internal/llm"
	"github.com/dadmor/campaignforge/internal/wizard"
)

var analyzeSave bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a website without the interactive wizard",
	Long: `Run the website analysis operation once and print the result.

Examples:
  campaignforge analyze https://example.com
  campaignforge analyze https://example.com --save`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "store the analysis as a website_analysis record")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		exitWithError("URL must start with http:// or https://")
	}

	ctx := context.Background()
	completer, err := llm.NewCompleter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init completer: %w", err)
	}

	exec := wizard.NewExecutor("cli-"+uuid.NewString(), wizard.NewStore(), completer, nil)
	exec.RegisterOperation(flows.WebsiteAnalysisOperation())
	defer exec.UnregisterOperation()

	fmt.Printf("Analyzing %s ...\n", url)
	result, err := exec.Execute(ctx, map[string]any{"url": url})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if analyzeSave {
		record, err := dbClient.Create(ctx, "website_analysis", map[string]any{
			"url":         url,
			"description": result["description"],
			"keywords":    result["keywords"],
			"industry":    result["industry"],
		})
		if err != nil {
			return fmt.Errorf("save analysis: %w", err)
		}
		fmt.Printf("\nSaved as %v\n", record["id"])
	}
	return nil
}
