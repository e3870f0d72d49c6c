package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dadmor/campaignforge/internal/metrics"
)

var statsServer string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show runtime statistics of a running campaignforge server",
	Long: `Fetch and display the in-memory runtime statistics of a running
campaignforge server.

Examples:
  campaignforge stats
  campaignforge stats --server http://localhost:8282`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsServer, "server", "http://localhost:8282", "server base URL")
}

func runStats(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Second}

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, statsServer+"/api/stats", nil)
	if err != nil {
		return err
	}
	if cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch stats: server returned %s", resp.Status)
	}

	var snap metrics.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return fmt.Errorf("decode stats: %w", err)
	}

	printStats(snap)
	return nil
}

// printStats displays server runtime statistics.
func printStats(snap metrics.Snapshot) {
	fmt.Printf("Server Statistics (in-memory, since restart)\n")
	fmt.Printf("═══════════════════════════════════════════════\n")
	fmt.Printf("Uptime: %.1f seconds\n", snap.UptimeSeconds)

	if snap.LLMExecute != nil {
		fmt.Printf("\nAI Operations:\n")
		printOpStats(snap.LLMExecute)
	}
	if snap.StepAdvance != nil {
		fmt.Printf("\nStep Advances:\n")
		printOpStats(snap.StepAdvance)
	}
	if snap.WizardSave != nil {
		fmt.Printf("\nWizard Saves:\n")
		printOpStats(snap.WizardSave)
	}
	if snap.DBQuery != nil {
		fmt.Printf("\nDB Queries:\n")
		printOpStats(snap.DBQuery)
	}
	if snap.DraftSave != nil {
		fmt.Printf("\nDraft Saves:\n")
		printOpStats(snap.DraftSave)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(op *metrics.OperationSnapshot) {
	fmt.Printf("  Calls: %d, Failures: %d, Total: %dms\n", op.Count, op.Failures, op.TotalTimeMs)
	fmt.Printf("  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}
