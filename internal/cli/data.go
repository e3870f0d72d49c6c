package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dadmor/campaignforge/internal/db"
)

var (
	listLimit  int
	listOffset int
	listSort   string
)

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List records of a resource table",
	Long: `List records of one of the campaign resource tables.

Resources: website_analysis, marketing_strategy, google_ads_campaign,
blog_post, category, profile.

Examples:
  campaignforge list website_analysis
  campaignforge list marketing_strategy --sort created --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show <resource> <id>",
	Short: "Show one record as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete one record",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 50, "max results")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "pagination offset")
	listCmd.Flags().StringVar(&listSort, "sort", "", "field to sort by")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	records, total, err := dbClient.List(ctx, args[0], db.ListOptions{
		SortField: listSort,
		Limit:     listLimit,
		Offset:    listOffset,
	})
	if err != nil {
		return fmt.Errorf("list %s: %w", args[0], err)
	}

	if len(records) == 0 {
		fmt.Println("No records found.")
		return nil
	}

	fmt.Printf("%s (%d of %d):\n\n", args[0], len(records), total)
	for _, record := range records {
		fmt.Printf("- %s\n", recordLine(record))
		if verbose {
			for _, key := range sortedKeys(record) {
				if key == "id" {
					continue
				}
				fmt.Printf("  %s: %v\n", key, record[key])
			}
		}
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	record, err := dbClient.Get(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("get %s: %w", args[0], err)
	}
	if record == nil {
		exitWithError("%s %q not found", args[0], args[1])
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := dbClient.Delete(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("delete %s: %w", args[0], err)
	}
	fmt.Printf("Deleted %s %s\n", args[0], args[1])
	return nil
}

// recordLine picks the most descriptive field for the one-line listing.
func recordLine(record map[string]any) string {
	id, _ := record["id"].(string)
	for _, key := range []string{"title", "name", "url", "email", "process_id"} {
		if v, ok := record[key].(string); ok && v != "" {
			return fmt.Sprintf("%v [%v]", v, record["id"])
		}
	}
	return id
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
