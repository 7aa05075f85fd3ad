// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tender-digest/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect journaled submissions (list, export)",
	Long: `History reads the submission journal written by serve. Use list to
print recent submissions or export to write the journal to YAML or JSON.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent submissions, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := journal.NewStore(loadConfig().Journal)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background(), queryOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No submissions found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-12s  %-30s  %-6s  %s\n",
		"Finished", "Channel", "Documents", "Files", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, e := range entries {
		docs := strings.Join(e.Documents, ", ")
		if len(docs) > 30 {
			docs = docs[:27] + "..."
		}
		status := "ok"
		if e.Err != "" {
			status = "failed: " + e.Err
		} else if len(e.Failures) > 0 {
			status = fmt.Sprintf("partial (%d failed)", len(e.Failures))
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-12d  %-30s  %-6d  %s\n",
			e.FinishedAt.Format("2006-01-02 15:04:05"), e.ChannelID, docs, len(e.Documents), status)
	}

	fmt.Fprintf(os.Stdout, "\n%d submissions\n", len(entries))
	return nil
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal to YAML or JSON",
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig().Journal
	store, err := journal.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd)
	format, _ := cmd.Flags().GetString("format")

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", cfg.Dir)
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", cfg.Dir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	return nil
}

func queryOptsFromFlags(cmd *cobra.Command) journal.QueryOptions {
	channelID, _ := cmd.Flags().GetInt64("channel")
	failedOnly, _ := cmd.Flags().GetBool("failed")
	limit, _ := cmd.Flags().GetInt("limit")
	return journal.QueryOptions{
		ChannelID:  channelID,
		FailedOnly: failedOnly,
		MaxResults: limit,
	}
}

func init() {
	historyListCmd.Flags().Int64("channel", 0, "filter by channel ID")
	historyListCmd.Flags().Bool("failed", false, "show only failed submissions")
	historyListCmd.Flags().Int("limit", 0, "maximum entries (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().Int64("channel", 0, "filter by channel ID")
	historyExportCmd.Flags().Bool("failed", false, "export only failed submissions")
	historyExportCmd.Flags().Int("limit", 0, "maximum entries (0 = all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
