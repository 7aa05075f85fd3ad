// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tender-digest/internal/batch"
	"github.com/pdiddy/tender-digest/internal/extract"
	"github.com/pdiddy/tender-digest/internal/llm"
	"github.com/pdiddy/tender-digest/internal/summarize"
	"github.com/pdiddy/tender-digest/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file...]",
	Short: "Summarize local tender documents without Telegram",
	Long: `Summarize extracts text from one or more local files (.doc/.docx/
.xlsx/.pdf/.rar) and prints a single structured summary to stdout. Several
files are treated as one document package, the way an upload batch would be.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummarize,
}

// localFiles copies files from disk so the extraction service can run on
// local paths.
type localFiles struct{}

func (localFiles) Download(ctx context.Context, fileID, dest string) error {
	src, err := os.Open(fileID)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("openai api key not configured")
	}
	if lang, _ := cmd.Flags().GetString("language"); lang != "" {
		cfg.Summary.Language = lang
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.LLM.Model = model
	}

	extractor := extract.NewService(localFiles{}, extract.NewTools())
	ctx := context.Background()

	var parts []types.ExtractedDocument
	var failures []batch.Failure
	for _, path := range args {
		ext := extract.DetectExtension(path, "")
		if !extract.IsSupported(ext) {
			return fmt.Errorf("unsupported file type %q", path)
		}
		ref := types.DocumentRef{
			ID:        path,
			UniqueID:  path,
			Name:      filepath.Base(path),
			Extension: ext,
		}
		extracted, err := extractor.Extract(ctx, ref)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", ref.Name, err)
			failures = append(failures, batch.Failure{Name: ref.Name, Reason: err.Error()})
			continue
		}
		parts = append(parts, extracted...)
	}
	if len(parts) == 0 {
		return fmt.Errorf("no text could be extracted from the given files")
	}

	summarizer := summarize.New(llm.NewClient(cfg.LLM), cfg.Summary)
	text, label := batch.Combine(parts, "")
	summary, err := summarizer.Summarize(ctx, text, label)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		summary = summary + "\n\n" + batch.FormatFailures(failures)
	}

	fmt.Println(summary)
	return nil
}

func init() {
	summarizeCmd.Flags().String("language", "", "summary language override")
	summarizeCmd.Flags().String("model", "", "chat model override")
	rootCmd.AddCommand(summarizeCmd)
}
