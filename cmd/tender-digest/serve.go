// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tender-digest/internal/batch"
	"github.com/pdiddy/tender-digest/internal/bot"
	"github.com/pdiddy/tender-digest/internal/extract"
	"github.com/pdiddy/tender-digest/internal/journal"
	"github.com/pdiddy/tender-digest/internal/llm"
	"github.com/pdiddy/tender-digest/internal/recent"
	"github.com/pdiddy/tender-digest/internal/summarize"
	"github.com/pdiddy/tender-digest/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long: `Serve starts the long-polling Telegram bot. It requires a bot token
(.secrets/telegram-bot-token or TELEGRAM_BOT_TOKEN) and an OpenAI API key
(.secrets/openai-api-key or OPENAI_API_KEY). Finalized submissions are
journaled to the journal directory unless --no-journal is set.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram bot token not configured")
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("openai api key not configured")
	}

	logw := os.Stderr

	client := telegram.NewClient(cfg.Telegram.Token)
	summarizer := summarize.New(llm.NewClient(cfg.LLM), cfg.Summary)
	extractor := extract.NewService(client, extract.NewTools())
	texts := recent.NewBuffer(cfg.Context)
	transport := telegram.NewTransport(client, cfg.Telegram.MessageLimit)

	var recorder batch.Recorder
	noJournal, _ := cmd.Flags().GetBool("no-journal")
	if !noJournal {
		store, err := journal.NewStore(cfg.Journal)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer store.Close()
		recorder = store
	}

	collector := batch.NewCollector(cfg.Collector, extractor, summarizer, texts, transport, recorder, logw)
	defer collector.Close()

	b := bot.New(client, collector, texts, cfg.Telegram, logw)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := b.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(logw, "shutting down")
		return nil
	}
	return err
}

func init() {
	serveCmd.Flags().Bool("no-journal", false, "disable the submission journal")
	rootCmd.AddCommand(serveCmd)
}
