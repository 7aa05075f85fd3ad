// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the tender-digest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/tender-digest/internal/secrets"
	"github.com/pdiddy/tender-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the tender-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "tender-digest",
	Short: "Telegram bot that summarizes tender document packages",
	Long: `tender-digest watches group chats for uploaded tender documents
(.doc/.docx/.xlsx/.pdf/.rar), batches files uploaded together, extracts their
text, and replies with one structured summary per submission. Text posted
right before a package, such as a procurement link and price, is folded into
the summary as context.

Run the bot with "serve", summarize a local file with "summarize", and
inspect past submissions with "history".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; missing files are fine.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./tender-digest.yaml or ~/.config/tender-digest/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tender-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tender-digest"))
		}
	}

	viper.SetEnvPrefix("TENDER_DIGEST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the effective configuration: defaults, then the
// config file, then credentials from .secrets/ and the environment.
func loadConfig() types.Config {
	cfg := types.Defaults()

	if v := viper.GetDuration("collector.debounce_interval"); v > 0 {
		cfg.Collector.DebounceInterval = v
	}
	if v := viper.GetDuration("collector.max_collect"); v > 0 {
		cfg.Collector.MaxCollect = v
	}
	if v := viper.GetDuration("context.retention"); v > 0 {
		cfg.Context.Retention = v
	}
	if v := viper.GetInt("context.capacity"); v > 0 {
		cfg.Context.Capacity = v
	}
	if v := viper.GetString("summary.language"); v != "" {
		cfg.Summary.Language = v
	}
	if v := viper.GetInt("summary.max_doc_chars"); v > 0 {
		cfg.Summary.MaxDocChars = v
	}
	if v := viper.GetInt("summary.chunk_size"); v > 0 {
		cfg.Summary.ChunkSize = v
	}
	if viper.IsSet("summary.chunk_overlap") {
		cfg.Summary.ChunkOverlap = viper.GetInt("summary.chunk_overlap")
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetFloat64("llm.temperature"); v > 0 {
		cfg.LLM.Temperature = float32(v)
	}
	if v := viper.GetDuration("telegram.poll_timeout"); v > 0 {
		cfg.Telegram.PollTimeout = v
	}
	if v := viper.GetInt("telegram.message_limit"); v > 0 {
		cfg.Telegram.MessageLimit = v
	}
	if viper.IsSet("telegram.allowed_chats") {
		var chats []int64
		for _, id := range viper.GetIntSlice("telegram.allowed_chats") {
			chats = append(chats, int64(id))
		}
		cfg.Telegram.AllowedChats = chats
	}
	if v := viper.GetString("journal.dir"); v != "" {
		cfg.Journal.Dir = v
	}
	if v := viper.GetInt("journal.max_results"); v > 0 {
		cfg.Journal.MaxResults = v
	}

	cfg.Telegram.Token = credential("telegram.token", "telegram-bot-token", "TELEGRAM_BOT_TOKEN")
	cfg.LLM.APIKey = credential("llm.api_key", "openai-api-key", "OPENAI_API_KEY")

	cfg.Normalize()
	return cfg
}

// credential resolves a secret from the config file, then .secrets/, then
// the environment.
func credential(viperKey, secretName, envName string) string {
	if v := viper.GetString(viperKey); v != "" {
		return v
	}
	if v := loadedSecrets[secretName]; v != "" {
		return v
	}
	return os.Getenv(envName)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
