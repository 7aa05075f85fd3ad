// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the configuration and data types shared across stages.
package types

import "time"

// CollectorConfig holds settings for the submission batch collector.
type CollectorConfig struct {
	// DebounceInterval is the quiet period after the last document arrival
	// before a batch finalizes. Every new arrival for the same submission
	// key resets the deadline.
	DebounceInterval time.Duration `json:"debounce_interval" yaml:"debounce_interval"`

	// MaxCollect is an optional ceiling on the total time a batch may keep
	// collecting. Zero means no ceiling: a steady trickle of arrivals can
	// defer finalization indefinitely.
	MaxCollect time.Duration `json:"max_collect" yaml:"max_collect"`
}

// ContextConfig holds settings for the recent-text correlator.
type ContextConfig struct {
	// Retention is the maximum age of a buffered text message (default 30m).
	Retention time.Duration `json:"retention" yaml:"retention"`

	// Capacity is the maximum number of buffered messages per
	// (channel, author) pair (default 30).
	Capacity int `json:"capacity" yaml:"capacity"`
}

// SummaryConfig holds settings for the hierarchical summarizer.
type SummaryConfig struct {
	// Language is the language of the final summary (default "ru").
	Language string `json:"language" yaml:"language"`

	// MaxDocChars is the hard character budget for one logical document;
	// anything beyond it is silently dropped (default 120000).
	MaxDocChars int `json:"max_doc_chars" yaml:"max_doc_chars"`

	// ChunkSize is the window size used to stay under the backend's
	// input limit (default 12000).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the number of characters consecutive windows share.
	// Clamped to ChunkSize/2 (default 1000).
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`
}

// LLMConfig holds settings for the chat-completion backend.
type LLMConfig struct {
	// Model is the chat model identifier (default "gpt-4.1-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the backend. Usually loaded from
	// .secrets/openai-api-key rather than the config file.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible gateways.
	// Empty means the default OpenAI endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Temperature for all summarization calls (default 0.2).
	Temperature float32 `json:"temperature" yaml:"temperature"`
}

// TelegramConfig holds settings for the Telegram transport.
type TelegramConfig struct {
	// Token authenticates the bot. Usually loaded from
	// .secrets/telegram-bot-token rather than the config file.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// PollTimeout is the long-poll timeout for getUpdates (default 50s).
	PollTimeout time.Duration `json:"poll_timeout" yaml:"poll_timeout"`

	// MessageLimit is the maximum length of one outbound message; longer
	// replies are split on paragraph boundaries (default 3900).
	MessageLimit int `json:"message_limit" yaml:"message_limit"`

	// AllowedChats is the whitelist of group chat IDs the bot serves.
	// Empty means every chat is allowed.
	AllowedChats []int64 `json:"allowed_chats" yaml:"allowed_chats"`
}

// JournalConfig holds settings for the submission journal.
type JournalConfig struct {
	// Dir is the directory holding the journal database and exports
	// (default "journal").
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of history entries listed
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups all component configurations.
type Config struct {
	Collector CollectorConfig `json:"collector" yaml:"collector"`
	Context   ContextConfig   `json:"context" yaml:"context"`
	Summary   SummaryConfig   `json:"summary" yaml:"summary"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Telegram  TelegramConfig  `json:"telegram" yaml:"telegram"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
}

// Defaults returns the configuration used when no file or flags override it.
func Defaults() Config {
	return Config{
		Collector: CollectorConfig{
			DebounceInterval: 2 * time.Second,
		},
		Context: ContextConfig{
			Retention: 30 * time.Minute,
			Capacity:  30,
		},
		Summary: SummaryConfig{
			Language:     "ru",
			MaxDocChars:  120000,
			ChunkSize:    12000,
			ChunkOverlap: 1000,
		},
		LLM: LLMConfig{
			Model:       "gpt-4.1-mini",
			Temperature: 0.2,
		},
		Telegram: TelegramConfig{
			PollTimeout:  50 * time.Second,
			MessageLimit: 3900,
		},
		Journal: JournalConfig{
			Dir:        "journal",
			MaxResults: 20,
		},
	}
}

// Normalize fills zero values with defaults and clamps out-of-range settings.
func (c *Config) Normalize() {
	d := Defaults()
	if c.Collector.DebounceInterval <= 0 {
		c.Collector.DebounceInterval = d.Collector.DebounceInterval
	}
	if c.Context.Retention <= 0 {
		c.Context.Retention = d.Context.Retention
	}
	if c.Context.Capacity <= 0 {
		c.Context.Capacity = d.Context.Capacity
	}
	if c.Summary.Language == "" {
		c.Summary.Language = d.Summary.Language
	}
	if c.Summary.MaxDocChars < 1000 {
		c.Summary.MaxDocChars = d.Summary.MaxDocChars
	}
	if c.Summary.ChunkSize < 2000 {
		c.Summary.ChunkSize = d.Summary.ChunkSize
	}
	if c.Summary.ChunkOverlap < 0 {
		c.Summary.ChunkOverlap = 0
	}
	if c.LLM.Model == "" {
		c.LLM.Model = d.LLM.Model
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = d.LLM.Temperature
	}
	if c.Telegram.PollTimeout <= 0 {
		c.Telegram.PollTimeout = d.Telegram.PollTimeout
	}
	if c.Telegram.MessageLimit <= 0 {
		c.Telegram.MessageLimit = d.Telegram.MessageLimit
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = d.Journal.Dir
	}
	if c.Journal.MaxResults <= 0 {
		c.Journal.MaxResults = d.Journal.MaxResults
	}
}
