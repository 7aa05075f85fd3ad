// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns one logical document into one structured summary
// through a length-bounded map-reduce call pattern: oversized text is split
// into overlapping windows, each window is summarized on its own, and a final
// call merges the partial results into the mandatory section template.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/tender-digest/pkg/types"
)

// Backend abstracts the chat-completion API so tests can supply a mock.
type Backend interface {
	Complete(ctx context.Context, system, instruction, content string) (string, error)
}

// ErrBackend marks a failed backend call. A single failed call aborts the
// whole Summarize attempt; there are no internal retries.
var ErrBackend = errors.New("text-generation backend failure")

// NoTextResult is returned when the input holds no extractable text. No
// backend call is made in that case.
const NoTextResult = "No extractable text was found in the document."

// fallbackSummary stands in for a backend response with empty content, which
// is not treated as an error.
const fallbackSummary = "The backend returned an empty summary."

// Summarizer implements the hierarchical summarization pipeline.
type Summarizer struct {
	backend Backend
	cfg     types.SummaryConfig
}

// New creates a Summarizer over the given backend.
func New(backend Backend, cfg types.SummaryConfig) *Summarizer {
	return &Summarizer{backend: backend, cfg: cfg}
}

// Summarize produces one structured summary for text. label, when non-empty,
// becomes a title line above the summary. Any backend failure aborts the call
// with an error wrapping ErrBackend.
func (s *Summarizer) Summarize(ctx context.Context, text, label string) (string, error) {
	normalized := normalize(text)
	if normalized == "" {
		return NoTextResult, nil
	}
	if len(normalized) > s.cfg.MaxDocChars {
		normalized = normalized[:s.cfg.MaxDocChars]
	}

	chunks := SplitText(normalized, s.cfg.ChunkSize, s.cfg.ChunkOverlap)

	if len(chunks) == 1 {
		return s.finalSummary(ctx, chunks[0], label)
	}

	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		partial, err := s.backend.Complete(ctx, systemRole, chunkPrompt(i+1, len(chunks)), chunk)
		if err != nil {
			return "", fmt.Errorf("%w: partial summary %d/%d: %v", ErrBackend, i+1, len(chunks), err)
		}
		if partial == "" {
			partial = fallbackSummary
		}
		partials = append(partials, partial)
	}

	return s.finalSummary(ctx, strings.Join(partials, "\n\n"), label)
}

func (s *Summarizer) finalSummary(ctx context.Context, content, label string) (string, error) {
	summary, err := s.backend.Complete(ctx, systemRole, finalPrompt(s.cfg.Language), content)
	if err != nil {
		return "", fmt.Errorf("%w: final summary: %v", ErrBackend, err)
	}
	if summary == "" {
		summary = fallbackSummary
	}
	if label != "" {
		return strings.TrimSpace(TitlePrefix + label + "\n\n" + summary), nil
	}
	return strings.TrimSpace(summary), nil
}

// normalize collapses whitespace within each line, drops blank lines, and
// joins the survivors with newlines.
func normalize(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
