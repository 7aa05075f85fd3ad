// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tender-digest/pkg/types"
)

// fakeBackend records every call and replies from a scripted queue.
type fakeBackend struct {
	calls   []string // instructions, in call order
	replies []string
	err     error
}

func (f *fakeBackend) Complete(_ context.Context, _, instruction, _ string) (string, error) {
	f.calls = append(f.calls, instruction)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "summary", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func testConfig() types.SummaryConfig {
	return types.SummaryConfig{
		Language:     "ru",
		MaxDocChars:  120000,
		ChunkSize:    1000,
		ChunkOverlap: 100,
	}
}

func TestSummarizeEmptyInputSkipsBackend(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, testConfig())

	for _, input := range []string{"", "   \n\t\n  ", "\n\n\n"} {
		got, err := s.Summarize(context.Background(), input, "")
		require.NoError(t, err)
		assert.Equal(t, NoTextResult, got)
	}
	assert.Empty(t, backend.calls, "no backend call may be issued for empty input")
}

func TestSummarizeSingleChunkOneFinalCall(t *testing.T) {
	backend := &fakeBackend{replies: []string{"final"}}
	s := New(backend, testConfig())

	got, err := s.Summarize(context.Background(), "short document text", "")
	require.NoError(t, err)
	assert.Equal(t, "final", got)
	require.Len(t, backend.calls, 1)
	assert.Contains(t, backend.calls[0], "final summary in this language: ru")
}

func TestSummarizeMapReduceCallPattern(t *testing.T) {
	backend := &fakeBackend{replies: []string{"p1", "p2", "p3", "merged"}}
	s := New(backend, testConfig())

	// 2.5x the chunk size: exactly 3 partial calls, then 1 final call.
	text := strings.Repeat("a", 2500)
	got, err := s.Summarize(context.Background(), text, "")
	require.NoError(t, err)
	assert.Equal(t, "merged", got)

	require.Len(t, backend.calls, 4)
	for i, call := range backend.calls[:3] {
		assert.Contains(t, call, fmt.Sprintf("part %d of 3", i+1))
	}
	assert.Contains(t, backend.calls[3], "final summary")
}

func TestSummarizeLabelBecomesTitleLine(t *testing.T) {
	backend := &fakeBackend{replies: []string{"final"}}
	s := New(backend, testConfig())

	got, err := s.Summarize(context.Background(), "text", "terms.docx")
	require.NoError(t, err)
	assert.Equal(t, TitlePrefix+"terms.docx\n\nfinal", got)
}

func TestSummarizeBackendErrorAborts(t *testing.T) {
	backend := &fakeBackend{err: errors.New("boom")}
	s := New(backend, testConfig())

	_, err := s.Summarize(context.Background(), strings.Repeat("a", 2500), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackend)
	// The first failing partial call aborts the attempt.
	assert.Len(t, backend.calls, 1)
}

func TestSummarizeEmptyBackendContentFallsBack(t *testing.T) {
	backend := &fakeBackend{replies: []string{""}}
	s := New(backend, testConfig())

	got, err := s.Summarize(context.Background(), "text", "")
	require.NoError(t, err)
	assert.Equal(t, fallbackSummary, got)
}

func TestSummarizeTruncatesOversizedInput(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDocChars = 1000
	backend := &fakeBackend{}
	s := New(backend, cfg)

	// 5000 chars truncate to 1000, which fits a single chunk.
	_, err := s.Summarize(context.Background(), strings.Repeat("a", 5000), "")
	require.NoError(t, err)
	assert.Len(t, backend.calls, 1)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses inner runs", "a  b\tc", "a b c"},
		{"drops blank lines", "a\n\n   \nb", "a\nb"},
		{"trims line edges", "  a  \n\tb\t", "a\nb"},
		{"empty", "  \n \t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize(tt.in); got != tt.want {
				t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
