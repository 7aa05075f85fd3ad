// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		want      int
	}{
		{"short text single chunk", "hello", 10, 2, 1},
		{"exact size single chunk", strings.Repeat("a", 10), 10, 2, 1},
		{"one over splits", strings.Repeat("a", 11), 10, 2, 2},
		{"no overlap", strings.Repeat("a", 30), 10, 0, 3},
		{"2.5x chunk size", strings.Repeat("a", 2500), 1000, 100, 3},
		{"overlap clamped to half", strings.Repeat("a", 30), 10, 9, 5},
		{"empty text", "", 10, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if len(got) != tt.want {
				t.Fatalf("SplitText() produced %d chunks, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSplitTextWindows(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := SplitText(text, 10, 4)

	// Non-final chunks are exactly chunkSize long; the last ends at len(text).
	for i, c := range chunks[:len(chunks)-1] {
		if len(c) != 10 {
			t.Errorf("chunk %d length = %d, want 10", i, len(c))
		}
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Errorf("final chunk %q is not a suffix of the input", last)
	}

	// Removing the overlap from every chunk after the first reproduces the input.
	rebuilt := chunks[0]
	for _, c := range chunks[1:] {
		rebuilt += c[4:]
	}
	if rebuilt != text {
		t.Errorf("rebuilt = %q, want %q", rebuilt, text)
	}
}

func TestSplitTextDeterministic(t *testing.T) {
	text := strings.Repeat("tender documentation ", 500)
	a := SplitText(text, 1000, 100)
	b := SplitText(text, 1000, 100)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}
