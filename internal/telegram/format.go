// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telegram

import (
	"html"
	"strings"

	"github.com/pdiddy/tender-digest/internal/summarize"
)

// headingPrefixes are the lowercased section heading stems recognized when
// formatting a summary for HTML output.
var headingPrefixes = buildHeadingPrefixes()

func buildHeadingPrefixes() []string {
	prefixes := make([]string, 0, len(summarize.SectionHeadings)+2)
	for _, h := range summarize.SectionHeadings {
		prefixes = append(prefixes, strings.ToLower(strings.TrimSuffix(h, ":")))
	}
	prefixes = append(prefixes,
		strings.ToLower(strings.TrimSuffix(summarize.TitlePrefix, ": ")),
		strings.ToLower(strings.TrimSuffix(summarize.FailuresHeading, ":")),
	)
	return prefixes
}

// SplitMessage breaks text into parts no longer than limit, preferring
// paragraph boundaries. A single paragraph longer than the limit is
// hard-split at the limit.
func SplitMessage(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var parts []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			if part := strings.TrimSpace(strings.Join(current, "\n")); part != "" {
				parts = append(parts, part)
			}
			current = nil
			currentLen = 0
		}
	}

	for _, paragraph := range strings.Split(text, "\n") {
		line := strings.TrimSpace(paragraph)
		candidateLen := currentLen + len(line) + 1

		if candidateLen > limit && len(current) > 0 {
			flush()
			current = []string{line}
			currentLen = len(line)
			continue
		}

		if len(line) > limit {
			flush()
			for i := 0; i < len(line); i += limit {
				end := i + limit
				if end > len(line) {
					end = len(line)
				}
				parts = append(parts, line[i:end])
			}
			continue
		}

		current = append(current, line)
		currentLen = candidateLen
	}
	flush()

	return parts
}

// FormatHTML escapes a summary for Telegram HTML mode and bolds recognized
// section headings. Leading list bullets on heading lines are dropped.
func FormatHTML(text string) string {
	var formatted []string

	for _, rawLine := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(rawLine)
		if stripped == "" {
			formatted = append(formatted, "")
			continue
		}

		cleaned := strings.TrimSpace(strings.TrimLeft(stripped, "-• "))
		if isHeading(cleaned) {
			heading, tail, found := strings.Cut(cleaned, ":")
			if found {
				heading += ":"
			}
			headingHTML := "<b>" + html.EscapeString(strings.TrimSpace(heading)) + "</b>"
			if tail = strings.TrimSpace(tail); tail != "" {
				formatted = append(formatted, headingHTML+" "+html.EscapeString(tail))
			} else {
				formatted = append(formatted, headingHTML)
			}
			continue
		}

		formatted = append(formatted, html.EscapeString(stripped))
	}

	return strings.TrimSpace(strings.Join(formatted, "\n"))
}

func isHeading(line string) bool {
	normalized := strings.ToLower(strings.TrimSpace(line))
	for _, prefix := range headingPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return false
}
