// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recent keeps a short, per-(channel, author) history of standalone
// text messages so a document batch can be paired with the text that preceded
// it. Entries age out after a retention window and each history is capped at
// a fixed number of entries.
package recent

import (
	"regexp"
	"sync"
	"time"

	"github.com/pdiddy/tender-digest/pkg/types"
)

// priorityPattern recognizes a canonical procurement listing URL. A message
// carrying one is a stronger contextual anchor than a merely more recent one.
var priorityPattern = regexp.MustCompile(`(?i)https?://(?:www\.)?zakupki\.gov\.ru/epz/order/\S+`)

// HasPriorityMarker reports whether text contains a canonical procurement
// listing URL.
func HasPriorityMarker(text string) bool {
	return priorityPattern.MatchString(text)
}

type key struct {
	channelID int64
	authorID  int64
}

type entry struct {
	sequence int64
	text     string
	at       time.Time
	priority bool
}

// Buffer is the keyed store of recent text messages. All methods are safe
// for concurrent use.
type Buffer struct {
	mu        sync.Mutex
	histories map[key][]entry
	retention time.Duration
	capacity  int

	// now is overridden in tests.
	now func() time.Time
}

// NewBuffer creates an empty Buffer with the given retention and capacity.
func NewBuffer(cfg types.ContextConfig) *Buffer {
	return &Buffer{
		histories: make(map[key][]entry),
		retention: cfg.Retention,
		capacity:  cfg.Capacity,
		now:       time.Now,
	}
}

// Record stores one text message for (channelID, authorID). Entries older
// than the retention window are evicted first; on overflow the oldest entry
// is dropped.
func (b *Buffer) Record(channelID, authorID, sequence int64, text string, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	k := key{channelID: channelID, authorID: authorID}
	history := b.evict(b.histories[k])

	history = append(history, entry{
		sequence: sequence,
		text:     text,
		at:       at,
		priority: HasPriorityMarker(text),
	})
	if len(history) > b.capacity {
		history = history[len(history)-b.capacity:]
	}
	b.histories[k] = history
}

// FindContext returns the text that best anchors a batch whose first event
// carried beforeSequence. Among entries with a smaller sequence, one carrying
// the priority marker and having the largest sequence wins; otherwise the
// entry with the largest sequence overall. The second result is false when
// no entry qualifies.
func (b *Buffer) FindContext(channelID, authorID, beforeSequence int64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	k := key{channelID: channelID, authorID: authorID}
	history := b.evict(b.histories[k])
	if len(history) == 0 {
		delete(b.histories, k)
		return "", false
	}
	b.histories[k] = history

	var best, bestPriority *entry
	for i := range history {
		e := &history[i]
		if e.sequence >= beforeSequence {
			continue
		}
		if best == nil || e.sequence > best.sequence {
			best = e
		}
		if e.priority && (bestPriority == nil || e.sequence > bestPriority.sequence) {
			bestPriority = e
		}
	}

	if bestPriority != nil {
		return bestPriority.text, true
	}
	if best != nil {
		return best.text, true
	}
	return "", false
}

// evict drops the expired prefix of history. Entries are appended in arrival
// order, so expiry is always a prefix.
func (b *Buffer) evict(history []entry) []entry {
	cutoff := b.now().Add(-b.retention)
	i := 0
	for i < len(history) && history[i].at.Before(cutoff) {
		i++
	}
	return history[i:]
}
