// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch groups near-simultaneous document uploads into one logical
// submission. Arrivals under the same submission key are accumulated while a
// debounce timer keeps getting reset; once a quiet period passes, the batch
// finalizes: text is extracted from every document, preceding context text is
// attached, and a single summary is produced and delivered.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/tender-digest/internal/summarize"
	"github.com/pdiddy/tender-digest/pkg/types"
)

// ErrEmptyBatch means every document in a batch failed extraction.
var ErrEmptyBatch = errors.New("no documents in the batch could be extracted")

// Status texts shown while a submission is in flight.
const (
	ackPackage        = "Received a document package, collecting all files..."
	ackSingle         = "Received the document, extracting text..."
	statusExtracting  = "Batch complete, extracting text from all files..."
	statusSummarizing = "Text extracted, preparing the summary..."
)

// Fixed failure notices. Raw error text is never shown to end users.
const (
	noticeExtractionFailed = "Could not extract text from the documents. " +
		"Legacy .doc needs antiword or catdoc, .rar needs unrar, bsdtar or unar, " +
		"and scanned PDFs may require OCR."
	noticeProcessingFailed = "Could not process the documents. " +
		"Check the file formats and the API key."
)

// Event is one inbound document upload.
type Event struct {
	// Key groups documents of one submission. Uploads without a client
	// grouping key get a synthesized one and form single-document batches.
	Key string

	ChannelID int64
	AuthorID  int64

	// Sequence is the transport position of the event; the smallest one
	// seen becomes the batch anchor for context lookups.
	Sequence int64

	// Grouped is true when the key came from the client. Only grouped
	// submissions look up preceding context text.
	Grouped bool

	Document types.DocumentRef
}

// Extractor turns one document reference into extracted text parts.
type Extractor interface {
	Extract(ctx context.Context, ref types.DocumentRef) ([]types.ExtractedDocument, error)
}

// Summarizer produces one structured summary for one logical document.
type Summarizer interface {
	Summarize(ctx context.Context, text, label string) (string, error)
}

// ContextFinder answers which text, if any, preceded a batch.
type ContextFinder interface {
	FindContext(channelID, authorID, beforeSequence int64) (string, bool)
}

// StatusHandle identifies an editable status message.
type StatusHandle struct {
	ChannelID int64
	MessageID int64
}

// Transport emits the collector's user-visible side effects.
type Transport interface {
	// Acknowledge posts the initial status message as a reply to the
	// triggering upload and returns a handle for later edits.
	Acknowledge(ctx context.Context, channelID, replyTo int64, text string) (StatusHandle, error)

	// UpdateStatus edits the status message in place.
	UpdateStatus(ctx context.Context, h StatusHandle, text string) error

	// DeleteStatus removes the status message before the final reply.
	DeleteStatus(ctx context.Context, h StatusHandle) error

	// Reply sends the final summary (or failure notice) to the channel.
	Reply(ctx context.Context, channelID int64, text string) error
}

// Failure is one document that could not be extracted.
type Failure struct {
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason" yaml:"reason"`
}

// Outcome describes one finalized submission, for journaling.
type Outcome struct {
	Key        string
	ChannelID  int64
	AuthorID   int64
	Documents  []types.DocumentRef
	Failures   []Failure
	Summary    string
	Err        string
	FinishedAt time.Time
}

// Recorder persists finalized submission outcomes. Recording failures are
// logged, never surfaced.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// pendingBatch is the collecting state of one live submission key.
type pendingBatch struct {
	key       string
	channelID int64
	authorID  int64
	anchorSeq int64
	grouped   bool
	firstAt   time.Time

	docs []types.DocumentRef
	seen map[string]bool

	status StatusHandle

	// timer is the single outstanding debounce timer. generation guards
	// against a superseded timer firing after a re-arm: finalize only
	// proceeds when its captured generation is still current.
	timer      *time.Timer
	generation uint64
}

// Collector owns the keyed map of pending batches and their debounce timers.
type Collector struct {
	cfg       types.CollectorConfig
	extractor Extractor
	summarize Summarizer
	contexts  ContextFinder
	transport Transport
	recorder  Recorder
	logw      io.Writer

	mu      sync.Mutex
	pending map[string]*pendingBatch
	closed  bool

	// finalizing tracks in-flight finalizations so Close can drain them.
	finalizing sync.WaitGroup

	// now is overridden in tests.
	now func() time.Time
}

// NewCollector wires a Collector. recorder may be nil when journaling is
// disabled; logw receives one-line progress and warning records.
func NewCollector(
	cfg types.CollectorConfig,
	extractor Extractor,
	summarizer Summarizer,
	contexts ContextFinder,
	transport Transport,
	recorder Recorder,
	logw io.Writer,
) *Collector {
	if logw == nil {
		logw = io.Discard
	}
	return &Collector{
		cfg:       cfg,
		extractor: extractor,
		summarize: summarizer,
		contexts:  contexts,
		transport: transport,
		recorder:  recorder,
		logw:      logw,
		pending:   make(map[string]*pendingBatch),
		now:       time.Now,
	}
}

// Add applies one document event. The first event under a key opens a batch
// and posts an acknowledgment; every later event appends (duplicates by
// UniqueID are ignored) and resets the debounce deadline.
func (c *Collector) Add(ctx context.Context, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	b, ok := c.pending[ev.Key]
	if !ok {
		ack := ackPackage
		if !ev.Grouped {
			ack = ackSingle
		}
		// The acknowledgment happens inside the critical section so the
		// status handle is in place before any finalization can observe
		// the batch. Arrival rate is low relative to the debounce window,
		// so one coarse lock suffices.
		status, err := c.transport.Acknowledge(ctx, ev.ChannelID, ev.Sequence, ack)
		if err != nil {
			fmt.Fprintf(c.logw, "warning: acknowledge failed for key %s: %v\n", ev.Key, err)
		}
		b = &pendingBatch{
			key:       ev.Key,
			channelID: ev.ChannelID,
			authorID:  ev.AuthorID,
			anchorSeq: ev.Sequence,
			grouped:   ev.Grouped,
			firstAt:   c.now(),
			seen:      make(map[string]bool),
			status:    status,
		}
		c.pending[ev.Key] = b
	} else {
		if ev.Sequence < b.anchorSeq {
			b.anchorSeq = ev.Sequence
		}
		if b.authorID == 0 {
			b.authorID = ev.AuthorID
		}
	}

	if b.seen[ev.Document.UniqueID] {
		// A re-sent file neither grows the batch nor defers finalization.
		return
	}
	b.seen[ev.Document.UniqueID] = true
	b.docs = append(b.docs, ev.Document)

	c.rearm(b)
}

// rearm cancels the outstanding timer and schedules a fresh one. The caller
// holds c.mu. The generation bump guarantees a cancelled-but-racing timer
// can never finalize the batch.
func (c *Collector) rearm(b *pendingBatch) {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.generation++
	gen := b.generation
	key := b.key

	wait := c.cfg.DebounceInterval
	if c.cfg.MaxCollect > 0 {
		remaining := b.firstAt.Add(c.cfg.MaxCollect).Sub(c.now())
		if remaining < wait {
			wait = remaining
		}
		if wait < 0 {
			wait = 0
		}
	}

	b.timer = time.AfterFunc(wait, func() {
		c.finalize(key, gen)
	})
}

// finalize runs when a debounce timer fires uncancelled. It atomically
// removes the key's entry, so a later arrival under the same key opens a
// fresh batch instead of mutating one already being processed.
func (c *Collector) finalize(key string, gen uint64) {
	c.mu.Lock()
	b, ok := c.pending[key]
	if !ok || b.generation != gen {
		// Superseded by a re-arm or already finalized.
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	docs := make([]types.DocumentRef, len(b.docs))
	copy(docs, b.docs)
	c.finalizing.Add(1)
	c.mu.Unlock()

	defer c.finalizing.Done()
	c.process(context.Background(), b, docs)
}

// process extracts, correlates, summarizes and delivers one finalized batch.
func (c *Collector) process(ctx context.Context, b *pendingBatch, docs []types.DocumentRef) {
	fmt.Fprintf(c.logw, "finalizing submission %s: %d document(s)\n", b.key, len(docs))

	if err := c.transport.UpdateStatus(ctx, b.status, statusExtracting); err != nil {
		fmt.Fprintf(c.logw, "warning: status update failed for key %s: %v\n", b.key, err)
	}

	var parts []types.ExtractedDocument
	var failures []Failure
	for _, doc := range docs {
		extracted, err := c.extractor.Extract(ctx, doc)
		if err != nil {
			failures = append(failures, Failure{Name: doc.Name, Reason: failureReason(err)})
			continue
		}
		parts = append(parts, extracted...)
	}

	if len(parts) == 0 {
		fmt.Fprintf(c.logw, "submission %s failed: %v\n", b.key, ErrEmptyBatch)
		c.fail(ctx, b, docs, failures, noticeExtractionFailed, ErrEmptyBatch)
		return
	}

	if err := c.transport.UpdateStatus(ctx, b.status, statusSummarizing); err != nil {
		fmt.Fprintf(c.logw, "warning: status update failed for key %s: %v\n", b.key, err)
	}

	var contextText string
	if b.grouped && c.contexts != nil {
		contextText, _ = c.contexts.FindContext(b.channelID, b.authorID, b.anchorSeq)
	}

	text, label := Combine(parts, contextText)
	summary, err := c.summarize.Summarize(ctx, text, label)
	if err != nil {
		fmt.Fprintf(c.logw, "submission %s failed: %v\n", b.key, err)
		c.fail(ctx, b, docs, failures, noticeProcessingFailed, err)
		return
	}

	if len(failures) > 0 {
		summary = summary + "\n\n" + FormatFailures(failures)
	}

	if err := c.transport.DeleteStatus(ctx, b.status); err != nil {
		fmt.Fprintf(c.logw, "warning: status delete failed for key %s: %v\n", b.key, err)
	}
	if err := c.transport.Reply(ctx, b.channelID, summary); err != nil {
		fmt.Fprintf(c.logw, "warning: reply failed for key %s: %v\n", b.key, err)
	}

	c.record(ctx, Outcome{
		Key:        b.key,
		ChannelID:  b.channelID,
		AuthorID:   b.authorID,
		Documents:  docs,
		Failures:   failures,
		Summary:    summary,
		FinishedAt: c.now(),
	})
}

// fail replaces the status message with a fixed category notice.
func (c *Collector) fail(ctx context.Context, b *pendingBatch, docs []types.DocumentRef, failures []Failure, notice string, cause error) {
	if err := c.transport.UpdateStatus(ctx, b.status, notice); err != nil {
		fmt.Fprintf(c.logw, "warning: failure notice failed for key %s: %v\n", b.key, err)
	}
	c.record(ctx, Outcome{
		Key:        b.key,
		ChannelID:  b.channelID,
		AuthorID:   b.authorID,
		Documents:  docs,
		Failures:   failures,
		Err:        cause.Error(),
		FinishedAt: c.now(),
	})
}

func (c *Collector) record(ctx context.Context, o Outcome) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, o); err != nil {
		fmt.Fprintf(c.logw, "warning: journal record failed for key %s: %v\n", o.Key, err)
	}
}

// Close cancels all pending batches and waits for in-flight finalizations.
// Batches still collecting are dropped without a summary.
func (c *Collector) Close() {
	c.mu.Lock()
	c.closed = true
	for key, b := range c.pending {
		if b.timer != nil {
			b.timer.Stop()
		}
		b.generation++ // a racing timer callback finds a stale generation
		delete(c.pending, key)
	}
	c.mu.Unlock()

	c.finalizing.Wait()
}

// failureReason prefers an extraction error's bare reason so the addendum
// does not repeat the document name the error already carries.
func failureReason(err error) string {
	var r interface{ Reason() string }
	if errors.As(err, &r) {
		return r.Reason()
	}
	return err.Error()
}

// Combine builds the single logical document passed to the summarizer: an
// optional context section followed by one ordinal-headed section per
// extracted part. The returned label titles the summary.
func Combine(parts []types.ExtractedDocument, contextText string) (text, label string) {
	if len(parts) == 1 && contextText == "" {
		return parts[0].Text, parts[0].Label
	}

	var sections []string
	if contextText != "" {
		sections = append(sections, "### Context from the message preceding the batch\n"+contextText)
	}
	for i, part := range parts {
		sections = append(sections, fmt.Sprintf("### Document %d: %s\n%s", i+1, part.Label, part.Text))
	}
	return strings.Join(sections, "\n\n"), fmt.Sprintf("Document package (%d files)", len(parts))
}

// FormatFailures renders the non-blocking addendum listing documents that
// could not be processed.
func FormatFailures(failures []Failure) string {
	lines := make([]string, 0, len(failures)+1)
	lines = append(lines, summarize.FailuresHeading)
	for _, f := range failures {
		lines = append(lines, fmt.Sprintf("- %s: %s", f.Name, f.Reason))
	}
	return strings.Join(lines, "\n")
}
