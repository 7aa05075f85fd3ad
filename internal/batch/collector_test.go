// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tender-digest/pkg/types"
)

// fakeTransport records side effects and signals every terminal one.
type fakeTransport struct {
	mu       sync.Mutex
	acks     []string
	statuses []string
	deleted  int
	replies  []string
	done     chan string // receives the reply or failure notice text
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{done: make(chan string, 16)}
}

func (f *fakeTransport) Acknowledge(_ context.Context, channelID, replyTo int64, text string) (StatusHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks = append(f.acks, text)
	return StatusHandle{ChannelID: channelID, MessageID: replyTo + 1000}, nil
}

func (f *fakeTransport) UpdateStatus(_ context.Context, _ StatusHandle, text string) error {
	f.mu.Lock()
	f.statuses = append(f.statuses, text)
	f.mu.Unlock()
	if strings.HasPrefix(text, "Could not") {
		f.done <- text
	}
	return nil
}

func (f *fakeTransport) DeleteStatus(context.Context, StatusHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted++
	return nil
}

func (f *fakeTransport) Reply(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	f.replies = append(f.replies, text)
	f.mu.Unlock()
	f.done <- text
	return nil
}

func (f *fakeTransport) replyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.replies)
}

// fakeExtractor maps document unique IDs to text or an error.
type fakeExtractor struct {
	mu    sync.Mutex
	texts map[string]string
	fails map[string]error
	calls []string
}

func (f *fakeExtractor) Extract(_ context.Context, ref types.DocumentRef) ([]types.ExtractedDocument, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ref.UniqueID)
	f.mu.Unlock()
	if err, ok := f.fails[ref.UniqueID]; ok {
		return nil, err
	}
	text, ok := f.texts[ref.UniqueID]
	if !ok {
		text = "text of " + ref.Name
	}
	return []types.ExtractedDocument{{Label: ref.Name, Text: text}}, nil
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeSummarizer echoes its inputs so tests can inspect the combined text.
type fakeSummarizer struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeSummarizer) Summarize(_ context.Context, text, label string) (string, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "summary of " + label, nil
}

func (f *fakeSummarizer) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

// fakeContexts records lookup arguments.
type fakeContexts struct {
	mu     sync.Mutex
	text   string
	ok     bool
	lookup []int64 // channel, author, beforeSequence of the last call
}

func (f *fakeContexts) FindContext(channelID, authorID, beforeSequence int64) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookup = []int64{channelID, authorID, beforeSequence}
	return f.text, f.ok
}

// fakeRecorder collects journal outcomes.
type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (f *fakeRecorder) Record(_ context.Context, o Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, o)
	return nil
}

func doc(uid, name string) types.DocumentRef {
	return types.DocumentRef{ID: "id-" + uid, UniqueID: uid, Name: name, Extension: ".docx"}
}

func event(key string, seq int64, d types.DocumentRef) Event {
	return Event{Key: key, ChannelID: 10, AuthorID: 20, Sequence: seq, Grouped: true, Document: d}
}

func waitReply(t *testing.T, tr *fakeTransport) string {
	t.Helper()
	select {
	case text := <-tr.done:
		return text
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a finalization")
		return ""
	}
}

func newTestCollector(debounce time.Duration, tr *fakeTransport, ex Extractor, sum Summarizer, ctxs ContextFinder, rec Recorder) *Collector {
	return NewCollector(
		types.CollectorConfig{DebounceInterval: debounce},
		ex, sum, ctxs, tr, rec, nil,
	)
}

func TestDebounceProducesOneFinalization(t *testing.T) {
	tr := newFakeTransport()
	ex := &fakeExtractor{}
	sum := &fakeSummarizer{}
	c := newTestCollector(60*time.Millisecond, tr, ex, sum, &fakeContexts{}, nil)
	defer c.Close()

	for i := 0; i < 3; i++ {
		c.Add(context.Background(), event("grp", int64(100+i), doc(fmt.Sprintf("u%d", i), fmt.Sprintf("doc%d.docx", i))))
		time.Sleep(20 * time.Millisecond)
	}
	lastArrival := time.Now()

	reply := waitReply(t, tr)
	elapsed := time.Since(lastArrival)

	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond, "finalization must wait out the quiet period")
	assert.Contains(t, reply, "summary of Document package (3 files)")
	assert.Equal(t, 3, ex.callCount())
	assert.Len(t, tr.acks, 1, "only the first event acknowledges")

	// No second finalization follows.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, tr.replyCount())
}

func TestDuplicateUniqueIDIgnored(t *testing.T) {
	tr := newFakeTransport()
	ex := &fakeExtractor{}
	sum := &fakeSummarizer{}
	c := newTestCollector(40*time.Millisecond, tr, ex, sum, &fakeContexts{}, nil)
	defer c.Close()

	d := doc("same", "terms.docx")
	c.Add(context.Background(), event("grp", 100, d))
	c.Add(context.Background(), event("grp", 101, d))

	waitReply(t, tr)
	assert.Equal(t, 1, ex.callCount(), "re-sent file must not be extracted twice")
}

func TestLateArrivalOpensFreshBatch(t *testing.T) {
	tr := newFakeTransport()
	c := newTestCollector(30*time.Millisecond, tr, &fakeExtractor{}, &fakeSummarizer{}, &fakeContexts{}, nil)
	defer c.Close()

	c.Add(context.Background(), event("grp", 100, doc("u1", "a.docx")))
	waitReply(t, tr)

	// Same key after finalization: a new epoch, acknowledged again.
	c.Add(context.Background(), event("grp", 200, doc("u2", "b.docx")))
	waitReply(t, tr)

	assert.Len(t, tr.acks, 2)
	assert.Equal(t, 2, tr.replyCount())
}

func TestContextAttachedAndBoundedByAnchor(t *testing.T) {
	tr := newFakeTransport()
	ctxs := &fakeContexts{text: "see the listing", ok: true}
	sum := &fakeSummarizer{}
	c := newTestCollector(30*time.Millisecond, tr, &fakeExtractor{}, sum, ctxs, nil)
	defer c.Close()

	// Events arrive out of order: the anchor is the smallest sequence.
	c.Add(context.Background(), event("grp", 105, doc("u1", "a.docx")))
	c.Add(context.Background(), event("grp", 103, doc("u2", "b.docx")))
	waitReply(t, tr)

	require.Equal(t, []int64{10, 20, 103}, ctxs.lookup)
	combined := sum.lastText()
	assert.Contains(t, combined, "### Context from the message preceding the batch\nsee the listing")
	assert.Contains(t, combined, "### Document 1: a.docx")
	assert.Contains(t, combined, "### Document 2: b.docx")
}

func TestUngroupedSubmissionSkipsContext(t *testing.T) {
	tr := newFakeTransport()
	ctxs := &fakeContexts{text: "should not appear", ok: true}
	sum := &fakeSummarizer{}
	c := newTestCollector(30*time.Millisecond, tr, &fakeExtractor{}, sum, ctxs, nil)
	defer c.Close()

	ev := event("solo", 100, doc("u1", "a.docx"))
	ev.Grouped = false
	c.Add(context.Background(), ev)
	waitReply(t, tr)

	assert.Nil(t, ctxs.lookup, "ungrouped uploads must not consult the correlator")
	assert.Equal(t, "text of a.docx", sum.lastText())
}

func TestPartialExtractionFailuresBecomeAddendum(t *testing.T) {
	tr := newFakeTransport()
	ex := &fakeExtractor{fails: map[string]error{
		"u1": errors.New("broken zip"),
		"u2": errors.New("no converter"),
	}}
	rec := &fakeRecorder{}
	c := newTestCollector(30*time.Millisecond, tr, ex, &fakeSummarizer{}, &fakeContexts{}, rec)
	defer c.Close()

	c.Add(context.Background(), event("grp", 100, doc("u1", "a.docx")))
	c.Add(context.Background(), event("grp", 101, doc("u2", "b.pdf")))
	c.Add(context.Background(), event("grp", 102, doc("u3", "c.docx")))

	reply := waitReply(t, tr)
	assert.Contains(t, reply, "Unprocessed files:")
	assert.Contains(t, reply, "- a.docx: broken zip")
	assert.Contains(t, reply, "- b.pdf: no converter")
	assert.NotContains(t, reply, "- c.docx")

	require.Len(t, rec.outcomes, 1)
	assert.Len(t, rec.outcomes[0].Failures, 2)
	assert.Empty(t, rec.outcomes[0].Err)
}

func TestAllExtractionsFailedIsEmptyBatch(t *testing.T) {
	tr := newFakeTransport()
	ex := &fakeExtractor{fails: map[string]error{
		"u1": errors.New("x"), "u2": errors.New("y"), "u3": errors.New("z"),
	}}
	sum := &fakeSummarizer{}
	rec := &fakeRecorder{}
	c := newTestCollector(30*time.Millisecond, tr, ex, sum, &fakeContexts{}, rec)
	defer c.Close()

	for i, uid := range []string{"u1", "u2", "u3"} {
		c.Add(context.Background(), event("grp", int64(100+i), doc(uid, uid+".docx")))
	}

	notice := waitReply(t, tr)
	assert.Contains(t, notice, "Could not extract text")
	assert.Empty(t, sum.texts, "the summarizer must not run for an empty batch")
	assert.Equal(t, 0, tr.replyCount())

	require.Len(t, rec.outcomes, 1)
	assert.Equal(t, ErrEmptyBatch.Error(), rec.outcomes[0].Err)
}

func TestBackendFailureReplacesStatus(t *testing.T) {
	tr := newFakeTransport()
	sum := &fakeSummarizer{err: errors.New("backend down")}
	c := newTestCollector(30*time.Millisecond, tr, &fakeExtractor{}, sum, &fakeContexts{}, nil)
	defer c.Close()

	c.Add(context.Background(), event("grp", 100, doc("u1", "a.docx")))

	notice := waitReply(t, tr)
	assert.Contains(t, notice, "Could not process the documents")
	assert.Equal(t, 0, tr.replyCount())
	assert.NotContains(t, notice, "backend down", "raw errors never reach users")
}

func TestMaxCollectCapsTrickle(t *testing.T) {
	tr := newFakeTransport()
	c := NewCollector(
		types.CollectorConfig{DebounceInterval: 50 * time.Millisecond, MaxCollect: 120 * time.Millisecond},
		&fakeExtractor{}, &fakeSummarizer{}, &fakeContexts{}, tr, nil, nil,
	)
	defer c.Close()

	// A steady trickle faster than the debounce would defer finalization
	// forever without the ceiling.
	start := time.Now()
	go func() {
		for i := 0; i < 20; i++ {
			c.Add(context.Background(), event("grp", int64(100+i), doc(fmt.Sprintf("u%d", i), "d.docx")))
			time.Sleep(25 * time.Millisecond)
		}
	}()

	waitReply(t, tr)
	assert.Less(t, time.Since(start), 400*time.Millisecond, "the ceiling must force finalization")
}

func TestCombine(t *testing.T) {
	parts := []types.ExtractedDocument{
		{Label: "a.docx", Text: "alpha"},
		{Label: "b.docx", Text: "beta"},
	}

	t.Run("single part no context passes through", func(t *testing.T) {
		text, label := Combine(parts[:1], "")
		assert.Equal(t, "alpha", text)
		assert.Equal(t, "a.docx", label)
	})

	t.Run("single part with context gets sections", func(t *testing.T) {
		text, label := Combine(parts[:1], "ctx")
		assert.Contains(t, text, "### Context from the message preceding the batch\nctx")
		assert.Contains(t, text, "### Document 1: a.docx\nalpha")
		assert.Equal(t, "Document package (1 files)", label)
	})

	t.Run("multiple parts numbered in order", func(t *testing.T) {
		text, label := Combine(parts, "")
		assert.Contains(t, text, "### Document 1: a.docx\nalpha")
		assert.Contains(t, text, "### Document 2: b.docx\nbeta")
		assert.Equal(t, "Document package (2 files)", label)
	})
}
