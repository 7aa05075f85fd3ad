// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bot runs the Telegram update loop: it gates chats against the
// whitelist, records plain text for context lookups, and feeds document
// uploads into the submission collector.
package bot

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/tender-digest/internal/batch"
	"github.com/pdiddy/tender-digest/internal/extract"
	"github.com/pdiddy/tender-digest/internal/telegram"
	"github.com/pdiddy/tender-digest/pkg/types"
)

const (
	startReply = "The bot is up. Send .doc/.docx/.xlsx/.pdf/.rar files to the group. " +
		"Several files uploaded together get one combined summary. " +
		"Text sent right before the package, such as a procurement link and price, is taken into account."
	helpReply = "I process .doc/.docx/.xlsx/.pdf/.rar uploads and reply with a structured summary " +
		"of the tender documents. For a file package I also use the author's latest text message."
	unauthorizedReply = "This chat is not authorized to use the bot."

	pollRetryDelay = 3 * time.Second
)

// API is the subset of the Telegram client the update loop needs.
type API interface {
	GetMe(ctx context.Context) (*telegram.User, error)
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, replyTo int64, parseMode string) (*telegram.Message, error)
	LeaveChat(ctx context.Context, chatID int64) error
}

// Collector accepts document upload events.
type Collector interface {
	Add(ctx context.Context, ev batch.Event)
}

// TextRecorder stores plain text messages for later context lookups.
type TextRecorder interface {
	Record(channelID, authorID, sequence int64, text string, at time.Time)
}

// Bot drives the long-polling update loop.
type Bot struct {
	api       API
	collector Collector
	texts     TextRecorder
	allowed   map[int64]struct{}
	denied    map[int64]struct{}
	timeout   time.Duration
	logw      io.Writer

	newKey func() string
	sleep  func(context.Context, time.Duration)
}

// New builds a Bot. texts and logw may be nil.
func New(api API, collector Collector, texts TextRecorder, cfg types.TelegramConfig, logw io.Writer) *Bot {
	if logw == nil {
		logw = io.Discard
	}
	allowed := make(map[int64]struct{}, len(cfg.AllowedChats))
	for _, id := range cfg.AllowedChats {
		allowed[id] = struct{}{}
	}
	return &Bot{
		api:       api,
		collector: collector,
		texts:     texts,
		allowed:   allowed,
		denied:    make(map[int64]struct{}),
		timeout:   cfg.PollTimeout,
		logw:      logw,
		newKey:    uuid.NewString,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run polls for updates until ctx is canceled. Poll errors are logged and
// retried after a short delay.
func (b *Bot) Run(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("verifying bot token: %w", err)
	}
	fmt.Fprintf(b.logw, "bot started as @%s\n", me.Username)

	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := b.api.GetUpdates(ctx, offset, b.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(b.logw, "poll error: %v\n", err)
			b.sleep(ctx, pollRetryDelay)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			b.handleUpdate(ctx, u)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, u telegram.Update) {
	if u.MyChatMember != nil {
		m := u.MyChatMember
		fmt.Fprintf(b.logw, "membership change: chat=%d title=%q old=%s new=%s\n",
			m.Chat.ID, m.Chat.Title, m.OldChatMember.Status, m.NewChatMember.Status)
		return
	}

	msg := u.Message
	if msg == nil {
		return
	}
	if !b.ensureAllowed(ctx, msg.Chat) {
		return
	}
	if msg.From != nil && msg.From.IsBot {
		return
	}

	switch {
	case msg.Document != nil:
		b.handleDocument(ctx, msg)
	case msg.Text != "":
		b.handleText(ctx, msg)
	}
}

// ensureAllowed reports whether the chat may use the bot. An empty whitelist
// allows every chat. An unauthorized chat is notified once and left.
func (b *Bot) ensureAllowed(ctx context.Context, chat telegram.Chat) bool {
	if len(b.allowed) == 0 {
		return true
	}
	if _, ok := b.allowed[chat.ID]; ok {
		return true
	}

	if _, seen := b.denied[chat.ID]; !seen {
		b.denied[chat.ID] = struct{}{}
		if _, err := b.api.SendMessage(ctx, chat.ID, unauthorizedReply, 0, ""); err != nil {
			fmt.Fprintf(b.logw, "unauthorized notice for chat %d failed: %v\n", chat.ID, err)
		}
		if err := b.api.LeaveChat(ctx, chat.ID); err != nil {
			fmt.Fprintf(b.logw, "leaving unauthorized chat %d failed: %v\n", chat.ID, err)
		}
	}
	return false
}

func (b *Bot) handleText(ctx context.Context, msg *telegram.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" || msg.From == nil {
		return
	}

	switch command(text) {
	case "/start":
		b.reply(ctx, msg, startReply)
		return
	case "/help":
		b.reply(ctx, msg, helpReply)
		return
	}

	if b.texts != nil {
		at := time.Unix(msg.Date, 0)
		b.texts.Record(msg.Chat.ID, msg.From.ID, msg.MessageID, text, at)
	}
}

// command extracts the leading bot command, dropping any @botname suffix.
// Returns "" when the message is not a command.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	first := strings.Fields(text)[0]
	cmd, _, _ := strings.Cut(first, "@")
	return cmd
}

func (b *Bot) handleDocument(ctx context.Context, msg *telegram.Message) {
	doc := msg.Document
	ext := extract.DetectExtension(doc.FileName, doc.MimeType)
	name := doc.FileName
	if name == "" {
		name = "document" + ext
	}

	if !extract.IsSupported(ext) {
		fmt.Fprintf(b.logw, "skipping unsupported upload %q in chat %d\n", name, msg.Chat.ID)
		return
	}

	var authorID int64
	if msg.From != nil {
		authorID = msg.From.ID
	}

	ev := batch.Event{
		ChannelID: msg.Chat.ID,
		AuthorID:  authorID,
		Sequence:  msg.MessageID,
		Document: types.DocumentRef{
			ID:        doc.FileID,
			UniqueID:  doc.FileUniqueID,
			Name:      name,
			Extension: ext,
		},
	}
	if msg.MediaGroupID != "" {
		ev.Key = fmt.Sprintf("grp:%d:%s", msg.Chat.ID, msg.MediaGroupID)
		ev.Grouped = true
	} else {
		ev.Key = "one:" + b.newKey()
	}

	b.collector.Add(ctx, ev)
}

func (b *Bot) reply(ctx context.Context, msg *telegram.Message, text string) {
	if _, err := b.api.SendMessage(ctx, msg.Chat.ID, text, msg.MessageID, ""); err != nil {
		fmt.Fprintf(b.logw, "reply in chat %d failed: %v\n", msg.Chat.ID, err)
	}
}
