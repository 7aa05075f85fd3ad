// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telegram

import (
	"context"

	"github.com/pdiddy/tender-digest/internal/batch"
)

// Transport adapts the Bot API client to the batch collector's side-effect
// contract: acknowledgments and status edits in plain text, final replies
// formatted as HTML and split to the outbound message limit.
type Transport struct {
	client *Client
	limit  int
}

// NewTransport wraps client with the given outbound message limit.
func NewTransport(client *Client, messageLimit int) *Transport {
	return &Transport{client: client, limit: messageLimit}
}

// Acknowledge posts the initial status message as a reply to the upload.
func (t *Transport) Acknowledge(ctx context.Context, channelID, replyTo int64, text string) (batch.StatusHandle, error) {
	m, err := t.client.SendMessage(ctx, channelID, text, replyTo, "")
	if err != nil {
		return batch.StatusHandle{}, err
	}
	return batch.StatusHandle{ChannelID: channelID, MessageID: m.MessageID}, nil
}

// UpdateStatus edits the status message in place.
func (t *Transport) UpdateStatus(ctx context.Context, h batch.StatusHandle, text string) error {
	if h.MessageID == 0 {
		return nil
	}
	return t.client.EditMessageText(ctx, h.ChannelID, h.MessageID, text)
}

// DeleteStatus removes the status message.
func (t *Transport) DeleteStatus(ctx context.Context, h batch.StatusHandle) error {
	if h.MessageID == 0 {
		return nil
	}
	return t.client.DeleteMessage(ctx, h.ChannelID, h.MessageID)
}

// Reply formats the summary for HTML mode, splits it to the message limit,
// and sends every part.
func (t *Transport) Reply(ctx context.Context, channelID int64, text string) error {
	for _, part := range SplitMessage(FormatHTML(text), t.limit) {
		if _, err := t.client.SendMessage(ctx, channelID, part, 0, "HTML"); err != nil {
			return err
		}
	}
	return nil
}
