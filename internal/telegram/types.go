// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telegram

// Update is one inbound event from getUpdates.
type Update struct {
	UpdateID     int64              `json:"update_id"`
	Message      *Message           `json:"message"`
	MyChatMember *ChatMemberUpdated `json:"my_chat_member"`
}

// Message is the subset of the Bot API message object the bot consumes.
type Message struct {
	MessageID    int64     `json:"message_id"`
	From         *User     `json:"from"`
	Date         int64     `json:"date"` // unix seconds
	Chat         Chat      `json:"chat"`
	Text         string    `json:"text"`
	MediaGroupID string    `json:"media_group_id"`
	Document     *Document `json:"document"`
}

// User identifies a message sender.
type User struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot"`
	Username string `json:"username"`
}

// Chat identifies a conversation.
type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"` // "private", "group", "supergroup", "channel"
	Title string `json:"title"`
}

// Document is an uploaded file attachment.
type Document struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileName     string `json:"file_name"`
	MimeType     string `json:"mime_type"`
}

// ChatMemberUpdated reports the bot's own membership changes.
type ChatMemberUpdated struct {
	Chat          Chat       `json:"chat"`
	OldChatMember ChatMember `json:"old_chat_member"`
	NewChatMember ChatMember `json:"new_chat_member"`
}

// ChatMember carries a membership status such as "member" or "kicked".
type ChatMember struct {
	Status string `json:"status"`
}

// File is the getFile result used to build a download path.
type File struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}
