// Package composer holds the input bar state: the free-text buffer and the
// attachment type that the next send will use.
package composer

import (
	"context"
	"strings"

	"multimodalchat/internal/models"
)

// Sender dispatches a composed message. *services.ChatService satisfies it.
type Sender interface {
	Send(ctx context.Context, t models.MessageType, text string) (models.Message, bool)
}

// Composer is the state behind the input bar. It is not safe for concurrent
// use; the UI loop owns it.
type Composer struct {
	sender   Sender
	buffer   string
	selected models.MessageType
}

// New returns a Composer with an empty buffer and the text type selected.
func New(sender Sender) *Composer {
	return &Composer{sender: sender, selected: models.MessageTypeText}
}

func (c *Composer) SetText(text string) { c.buffer = text }

func (c *Composer) Text() string { return c.buffer }

func (c *Composer) SelectedType() models.MessageType { return c.selected }

// SelectType switches the attachment type. Unknown types are ignored.
func (c *Composer) SelectType(t models.MessageType) {
	if t.Valid() {
		c.selected = t
	}
}

// CancelType goes back to plain text.
func (c *Composer) CancelType() { c.selected = models.MessageTypeText }

// Send dispatches the buffer with the selected type. A blank buffer is a
// no-op that leaves buffer and type untouched. Otherwise the buffer is cleared
// and the type reset to text, whether or not the sender accepted the message.
func (c *Composer) Send(ctx context.Context) (models.Message, bool) {
	if strings.TrimSpace(c.buffer) == "" {
		return models.Message{}, false
	}

	msg, ok := c.sender.Send(ctx, c.selected, c.buffer)
	c.buffer = ""
	c.selected = models.MessageTypeText
	return msg, ok
}

// Placeholder is the hint shown in the empty input for the selected type.
func (c *Composer) Placeholder() string {
	switch c.selected {
	case models.MessageTypeImage:
		return "Describe your image or paste a URL..."
	case models.MessageTypeAudio:
		return "Describe your audio or paste a URL..."
	case models.MessageTypeCode:
		return "Paste your code snippet here..."
	case models.MessageTypeSpreadsheet:
		return "Paste spreadsheet data or describe it..."
	case models.MessageTypeDocument:
		return "Describe your document or paste content..."
	default:
		return "Type your message..."
	}
}

// ModeLabel names the selected attachment mode, e.g. "Code mode".
// It is empty while plain text is selected.
func (c *Composer) ModeLabel() string {
	if c.selected == models.MessageTypeText {
		return ""
	}
	name := string(c.selected)
	return strings.ToUpper(name[:1]) + name[1:] + " mode"
}

// ContextHint is the line shown above the input for the latest message.
func ContextHint(last *models.Message) string {
	if last == nil {
		return ""
	}
	switch last.Type {
	case models.MessageTypeImage:
		return "Discussing an image. Want to annotate it?"
	case models.MessageTypeCode:
		return "Reviewing code. Need to explain or modify it?"
	case models.MessageTypeAudio:
		return "Discussing audio. Need a transcript?"
	}
	return ""
}
