// Package render maps messages to presentations. The mapping is a closed
// switch over models.MessageType; a new type must be handled in View.
package render

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"multimodalchat/internal/annotation"
	"multimodalchat/internal/models"
)

var (
	ErrNotAnnotatable = errors.New("only image messages can be annotated")
	ErrNotCopyable    = errors.New("only code messages can be copied")
)

// Action is an interactive affordance offered on a rendered message.
type Action string

const (
	ActionAnnotate   Action = "annotate"
	ActionCopy       Action = "copy"
	ActionTranscribe Action = "transcribe"
	ActionViewFull   Action = "view-full"
	ActionOpen       Action = "open"
)

// View is the presentation of a single message.
type View struct {
	MessageID      int64
	Kind           models.MessageType // "unsupported" for unknown types
	Sender         models.Sender
	Title          string   // Small caption above the body, may be empty
	Body           string   // Main content
	Language       string   // Set for code views
	Preview        []string // Rows of a simplified tabular preview
	Actions        []Action
	AnnotationNote string // e.g. "2 annotations added"
}

// Renderer builds views and hosts the two interactive affordances: opening
// the annotation overlay on images and copying code.
type Renderer struct {
	annotations *AnnotationTable
	clipboard   Clipboard
	logger      *slog.Logger
}

// NewRenderer creates a Renderer. A nil table or clipboard gets a fresh
// table or the system clipboard.
func NewRenderer(table *AnnotationTable, cb Clipboard, logger *slog.Logger) *Renderer {
	if table == nil {
		table = NewAnnotationTable()
	}
	if cb == nil {
		cb = SystemClipboard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		annotations: table,
		clipboard:   cb,
		logger:      logger.With("component", "Renderer"),
	}
}

// Annotations exposes the side-table of saved annotations.
func (r *Renderer) Annotations() *AnnotationTable {
	return r.annotations
}

// View renders one message.
func (r *Renderer) View(msg models.Message) View {
	v := View{MessageID: msg.ID, Kind: msg.Type, Sender: msg.Sender}

	switch msg.Type {
	case models.MessageTypeText:
		v.Body = msg.Content
	case models.MessageTypeImage:
		v.Title = "Image"
		v.Body = msg.Content
		v.Actions = []Action{ActionAnnotate}
		if n := r.annotations.Count(msg.ID); n > 0 {
			v.AnnotationNote = annotationNote(n)
		}
	case models.MessageTypeAudio:
		v.Title = "Audio message"
		v.Body = msg.Content
		v.Actions = []Action{ActionTranscribe}
	case models.MessageTypeCode:
		v.Title = msg.Language
		if v.Title == "" {
			v.Title = "code"
		}
		v.Language = msg.Language
		v.Body = msg.Content
		v.Actions = []Action{ActionCopy}
	case models.MessageTypeSpreadsheet:
		v.Title = "Spreadsheet Data"
		v.Body = msg.Content
		v.Preview = []string{
			"Sample | Data | Columns",
			"Value 1 | Value 2 | Value 3",
		}
		v.Actions = []Action{ActionViewFull}
	case models.MessageTypeDocument:
		v.Title = "Document"
		v.Body = documentName(msg.Content)
		v.Actions = []Action{ActionOpen}
	default:
		v.Kind = "unsupported"
		v.Body = msg.Content
	}
	return v
}

// Views renders a snapshot in order.
func (r *Renderer) Views(msgs []models.Message) []View {
	out := make([]View, len(msgs))
	for i, m := range msgs {
		out[i] = r.View(m)
	}
	return out
}

// OpenAnnotator starts an overlay session over an image message. Saving the
// session replaces the message's entry in the side-table; cancelling leaves
// any earlier entry untouched.
func (r *Renderer) OpenAnnotator(msg models.Message, opts ...annotation.Option) (*annotation.Overlay, error) {
	if msg.Type != models.MessageTypeImage {
		return nil, fmt.Errorf("%w: message %d is %s", ErrNotAnnotatable, msg.ID, msg.Type)
	}

	hooks := annotation.WithHooks(
		func(anns []models.Annotation) {
			r.annotations.Set(msg.ID, anns)
			r.logger.Info("annotations saved", "message_id", msg.ID, "count", len(anns))
		},
		func() {
			r.logger.Debug("annotation session cancelled", "message_id", msg.ID)
		},
	)
	return annotation.New(msg.Content, append(opts, hooks)...), nil
}

// Copy writes a code message's content to the clipboard. Failures are logged
// and returned; nothing else depends on them.
func (r *Renderer) Copy(msg models.Message) error {
	if msg.Type != models.MessageTypeCode {
		return fmt.Errorf("%w: message %d is %s", ErrNotCopyable, msg.ID, msg.Type)
	}
	if err := r.clipboard.WriteAll(msg.Content); err != nil {
		r.logger.Warn("clipboard write failed", "message_id", msg.ID, "error", err)
		return fmt.Errorf("copy message %d: %w", msg.ID, err)
	}
	return nil
}

func annotationNote(n int) string {
	if n == 1 {
		return "1 annotation added"
	}
	return fmt.Sprintf("%d annotations added", n)
}

// documentName shows the last path segment of a locator, like a file name.
func documentName(locator string) string {
	trimmed := strings.TrimSpace(locator)
	if trimmed == "" || strings.HasSuffix(trimmed, "/") {
		return "Document"
	}
	return path.Base(trimmed)
}
