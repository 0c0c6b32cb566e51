package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"multimodalchat/internal/models"
)

// Theme holds the lipgloss styles used for terminal output.
type Theme struct {
	User       lipgloss.Style
	AI         lipgloss.Style
	Caption    lipgloss.Style
	Note       lipgloss.Style
	Action     lipgloss.Style
	Preview    lipgloss.Style
	BubbleUser lipgloss.Style
	BubbleAI   lipgloss.Style
}

// DefaultTheme mirrors the blue-user / white-assistant bubbles of the web client.
func DefaultTheme() Theme {
	blue := lipgloss.Color("#3B82F6")
	gray := lipgloss.Color("#9CA3AF")
	return Theme{
		User:    lipgloss.NewStyle().Foreground(blue).Bold(true),
		AI:      lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
		Caption: lipgloss.NewStyle().Foreground(gray),
		Note:    lipgloss.NewStyle().Foreground(gray).Italic(true),
		Action:  lipgloss.NewStyle().Foreground(blue),
		Preview: lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")),
		BubbleUser: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		BubbleAI: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(gray).
			Padding(0, 1),
	}
}

// TerminalRenderer turns Views into styled text. Code bodies go through glamour.
type TerminalRenderer struct {
	theme    Theme
	style    string
	width    int
	markdown *glamour.TermRenderer
}

// NewTerminalRenderer builds a renderer for the given glamour style name
// ("dark", "light", "notty", ...) and wrap width.
func NewTerminalRenderer(style string, width int) (*TerminalRenderer, error) {
	t := &TerminalRenderer{theme: DefaultTheme(), style: style}
	if err := t.SetWidth(width); err != nil {
		return nil, err
	}
	return t, nil
}

// SetWidth rebuilds the markdown renderer for a new terminal width.
func (t *TerminalRenderer) SetWidth(width int) error {
	if width < 20 {
		width = 20
	}
	if width == t.width && t.markdown != nil {
		return nil
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(t.style),
		glamour.WithWordWrap(width-8),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	t.width = width
	t.markdown = md
	return nil
}

// Render draws one view as a speech bubble, right-aligned for the user.
func (t *TerminalRenderer) Render(v View) string {
	var b strings.Builder

	who := t.theme.AI.Render("AI")
	if v.Sender == models.SenderUser {
		who = t.theme.User.Render("You")
	}
	b.WriteString(fmt.Sprintf("%s %s\n", who, t.theme.Caption.Render(fmt.Sprintf("#%d", v.MessageID))))

	if v.Title != "" {
		b.WriteString(t.theme.Caption.Render(v.Title))
		b.WriteString("\n")
	}
	b.WriteString(t.body(v))

	for _, row := range v.Preview {
		b.WriteString("\n")
		b.WriteString(t.theme.Preview.Render(row))
	}
	if v.AnnotationNote != "" {
		b.WriteString("\n")
		b.WriteString(t.theme.Note.Render(v.AnnotationNote))
	}
	if len(v.Actions) > 0 {
		labels := make([]string, len(v.Actions))
		for i, a := range v.Actions {
			labels[i] = "[" + string(a) + "]"
		}
		b.WriteString("\n")
		b.WriteString(t.theme.Action.Render(strings.Join(labels, " ")))
	}

	bubbleWidth := t.width * 3 / 4
	style := t.theme.BubbleAI
	if v.Sender == models.SenderUser {
		style = t.theme.BubbleUser
	}
	content := b.String()
	// Width includes padding but not the border; set it only to wrap long lines.
	if lipgloss.Width(content) > bubbleWidth-4 {
		style = style.Width(bubbleWidth - 2)
	}
	bubble := style.Render(content)
	if v.Sender == models.SenderUser {
		return lipgloss.PlaceHorizontal(t.width, lipgloss.Right, bubble)
	}
	return bubble
}

// RenderAll joins a list of views, separated by blank lines.
func (t *TerminalRenderer) RenderAll(views []View) string {
	parts := make([]string, len(views))
	for i, v := range views {
		parts[i] = t.Render(v)
	}
	return strings.Join(parts, "\n\n")
}

func (t *TerminalRenderer) body(v View) string {
	if v.Kind != models.MessageTypeCode {
		return v.Body
	}
	fenced := "```" + v.Language + "\n" + v.Body + "\n```"
	out, err := t.markdown.Render(fenced)
	if err != nil {
		return v.Body
	}
	return strings.Trim(out, "\n")
}
