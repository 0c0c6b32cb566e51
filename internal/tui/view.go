package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"multimodalchat/internal/composer"
	"multimodalchat/internal/models"
)

// chromeHeight is the number of rows outside the timeline in chat mode.
const chromeHeight = 7

type theme struct {
	title        lipgloss.Style
	welcomeTitle lipgloss.Style
	help         lipgloss.Style
	hint         lipgloss.Style
	mode         lipgloss.Style
	status       lipgloss.Style
	inputPanel   lipgloss.Style
	imageBox     lipgloss.Style
	selector     lipgloss.Style
}

func newTheme() theme {
	blue := lipgloss.Color("#3B82F6")
	muted := lipgloss.Color("#9CA3AF")
	return theme{
		title:        lipgloss.NewStyle().Foreground(blue).Bold(true),
		welcomeTitle: lipgloss.NewStyle().Bold(true),
		help:         lipgloss.NewStyle().Foreground(muted),
		hint:         lipgloss.NewStyle().Foreground(muted).Italic(true),
		mode:         lipgloss.NewStyle().Foreground(blue).Bold(true),
		status:       lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		inputPanel:   lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(muted),
		imageBox:     lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(muted),
		selector:     lipgloss.NewStyle().Foreground(blue),
	}
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == modeAnnotate && m.overlay != nil {
		return m.renderOverlay()
	}

	var b strings.Builder
	b.WriteString(m.theme.title.Render("Adaptive Multimodal Chat"))
	b.WriteString("\n")
	b.WriteString(m.timeline.View())
	b.WriteString("\n")

	if hint := composer.ContextHint(m.lastMessage()); hint != "" {
		b.WriteString(m.theme.hint.Render(hint))
	}
	b.WriteString("\n")

	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderInput() string {
	line := m.input.View()
	if label := m.composer.ModeLabel(); label != "" {
		line = m.theme.mode.Render(label) + " " + line
	}
	if m.chat.PendingReplies() > 0 {
		line = m.spinner.View() + " " + line
	}
	return m.theme.inputPanel.Width(maxInt(20, m.width-2)).Render(line)
}

func (m Model) renderFooter() string {
	if m.mode == modeSelectType {
		opts := make([]string, 0, len(attachmentTypes()))
		for i, t := range attachmentTypes() {
			name := string(t)
			opts = append(opts, fmt.Sprintf("%d %s", i+1, strings.ToUpper(name[:1])+name[1:]))
		}
		return m.theme.selector.Render(strings.Join(opts, " · ") + " · esc cancel")
	}
	if m.status != "" {
		return m.theme.status.Render(m.status)
	}
	return m.theme.help.Render("enter send · ctrl+a attach · ctrl+o annotate · ctrl+y copy code · pgup/pgdn scroll · ctrl+c quit")
}

func (m Model) lastMessage() *models.Message {
	if len(m.messages) == 0 {
		return nil
	}
	last := m.messages[len(m.messages)-1]
	return &last
}
