package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"multimodalchat/internal/models"
)

// The overlay screen starts with a title row and a caption row, then the
// bordered image box. Clicks are recorded in cells relative to the box's
// inner top-left corner.
const (
	boxOriginX = 1
	boxOriginY = 3
	boxHeight  = 12
	boxMaxW    = 60
)

func (m *Model) openOverlay(msg models.Message) {
	o, err := m.renderer.OpenAnnotator(msg)
	if err != nil {
		m.status = fmt.Sprintf("Message #%d is not an image", msg.ID)
		return
	}
	m.overlay = o
	m.overlayMsg = msg
	m.mode = modeAnnotate
	m.input.Blur()
	m.label.SetValue("")
	m.label.Focus()
	m.status = ""
}

func (m *Model) closeOverlay(status string) {
	m.overlay = nil
	m.mode = modeChat
	m.label.Blur()
	m.input.Focus()
	m.status = status
	m.refreshTimeline()
}

func (m *Model) boxWidth() int {
	return minInt(boxMaxW, maxInt(20, m.width-2))
}

func (m *Model) handleOverlayMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	x, y := msg.X-boxOriginX, msg.Y-boxOriginY
	if x < 0 || y < 0 || x >= m.boxWidth() || y >= boxHeight {
		return
	}
	m.overlay.Click(float64(x), float64(y))
}

func (m *Model) handleOverlayKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.overlay.Cancel()
		m.closeOverlay("Annotation cancelled")
		return nil
	case "ctrl+s":
		anns, ok := m.overlay.Save()
		if !ok {
			return nil
		}
		m.closeOverlay(fmt.Sprintf("Saved %d annotations on #%d", len(anns), m.overlayMsg.ID))
		return nil
	case "enter":
		if m.overlay.CommitPending() {
			m.label.SetValue("")
		}
		return nil
	case "tab":
		m.overlay.SelectColor(nextColor(m.overlay.SelectedColor()))
		return nil
	case "ctrl+d":
		if anns := m.overlay.Annotations(); len(anns) > 0 {
			m.overlay.Remove(anns[len(anns)-1].ID)
		}
		return nil
	}
	var cmd tea.Cmd
	m.label, cmd = m.label.Update(msg)
	m.overlay.SetLabel(m.label.Value())
	return cmd
}

func nextColor(c models.Color) models.Color {
	palette := models.Palette()
	for i, p := range palette {
		if p == c {
			return palette[(i+1)%len(palette)]
		}
	}
	return palette[0]
}

func (m *Model) renderOverlay() string {
	o := m.overlay
	w := m.boxWidth()

	grid := make([][]string, boxHeight)
	for y := range grid {
		grid[y] = make([]string, w)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}
	place := func(a models.Annotation, glyph string) {
		x, y := int(a.X), int(a.Y)
		if x < 0 || y < 0 || x >= w || y >= boxHeight {
			return
		}
		grid[y][x] = lipgloss.NewStyle().Foreground(lipgloss.Color(string(a.Color))).Bold(true).Render(glyph)
	}
	for _, a := range o.Annotations() {
		place(a, "●")
	}
	if p, ok := o.Pending(); ok {
		place(p, "◎")
	}
	rows := make([]string, boxHeight)
	for y, row := range grid {
		rows[y] = strings.Join(row, "")
	}

	var b strings.Builder
	b.WriteString(m.theme.title.Render("Image Annotation"))
	b.WriteString("\n")
	b.WriteString(m.theme.help.Render(o.ImageURL()))
	b.WriteString("\n")
	b.WriteString(m.theme.imageBox.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	for i, a := range o.Annotations() {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(string(a.Color))).Render("●")
		b.WriteString(fmt.Sprintf("%s %d. %s (%.0f, %.0f)\n", swatch, i+1, a.Text, a.X, a.Y))
	}

	var palette []string
	for _, c := range models.Palette() {
		glyph := "○"
		if c == o.SelectedColor() {
			glyph = "●"
		}
		palette = append(palette, lipgloss.NewStyle().Foreground(lipgloss.Color(string(c))).Render(glyph))
	}
	b.WriteString("Color: " + strings.Join(palette, " ") + "\n")

	if _, ok := o.Pending(); ok {
		b.WriteString(m.label.View())
	} else {
		b.WriteString(m.theme.help.Render("Click on the image to add an annotation"))
	}
	b.WriteString("\n")

	hints := "enter add · tab color · ctrl+d remove last · esc cancel"
	if o.CanSave() {
		hints += " · ctrl+s save"
	}
	b.WriteString(m.theme.help.Render(hints))
	return b.String()
}
