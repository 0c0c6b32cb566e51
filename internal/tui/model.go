// Package tui is the terminal chat client: a bubbletea program that renders
// the conversation, hosts the input bar and opens the annotation overlay.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"multimodalchat/internal/annotation"
	"multimodalchat/internal/composer"
	"multimodalchat/internal/models"
	"multimodalchat/internal/render"
	"multimodalchat/internal/store"
)

const (
	welcomeTitle = "Welcome to Adaptive Multimodal Chat!"
	welcomeBody  = "No messages yet. Start the conversation by sending a message, image, code or other content types."
)

// ChatClient is what the client needs from the chat service.
type ChatClient interface {
	composer.Sender
	PendingReplies() int
	Close()
}

// Config wires a Model to its collaborators.
type Config struct {
	Store    store.MessageStore
	Chat     ChatClient
	Renderer *render.Renderer
	Terminal *render.TerminalRenderer
	Logger   *slog.Logger
}

type mode int

const (
	modeChat mode = iota
	modeSelectType
	modeAnnotate
)

// storeUpdatedMsg tells the model the log has grown since the last read.
type storeUpdatedMsg struct{}

// Model is the bubbletea model for the chat client.
type Model struct {
	ctx      context.Context
	store    store.MessageStore
	chat     ChatClient
	renderer *render.Renderer
	term     *render.TerminalRenderer
	logger   *slog.Logger
	theme    theme

	composer *composer.Composer
	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model

	messages    []models.Message
	updates     chan struct{}
	unsubscribe func()

	mode       mode
	overlay    *annotation.Overlay
	overlayMsg models.Message
	label      textinput.Model

	width, height int
	status        string
	quitting      bool
}

// New builds a Model and subscribes it to the store. The subscription only
// signals a buffered channel so the store never blocks on the UI.
func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 4000
	input.Focus()

	label := textinput.New()
	label.Prompt = "Label: "
	label.Placeholder = "Add annotation text..."
	label.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      context.Background(),
		store:    cfg.Store,
		chat:     cfg.Chat,
		renderer: cfg.Renderer,
		term:     cfg.Terminal,
		logger:   logger.With("component", "TUI"),
		theme:    newTheme(),
		composer: composer.New(cfg.Chat),
		input:    input,
		label:    label,
		timeline: viewport.New(80, 20),
		spinner:  sp,
		updates:  make(chan struct{}, 1),
		width:    80,
		height:   30,
	}
	m.input.Placeholder = m.composer.Placeholder()

	updates := m.updates
	m.unsubscribe = cfg.Store.Subscribe(func(models.Message) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	m.messages = cfg.Store.ReadAll()
	m.refreshTimeline()
	return m
}

// Init starts the spinner and the store listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		waitForUpdate(m.updates),
	)
}

func waitForUpdate(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return storeUpdatedMsg{}
	}
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case storeUpdatedMsg:
		m.messages = m.store.ReadAll()
		m.refreshTimeline()
		cmds = append(cmds, waitForUpdate(m.updates))
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshTimeline()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		if m.mode == modeAnnotate {
			m.handleOverlayMouse(msg)
		}
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.mode {
		case modeSelectType:
			m.handleSelectorKey(msg)
		case modeAnnotate:
			cmds = append(cmds, m.handleOverlayKey(msg))
		default:
			cmd, quit := m.handleChatKey(msg)
			if quit {
				return m.quit()
			}
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.chat.Close()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return m, tea.Quit
}

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "enter":
		raw := m.input.Value()
		if strings.HasPrefix(strings.TrimSpace(raw), "/") {
			m.input.SetValue("")
			return nil, m.handleSlash(strings.TrimSpace(raw))
		}
		m.composer.SetText(raw)
		if sent, ok := m.composer.Send(m.ctx); ok {
			m.logger.Debug("message sent", "id", sent.ID, "type", sent.Type)
			m.status = ""
		}
		m.input.SetValue(m.composer.Text())
		m.input.Placeholder = m.composer.Placeholder()
		return nil, false
	case "ctrl+a":
		m.mode = modeSelectType
		return nil, false
	case "esc":
		m.composer.CancelType()
		m.input.Placeholder = m.composer.Placeholder()
		return nil, false
	case "ctrl+o":
		if img, ok := m.lastOfType(models.MessageTypeImage); ok {
			m.openOverlay(img)
		} else {
			m.status = "No image to annotate"
		}
		return nil, false
	case "ctrl+y":
		m.copyLastCode()
		return nil, false
	case "pgup":
		m.timeline.HalfViewUp()
		return nil, false
	case "pgdown":
		m.timeline.HalfViewDown()
		return nil, false
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd, false
}

// handleSlash runs a slash command and reports whether the client should quit.
func (m *Model) handleSlash(raw string) bool {
	fields := strings.Fields(raw)
	switch fields[0] {
	case "/quit":
		return true
	case "/annotate":
		if len(fields) != 2 {
			m.status = "usage: /annotate <message id>"
			return false
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			m.status = "usage: /annotate <message id>"
			return false
		}
		msg, ok := store.Find(m.messages, id)
		if !ok {
			m.status = fmt.Sprintf("No message #%d", id)
			return false
		}
		m.openOverlay(msg)
	default:
		m.status = fmt.Sprintf("Unknown command %s", fields[0])
	}
	return false
}

func (m *Model) handleSelectorKey(msg tea.KeyMsg) {
	key := msg.String()
	if key == "esc" {
		m.composer.CancelType()
	} else if n, err := strconv.Atoi(key); err == nil {
		types := attachmentTypes()
		if n < 1 || n > len(types) {
			return
		}
		m.composer.SelectType(types[n-1])
	} else {
		return
	}
	m.mode = modeChat
	m.input.Placeholder = m.composer.Placeholder()
}

// attachmentTypes are the selectable non-text types, in selector order.
func attachmentTypes() []models.MessageType {
	return models.AllMessageTypes()[1:]
}

func (m *Model) copyLastCode() {
	code, ok := m.lastOfType(models.MessageTypeCode)
	if !ok {
		m.status = "No code to copy"
		return
	}
	if err := m.renderer.Copy(code); err != nil {
		m.logger.Warn("copy failed", "error", err, "message_id", code.ID)
		m.status = "Copy failed"
		return
	}
	m.status = fmt.Sprintf("Copied code from #%d", code.ID)
}

func (m *Model) lastOfType(t models.MessageType) (models.Message, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Type == t {
			return m.messages[i], true
		}
	}
	return models.Message{}, false
}

func (m *Model) resize() {
	m.input.Width = maxInt(20, m.width-6)
	m.label.Width = maxInt(20, m.width-12)
	m.timeline.Width = m.width
	m.timeline.Height = maxInt(5, m.height-chromeHeight)
	if m.term != nil {
		if err := m.term.SetWidth(m.width); err != nil {
			m.logger.Warn("failed to resize renderer", "error", err)
		}
	}
}

func (m *Model) refreshTimeline() {
	m.timeline.SetContent(m.renderTimeline())
	m.timeline.GotoBottom()
}

func (m *Model) renderTimeline() string {
	if len(m.messages) == 0 {
		return m.theme.welcomeTitle.Render(welcomeTitle) + "\n" + m.theme.help.Render(welcomeBody)
	}
	views := m.renderer.Views(m.messages)
	if m.term == nil {
		lines := make([]string, len(views))
		for i, v := range views {
			lines[i] = fmt.Sprintf("#%d %s %s", v.MessageID, v.Sender, v.Body)
		}
		return strings.Join(lines, "\n")
	}
	return m.term.RenderAll(views)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
