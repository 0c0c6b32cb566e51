package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"multimodalchat/internal/models"
	"multimodalchat/internal/render"
	"multimodalchat/internal/scheduler"
	"multimodalchat/internal/services"
	"multimodalchat/internal/store/memory"
)

type fakeClipboard struct{ text string }

func (c *fakeClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

type harness struct {
	t     *testing.T
	m     Model
	store *memory.MessageStore
	sched *scheduler.Fake
	chat  *services.ChatService
	rend  *render.Renderer
	clip  *fakeClipboard
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := memory.NewMessageStore(nil)
	fake := scheduler.NewFake()
	chat := services.NewChatService(st, fake, services.WithReplyDelay(time.Second))
	t.Cleanup(chat.Close)
	clip := &fakeClipboard{}
	rend := render.NewRenderer(nil, clip, nil)
	term, err := render.NewTerminalRenderer("notty", 80)
	if err != nil {
		t.Fatalf("terminal renderer: %v", err)
	}
	m := New(Config{Store: st, Chat: chat, Renderer: rend, Terminal: term})
	return &harness{t: t, m: m, store: st, sched: fake, chat: chat, rend: rend, clip: clip}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) key(t tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: t})
}

// sync drains the store notification the way the program loop would.
func (h *harness) sync() {
	select {
	case <-h.m.updates:
		h.send(storeUpdatedMsg{})
	default:
	}
}

func TestWelcomeShownWhenEmpty(t *testing.T) {
	h := newHarness(t)
	if out := h.m.View(); !strings.Contains(out, welcomeTitle) {
		t.Fatalf("expected welcome text, got:\n%s", out)
	}
}

func TestEnterSendsAndReplyArrives(t *testing.T) {
	h := newHarness(t)

	h.typeText("hello there")
	h.key(tea.KeyEnter)
	h.sync()

	if h.m.input.Value() != "" {
		t.Fatalf("input not cleared: %q", h.m.input.Value())
	}
	if len(h.m.messages) != 1 || h.m.messages[0].Content != "hello there" {
		t.Fatalf("unexpected messages %+v", h.m.messages)
	}
	if h.chat.PendingReplies() != 1 {
		t.Fatal("expected a pending reply")
	}

	h.sched.Advance(time.Second)
	h.sync()

	if len(h.m.messages) != 2 || h.m.messages[1].Sender != models.SenderAI {
		t.Fatalf("reply not shown: %+v", h.m.messages)
	}
	if out := h.m.View(); !strings.Contains(out, services.CannedReply(models.MessageTypeText)) {
		t.Fatalf("view missing reply:\n%s", out)
	}
}

func TestBlankEnterIsNoop(t *testing.T) {
	h := newHarness(t)
	h.typeText("   ")
	h.key(tea.KeyEnter)
	if h.store.Len() != 0 {
		t.Fatal("blank input was sent")
	}
}

func TestAttachmentSelector(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyCtrlA)
	if h.m.mode != modeSelectType {
		t.Fatal("ctrl+a should open the selector")
	}
	h.typeText("3")
	if h.m.composer.SelectedType() != models.MessageTypeCode || h.m.mode != modeChat {
		t.Fatalf("expected code mode, got %s", h.m.composer.SelectedType())
	}
	if h.m.input.Placeholder != "Paste your code snippet here..." {
		t.Fatalf("unexpected placeholder %q", h.m.input.Placeholder)
	}
	if !strings.Contains(h.m.View(), "Code mode") {
		t.Fatal("mode label not shown")
	}

	h.typeText("x := 1")
	h.key(tea.KeyEnter)
	if got := h.store.ReadAll(); len(got) != 1 || got[0].Type != models.MessageTypeCode {
		t.Fatalf("expected a code message, got %+v", got)
	}
	if h.m.composer.SelectedType() != models.MessageTypeText {
		t.Fatal("type should reset to text after send")
	}

	h.key(tea.KeyCtrlA)
	h.key(tea.KeyEsc)
	if h.m.mode != modeChat || h.m.composer.SelectedType() != models.MessageTypeText {
		t.Fatal("esc should cancel back to text")
	}
}

func TestAnnotateLastImage(t *testing.T) {
	h := newHarness(t)
	img := h.store.Append(models.MessageCandidate{Type: models.MessageTypeImage, Sender: models.SenderAI, Content: "/sample-image.jpg"})
	h.sync()

	h.key(tea.KeyCtrlO)
	if h.m.mode != modeAnnotate || h.m.overlay == nil {
		t.Fatal("ctrl+o should open the overlay")
	}

	h.key(tea.KeyCtrlS)
	if h.m.mode != modeAnnotate {
		t.Fatal("save with nothing committed should be ignored")
	}

	h.key(tea.KeyTab)
	h.send(tea.MouseMsg{X: boxOriginX + 4, Y: boxOriginY + 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	p, ok := h.m.overlay.Pending()
	if !ok || p.X != 4 || p.Y != 2 {
		t.Fatalf("click not mapped into the image box: %+v %v", p, ok)
	}

	h.typeText("whisker")
	h.key(tea.KeyEnter)
	anns := h.m.overlay.Annotations()
	if len(anns) != 1 || anns[0].Text != "whisker" {
		t.Fatalf("commit failed: %+v", anns)
	}
	if anns[0].Color != models.ColorGreen {
		t.Fatalf("tab before the click should pick the next color, got %s", anns[0].Color)
	}

	h.key(tea.KeyCtrlS)
	if h.m.mode != modeChat {
		t.Fatal("save should close the overlay")
	}
	if got := h.rend.Annotations().Count(img.ID); got != 1 {
		t.Fatalf("expected 1 saved annotation, got %d", got)
	}
	if !strings.Contains(h.m.View(), "1 annotation added") {
		t.Fatal("timeline missing annotation note")
	}
	if h.store.Len() != 1 {
		t.Fatal("annotating must not append messages")
	}
}

func TestOverlayClickOutsideBoxIgnored(t *testing.T) {
	h := newHarness(t)
	h.store.Append(models.MessageCandidate{Type: models.MessageTypeImage, Sender: models.SenderAI, Content: "/a.png"})
	h.sync()
	h.key(tea.KeyCtrlO)

	h.send(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if _, ok := h.m.overlay.Pending(); ok {
		t.Fatal("click on the title row created a point")
	}

	h.key(tea.KeyEsc)
	if h.m.mode != modeChat {
		t.Fatal("esc should cancel the overlay")
	}
}

func TestAnnotateSlashCommand(t *testing.T) {
	h := newHarness(t)
	text := h.store.Append(models.MessageCandidate{Type: models.MessageTypeText, Sender: models.SenderUser, Content: "hi"})
	h.sync()

	h.typeText("/annotate 1")
	h.key(tea.KeyEnter)
	if h.m.mode != modeChat || !strings.Contains(h.m.status, "not an image") {
		t.Fatalf("text message %d should not open the overlay, status=%q", text.ID, h.m.status)
	}
	if h.store.Len() != 1 {
		t.Fatal("slash command was sent as a message")
	}

	h.store.Append(models.MessageCandidate{Type: models.MessageTypeImage, Sender: models.SenderAI, Content: "/b.png"})
	h.sync()
	h.typeText("/annotate 2")
	h.key(tea.KeyEnter)
	if h.m.mode != modeAnnotate || h.m.overlay.ImageURL() != "/b.png" {
		t.Fatal("expected overlay on message 2")
	}
}

func TestCopyLastCode(t *testing.T) {
	h := newHarness(t)
	h.store.Append(models.MessageCandidate{Type: models.MessageTypeCode, Sender: models.SenderAI, Content: `console.log("Hello World");`, Language: "javascript"})
	h.sync()

	h.key(tea.KeyCtrlY)
	if h.clip.text != `console.log("Hello World");` {
		t.Fatalf("clipboard got %q", h.clip.text)
	}
}

func TestQuitCancelsPendingReplies(t *testing.T) {
	h := newHarness(t)
	h.typeText("bye")
	h.key(tea.KeyEnter)

	cmd := h.key(tea.KeyCtrlC)
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("ctrl+c should quit")
	}

	h.sched.Advance(time.Hour)
	if h.store.Len() != 1 {
		t.Fatalf("reply delivered after quit: %d messages", h.store.Len())
	}
}
