package services_test

import (
	"errors"
	"testing"

	"multimodalchat/internal/models"
	"multimodalchat/internal/render"
	"multimodalchat/internal/services"
	"multimodalchat/internal/store/memory"

	"github.com/google/uuid"
)

func newAnnotations(t *testing.T) (*services.AnnotationService, models.Message, models.Message) {
	t.Helper()
	st := memory.NewMessageStore(nil)
	text := st.Append(models.MessageCandidate{Type: models.MessageTypeText, Sender: models.SenderUser, Content: "hi"})
	img := st.Append(models.MessageCandidate{Type: models.MessageTypeImage, Sender: models.SenderAI, Content: "/sample-image.jpg"})
	return services.NewAnnotationService(st, render.NewRenderer(nil, nil, nil), nil), text, img
}

func TestAnnotationSessionLifecycle(t *testing.T) {
	svc, _, img := newAnnotations(t)

	sess, err := svc.Open(img.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if sess.State != "idle" || sess.CanSave || sess.SelectedColor != models.ColorRed || len(sess.Palette) != 5 {
		t.Fatalf("unexpected initial session %+v", sess)
	}

	sess, _ = svc.Click(sess.ID, models.ClickRequest{X: 12, Y: 34})
	if sess.State != "point_pending" || sess.Pending == nil || sess.Pending.X != 12 {
		t.Fatalf("click not recorded: %+v", sess)
	}

	sess, _ = svc.SetLabel(sess.ID, models.LabelRequest{Text: "ear"})
	sess, _ = svc.Commit(sess.ID)
	if len(sess.Annotations) != 1 || sess.Annotations[0].Text != "ear" || !sess.CanSave {
		t.Fatalf("commit failed: %+v", sess)
	}

	saved, err := svc.Save(sess.ID)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.MessageID != img.ID || len(saved.Annotations) != 1 {
		t.Fatalf("unexpected save response %+v", saved)
	}

	if _, err := svc.Get(sess.ID); !errors.Is(err, services.ErrSessionNotFound) {
		t.Fatalf("saved session should be gone, got %v", err)
	}

	stored, err := svc.Annotations(img.ID)
	if err != nil || stored.Count != 1 {
		t.Fatalf("side-table not updated: %+v %v", stored, err)
	}
}

func TestAnnotationSaveWhenEmpty(t *testing.T) {
	svc, _, img := newAnnotations(t)
	sess, _ := svc.Open(img.ID)

	if _, err := svc.Save(sess.ID); !errors.Is(err, services.ErrNothingToSave) {
		t.Fatalf("expected ErrNothingToSave, got %v", err)
	}
	if svc.OpenSessions() != 1 {
		t.Fatal("empty save should keep the session open")
	}
}

func TestAnnotationCancelLeavesSavedState(t *testing.T) {
	svc, _, img := newAnnotations(t)

	first, _ := svc.Open(img.ID)
	svc.Click(first.ID, models.ClickRequest{X: 1, Y: 1})
	svc.SetLabel(first.ID, models.LabelRequest{Text: "kept"})
	svc.Commit(first.ID)
	svc.Save(first.ID)

	second, _ := svc.Open(img.ID)
	for _, label := range []string{"a", "b"} {
		svc.Click(second.ID, models.ClickRequest{X: 2, Y: 2})
		svc.SetLabel(second.ID, models.LabelRequest{Text: label})
		svc.Commit(second.ID)
	}
	if err := svc.Cancel(second.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	stored, _ := svc.Annotations(img.ID)
	if stored.Count != 1 || stored.Annotations[0].Text != "kept" {
		t.Fatalf("cancel touched saved state: %+v", stored)
	}
	if err := svc.Cancel(second.ID); !errors.Is(err, services.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second cancel, got %v", err)
	}
}

func TestAnnotationOpenErrors(t *testing.T) {
	svc, text, _ := newAnnotations(t)

	if _, err := svc.Open(text.ID); !errors.Is(err, services.ErrNotAnnotatable) {
		t.Fatalf("expected ErrNotAnnotatable, got %v", err)
	}
	if _, err := svc.Open(999); !errors.Is(err, services.ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
	if _, err := svc.Annotations(999); !errors.Is(err, services.ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
	if _, err := svc.Click(uuid.New(), models.ClickRequest{}); !errors.Is(err, services.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAnnotationRemoveAndColor(t *testing.T) {
	svc, _, img := newAnnotations(t)
	sess, _ := svc.Open(img.ID)

	sess, _ = svc.SelectColor(sess.ID, models.ColorRequest{Color: "#ABCDEF"})
	if sess.SelectedColor != models.ColorRed {
		t.Fatal("off-palette color accepted")
	}
	sess, _ = svc.SelectColor(sess.ID, models.ColorRequest{Color: models.ColorYellow})
	svc.Click(sess.ID, models.ClickRequest{X: 5, Y: 5})
	svc.SetLabel(sess.ID, models.LabelRequest{Text: "spot"})
	sess, _ = svc.Commit(sess.ID)
	if sess.Annotations[0].Color != models.ColorYellow {
		t.Fatalf("expected yellow, got %s", sess.Annotations[0].Color)
	}

	sess, _ = svc.Remove(sess.ID, sess.Annotations[0].ID+1000)
	if len(sess.Annotations) != 1 {
		t.Fatal("removing unknown id changed the list")
	}
	sess, _ = svc.Remove(sess.ID, sess.Annotations[0].ID)
	if len(sess.Annotations) != 0 || sess.CanSave {
		t.Fatalf("remove failed: %+v", sess)
	}
}
