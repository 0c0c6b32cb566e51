package annotation

import (
	"reflect"
	"testing"
	"time"

	"multimodalchat/internal/models"
)

// frozenClock always returns the same instant, so every id after the first
// comes from the collision bump.
func frozenClock() func() time.Time {
	at := time.UnixMilli(1_700_000_000_000)
	return func() time.Time { return at }
}

func TestThreeCommitsSaveInClickOrder(t *testing.T) {
	var delivered []models.Annotation
	o := New("/sample-image.jpg", WithClock(frozenClock()), WithHooks(func(a []models.Annotation) { delivered = a }, nil))

	points := []struct {
		x, y  float64
		label string
		color models.Color
	}{
		{10, 20, "eye", models.ColorRed},
		{30.5, 40, "nose", models.ColorBlue},
		{50, 60.25, "mouth", models.ColorMagenta},
	}
	for _, p := range points {
		o.SelectColor(p.color)
		o.Click(p.x, p.y)
		o.SetLabel(p.label)
		if !o.CommitPending() {
			t.Fatalf("commit of %q failed", p.label)
		}
	}

	got := o.Annotations()
	if len(got) != 3 {
		t.Fatalf("expected 3 annotations, got %d", len(got))
	}
	seen := map[int64]bool{}
	for i, p := range points {
		a := got[i]
		if a.X != p.x || a.Y != p.y || a.Text != p.label || a.Color != p.color {
			t.Errorf("annotation %d = %+v, want %+v", i, a, p)
		}
		if seen[a.ID] {
			t.Errorf("duplicate id %d", a.ID)
		}
		seen[a.ID] = true
	}

	saved, ok := o.Save()
	if !ok {
		t.Fatal("save should be available with 3 annotations")
	}
	if !reflect.DeepEqual(saved, got) || !reflect.DeepEqual(delivered, got) {
		t.Fatalf("save returned %+v, hook got %+v, want %+v", saved, delivered, got)
	}
	if !o.Closed() {
		t.Fatal("session should end on save")
	}
}

func TestCommitWithBlankLabelKeepsPointPending(t *testing.T) {
	o := New("/img.png")
	o.Click(1, 2)
	o.SetLabel("   ")

	if o.CommitPending() {
		t.Fatal("blank label should not commit")
	}
	if len(o.Annotations()) != 0 {
		t.Fatal("committed list changed")
	}
	if o.State() != StatePointPending {
		t.Fatalf("expected point still pending, state=%s", o.State())
	}
	if p, ok := o.Pending(); !ok || p.X != 1 || p.Y != 2 {
		t.Fatalf("pending point lost: %+v %v", p, ok)
	}
}

func TestCommitWithoutPendingIsNoop(t *testing.T) {
	o := New("/img.png")
	o.SetLabel("orphan")
	if o.CommitPending() {
		t.Fatal("commit without a click should be a no-op")
	}
	if o.State() != StateIdle {
		t.Fatalf("unexpected state %s", o.State())
	}
}

func TestCommittedLabelIsTrimmed(t *testing.T) {
	o := New("/img.png")
	o.Click(3, 4)
	o.SetLabel("  tail  ")
	o.CommitPending()

	if got := o.Annotations()[0].Text; got != "tail" {
		t.Fatalf("expected trimmed label, got %q", got)
	}
	if o.State() != StateIdle || o.Draft() != "" {
		t.Fatal("commit should return to idle with an empty draft")
	}
}

func TestClickReplacesPendingPoint(t *testing.T) {
	o := New("/img.png", WithClock(frozenClock()))
	o.Click(1, 1)
	first, _ := o.Pending()
	o.Click(9, 9)
	second, _ := o.Pending()

	if second.X != 9 || second.Y != 9 {
		t.Fatalf("pending point not replaced: %+v", second)
	}
	if second.ID == first.ID {
		t.Fatal("replacement point reused the old id")
	}
	if len(o.Annotations()) != 0 {
		t.Fatal("click must not touch the committed list")
	}
}

func TestRemove(t *testing.T) {
	o := New("/img.png", WithClock(frozenClock()))
	for _, label := range []string{"a", "b"} {
		o.Click(0, 0)
		o.SetLabel(label)
		o.CommitPending()
	}
	before := o.Annotations()

	if o.Remove(-1) {
		t.Fatal("removing a missing id should report false")
	}
	if !reflect.DeepEqual(o.Annotations(), before) {
		t.Fatal("removing a missing id changed the list")
	}

	if !o.Remove(before[0].ID) {
		t.Fatal("expected removal to succeed")
	}
	after := o.Annotations()
	if len(after) != 1 || after[0].Text != "b" {
		t.Fatalf("unexpected list after removal: %+v", after)
	}
}

func TestSelectColorAffectsOnlyNewPoints(t *testing.T) {
	o := New("/img.png")
	if o.SelectedColor() != models.ColorRed {
		t.Fatalf("expected red default, got %s", o.SelectedColor())
	}

	o.Click(1, 1)
	o.SetLabel("red one")
	o.CommitPending()

	if o.SelectColor(models.Color("#123456")) {
		t.Fatal("off-palette color accepted")
	}
	if !o.SelectColor(models.ColorGreen) {
		t.Fatal("palette color rejected")
	}
	o.Click(2, 2)
	o.SetLabel("green one")
	o.CommitPending()

	got := o.Annotations()
	if got[0].Color != models.ColorRed || got[1].Color != models.ColorGreen {
		t.Fatalf("unexpected colors %s %s", got[0].Color, got[1].Color)
	}
}

func TestSaveUnavailableWhenEmpty(t *testing.T) {
	called := false
	o := New("/img.png", WithHooks(func([]models.Annotation) { called = true }, nil))

	if o.CanSave() {
		t.Fatal("save should be disabled while empty")
	}
	if _, ok := o.Save(); ok {
		t.Fatal("save succeeded on empty list")
	}
	if called || o.Closed() {
		t.Fatal("empty save should neither call the hook nor end the session")
	}

	o.Click(1, 1)
	if o.CanSave() {
		t.Fatal("a pending point alone must not enable save")
	}
}

func TestCancelDiscardsEverything(t *testing.T) {
	saved := false
	cancelled := false
	o := New("/img.png", WithHooks(
		func([]models.Annotation) { saved = true },
		func() { cancelled = true },
	))
	for _, label := range []string{"one", "two"} {
		o.Click(5, 5)
		o.SetLabel(label)
		o.CommitPending()
	}
	o.Click(6, 6)

	o.Cancel()

	if saved || !cancelled {
		t.Fatalf("expected only the cancel hook, saved=%v cancelled=%v", saved, cancelled)
	}
	if len(o.Annotations()) != 0 || o.State() != StateIdle {
		t.Fatal("cancel left session data behind")
	}

	// A closed session ignores everything.
	o.Click(1, 1)
	o.SetLabel("late")
	if o.CommitPending() || o.CanSave() {
		t.Fatal("closed session accepted input")
	}
	cancelled = false
	o.Cancel()
	if cancelled {
		t.Fatal("cancel hook ran twice")
	}
}

func TestIDsFollowTheClock(t *testing.T) {
	now := time.UnixMilli(5_000)
	o := New("/img.png", WithClock(func() time.Time { return now }))

	o.Click(0, 0)
	first, _ := o.Pending()
	now = now.Add(10 * time.Millisecond)
	o.Click(0, 0)
	second, _ := o.Pending()

	if first.ID != 5_000 || second.ID != 5_010 {
		t.Fatalf("unexpected ids %d %d", first.ID, second.ID)
	}
}
