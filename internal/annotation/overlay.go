// Package annotation implements the point-and-click labeling overlay shown
// over a single image. An Overlay is one session: it starts empty and ends on
// Save or Cancel.
package annotation

import (
	"strings"
	"time"

	"multimodalchat/internal/models"
)

// State is the overlay's input state.
type State int

const (
	StateIdle         State = iota // No point is waiting for a label
	StatePointPending              // A click was captured and awaits a label
)

func (s State) String() string {
	if s == StatePointPending {
		return "point_pending"
	}
	return "idle"
}

// Overlay holds one annotation session. It is not safe for concurrent use.
type Overlay struct {
	imageURL string
	now      func() time.Time
	onSave   func([]models.Annotation)
	onCancel func()

	committed []models.Annotation
	pending   *models.Annotation
	draft     string
	color     models.Color
	lastID    int64
	closed    bool
}

// Option configures an Overlay.
type Option func(*Overlay)

// WithClock replaces time.Now as the source of annotation ids.
func WithClock(now func() time.Time) Option {
	return func(o *Overlay) { o.now = now }
}

// WithHooks sets the callbacks invoked when the session is saved or cancelled.
func WithHooks(onSave func([]models.Annotation), onCancel func()) Option {
	return func(o *Overlay) {
		o.onSave = onSave
		o.onCancel = onCancel
	}
}

// New opens a session over the image at imageURL with the first palette color active.
func New(imageURL string, opts ...Option) *Overlay {
	o := &Overlay{
		imageURL: imageURL,
		now:      time.Now,
		color:    models.DefaultColor,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Overlay) ImageURL() string { return o.imageURL }

func (o *Overlay) State() State {
	if o.pending != nil {
		return StatePointPending
	}
	return StateIdle
}

// Pending returns the point awaiting a label, if any.
func (o *Overlay) Pending() (models.Annotation, bool) {
	if o.pending == nil {
		return models.Annotation{}, false
	}
	return *o.pending, true
}

// Draft is the label typed so far for the pending point.
func (o *Overlay) Draft() string { return o.draft }

func (o *Overlay) SelectedColor() models.Color { return o.color }

// Annotations returns a copy of the committed working list.
func (o *Overlay) Annotations() []models.Annotation {
	out := make([]models.Annotation, len(o.committed))
	copy(out, o.committed)
	return out
}

// Closed reports whether the session has been saved or cancelled.
func (o *Overlay) Closed() bool { return o.closed }

// Click captures a new pending point at (x, y) with the active color,
// replacing any earlier pending point. The draft label carries over.
func (o *Overlay) Click(x, y float64) {
	if o.closed {
		return
	}
	o.pending = &models.Annotation{
		ID:    o.nextID(),
		X:     x,
		Y:     y,
		Color: o.color,
	}
}

// SetLabel updates the draft label.
func (o *Overlay) SetLabel(text string) {
	if o.closed {
		return
	}
	o.draft = text
}

// CommitPending moves the pending point into the committed list using the
// trimmed draft as its label. Without a pending point or with a blank draft
// it does nothing and reports false.
func (o *Overlay) CommitPending() bool {
	if o.closed || o.pending == nil {
		return false
	}
	label := strings.TrimSpace(o.draft)
	if label == "" {
		return false
	}

	ann := *o.pending
	ann.Text = label
	o.committed = append(o.committed, ann)
	o.pending = nil
	o.draft = ""
	return true
}

// Remove deletes the committed annotation with the given id.
func (o *Overlay) Remove(id int64) bool {
	if o.closed {
		return false
	}
	for i, ann := range o.committed {
		if ann.ID == id {
			o.committed = append(o.committed[:i], o.committed[i+1:]...)
			return true
		}
	}
	return false
}

// SelectColor sets the color for points created from now on. Colors outside
// the palette are ignored.
func (o *Overlay) SelectColor(c models.Color) bool {
	if o.closed || !c.InPalette() {
		return false
	}
	o.color = c
	return true
}

// CanSave reports whether Save is currently available.
func (o *Overlay) CanSave() bool {
	return !o.closed && len(o.committed) > 0
}

// Save ends the session and hands the committed list to the save hook.
// While the list is empty Save is unavailable: it returns false and the
// session stays open.
func (o *Overlay) Save() ([]models.Annotation, bool) {
	if !o.CanSave() {
		return nil, false
	}
	result := o.Annotations()
	o.close()
	if o.onSave != nil {
		o.onSave(result)
	}
	return result, true
}

// Cancel discards the pending point and committed list and ends the session
// without delivering anything.
func (o *Overlay) Cancel() {
	if o.closed {
		return
	}
	o.close()
	if o.onCancel != nil {
		o.onCancel()
	}
}

func (o *Overlay) close() {
	o.closed = true
	o.committed = nil
	o.pending = nil
	o.draft = ""
}

// nextID derives an id from the clock, bumped past the previous one so ids
// stay unique when clicks land in the same millisecond.
func (o *Overlay) nextID() int64 {
	id := o.now().UnixMilli()
	if id <= o.lastID {
		id = o.lastID + 1
	}
	o.lastID = id
	return id
}
