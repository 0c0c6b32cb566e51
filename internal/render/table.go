package render

import (
	"sync"

	"multimodalchat/internal/models"
)

// AnnotationTable keeps the annotations saved for each image message, keyed
// by message id. It lives beside the message log, not in it: entries are
// never written to the store and are gone once the table is discarded.
type AnnotationTable struct {
	mu      sync.RWMutex
	entries map[int64][]models.Annotation
}

func NewAnnotationTable() *AnnotationTable {
	return &AnnotationTable{entries: make(map[int64][]models.Annotation)}
}

// Set replaces the annotations recorded for a message.
func (t *AnnotationTable) Set(messageID int64, anns []models.Annotation) {
	cp := make([]models.Annotation, len(anns))
	copy(cp, anns)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[messageID] = cp
}

// Get returns a copy of the annotations recorded for a message.
func (t *AnnotationTable) Get(messageID int64) []models.Annotation {
	t.mu.RLock()
	defer t.mu.RUnlock()

	anns := t.entries[messageID]
	out := make([]models.Annotation, len(anns))
	copy(out, anns)
	return out
}

func (t *AnnotationTable) Count(messageID int64) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries[messageID])
}
