package store

import (
	"cmp"
	"slices"

	"multimodalchat/internal/models"
)

// Observer is called synchronously after every successful append, with the
// message as stored. Observers must not append to the store they observe.
type Observer func(msg models.Message)

// MessageStore defines the conversation log. It is append-only: there is no
// update or delete, and ids are assigned by the store, never by callers.
// This allows for swapping the in-memory log for a test double.
type MessageStore interface {
	// Append assigns the next id, appends the message to the end of the log
	// and notifies every observer before returning. It never fails.
	Append(candidate models.MessageCandidate) models.Message

	// ReadAll returns the full log in insertion order. The returned slice is
	// a snapshot owned by the caller; later appends never modify it.
	ReadAll() []models.Message

	// Len returns the number of messages appended so far.
	Len() int

	// Subscribe registers an observer and returns a function that removes it.
	Subscribe(fn Observer) (unsubscribe func())
}

// Find looks up a message by id in a snapshot. Ids are strictly increasing,
// so a snapshot is always sorted by id.
func Find(snapshot []models.Message, id int64) (models.Message, bool) {
	i, found := slices.BinarySearchFunc(snapshot, id, func(m models.Message, target int64) int {
		return cmp.Compare(m.ID, target)
	})
	if !found {
		return models.Message{}, false
	}
	return snapshot[i], true
}
