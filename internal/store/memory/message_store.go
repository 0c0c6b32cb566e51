package memory

import (
	"context"
	"log/slog"
	"sync"

	"multimodalchat/internal/models"
	"multimodalchat/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Compile-time check to ensure MessageStore implements store.MessageStore
var _ store.MessageStore = (*MessageStore)(nil)

type subscription struct {
	id int
	fn store.Observer
}

// MessageStore is a process-lifetime, in-memory conversation log.
//
// appendMu serializes whole appends (write + notify) so observers see
// messages in id order even when appends race. mu guards the data itself and
// is never held while observers run, so an observer may call ReadAll.
type MessageStore struct {
	appendMu sync.Mutex

	mu          sync.RWMutex
	messages    []models.Message
	lastID      int64
	subscribers []subscription
	nextSubID   int

	logger   *slog.Logger
	appended metric.Int64Counter
}

// NewMessageStore creates an empty store. A nil logger falls back to slog.Default().
func NewMessageStore(logger *slog.Logger) *MessageStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &MessageStore{
		messages: []models.Message{},
		logger:   logger.With("component", "MessageStore"),
	}

	counter, err := otel.Meter("multimodalchat/store").Int64Counter(
		"chat.messages.appended",
		metric.WithDescription("Messages appended to the conversation log"),
	)
	if err != nil {
		s.logger.Warn("failed to create append counter", "error", err)
	}
	s.appended = counter
	return s
}

// Append assigns the next id and appends the message, then notifies observers.
func (s *MessageStore) Append(candidate models.MessageCandidate) models.Message {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	s.mu.Lock()
	s.lastID++
	msg := models.Message{
		ID:       s.lastID,
		Type:     candidate.Type,
		Sender:   candidate.Sender,
		Content:  candidate.Content,
		Language: candidate.Language,
	}
	s.messages = append(s.messages, msg)
	observers := make([]store.Observer, len(s.subscribers))
	for i, sub := range s.subscribers {
		observers[i] = sub.fn
	}
	s.mu.Unlock()

	s.logger.Debug("message appended", "id", msg.ID, "type", msg.Type, "sender", msg.Sender)
	if s.appended != nil {
		s.appended.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("type", string(msg.Type)),
			attribute.String("sender", string(msg.Sender)),
		))
	}

	for _, fn := range observers {
		fn(msg)
	}
	return msg
}

// ReadAll returns a copy of the log in insertion order.
func (s *MessageStore) ReadAll() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]models.Message, len(s.messages))
	copy(snapshot, s.messages)
	return snapshot
}

func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Subscribe registers fn to be called after every append.
// Observers run in subscription order.
func (s *MessageStore) Subscribe(fn store.Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}
