package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"multimodalchat/internal/models"
	"multimodalchat/internal/scheduler"
	"multimodalchat/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultReplyDelay is how long the assistant "thinks" before replying.
const DefaultReplyDelay = time.Second

// Custom errors for the chat service
var (
	ErrEmptyMessage       = errors.New("message content is empty")
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrServiceClosed      = errors.New("chat service is shut down")
)

// CannedReply returns the fixed assistant reply for a message type.
func CannedReply(t models.MessageType) string {
	switch t {
	case models.MessageTypeText:
		return "I understand your message. How can I help further?"
	case models.MessageTypeImage:
		return "I've received your image. It looks interesting!"
	case models.MessageTypeAudio:
		return "I've processed your audio. Thanks for sharing!"
	case models.MessageTypeCode:
		return "Let me analyze this code snippet for you."
	case models.MessageTypeSpreadsheet:
		return "I've analyzed your spreadsheet data."
	case models.MessageTypeDocument:
		return "I've reviewed your document."
	}
	return ""
}

// ChatService appends user messages and schedules one canned reply per send.
type ChatService struct {
	store      store.MessageStore
	scheduler  scheduler.Scheduler
	replyDelay time.Duration
	logger     *slog.Logger
	tracer     trace.Tracer

	mu       sync.Mutex
	pending  map[uint64]scheduler.Task
	nextSeq  uint64
	closed   bool
	inflight sync.WaitGroup // deliveries past the pending check

	scheduled metric.Int64Counter
	delivered metric.Int64Counter
	cancelled metric.Int64Counter
}

// ChatOption customizes a ChatService.
type ChatOption func(*ChatService)

// WithReplyDelay overrides DefaultReplyDelay.
func WithReplyDelay(d time.Duration) ChatOption {
	return func(s *ChatService) { s.replyDelay = d }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ChatOption {
	return func(s *ChatService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewChatService creates a new ChatService.
func NewChatService(st store.MessageStore, sched scheduler.Scheduler, opts ...ChatOption) *ChatService {
	s := &ChatService{
		store:      st,
		scheduler:  sched,
		replyDelay: DefaultReplyDelay,
		logger:     slog.Default(),
		tracer:     otel.Tracer("multimodalchat/services"),
		pending:    make(map[uint64]scheduler.Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "ChatService")

	meter := otel.Meter("multimodalchat/services")
	s.scheduled = s.counter(meter, "chat.replies.scheduled", "Canned replies scheduled")
	s.delivered = s.counter(meter, "chat.replies.delivered", "Canned replies appended")
	s.cancelled = s.counter(meter, "chat.replies.cancelled", "Canned replies cancelled before firing")
	return s
}

func (s *ChatService) counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		s.logger.Warn("failed to create counter", "name", name, "error", err)
		return nil
	}
	return c
}

// ReplyDelay returns the configured reply delay.
func (s *ChatService) ReplyDelay() time.Duration {
	return s.replyDelay
}

// Send appends a user message of type t with the trimmed text and schedules
// the canned reply for t. It reports false, appending and scheduling nothing,
// when the trimmed text is empty, t is unknown, or the service is closed.
func (s *ChatService) Send(ctx context.Context, t models.MessageType, text string) (models.Message, bool) {
	_, span := s.tracer.Start(ctx, "chat.send", trace.WithAttributes(
		attribute.String("message.type", string(t)),
	))
	defer span.End()

	content := strings.TrimSpace(text)
	if content == "" || !t.Valid() {
		return models.Message{}, false
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return models.Message{}, false
	}

	msg := s.store.Append(models.MessageCandidate{
		Type:    t,
		Sender:  models.SenderUser,
		Content: content,
	})
	span.SetAttributes(attribute.Int64("message.id", msg.ID))

	s.scheduleReply(t)
	return msg, true
}

// scheduleReply registers an independent timer for one reply. The reply type
// is captured here and never re-read.
func (s *ChatService) scheduleReply(t models.MessageType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.nextSeq++
	seq := s.nextSeq
	s.pending[seq] = s.scheduler.AfterFunc(s.replyDelay, func() {
		s.deliverReply(seq, t)
	})
	s.add(s.scheduled, t)
	s.logger.Debug("reply scheduled", "seq", seq, "type", t, "delay", s.replyDelay)
}

func (s *ChatService) deliverReply(seq uint64, t models.MessageType) {
	s.mu.Lock()
	if _, ok := s.pending[seq]; !ok || s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.pending, seq)
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	msg := s.store.Append(models.MessageCandidate{
		Type:    t,
		Sender:  models.SenderAI,
		Content: CannedReply(t),
	})
	s.add(s.delivered, t)
	s.logger.Debug("reply delivered", "seq", seq, "id", msg.ID, "type", t)
}

// SendRequest is the validating entry point used by the HTTP layer.
func (s *ChatService) SendRequest(ctx context.Context, req models.SendMessageRequest) (*models.SendMessageResponse, error) {
	typ := models.MessageTypeText
	if req.Type != "" {
		parsed, ok := models.ParseMessageType(req.Type)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMessageType, req.Type)
		}
		typ = parsed
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyMessage
	}
	if s.Closed() {
		return nil, ErrServiceClosed
	}

	msg, ok := s.Send(ctx, typ, req.Content)
	if !ok {
		// Only reachable when Close raced with this request.
		return nil, ErrServiceClosed
	}
	return &models.SendMessageResponse{
		Message:      msg,
		ReplyDelayMS: s.replyDelay.Milliseconds(),
	}, nil
}

// ListMessages returns the current conversation snapshot.
func (s *ChatService) ListMessages() models.ListMessagesResponse {
	return models.ListMessagesResponse{Messages: s.store.ReadAll()}
}

// PendingReplies returns how many replies are scheduled but not yet delivered.
func (s *ChatService) PendingReplies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Closed reports whether Close has been called.
func (s *ChatService) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close tears the service down: every pending reply is cancelled and will
// never be appended, and later sends are ignored. A reply whose append has
// already started is waited for, so nothing is appended after Close returns.
// Safe to call more than once. Must not be called from a store observer.
func (s *ChatService) Close() {
	s.mu.Lock()
	defer s.inflight.Wait()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	n := 0
	for seq, task := range s.pending {
		if task.Cancel() {
			n++
		}
		delete(s.pending, seq)
	}
	if s.cancelled != nil && n > 0 {
		s.cancelled.Add(context.Background(), int64(n))
	}
	s.logger.Info("chat service closed", "cancelled_replies", n)
}

func (s *ChatService) add(c metric.Int64Counter, t models.MessageType) {
	if c == nil {
		return
	}
	c.Add(context.Background(), 1, metric.WithAttributes(attribute.String("type", string(t))))
}
