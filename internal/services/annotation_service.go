package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"multimodalchat/internal/annotation"
	"multimodalchat/internal/models"
	"multimodalchat/internal/render"
	"multimodalchat/internal/store"

	"github.com/google/uuid"
)

// Custom errors for annotation sessions
var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotAnnotatable  = errors.New("message is not an image")
	ErrSessionNotFound = errors.New("annotation session not found")
	ErrNothingToSave   = errors.New("no annotations to save")
)

type annotationSession struct {
	id        uuid.UUID
	messageID int64
	overlay   *annotation.Overlay
}

// AnnotationService hosts annotation overlays for remote clients. Each open
// session wraps one annotation.Overlay; saved results land in the renderer's
// side-table and are never written to the message store.
type AnnotationService struct {
	store    store.MessageStore
	renderer *render.Renderer
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*annotationSession
}

// NewAnnotationService creates a new AnnotationService.
func NewAnnotationService(st store.MessageStore, renderer *render.Renderer, logger *slog.Logger) *AnnotationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnnotationService{
		store:    st,
		renderer: renderer,
		logger:   logger.With("component", "AnnotationService"),
		sessions: make(map[uuid.UUID]*annotationSession),
	}
}

// Open starts a session over an image message.
func (s *AnnotationService) Open(messageID int64) (*models.AnnotationSessionResponse, error) {
	msg, ok := store.Find(s.store.ReadAll(), messageID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMessageNotFound, messageID)
	}
	overlay, err := s.renderer.OpenAnnotator(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrNotAnnotatable, messageID)
	}

	sess := &annotationSession{id: uuid.New(), messageID: messageID, overlay: overlay}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.id] = sess
	s.logger.Info("annotation session opened", "session_id", sess.id, "message_id", messageID)
	return toSessionResponse(sess), nil
}

// Get returns the current state of a session.
func (s *AnnotationService) Get(id uuid.UUID) (*models.AnnotationSessionResponse, error) {
	return s.with(id, func(*annotation.Overlay) {})
}

// Click places a pending point.
func (s *AnnotationService) Click(id uuid.UUID, req models.ClickRequest) (*models.AnnotationSessionResponse, error) {
	return s.with(id, func(o *annotation.Overlay) { o.Click(req.X, req.Y) })
}

// SetLabel updates the draft label of the pending point.
func (s *AnnotationService) SetLabel(id uuid.UUID, req models.LabelRequest) (*models.AnnotationSessionResponse, error) {
	return s.with(id, func(o *annotation.Overlay) { o.SetLabel(req.Text) })
}

// Commit finalizes the pending point when it has a label.
func (s *AnnotationService) Commit(id uuid.UUID) (*models.AnnotationSessionResponse, error) {
	return s.with(id, func(o *annotation.Overlay) { o.CommitPending() })
}

// Remove deletes a committed annotation; unknown ids are ignored.
func (s *AnnotationService) Remove(id uuid.UUID, annotationID int64) (*models.AnnotationSessionResponse, error) {
	return s.with(id, func(o *annotation.Overlay) { o.Remove(annotationID) })
}

// SelectColor changes the active color; off-palette colors are ignored.
func (s *AnnotationService) SelectColor(id uuid.UUID, req models.ColorRequest) (*models.AnnotationSessionResponse, error) {
	return s.with(id, func(o *annotation.Overlay) { o.SelectColor(req.Color) })
}

// Save ends the session and returns what was saved.
func (s *AnnotationService) Save(id uuid.UUID) (*models.SaveAnnotationsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	anns, ok := sess.overlay.Save()
	if !ok {
		return nil, ErrNothingToSave
	}
	delete(s.sessions, id)
	return &models.SaveAnnotationsResponse{MessageID: sess.messageID, Annotations: anns}, nil
}

// Cancel discards the session.
func (s *AnnotationService) Cancel(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.overlay.Cancel()
	delete(s.sessions, id)
	s.logger.Info("annotation session cancelled", "session_id", id, "message_id", sess.messageID)
	return nil
}

// Annotations returns the saved annotations for a message.
func (s *AnnotationService) Annotations(messageID int64) (*models.MessageAnnotationsResponse, error) {
	if _, ok := store.Find(s.store.ReadAll(), messageID); !ok {
		return nil, fmt.Errorf("%w: %d", ErrMessageNotFound, messageID)
	}
	anns := s.renderer.Annotations().Get(messageID)
	return &models.MessageAnnotationsResponse{
		MessageID:   messageID,
		Count:       len(anns),
		Annotations: anns,
	}, nil
}

// OpenSessions returns the number of sessions not yet saved or cancelled.
func (s *AnnotationService) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *AnnotationService) with(id uuid.UUID, fn func(*annotation.Overlay)) (*models.AnnotationSessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	fn(sess.overlay)
	return toSessionResponse(sess), nil
}

func toSessionResponse(sess *annotationSession) *models.AnnotationSessionResponse {
	o := sess.overlay
	resp := &models.AnnotationSessionResponse{
		ID:            sess.id,
		MessageID:     sess.messageID,
		ImageURL:      o.ImageURL(),
		State:         o.State().String(),
		Draft:         o.Draft(),
		SelectedColor: o.SelectedColor(),
		Palette:       models.Palette(),
		Annotations:   o.Annotations(),
		CanSave:       o.CanSave(),
	}
	if p, ok := o.Pending(); ok {
		resp.Pending = &p
	}
	return resp
}
