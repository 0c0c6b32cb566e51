package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"multimodalchat/internal/models"
	"multimodalchat/internal/observability"
	"multimodalchat/internal/services"
	"multimodalchat/pkg/httputil"

	"github.com/google/uuid"
)

// AnnotationService defines the interface expected from the annotation service.
type AnnotationService interface {
	Open(messageID int64) (*models.AnnotationSessionResponse, error)
	Get(id uuid.UUID) (*models.AnnotationSessionResponse, error)
	Click(id uuid.UUID, req models.ClickRequest) (*models.AnnotationSessionResponse, error)
	SetLabel(id uuid.UUID, req models.LabelRequest) (*models.AnnotationSessionResponse, error)
	Commit(id uuid.UUID) (*models.AnnotationSessionResponse, error)
	Remove(id uuid.UUID, annotationID int64) (*models.AnnotationSessionResponse, error)
	SelectColor(id uuid.UUID, req models.ColorRequest) (*models.AnnotationSessionResponse, error)
	Save(id uuid.UUID) (*models.SaveAnnotationsResponse, error)
	Cancel(id uuid.UUID) error
	Annotations(messageID int64) (*models.MessageAnnotationsResponse, error)
}

// AnnotationHandlers handles HTTP requests for annotation sessions.
type AnnotationHandlers struct {
	annotationService AnnotationService
	logger            *slog.Logger
}

// NewAnnotationHandlers creates a new AnnotationHandlers instance.
func NewAnnotationHandlers(svc AnnotationService, logger *slog.Logger) *AnnotationHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnnotationHandlers{
		annotationService: svc,
		logger:            logger.With("component", "AnnotationHandlers"),
	}
}

// HandleGetMessageAnnotations handles GET /v1/messages/{messageID}/annotations
func (h *AnnotationHandlers) HandleGetMessageAnnotations(w http.ResponseWriter, r *http.Request) {
	messageID, err := int64Param(r, "messageID")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.annotationService.Annotations(messageID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleOpenSession handles POST /v1/messages/{messageID}/annotations/sessions
func (h *AnnotationHandlers) HandleOpenSession(w http.ResponseWriter, r *http.Request) {
	messageID, err := int64Param(r, "messageID")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.annotationService.Open(messageID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, resp)
}

// HandleGetSession handles GET /v1/annotation-sessions/{sessionID}
func (h *AnnotationHandlers) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	h.sessionOp(w, r, func(id uuid.UUID) (interface{}, error) {
		return h.annotationService.Get(id)
	})
}

// HandleClick handles POST /v1/annotation-sessions/{sessionID}/clicks
func (h *AnnotationHandlers) HandleClick(w http.ResponseWriter, r *http.Request) {
	var req models.ClickRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	h.sessionOp(w, r, func(id uuid.UUID) (interface{}, error) {
		return h.annotationService.Click(id, req)
	})
}

// HandleSetLabel handles PUT /v1/annotation-sessions/{sessionID}/label
func (h *AnnotationHandlers) HandleSetLabel(w http.ResponseWriter, r *http.Request) {
	var req models.LabelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	h.sessionOp(w, r, func(id uuid.UUID) (interface{}, error) {
		return h.annotationService.SetLabel(id, req)
	})
}

// HandleCommit handles POST /v1/annotation-sessions/{sessionID}/commit
func (h *AnnotationHandlers) HandleCommit(w http.ResponseWriter, r *http.Request) {
	h.sessionOp(w, r, func(id uuid.UUID) (interface{}, error) {
		return h.annotationService.Commit(id)
	})
}

// HandleRemove handles DELETE /v1/annotation-sessions/{sessionID}/annotations/{annotationID}
func (h *AnnotationHandlers) HandleRemove(w http.ResponseWriter, r *http.Request) {
	annotationID, err := int64Param(r, "annotationID")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.sessionOp(w, r, func(id uuid.UUID) (interface{}, error) {
		return h.annotationService.Remove(id, annotationID)
	})
}

// HandleSelectColor handles PUT /v1/annotation-sessions/{sessionID}/color
func (h *AnnotationHandlers) HandleSelectColor(w http.ResponseWriter, r *http.Request) {
	var req models.ColorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	h.sessionOp(w, r, func(id uuid.UUID) (interface{}, error) {
		return h.annotationService.SelectColor(id, req)
	})
}

// HandleSave handles POST /v1/annotation-sessions/{sessionID}/save
func (h *AnnotationHandlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	h.sessionOp(w, r, func(id uuid.UUID) (interface{}, error) {
		return h.annotationService.Save(id)
	})
}

// HandleCancel handles POST /v1/annotation-sessions/{sessionID}/cancel
func (h *AnnotationHandlers) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "sessionID")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.annotationService.Cancel(id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AnnotationHandlers) sessionOp(w http.ResponseWriter, r *http.Request, op func(uuid.UUID) (interface{}, error)) {
	id, err := uuidParam(r, "sessionID")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := op(id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

func (h *AnnotationHandlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrMessageNotFound), errors.Is(err, services.ErrSessionNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotAnnotatable):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNothingToSave):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		observability.LoggerFromContext(r.Context(), h.logger).Error("annotation request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Annotation request failed")
	}
}
