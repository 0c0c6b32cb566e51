package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"multimodalchat/internal/models"
	"multimodalchat/internal/observability"
	"multimodalchat/internal/services"
	"multimodalchat/pkg/httputil"
)

// ChatService defines the interface expected from the chat service.
type ChatService interface {
	SendRequest(ctx context.Context, req models.SendMessageRequest) (*models.SendMessageResponse, error)
	ListMessages() models.ListMessagesResponse
}

// ChatHandlers handles HTTP requests related to the conversation log.
type ChatHandlers struct {
	chatService ChatService
	logger      *slog.Logger
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(chatService ChatService, logger *slog.Logger) *ChatHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandlers{
		chatService: chatService,
		logger:      logger.With("component", "ChatHandlers"),
	}
}

// HandleListMessages handles GET /v1/messages
func (h *ChatHandlers) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.chatService.ListMessages())
}

// HandleSendMessage handles POST /v1/messages
func (h *ChatHandlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.chatService.SendRequest(r.Context(), req)
	if err != nil {
		logger := observability.LoggerFromContext(r.Context(), h.logger)
		switch {
		case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrInvalidMessageType):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrServiceClosed):
			httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
		default:
			logger.Error("send message failed", "error", err)
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to send message")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, resp)
}
