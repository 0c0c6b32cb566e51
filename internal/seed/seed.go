// Package seed loads the demo conversation shown on first start.
package seed

import (
	"log/slog"

	"multimodalchat/internal/models"
	"multimodalchat/internal/store"
)

// MockConversation returns the demo messages in display order.
func MockConversation() []models.MessageCandidate {
	return []models.MessageCandidate{
		{Type: models.MessageTypeText, Sender: models.SenderUser, Content: "Hello, AI!"},
		{Type: models.MessageTypeImage, Sender: models.SenderAI, Content: "/sample-image.jpg"},
		{Type: models.MessageTypeAudio, Sender: models.SenderUser, Content: "/sample-audio.mp3"},
		{Type: models.MessageTypeCode, Sender: models.SenderAI, Content: `console.log("Hello World");`, Language: "javascript"},
	}
}

// IfEmpty appends the demo conversation when the store has no messages yet.
// It reports whether anything was appended.
func IfEmpty(st store.MessageStore, logger *slog.Logger) bool {
	if st.Len() > 0 {
		return false
	}
	for _, c := range MockConversation() {
		st.Append(c)
	}
	if logger != nil {
		logger.Info("seeded mock conversation", "messages", st.Len())
	}
	return true
}
