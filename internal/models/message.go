package models

// MessageType identifies how a message's Content should be interpreted and rendered.
// The set is closed: callers should switch over every value listed in AllMessageTypes.
type MessageType string

const (
	MessageTypeText        MessageType = "text"
	MessageTypeImage       MessageType = "image"
	MessageTypeAudio       MessageType = "audio"
	MessageTypeCode        MessageType = "code"
	MessageTypeSpreadsheet MessageType = "spreadsheet"
	MessageTypeDocument    MessageType = "document"
)

// AllMessageTypes returns every message type in attachment-selector order.
func AllMessageTypes() []MessageType {
	return []MessageType{
		MessageTypeText,
		MessageTypeImage,
		MessageTypeAudio,
		MessageTypeCode,
		MessageTypeSpreadsheet,
		MessageTypeDocument,
	}
}

// Valid reports whether t is one of the known message types.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeAudio,
		MessageTypeCode, MessageTypeSpreadsheet, MessageTypeDocument:
		return true
	}
	return false
}

// ParseMessageType converts a wire value into a MessageType.
func ParseMessageType(s string) (MessageType, bool) {
	t := MessageType(s)
	return t, t.Valid()
}

// Sender is the author of a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message represents a single entry in the conversation log.
// ID, Type and Sender are fixed once the store has accepted the message.
type Message struct {
	ID       int64       `json:"id"`
	Type     MessageType `json:"type"`
	Sender   Sender      `json:"sender"`
	Content  string      `json:"content"`            // Literal text, a resource locator or raw code
	Language string      `json:"language,omitempty"` // Only meaningful for code messages
}

// MessageCandidate is what callers hand to the store. It has no ID field:
// ids are assigned by the store at append time.
type MessageCandidate struct {
	Type     MessageType
	Sender   Sender
	Content  string
	Language string
}
