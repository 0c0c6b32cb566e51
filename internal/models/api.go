package models

import (
	"github.com/google/uuid"
)

// --- Request Structs ---

// SendMessageRequest defines the body for posting a user message.
type SendMessageRequest struct {
	Type    string `json:"type"` // Defaults to "text" when omitted
	Content string `json:"content"`
}

// ClickRequest places a pending point on the image being annotated.
type ClickRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LabelRequest updates the draft label of the pending point.
type LabelRequest struct {
	Text string `json:"text"`
}

// ColorRequest selects the active palette color.
type ColorRequest struct {
	Color Color `json:"color"`
}

// --- Response Structs ---

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SendMessageResponse is returned once the user message has been appended.
type SendMessageResponse struct {
	Message      Message `json:"message"`
	ReplyDelayMS int64   `json:"reply_delay_ms"`
}

// ListMessagesResponse is a point-in-time snapshot of the conversation.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
}

// AnnotationSessionResponse describes the state of an open annotation overlay.
type AnnotationSessionResponse struct {
	ID            uuid.UUID    `json:"id"`
	MessageID     int64        `json:"message_id"`
	ImageURL      string       `json:"image_url"`
	State         string       `json:"state"` // "idle" or "point_pending"
	Pending       *Annotation  `json:"pending,omitempty"`
	Draft         string       `json:"draft"`
	SelectedColor Color        `json:"selected_color"`
	Palette       []Color      `json:"palette"`
	Annotations   []Annotation `json:"annotations"`
	CanSave       bool         `json:"can_save"`
}

// SaveAnnotationsResponse is returned when an overlay session is saved.
type SaveAnnotationsResponse struct {
	MessageID   int64        `json:"message_id"`
	Annotations []Annotation `json:"annotations"`
}

// MessageAnnotationsResponse reports the transient annotations kept for a message.
type MessageAnnotationsResponse struct {
	MessageID   int64        `json:"message_id"`
	Count       int          `json:"count"`
	Annotations []Annotation `json:"annotations"`
}

// StreamEventKind tags the frames sent on the message stream.
type StreamEventKind string

const (
	StreamEventSnapshot StreamEventKind = "snapshot"
	StreamEventAppended StreamEventKind = "appended"
)

// StreamEvent is one frame on the websocket message stream.
type StreamEvent struct {
	Kind     StreamEventKind `json:"kind"`
	Messages []Message       `json:"messages"`          // Always an array on snapshot frames
	Message  *Message        `json:"message,omitempty"` // Set for appended frames
}
