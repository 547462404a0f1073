package notification

import (
	"time"

	"github.com/google/uuid"
)

// NotificationLevel represents the severity level of a notification
type NotificationLevel string

const (
	NotificationLevelSuccess NotificationLevel = "success"
	NotificationLevelInfo    NotificationLevel = "info"
)

// Directory change actions
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// WebSocketMessage is pushed to every open directory view after a committed change.
// Receivers reload incrementally so their expand state survives.
type WebSocketMessage struct {
	Type      string            `json:"type"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action,omitempty"`
	EntityID  *uuid.UUID        `json:"entity_id,omitempty"`
	Entity    string            `json:"entity,omitempty"`
}

// NewDirectoryChange builds the message for a change to organization id
func NewDirectoryChange(action string, id uuid.UUID) *WebSocketMessage {
	return &WebSocketMessage{
		Type:      "directory_changed",
		Level:     NotificationLevelInfo,
		Message:   "organization " + action,
		Timestamp: time.Now().UTC(),
		Action:    action,
		EntityID:  &id,
		Entity:    "organization",
	}
}
