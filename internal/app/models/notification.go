package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app notification row for a single user
type Notification struct {
	ID        uuid.UUID              `json:"id"`
	UserID    uuid.UUID              `json:"userId"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	IsRead    bool                   `json:"isRead"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"` // JSONB payload, usually request/donor ids
	CreatedAt time.Time              `json:"createdAt"`
}
