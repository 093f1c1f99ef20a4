package models

import (
	"time"

	"github.com/google/uuid"
)

// LoginHistory records a single login session for a user.
// Previous active rows are deactivated whenever the user logs in again.
type LoginHistory struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	IPAddress  string     `json:"ipAddress"`
	UserAgent  string     `json:"userAgent"`
	LoginTime  time.Time  `json:"loginTime"`
	LogoutTime *time.Time `json:"logoutTime,omitempty"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// SystemLog is an audit row written by the HTTP logging middleware
type SystemLog struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	User      string    `json:"user"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
