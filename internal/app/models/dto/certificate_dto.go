package dto

import "github.com/google/uuid"

// RequestCertificateRequest is the student payload for requesting a
// certificate for a completed donation
type RequestCertificateRequest struct {
	RequestID uuid.UUID `json:"requestId" binding:"required"`
	Notes     string    `json:"notes" binding:"omitempty,max=500"`
}
