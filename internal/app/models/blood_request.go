package models

import (
	"time"

	"github.com/google/uuid"
)

// Units limits for a single blood request
const (
	MinRequestUnits = 1
	MaxRequestUnits = 10
)

// BloodRequest represents a request for blood donation submitted by a requestor
type BloodRequest struct {
	ID              uuid.UUID     `json:"id"`
	RequestorName   string        `json:"requestorName"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	BloodGroup      BloodGroup    `json:"bloodGroup"`
	Units           int           `json:"units"`
	DateTime        time.Time     `json:"dateTime"`
	HospitalName    string        `json:"hospitalName"`
	Location        string        `json:"location"`
	Urgency         UrgencyLevel  `json:"urgency"`
	Notes           *string       `json:"notes,omitempty"`
	Status          RequestStatus `json:"status"`
	AssignedDonorID *uuid.UUID    `json:"assignedDonorId,omitempty"`
	RejectionReason *string       `json:"rejectionReason,omitempty"`
	GeotagPhoto     *string       `json:"geotagPhoto,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// StudentOptIn records a student volunteering for an approved request.
// A student may opt in to a given request at most once.
type StudentOptIn struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"studentId"`
	RequestID uuid.UUID `json:"requestId"`
	CreatedAt time.Time `json:"createdAt"`
}
