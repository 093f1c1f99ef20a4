package models

import (
	"time"

	"github.com/google/uuid"
)

// Certificate represents a donation certificate request and its rendered PDF.
// Donor and donation details are denormalized at request time so the
// certificate stays correct even if the source rows change later.
type Certificate struct {
	ID                uuid.UUID         `json:"id"`
	DonorID           uuid.UUID         `json:"donorId"`
	RequestID         uuid.UUID         `json:"requestId"`
	CertificateNumber string            `json:"certificateNumber"`
	DonorName         string            `json:"donorName"`
	BloodGroup        BloodGroup        `json:"bloodGroup"`
	DonationDate      time.Time         `json:"donationDate"`
	HospitalName      string            `json:"hospitalName"`
	Units             int               `json:"units"`
	Status            CertificateStatus `json:"status"`
	AdminApprovedAt   *time.Time        `json:"adminApprovedAt,omitempty"`
	GeneratedAt       *time.Time        `json:"generatedAt,omitempty"`
	CertificateURL    *string           `json:"certificateUrl,omitempty"`
	Notes             *string           `json:"notes,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}
