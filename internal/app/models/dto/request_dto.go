package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/mravi/bloodconnect/internal/app/models"
)

// CreateBloodRequest is the public payload for submitting a blood request
type CreateBloodRequest struct {
	RequestorName string    `json:"requestorName" binding:"required,min=2,max=100"`
	Email         string    `json:"email" binding:"required,email"`
	Phone         string    `json:"phone" binding:"required"`
	BloodGroup    string    `json:"bloodGroup" binding:"required"`
	Units         int       `json:"units" binding:"required"`
	DateTime      time.Time `json:"dateTime" binding:"required"`
	HospitalName  string    `json:"hospitalName" binding:"required"`
	Location      string    `json:"location" binding:"required"`
	Urgency       string    `json:"urgency" binding:"required"`
	Notes         string    `json:"notes" binding:"omitempty,max=1000"`
}

// RejectRequest carries an optional rejection reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// FulfillRequest names the donor a request is fulfilled with
type FulfillRequest struct {
	DonorID uuid.UUID `json:"donorId" binding:"required"`
}

// AssignDonorRequest names the donor to assign without fulfilling
type AssignDonorRequest struct {
	DonorID uuid.UUID `json:"donorId" binding:"required"`
}

// RequestListFilters are the optional admin list filters
type RequestListFilters struct {
	Status     string `form:"status"`
	BloodGroup string `form:"bloodGroup"`
	Urgency    string `form:"urgency"`
	Search     string `form:"search"`
}

// OptedInStudent is a donor candidate shown on request detail
type OptedInStudent struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	BloodGroup  string    `json:"bloodGroup"`
	Phone       string    `json:"phone,omitempty"`
	RollNo      string    `json:"rollNo,omitempty"`
	IsAvailable bool      `json:"isAvailable"`
	OptedInAt   time.Time `json:"optedInAt"`
}

// StudentOptInDetail is an opt-in row joined with its blood request,
// shown on the student's own opt-in history.
type StudentOptInDetail struct {
	ID        uuid.UUID           `json:"id"`
	RequestID uuid.UUID           `json:"requestId"`
	OptedInAt time.Time           `json:"optedInAt"`
	Request   models.BloodRequest `json:"request"`
}

// BloodRequestDetail is the full request view including donor data
type BloodRequestDetail struct {
	models.BloodRequest
	AssignedDonor   *UserResponse    `json:"assignedDonor,omitempty"`
	OptedInStudents []OptedInStudent `json:"optedInStudents,omitempty"`
}
