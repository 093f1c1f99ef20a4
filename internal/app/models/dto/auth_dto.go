package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest is the payload for student self-registration.
// Password is optional; when omitted a temporary password is generated
// and emailed to the student.
type RegisterRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"omitempty,min=8"`
	BloodGroup string `json:"bloodGroup" binding:"required"`
	RollNo     string `json:"rollNo" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
}

// LoginRequest is the payload for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the issued token together with the user profile
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	BloodGroup       string     `json:"bloodGroup,omitempty"`
	RollNo           string     `json:"rollNo,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	IsAvailable      bool       `json:"isAvailable"`
	LastDonationDate *time.Time `json:"lastDonationDate,omitempty"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// UpdateProfileRequest is the payload for profile updates
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"omitempty,min=2,max=100"`
	Phone string `json:"phone" binding:"omitempty"`
}

// ChangePasswordRequest is the payload for password changes
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// LoginHistoryResponse is a single login history entry
type LoginHistoryResponse struct {
	ID         uuid.UUID  `json:"id"`
	IPAddress  string     `json:"ipAddress"`
	UserAgent  string     `json:"userAgent"`
	LoginTime  time.Time  `json:"loginTime"`
	LogoutTime *time.Time `json:"logoutTime,omitempty"`
	IsActive   bool       `json:"isActive"`
}
