package models

import (
	"time"

	"github.com/google/uuid"
)

// DonationCooldownMonths is the minimum gap between two donations
const DonationCooldownMonths = 3

// User represents an application user (admin or student donor)
type User struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Password         string     `json:"-"` // bcrypt hash, never serialized
	Role             RoleType   `json:"role"`
	BloodGroup       BloodGroup `json:"bloodGroup,omitempty"`
	RollNo           *string    `json:"rollNo,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	IsAvailable      bool       `json:"isAvailable"`
	LastDonationDate *time.Time `json:"lastDonationDate,omitempty"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// IsEligibleToDonate reports whether the user may donate at the given time.
// A user who has never donated is eligible; otherwise the last donation must
// be at least DonationCooldownMonths ago.
func (u *User) IsEligibleToDonate(now time.Time) bool {
	if u.LastDonationDate == nil {
		return true
	}
	return !u.LastDonationDate.AddDate(0, DonationCooldownMonths, 0).After(now)
}
