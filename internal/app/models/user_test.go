package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_IsEligibleToDonate(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	timePtr := func(v time.Time) *time.Time { return &v }

	tests := []struct {
		name         string
		lastDonation *time.Time
		want         bool
	}{
		{
			name:         "never donated",
			lastDonation: nil,
			want:         true,
		},
		{
			name:         "donated one month ago",
			lastDonation: timePtr(now.AddDate(0, -1, 0)),
			want:         false,
		},
		{
			name:         "donated exactly three months ago",
			lastDonation: timePtr(now.AddDate(0, -DonationCooldownMonths, 0)),
			want:         true,
		},
		{
			name:         "donated a year ago",
			lastDonation: timePtr(now.AddDate(-1, 0, 0)),
			want:         true,
		},
		{
			name:         "donated one day short of the cooldown",
			lastDonation: timePtr(now.AddDate(0, -DonationCooldownMonths, 1)),
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{LastDonationDate: tt.lastDonation}
			assert.Equal(t, tt.want, u.IsEligibleToDonate(now))
		})
	}
}
