package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{"hours", "168h", 168 * time.Hour},
		{"minutes", "30m", 30 * time.Minute},
		{"days suffix", "7d", 7 * 24 * time.Hour},
		{"single day", "1d", 24 * time.Hour},
		{"garbage falls back", "soon", time.Hour},
		{"negative days fall back", "-2d", time.Hour},
		{"empty falls back", "", time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.input, time.Hour))
		})
	}
}
