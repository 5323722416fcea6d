package calendar_test

import (
	"testing"

	"go-hrportal/internal/calendar"

	"github.com/stretchr/testify/assert"
)

func TestContrastTextColor(t *testing.T) {
	tests := []struct {
		name  string
		color string
		want  string
	}{
		{"white background", "#ffffff", "#000000"},
		{"black background", "#000000", "#ffffff"},
		{"default leave blue", "#3788d8", "#ffffff"},
		{"holiday red", "#d33838", "#ffffff"},
		{"yellow", "#ffff00", "#000000"},
		{"pure red", "#ff0000", "#ffffff"},
		{"pure green", "#00ff00", "#000000"},
		{"pure blue", "#0000ff", "#ffffff"},
		{"mid gray just below threshold", "#7f7f7f", "#ffffff"},
		{"mid gray just above threshold", "#808080", "#000000"},
		{"uppercase hex", "#FFFFFF", "#000000"},
		{"malformed falls back to white", "not-a-color", "#ffffff"},
		{"short hex falls back to white", "#fff", "#ffffff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calendar.ContrastTextColor(tt.color))
		})
	}
}
