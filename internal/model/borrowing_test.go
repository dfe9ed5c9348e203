package model

import (
	"testing"
	"time"
)

func TestOverdueDays(t *testing.T) {
	now, err := time.Parse(DateFormat, "2026-08-30")
	if err != nil {
		t.Fatalf("parsing test date: %v", err)
	}

	tests := []struct {
		due  string
		want int
	}{
		{"2026-08-30", 0}, // due today is not overdue
		{"2026-09-05", 0},
		{"2026-08-29", 1},
		{"2026-08-23", 7},
		{"not-a-date", 0},
	}

	for _, tt := range tests {
		if got := OverdueDays(tt.due, now); got != tt.want {
			t.Errorf("OverdueDays(%q) = %d, want %d", tt.due, got, tt.want)
		}
	}
}
