package helpers

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{" 10:30 ", 630, false},
		{"9:5", 545, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) expected error, got %d", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestClockRangesOverlap(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"partial overlap", "09:00", "10:00", "09:30", "10:30", true},
		{"contained", "09:00", "12:00", "10:00", "11:00", true},
		{"identical", "09:00", "10:00", "09:00", "10:00", true},
		{"touching boundaries", "09:00", "10:00", "10:00", "11:00", false},
		{"disjoint", "09:00", "10:00", "14:00", "15:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClockRangesOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ClockRangesOverlap(%s-%s, %s-%s) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
		})
	}

	if _, err := ClockRangesOverlap("bad", "10:00", "09:00", "10:00"); err == nil {
		t.Error("expected error for malformed range")
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-06-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.June || got.Day() != 1 {
		t.Errorf("ParseDate returned %v", got)
	}

	if _, err := ParseDate("2024-06-01T10:00:00Z"); err != nil {
		t.Errorf("RFC3339 input rejected: %v", err)
	}
	if _, err := ParseDate("01/06/2024"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestDayBounds(t *testing.T) {
	stamp := time.Date(2024, 6, 1, 15, 42, 7, 0, time.UTC)
	start, end := DayBounds(stamp)
	if !start.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(start.Add(24 * time.Hour)) {
		t.Errorf("end = %v", end)
	}
}

func TestFormatHourRange(t *testing.T) {
	if got := FormatHourRange(9, 2); got != "9:00 - 11:00" {
		t.Errorf("FormatHourRange(9, 2) = %q", got)
	}
}
