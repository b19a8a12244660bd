package models

import (
	"testing"
	"time"
)

func TestHoursOverlap(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"partial", 9, 11, 10, 12, true},
		{"contained", 9, 17, 10, 11, true},
		{"identical", 10, 12, 10, 12, true},
		{"touching end to start", 9, 10, 10, 11, false},
		{"touching start to end", 10, 11, 9, 10, false},
		{"disjoint", 9, 10, 14, 15, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HoursOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("HoursOverlap(%d,%d,%d,%d) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
		})
	}
}

func TestIsAvailableAt(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	trainer := Trainer{
		WorkingStart: 9,
		WorkingEnd:   17,
		Slots: []AvailabilitySlot{
			{Date: day, StartHour: 10, EndHour: 12, IsBooked: true},
		},
	}

	tests := []struct {
		name      string
		date      time.Time
		startHour int
		duration  int
		want      bool
	}{
		{"inside booked slot", day, 11, 1, false},
		{"overlapping booked slot", day, 9, 2, false},
		{"clear afternoon hour", day, 13, 1, true},
		{"starts where slot ends", day, 12, 1, true},
		{"ends where slot starts", day, 9, 1, true},
		{"before working hours", day, 8, 1, false},
		{"runs past working hours", day, 16, 2, false},
		{"same window next day", day.AddDate(0, 0, 1), 11, 1, true},
		{"time component ignored", day.Add(18 * time.Hour), 11, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trainer.IsAvailableAt(tt.date, tt.startHour, tt.duration); got != tt.want {
				t.Errorf("IsAvailableAt(%v, %d, %d) = %v, want %v",
					tt.date, tt.startHour, tt.duration, got, tt.want)
			}
		})
	}
}

func TestIsAvailableAtIgnoresReleasedSlots(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	trainer := Trainer{
		WorkingStart: 9,
		WorkingEnd:   17,
		Slots: []AvailabilitySlot{
			{Date: day, StartHour: 10, EndHour: 12, IsBooked: false},
		},
	}

	if !trainer.IsAvailableAt(day, 10, 2) {
		t.Error("unbooked slot should not block the window")
	}
}

func TestBookSlot(t *testing.T) {
	day := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	trainer := Trainer{WorkingStart: 9, WorkingEnd: 17, Availability: TrainerAvailable}

	slot := trainer.BookSlot(day, 10, 2)
	if slot == nil {
		t.Fatal("BookSlot returned nil")
	}
	if !slot.Date.Equal(Day(day)) {
		t.Errorf("slot date = %v, want midnight %v", slot.Date, Day(day))
	}
	if slot.StartHour != 10 || slot.EndHour != 12 || !slot.IsBooked {
		t.Errorf("slot = %+v", slot)
	}
	if trainer.IsAvailableAt(day, 11, 1) {
		t.Error("window still reported available after booking")
	}
	if trainer.Availability != TrainerAvailable {
		t.Errorf("availability flipped to %q for a non-today booking", trainer.Availability)
	}
}

func TestBookSlotFlipsFlagWhenTodayFullyBooked(t *testing.T) {
	today := Day(time.Now().UTC())
	trainer := Trainer{WorkingStart: 9, WorkingEnd: 11, Availability: TrainerAvailable}

	trainer.BookSlot(today, 9, 1)
	if trainer.Availability != TrainerAvailable {
		t.Fatalf("availability = %q with an hour still open", trainer.Availability)
	}

	trainer.BookSlot(today, 10, 1)
	if trainer.Availability != TrainerBooked {
		t.Errorf("availability = %q, want %q once the day is full", trainer.Availability, TrainerBooked)
	}
}

func TestDisplayName(t *testing.T) {
	first := "Anita"
	last := "Sharma"
	empty := ""

	tests := []struct {
		name    string
		trainer Trainer
		want    string
	}{
		{"split names", Trainer{Name: "anita.s", FirstName: &first, LastName: &last}, "Anita Sharma"},
		{"single name column", Trainer{Name: "anita.s"}, "anita.s"},
		{"empty split names fall back", Trainer{Name: "anita.s", FirstName: &empty, LastName: &last}, "anita.s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trainer.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
