package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Trainer struct {
	gorm.Model
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Name           string             `gorm:"not null" json:"name"`
	FirstName      *string            `json:"first_name,omitempty"`
	LastName       *string            `json:"last_name,omitempty"`
	Email          string             `gorm:"unique;not null" json:"email"`
	Specialization string             `gorm:"not null" json:"specialization"`
	Experience     int                `gorm:"not null" json:"experience"`
	Rate           int                `gorm:"not null" json:"rate"`
	Availability   string             `gorm:"not null;default:'available'" json:"availability"`
	WorkingStart   int                `gorm:"not null;default:9" json:"working_start"`
	WorkingEnd     int                `gorm:"not null;default:17" json:"working_end"`
	Bio            *string            `json:"bio,omitempty"`
	Rating         float64            `gorm:"default:0" json:"rating"`
	Earnings       int                `gorm:"not null;default:0" json:"earnings"`
	Slots          []AvailabilitySlot `gorm:"foreignKey:TrainerID" json:"slots,omitempty"`
}

// AvailabilitySlot is a committed hour range on a trainer's calendar.
// Slots are appended on booking and never removed; conflict checks read them.
type AvailabilitySlot struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	TrainerID uuid.UUID `gorm:"type:uuid;not null;index:idx_trainer_day" json:"-"`
	Date      time.Time `gorm:"not null;index:idx_trainer_day" json:"date"`
	StartHour int       `gorm:"not null" json:"start_hour"`
	EndHour   int       `gorm:"not null" json:"end_hour"`
	IsBooked  bool      `gorm:"not null;default:true" json:"is_booked"`
	CreatedAt time.Time `json:"-"`
}

func (trainer *Trainer) BeforeCreate(tx *gorm.DB) (err error) {
	if trainer.ID == uuid.Nil {
		trainer.ID = uuid.New()
	}
	if trainer.Availability == "" {
		trainer.Availability = TrainerAvailable
	}
	return
}

func (slot *AvailabilitySlot) BeforeCreate(tx *gorm.DB) (err error) {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	return
}

// DisplayName prefers the split name fields over the single name column.
func (trainer *Trainer) DisplayName() string {
	if trainer.FirstName != nil && trainer.LastName != nil && *trainer.FirstName != "" && *trainer.LastName != "" {
		return *trainer.FirstName + " " + *trainer.LastName
	}
	return trainer.Name
}

// Day truncates a timestamp to midnight UTC so slots on the same calendar
// day compare equal regardless of the time component they were stored with.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// HoursOverlap reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
// Touching boundaries do not conflict.
func HoursOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// IsAvailableAt reports whether the window [startHour, startHour+duration)
// on the given day is inside working hours and clear of booked slots.
// Callers mutating availability must hold the trainer row lock; see
// the trainer booking handler.
func (trainer *Trainer) IsAvailableAt(date time.Time, startHour, duration int) bool {
	if startHour < trainer.WorkingStart || startHour+duration > trainer.WorkingEnd {
		return false
	}

	day := Day(date)
	for _, slot := range trainer.Slots {
		if !slot.IsBooked || !Day(slot.Date).Equal(day) {
			continue
		}
		if HoursOverlap(startHour, startHour+duration, slot.StartHour, slot.EndHour) {
			return false
		}
	}
	return true
}

// BookSlot appends a booked slot for the window and returns it. It does not
// re-check availability. When the current day ends up fully booked the
// coarse availability flag flips to booked; the flag is display only and is
// never consulted for conflict checks.
func (trainer *Trainer) BookSlot(date time.Time, startHour, duration int) *AvailabilitySlot {
	slot := AvailabilitySlot{
		TrainerID: trainer.ID,
		Date:      Day(date),
		StartHour: startHour,
		EndHour:   startHour + duration,
		IsBooked:  true,
	}
	trainer.Slots = append(trainer.Slots, slot)

	today := Day(time.Now().UTC())
	if slot.Date.Equal(today) {
		fullyBooked := true
		for hour := trainer.WorkingStart; hour < trainer.WorkingEnd; hour++ {
			if trainer.IsAvailableAt(today, hour, 1) {
				fullyBooked = false
				break
			}
		}
		if fullyBooked {
			trainer.Availability = TrainerBooked
		}
	}

	return &trainer.Slots[len(trainer.Slots)-1]
}
