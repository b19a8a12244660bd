package models

// Booking lifecycle states shared by gym and trainer bookings.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Payment sub-states. completed, failed and refunded are terminal.
const (
	PaymentPending   = "pending"
	PaymentInitiated = "initiated"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

const (
	MethodCash   = "cash"
	MethodKhalti = "khalti"
	MethodCard   = "card"
)

// Coarse per-trainer availability flag, display only.
const (
	TrainerAvailable    = "available"
	TrainerBooked       = "booked"
	TrainerNotAvailable = "not available"
)

const (
	DefaultGymAmount     = 500
	DefaultTrainerAmount = 1000
)

// SettledPaymentStatuses are the payment states a new initiation must never
// overwrite. They are exactly the states NextPaymentStatus refuses to
// complete from, so a stale pidx can never re-credit a settled booking.
var SettledPaymentStatuses = []string{PaymentCompleted, PaymentRefunded}

func PaymentSettled(s string) bool {
	return s == PaymentCompleted || s == PaymentRefunded
}

func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentInitiated, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}
