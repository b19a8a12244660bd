package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GymBooking struct {
	gorm.Model
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User     `json:"user,omitempty"`
	BookingDate   time.Time `gorm:"not null;index" json:"booking_date"`
	StartTime     string    `gorm:"not null" json:"start_time"`
	EndTime       string    `gorm:"not null" json:"end_time"`
	Duration      int       `gorm:"not null" json:"duration"`
	WorkoutType   string    `gorm:"not null" json:"workout_type"`
	Amount        int       `gorm:"not null" json:"amount"`
	TotalPrice    *int      `json:"total_price,omitempty"` // legacy column, feeds amount resolution
	Price         *int      `json:"price,omitempty"`       // legacy column, feeds amount resolution
	PaymentMethod string    `gorm:"not null;default:'cash'" json:"payment_method"`
	PaymentStatus string    `gorm:"not null;default:'pending'" json:"payment_status"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	KhaltiPidx    *string   `gorm:"index" json:"khalti_pidx,omitempty"`
	Status        string    `gorm:"not null;default:'pending';index" json:"status"`
	Notes         *string   `json:"notes,omitempty"`
	Reviewed      bool      `gorm:"not null;default:false" json:"reviewed"`
}

func (booking *GymBooking) BeforeCreate(tx *gorm.DB) (err error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return
}

// BeforeSave keeps the aggregate consistent on every write: the amount is
// resolved to a positive value and a completed booking always has a settled
// payment.
func (booking *GymBooking) BeforeSave(tx *gorm.DB) (err error) {
	booking.Amount = booking.ResolveAmount()
	if booking.Status == BookingCompleted && booking.PaymentStatus != PaymentCompleted {
		booking.PaymentStatus = PaymentCompleted
	}
	return
}

// ResolveAmount walks the legacy price columns before falling back to the
// flat gym session default. The amount is never left at zero.
func (booking *GymBooking) ResolveAmount() int {
	if booking.Amount > 0 {
		return booking.Amount
	}
	if booking.TotalPrice != nil && *booking.TotalPrice > 0 {
		return *booking.TotalPrice
	}
	if booking.Price != nil && *booking.Price > 0 {
		return *booking.Price
	}
	return DefaultGymAmount
}

// Mutable reports whether status transitions are still allowed.
func (booking *GymBooking) Mutable() bool {
	return booking.Status != BookingCancelled && booking.Status != BookingCompleted
}

// ApplyGatewayStatus folds a gateway-attested payment status into the
// booking. See NextPaymentStatus for the transition rules.
func (booking *GymBooking) ApplyGatewayStatus(gatewayStatus string, transactionID string) PaymentTransition {
	next, ok := NextPaymentStatus(booking.PaymentStatus, gatewayStatus)
	if !ok {
		return PaymentTransition{}
	}

	transition := PaymentTransition{Changed: true, CompletedNow: next == PaymentCompleted}
	booking.PaymentStatus = next
	if transactionID != "" {
		booking.TransactionID = &transactionID
	}
	if next == PaymentCompleted && booking.Status == BookingPending {
		booking.Status = BookingConfirmed
	}
	return transition
}

// WorkoutPricing is the static per-type rate and capacity table. Capacity is
// informational; it is returned to clients but not enforced as a booking cap.
type WorkoutPricing struct {
	BaseRate int
	Capacity int
}

func PricingFor(workoutType string) WorkoutPricing {
	switch workoutType {
	case "Cardio":
		return WorkoutPricing{BaseRate: 150, Capacity: 5}
	case "Strength":
		return WorkoutPricing{BaseRate: 130, Capacity: 8}
	case "CrossFit", "HIIT":
		return WorkoutPricing{BaseRate: 180, Capacity: 6}
	case "Yoga":
		return WorkoutPricing{BaseRate: 120, Capacity: 12}
	default:
		return WorkoutPricing{BaseRate: 100, Capacity: 15}
	}
}
