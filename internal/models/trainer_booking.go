package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrainerBooking struct {
	gorm.Model
	ID                  uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User                *User     `json:"user,omitempty"`
	TrainerID           uuid.UUID `gorm:"type:uuid;not null;index" json:"trainer_id"`
	Trainer             *Trainer  `json:"trainer,omitempty"`
	SessionDate         time.Time `gorm:"not null;index" json:"session_date"`
	StartHour           int       `gorm:"not null;default:9" json:"start_hour"`
	Duration            int       `gorm:"not null;default:1" json:"duration"`
	SessionType         string    `gorm:"not null;default:'personal'" json:"session_type"`
	Time                string    `gorm:"not null" json:"time"`
	Amount              int       `gorm:"not null" json:"amount"`
	TotalPrice          *int      `json:"total_price,omitempty"` // legacy column, feeds amount resolution
	Price               *int      `json:"price,omitempty"`       // legacy column, feeds amount resolution
	PaymentMethod       string    `gorm:"not null;default:'cash'" json:"payment_method"`
	PaymentStatus       string    `gorm:"not null;default:'pending'" json:"payment_status"`
	TransactionID       *string   `json:"transaction_id,omitempty"`
	KhaltiPidx          *string   `gorm:"index" json:"khalti_pidx,omitempty"`
	Status              string    `gorm:"not null;default:'pending';index" json:"status"`
	TrainerNameSnapshot string    `json:"trainer_name_snapshot,omitempty"`
	Notes               *string   `json:"notes,omitempty"`
	Reviewed            bool      `gorm:"not null;default:false" json:"reviewed"`
}

func (booking *TrainerBooking) BeforeCreate(tx *gorm.DB) (err error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return
}

// BeforeSave enforces the aggregate invariants: a positive resolved amount,
// payment settled whenever the booking is completed, and the trainer name
// snapshot captured once so history survives trainer deletion. The snapshot
// is never re-derived after it is set.
func (booking *TrainerBooking) BeforeSave(tx *gorm.DB) (err error) {
	booking.Amount = booking.ResolveAmount()
	if booking.Status == BookingCompleted && booking.PaymentStatus != PaymentCompleted {
		booking.PaymentStatus = PaymentCompleted
	}
	if booking.TrainerNameSnapshot == "" && booking.Trainer != nil {
		booking.TrainerNameSnapshot = booking.Trainer.DisplayName()
	}
	return
}

// ResolveAmount walks the legacy price columns, then rate times duration,
// before falling back to the trainer session default.
func (booking *TrainerBooking) ResolveAmount() int {
	if booking.Amount > 0 {
		return booking.Amount
	}
	if booking.TotalPrice != nil && *booking.TotalPrice > 0 {
		return *booking.TotalPrice
	}
	if booking.Price != nil && *booking.Price > 0 {
		return *booking.Price
	}
	if booking.Trainer != nil && booking.Trainer.Rate > 0 && booking.Duration > 0 {
		return booking.Trainer.Rate * booking.Duration
	}
	return DefaultTrainerAmount
}

func (booking *TrainerBooking) Mutable() bool {
	return booking.Status != BookingCancelled && booking.Status != BookingCompleted
}

// ApplyGatewayStatus folds a gateway-attested payment status into the
// booking. CompletedNow is true only on the transition into completed, which
// is the single point where trainer earnings may be credited.
func (booking *TrainerBooking) ApplyGatewayStatus(gatewayStatus string, transactionID string) PaymentTransition {
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
