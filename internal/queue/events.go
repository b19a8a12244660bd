// Package queue publishes and consumes booking notification events over the
// message broker. Delivery is fire-and-forget: a broker outage never blocks
// or fails a booking or payment flow.
package queue

// BookingCreatedEvent is published when a gym or trainer booking is created.
type BookingCreatedEvent struct {
	BookingID   string `json:"booking_id"`
	BookingType string `json:"booking_type"`
	UserID      string `json:"user_id"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Amount      int    `json:"amount"`
}

// PaymentCompletedEvent is published once per booking when reconciliation
// settles its payment.
type PaymentCompletedEvent struct {
	BookingID     string `json:"booking_id"`
	BookingType   string `json:"booking_type"`
	UserID        string `json:"user_id"`
	Amount        int    `json:"amount"`
	TransactionID string `json:"transaction_id"`
}
