package models

// Khalti gateway statuses as they appear in lookup responses and webhook
// payloads.
const (
	GatewayCompleted         = "Completed"
	GatewayPending           = "Pending"
	GatewayExpired           = "Expired"
	GatewayCanceled          = "Canceled"
	GatewayRefunded          = "Refunded"
	GatewayPartiallyRefunded = "Partially refunded"
)

// PaymentTransition describes the outcome of applying a gateway status to a
// booking. A zero value means no-op.
type PaymentTransition struct {
	Changed      bool
	CompletedNow bool
}

// NextPaymentStatus maps a gateway status onto the booking's payment state.
// The second return is false when no mutation should happen.
//
// The table is idempotent and never regresses a terminal state: repeating a
// terminal status is a no-op, a refunded booking cannot flip back to
// completed, and a completed payment cannot be marked failed by a stale
// lookup. Pending never mutates anything.
func NextPaymentStatus(current, gatewayStatus string) (string, bool) {
	switch gatewayStatus {
	case GatewayPending:
		return "", false
	case GatewayCompleted:
		switch current {
		case PaymentPending, PaymentInitiated, PaymentFailed:
			return PaymentCompleted, true
		}
		return "", false
	case GatewayRefunded, GatewayPartiallyRefunded:
		if current == PaymentRefunded {
			return "", false
		}
		return PaymentRefunded, true
	default:
		// Expired, Canceled, and anything unrecognized fail the payment,
		// but only while it is still in flight.
		switch current {
		case PaymentPending, PaymentInitiated:
			return PaymentFailed, true
		}
		return "", false
	}
}
