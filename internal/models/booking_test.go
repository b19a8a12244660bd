package models

import "testing"

func intPtr(v int) *int { return &v }

func TestGymBookingResolveAmount(t *testing.T) {
	tests := []struct {
		name    string
		booking GymBooking
		want    int
	}{
		{"amount wins", GymBooking{Amount: 300, TotalPrice: intPtr(250)}, 300},
		{"legacy total price", GymBooking{TotalPrice: intPtr(250)}, 250},
		{"legacy price", GymBooking{Price: intPtr(200)}, 200},
		{"zero legacy columns skipped", GymBooking{TotalPrice: intPtr(0), Price: intPtr(0)}, DefaultGymAmount},
		{"default", GymBooking{}, DefaultGymAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.booking.ResolveAmount(); got != tt.want {
				t.Errorf("ResolveAmount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTrainerBookingResolveAmount(t *testing.T) {
	tests := []struct {
		name    string
		booking TrainerBooking
		want    int
	}{
		{"amount wins", TrainerBooking{Amount: 1500}, 1500},
		{"legacy total price", TrainerBooking{TotalPrice: intPtr(900)}, 900},
		{
			"rate times duration",
			TrainerBooking{Duration: 2, Trainer: &Trainer{Rate: 500}},
			1000,
		},
		{
			"zero rate falls through to default",
			TrainerBooking{Duration: 2, Trainer: &Trainer{}},
			DefaultTrainerAmount,
		},
		{"default without trainer", TrainerBooking{}, DefaultTrainerAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.booking.ResolveAmount(); got != tt.want {
				t.Errorf("ResolveAmount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGymBookingBeforeSaveSettlesCompletedBooking(t *testing.T) {
	booking := GymBooking{Status: BookingCompleted, PaymentStatus: PaymentPending}
	if err := booking.BeforeSave(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.PaymentStatus != PaymentCompleted {
		t.Errorf("payment status = %q, want %q", booking.PaymentStatus, PaymentCompleted)
	}
	if booking.Amount != DefaultGymAmount {
		t.Errorf("amount = %d, want resolved default %d", booking.Amount, DefaultGymAmount)
	}
}

func TestTrainerBookingBeforeSaveCapturesSnapshotOnce(t *testing.T) {
	first := "Anita"
	last := "Sharma"
	booking := TrainerBooking{Trainer: &Trainer{Name: "anita.s", FirstName: &first, LastName: &last}}

	if err := booking.BeforeSave(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.TrainerNameSnapshot != "Anita Sharma" {
		t.Fatalf("snapshot = %q", booking.TrainerNameSnapshot)
	}

	renamed := "Bina"
	booking.Trainer.FirstName = &renamed
	if err := booking.BeforeSave(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.TrainerNameSnapshot != "Anita Sharma" {
		t.Errorf("snapshot re-derived to %q", booking.TrainerNameSnapshot)
	}
}

func TestApplyGatewayStatusCompletion(t *testing.T) {
	booking := TrainerBooking{Status: BookingPending, PaymentStatus: PaymentInitiated}

	transition := booking.ApplyGatewayStatus(GatewayCompleted, "txn-001")
	if !transition.Changed || !transition.CompletedNow {
		t.Fatalf("transition = %+v, want changed and completed", transition)
	}
	if booking.PaymentStatus != PaymentCompleted {
		t.Errorf("payment status = %q", booking.PaymentStatus)
	}
	if booking.Status != BookingConfirmed {
		t.Errorf("booking status = %q, want confirmed", booking.Status)
	}
	if booking.TransactionID == nil || *booking.TransactionID != "txn-001" {
		t.Error("transaction id not recorded")
	}

	// Duplicate delivery of the same status must be a no-op so earnings
	// are only ever credited once.
	repeat := booking.ApplyGatewayStatus(GatewayCompleted, "txn-001")
	if repeat.Changed || repeat.CompletedNow {
		t.Errorf("repeat transition = %+v, want no-op", repeat)
	}
}

func TestApplyGatewayStatusRefundKeepsBookingStatus(t *testing.T) {
	booking := GymBooking{Status: BookingConfirmed, PaymentStatus: PaymentCompleted}

	transition := booking.ApplyGatewayStatus(GatewayRefunded, "")
	if !transition.Changed || transition.CompletedNow {
		t.Fatalf("transition = %+v", transition)
	}
	if booking.PaymentStatus != PaymentRefunded {
		t.Errorf("payment status = %q", booking.PaymentStatus)
	}
	if booking.Status != BookingConfirmed {
		t.Errorf("booking status = %q, refund must not alter it", booking.Status)
	}
}

func TestApplyGatewayStatusPendingDoesNotMutate(t *testing.T) {
	booking := GymBooking{Status: BookingPending, PaymentStatus: PaymentInitiated}

	transition := booking.ApplyGatewayStatus(GatewayPending, "txn-002")
	if transition.Changed {
		t.Fatalf("transition = %+v, want no-op", transition)
	}
	if booking.PaymentStatus != PaymentInitiated || booking.TransactionID != nil {
		t.Error("pending status mutated the booking")
	}
}

func TestPricingFor(t *testing.T) {
	tests := []struct {
		workoutType  string
		wantRate     int
		wantCapacity int
	}{
		{"Cardio", 150, 5},
		{"Strength", 130, 8},
		{"CrossFit", 180, 6},
		{"HIIT", 180, 6},
		{"Yoga", 120, 12},
		{"Swimming", 100, 15},
	}

	for _, tt := range tests {
		pricing := PricingFor(tt.workoutType)
		if pricing.BaseRate != tt.wantRate || pricing.Capacity != tt.wantCapacity {
			t.Errorf("PricingFor(%q) = %+v, want rate %d capacity %d",
				tt.workoutType, pricing, tt.wantRate, tt.wantCapacity)
		}
	}
}
