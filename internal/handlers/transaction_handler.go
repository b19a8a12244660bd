package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitzone-app/backend/internal/helpers"
	"github.com/fitzone-app/backend/internal/models"
)

// Transaction is one row of the unified payment history, normalized across
// both booking kinds.
type Transaction struct {
	ID            uuid.UUID `json:"id"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	Date          time.Time `json:"date"`
	Amount        int       `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	PaymentStatus string    `json:"payment_status"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListUserTransactions merges the caller's gym and trainer bookings into a
// single history, newest first.
func ListUserTransactions(c *gin.Context) {
	userUUID, ok := currentUser(c)
	if !ok {
		return
	}
	gormDB, ok := database(c)
	if !ok {
		return
	}

	var gymBookings []models.GymBooking
	if err := gormDB.Where("user_id = ?", userUUID).Find(&gymBookings).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch transactions.")
		return
	}

	var trainerBookings []models.TrainerBooking
	if err := gormDB.Preload("Trainer").Where("user_id = ?", userUUID).Find(&trainerBookings).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch transactions.")
		return
	}

	transactions := buildTransactions(gymBookings, trainerBookings)
	c.JSON(http.StatusOK, gin.H{
		"count":        len(transactions),
		"transactions": transactions,
	})
}

// buildTransactions normalizes both booking kinds into Transaction rows
// sorted by creation time descending. Amounts go through the same resolution
// chain the aggregates persist with, so a row is never shown with a zero
// amount even for legacy records.
func buildTransactions(gymBookings []models.GymBooking, trainerBookings []models.TrainerBooking) []Transaction {
	transactions := make([]Transaction, 0, len(gymBookings)+len(trainerBookings))

	for i := range gymBookings {
		booking := &gymBookings[i]
		transactions = append(transactions, Transaction{
			ID:            booking.ID,
			Description:   fmt.Sprintf("Gym Session: %s", booking.WorkoutType),
			Type:          BookingTypeGym,
			Date:          booking.BookingDate,
			Amount:        booking.ResolveAmount(),
			PaymentMethod: booking.PaymentMethod,
			PaymentStatus: booking.PaymentStatus,
			Status:        booking.Status,
			CreatedAt:     booking.CreatedAt,
		})
	}

	for i := range trainerBookings {
		booking := &trainerBookings[i]
		transactions = append(transactions, Transaction{
			ID:            booking.ID,
			Description:   fmt.Sprintf("Training with %s", trainerDisplayName(booking)),
			Type:          BookingTypeTrainer,
			Date:          booking.SessionDate,
			Amount:        booking.ResolveAmount(),
			PaymentMethod: booking.PaymentMethod,
			PaymentStatus: booking.PaymentStatus,
			Status:        booking.Status,
			CreatedAt:     booking.CreatedAt,
		})
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	return transactions
}

// trainerDisplayName prefers the live trainer record, then the snapshot taken
// at booking time, so rows stay readable after a trainer is removed.
func trainerDisplayName(booking *models.TrainerBooking) string {
	if booking.Trainer != nil {
		if name := booking.Trainer.DisplayName(); name != "" {
			return name
		}
	}
	if booking.TrainerNameSnapshot != "" {
		return booking.TrainerNameSnapshot
	}
	return "Fitness Coach"
}
