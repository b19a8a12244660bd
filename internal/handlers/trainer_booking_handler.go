package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fitzone-app/backend/internal/helpers"
	"github.com/fitzone-app/backend/internal/middleware"
	"github.com/fitzone-app/backend/internal/models"
	"github.com/fitzone-app/backend/internal/queue"
)

type TrainerBookingRequest struct {
	Duration      int    `json:"duration" binding:"required,min=1"`
	SessionDate   string `json:"session_date" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	StartHour     *int   `json:"start_hour"`
	SessionType   string `json:"session_type"`
}

var errSlotTaken = errors.New("trainer not available for the requested window")

// BookTrainer creates a trainer booking. The availability check, the slot
// commit and the booking insert run in one transaction holding a row lock on
// the trainer, so two concurrent requests for an overlapping window cannot
// both pass the check, and a saved booking always has its committed slot.
func BookTrainer(c *gin.Context) {
	trainerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid trainer ID.")
		return
	}

	var req TrainerBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Duration, session date, and payment method are required.")
		return
	}

	userUUID, ok := currentUser(c)
	if !ok {
		return
	}

	gormDB, ok := database(c)
	if !ok {
		return
	}

	sessionDate, err := helpers.ParseDate(req.SessionDate)
	if err != nil {
		helpers.RespondWithFieldError(c, "session_date", "Invalid session date.")
		return
	}

	startHour := 9
	if req.StartHour != nil {
		startHour = *req.StartHour
	}
	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = "personal"
	}

	var booking models.TrainerBooking
	txErr := gormDB.Transaction(func(tx *gorm.DB) error {
		var trainer models.Trainer
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Slots").
			First(&trainer, "id = ?", trainerID).Error
		if err != nil {
			return err
		}

		if !trainer.IsAvailableAt(sessionDate, startHour, req.Duration) {
			return errSlotTaken
		}

		booking = models.TrainerBooking{
			ID:            uuid.New(),
			UserID:        userUUID,
			TrainerID:     trainer.ID,
			Trainer:       &trainer,
			SessionDate:   models.Day(sessionDate),
			StartHour:     startHour,
			Duration:      req.Duration,
			SessionType:   sessionType,
			Time:          helpers.FormatHourRange(startHour, req.Duration),
			Amount:        trainer.Rate * req.Duration,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: models.PaymentPending,
			Status:        models.BookingPending,
		}
		if err := tx.Omit("Trainer").Create(&booking).Error; err != nil {
			return err
		}

		slot := trainer.BookSlot(sessionDate, startHour, req.Duration)
		if err := tx.Create(slot).Error; err != nil {
			return err
		}

		// Persist the coarse availability flag when BookSlot flipped it.
		return tx.Model(&models.Trainer{}).
			Where("id = ?", trainer.ID).
			Update("availability", trainer.Availability).Error
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, gorm.ErrRecordNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Trainer not found.")
		case errors.Is(txErr, errSlotTaken):
			helpers.RespondWithError(c, http.StatusBadRequest, "Trainer is not available at this time. Please select another time or trainer.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Booking failed.")
		}
		return
	}

	middleware.GetPublisher(c).Publish(c.Request.Context(), queue.BookingCreatedEvent{
		BookingID:   booking.ID.String(),
		BookingType: "trainer",
		UserID:      userUUID.String(),
		Description: fmt.Sprintf("Training session with %s", booking.TrainerNameSnapshot),
		Date:        booking.SessionDate.Format("2006-01-02"),
		Amount:      booking.Amount,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking created successfully.",
		"booking": booking,
	})
}

func ListUserTrainerBookings(c *gin.Context) {
	userUUID, ok := currentUser(c)
	if !ok {
		return
	}
	gormDB, ok := database(c)
	if !ok {
		return
	}

	var bookings []models.TrainerBooking
	err := gormDB.Where("user_id = ?", userUUID).
		Preload("Trainer").
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch trainer bookings.")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func ListAllTrainerBookings(c *gin.Context) {
	gormDB, ok := database(c)
	if !ok {
		return
	}

	var bookings []models.TrainerBooking
	err := gormDB.Preload("User").Preload("Trainer").Order("created_at DESC").Find(&bookings).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch trainer bookings.")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func UpdateTrainerBookingStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID.")
		return
	}

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidBookingStatus(req.Status) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid status value.")
		return
	}

	userUUID, ok := currentUser(c)
	if !ok {
		return
	}
	isAdmin := c.GetBool("is_admin")

	gormDB, ok := database(c)
	if !ok {
		return
	}

	var booking models.TrainerBooking
	if err := gormDB.Preload("Trainer").First(&booking, "id = ?", bookingID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
		return
	}

	if !isAdmin && booking.UserID != userUUID {
		helpers.RespondWithError(c, http.StatusForbidden, "Not authorized to update this booking.")
		return
	}

	if !isAdmin {
		if req.Status != models.BookingCancelled {
			helpers.RespondWithError(c, http.StatusForbidden, "Users can only cancel bookings. Other status changes require admin privileges.")
			return
		}
		if !booking.Mutable() {
			helpers.RespondWithError(c, http.StatusConflict, fmt.Sprintf("Booking is already %s.", booking.Status))
			return
		}
		if booking.Status == models.BookingConfirmed {
			helpers.RespondWithError(c, http.StatusConflict, "Cannot cancel confirmed bookings. Please contact support.")
			return
		}
	}

	booking.Status = req.Status
	if isAdmin && req.Status == models.BookingCompleted && booking.PaymentStatus != models.PaymentCompleted {
		booking.PaymentStatus = models.PaymentCompleted
	}

	if err := gormDB.Omit("Trainer").Save(&booking).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update booking status.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Booking status updated to %s.", req.Status),
		"booking": booking,
	})
}

type PaymentStatusUpdateRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// UpdateTrainerBookingPayment is the admin override for payment state.
// Regular payment settlement goes through the gateway and its reconciliation
// endpoints; this path exists for cash collection at the desk.
func UpdateTrainerBookingPayment(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID.")
		return
	}

	var req PaymentStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidPaymentStatus(req.PaymentStatus) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payment status value.")
		return
	}

	gormDB, ok := database(c)
	if !ok {
		return
	}

	var booking models.TrainerBooking
	txErr := gormDB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", bookingID).Error
		if err != nil {
			return err
		}

		completedNow := req.PaymentStatus == models.PaymentCompleted &&
			booking.PaymentStatus != models.PaymentCompleted

		booking.PaymentStatus = req.PaymentStatus
		if completedNow && booking.Status == models.BookingPending {
			booking.Status = models.BookingConfirmed
		}
		if err := tx.Omit("Trainer").Save(&booking).Error; err != nil {
			return err
		}

		if completedNow {
			return creditTrainerEarnings(tx, booking.TrainerID, booking.Amount)
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update payment status.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Payment status updated to %s.", req.PaymentStatus),
		"booking": booking,
	})
}

func DeleteTrainerBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID.")
		return
	}

	userUUID, ok := currentUser(c)
	if !ok {
		return
	}
	isAdmin := c.GetBool("is_admin")

	gormDB, ok := database(c)
	if !ok {
		return
	}

	var booking models.TrainerBooking
	if err := gormDB.First(&booking, "id = ?", bookingID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
		return
	}

	isOwner := booking.UserID == userUUID
	if !isAdmin && (!isOwner || booking.Mutable()) {
		helpers.RespondWithError(c, http.StatusForbidden, "Not authorized to delete this booking or booking is not cancelled/completed.")
		return
	}

	if err := gormDB.Delete(&booking).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete booking.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully."})
}

func PurgeCancelledTrainerBookings(c *gin.Context) {
	gormDB, ok := database(c)
	if !ok {
		return
	}

	result := gormDB.Where("status = ?", models.BookingCancelled).Delete(&models.TrainerBooking{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete cancelled bookings.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d cancelled bookings deleted successfully.", result.RowsAffected),
	})
}

// creditTrainerEarnings adds to a trainer's lifetime earnings. Callers must
// ensure they are on the single transition into completed so a booking is
// never credited twice.
func creditTrainerEarnings(tx *gorm.DB, trainerID uuid.UUID, amount int) error {
	return tx.Model(&models.Trainer{}).
		Where("id = ?", trainerID).
		Update("earnings", gorm.Expr("earnings + ?", amount)).Error
}
