package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitzone-app/backend/internal/helpers"
	"github.com/fitzone-app/backend/internal/middleware"
	"github.com/fitzone-app/backend/internal/models"
	"github.com/fitzone-app/backend/internal/queue"
)

type GymBookingRequest struct {
	BookingDate string `json:"booking_date" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	Duration    int    `json:"duration" binding:"required,min=1"`
	WorkoutType string `json:"workout_type" binding:"required"`
	Payment     *struct {
		Method string `json:"method"`
	} `json:"payment"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

func CreateGymBooking(c *gin.Context) {
	var req GymBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required booking information.")
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

	bookingDate, err := helpers.ParseDate(req.BookingDate)
	if err != nil {
		helpers.RespondWithFieldError(c, "booking_date", "Invalid booking date.")
		return
	}
	if _, err := helpers.ParseClock(req.StartTime); err != nil {
		helpers.RespondWithFieldError(c, "start_time", "Invalid start time, expected HH:MM.")
		return
	}
	if _, err := helpers.ParseClock(req.EndTime); err != nil {
		helpers.RespondWithFieldError(c, "end_time", "Invalid end time, expected HH:MM.")
		return
	}

	pricing := models.PricingFor(req.WorkoutType)
	amount := pricing.BaseRate * req.Duration

	// A user may not hold two non-cancelled bookings of the same workout
	// type with overlapping times on the same day.
	dayStart, dayEnd := helpers.DayBounds(bookingDate)
	var sameDay []models.GymBooking
	err = gormDB.
		Where("user_id = ? AND workout_type = ? AND status <> ?", userUUID, req.WorkoutType, models.BookingCancelled).
		Where("booking_date >= ? AND booking_date < ?", dayStart, dayEnd).
		Find(&sameDay).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to check existing bookings.")
		return
	}
	for _, existing := range sameDay {
		overlap, err := helpers.ClockRangesOverlap(req.StartTime, req.EndTime, existing.StartTime, existing.EndTime)
		if err != nil {
			continue
		}
		if overlap {
			helpers.RespondWithError(c, http.StatusConflict, fmt.Sprintf(
				"You already have a %s booking during this time (%s - %s).",
				existing.WorkoutType, existing.StartTime, existing.EndTime,
			))
			return
		}
	}

	method := models.MethodCash
	if req.Payment != nil && req.Payment.Method != "" {
		method = req.Payment.Method
	}

	// Status and payment status always start pending, whatever the method.
	booking := models.GymBooking{
		ID:            uuid.New(),
		UserID:        userUUID,
		BookingDate:   bookingDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Duration:      req.Duration,
		WorkoutType:   req.WorkoutType,
		Amount:        amount,
		PaymentMethod: method,
		PaymentStatus: models.PaymentPending,
		Status:        models.BookingPending,
	}

	if err := gormDB.Create(&booking).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create gym booking.")
		return
	}

	middleware.GetPublisher(c).Publish(c.Request.Context(), queue.BookingCreatedEvent{
		BookingID:   booking.ID.String(),
		BookingType: "gym",
		UserID:      userUUID.String(),
		Description: fmt.Sprintf("%s session", booking.WorkoutType),
		Date:        booking.BookingDate.Format("2006-01-02"),
		Amount:      booking.Amount,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("%s session booked successfully.", booking.WorkoutType),
		"booking": booking,
		"pricing": gin.H{
			"base_rate": pricing.BaseRate,
			"capacity":  pricing.Capacity,
		},
	})
}

func ListUserGymBookings(c *gin.Context) {
	userUUID, ok := currentUser(c)
	if !ok {
		return
	}
	gormDB, ok := database(c)
	if !ok {
		return
	}

	var bookings []models.GymBooking
	if err := gormDB.Where("user_id = ?", userUUID).Order("created_at DESC").Find(&bookings).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch bookings.")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func ListAllGymBookings(c *gin.Context) {
	gormDB, ok := database(c)
	if !ok {
		return
	}

	var bookings []models.GymBooking
	if err := gormDB.Preload("User").Order("created_at DESC").Find(&bookings).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch bookings.")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func UpdateGymBookingStatus(c *gin.Context) {
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

	var booking models.GymBooking
	if err := gormDB.First(&booking, "id = ?", bookingID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
		return
	}

	if !isAdmin && booking.UserID != userUUID {
		helpers.RespondWithError(c, http.StatusForbidden, "Not authorized to update this booking.")
		return
	}

	// Owners can only cancel pending bookings; everything else is admin.
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

	if err := gormDB.Save(&booking).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update booking status.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Booking status updated to %s.", req.Status),
		"booking": booking,
	})
}

func DeleteGymBooking(c *gin.Context) {
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

	var booking models.GymBooking
	if err := gormDB.First(&booking, "id = ?", bookingID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
		return
	}

	// Admins delete anything; owners only their own finished bookings.
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

func PurgeCancelledGymBookings(c *gin.Context) {
	gormDB, ok := database(c)
	if !ok {
		return
	}

	result := gormDB.Where("status = ?", models.BookingCancelled).Delete(&models.GymBooking{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete cancelled bookings.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d cancelled bookings deleted successfully.", result.RowsAffected),
	})
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return uuid.Nil, false
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID type.")
		return uuid.Nil, false
	}
	return userUUID, true
}

func database(c *gin.Context) (*gorm.DB, bool) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return nil, false
	}
	return db.(*gorm.DB), true
}
