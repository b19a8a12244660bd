package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitzone-app/backend/internal/helpers"
	"github.com/fitzone-app/backend/internal/models"
)

type TrainerRequest struct {
	Name           string  `json:"name" binding:"required"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          string  `json:"email" binding:"required,email"`
	Specialization string  `json:"specialization" binding:"required"`
	Experience     int     `json:"experience" binding:"min=0"`
	Rate           int     `json:"rate" binding:"required,min=0"`
	WorkingStart   *int    `json:"working_start"`
	WorkingEnd     *int    `json:"working_end"`
	Bio            *string `json:"bio"`
}

func CreateTrainer(c *gin.Context) {
	var req TrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	gormDB, ok := database(c)
	if !ok {
		return
	}

	trainer := models.Trainer{
		ID:             uuid.New(),
		Name:           req.Name,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Specialization: req.Specialization,
		Experience:     req.Experience,
		Rate:           req.Rate,
		Availability:   models.TrainerAvailable,
		WorkingStart:   9,
		WorkingEnd:     17,
		Bio:            req.Bio,
	}
	if req.WorkingStart != nil {
		trainer.WorkingStart = *req.WorkingStart
	}
	if req.WorkingEnd != nil {
		trainer.WorkingEnd = *req.WorkingEnd
	}
	if trainer.WorkingStart < 0 || trainer.WorkingEnd > 24 || trainer.WorkingStart >= trainer.WorkingEnd {
		helpers.RespondWithFieldError(c, "working_hours", "Working hours must be a valid range within 0-24.")
		return
	}

	if err := gormDB.Create(&trainer).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create trainer.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Trainer created successfully.",
		"trainer": gin.H{
			"id":             trainer.ID,
			"name":           trainer.Name,
			"specialization": trainer.Specialization,
			"rate":           trainer.Rate,
		},
	})
}

func ListTrainers(c *gin.Context) {
	gormDB, ok := database(c)
	if !ok {
		return
	}

	var trainers []models.Trainer
	if err := gormDB.Find(&trainers).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch trainers.")
		return
	}

	c.JSON(http.StatusOK, trainers)
}

func GetTrainer(c *gin.Context) {
	trainerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid trainer ID.")
		return
	}

	gormDB, ok := database(c)
	if !ok {
		return
	}

	var trainer models.Trainer
	if err := gormDB.First(&trainer, "id = ?", trainerID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Trainer not found.")
		return
	}

	c.JSON(http.StatusOK, trainer)
}

func DeleteTrainer(c *gin.Context) {
	trainerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid trainer ID.")
		return
	}

	gormDB, ok := database(c)
	if !ok {
		return
	}

	var trainer models.Trainer
	if err := gormDB.First(&trainer, "id = ?", trainerID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Trainer not found.")
		return
	}

	// Bookings keep their trainer name snapshot, so history survives this.
	if err := gormDB.Delete(&trainer).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete trainer.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trainer deleted successfully."})
}

// GetTrainerAvailability returns the booked slots and an hour-by-hour
// availability map for one calendar day (today when no date is given).
func GetTrainerAvailability(c *gin.Context) {
	trainerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid trainer ID.")
		return
	}

	checkDate := time.Now().UTC()
	if dateStr := c.Query("date"); dateStr != "" {
		checkDate, err = helpers.ParseDate(dateStr)
		if err != nil {
			helpers.RespondWithFieldError(c, "date", "Invalid date, expected YYYY-MM-DD.")
			return
		}
	}
	day := models.Day(checkDate)

	gormDB, ok := database(c)
	if !ok {
		return
	}

	var trainer models.Trainer
	if err := gormDB.Preload("Slots").First(&trainer, "id = ?", trainerID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Trainer not found.")
		return
	}

	bookedSlots := make([]gin.H, 0)
	for _, slot := range trainer.Slots {
		if slot.IsBooked && models.Day(slot.Date).Equal(day) {
			bookedSlots = append(bookedSlots, gin.H{
				"start_hour": slot.StartHour,
				"end_hour":   slot.EndHour,
			})
		}
	}

	availabilityMap := make([]gin.H, 0, trainer.WorkingEnd-trainer.WorkingStart)
	for hour := trainer.WorkingStart; hour < trainer.WorkingEnd; hour++ {
		availabilityMap = append(availabilityMap, gin.H{
			"hour":      hour,
			"time":      helpers.FormatHourRange(hour, 1),
			"available": trainer.IsAvailableAt(day, hour, 1),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"trainer_id":   trainer.ID,
		"trainer_name": trainer.DisplayName(),
		"date":         day.Format("2006-01-02"),
		"working_hours": gin.H{
			"start": trainer.WorkingStart,
			"end":   trainer.WorkingEnd,
		},
		"booked_slots":         bookedSlots,
		"availability":         availabilityMap,
		"overall_availability": trainer.Availability,
	})
}
