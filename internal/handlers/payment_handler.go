package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fitzone-app/backend/internal/helpers"
	"github.com/fitzone-app/backend/internal/khalti"
	"github.com/fitzone-app/backend/internal/middleware"
	"github.com/fitzone-app/backend/internal/models"
	"github.com/fitzone-app/backend/internal/queue"
)

const (
	BookingTypeGym     = "gym"
	BookingTypeTrainer = "trainer"
)

type InitiatePaymentRequest struct {
	BookingID   uuid.UUID `json:"booking_id" binding:"required"`
	BookingType string    `json:"booking_type" binding:"required"`
	ReturnURL   string    `json:"return_url"`
}

// InitiatePayment registers the booking's amount with the gateway and stamps
// the booking initiated with the returned pidx. The amount always comes from
// the stored aggregate, never from the client.
func InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "booking_id and booking_type are required.")
		return
	}
	if req.BookingType != BookingTypeGym && req.BookingType != BookingTypeTrainer {
		helpers.RespondWithFieldError(c, "booking_type", `Invalid booking type. Must be "gym" or "trainer".`)
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

	client := middleware.GetKhaltiClient(c)
	if client == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment gateway not configured.")
		return
	}

	var (
		amount        int
		paymentStatus string
		orderName     string
	)
	var gymBooking models.GymBooking
	var trainerBooking models.TrainerBooking
	if req.BookingType == BookingTypeGym {
		if err := gormDB.Where("id = ? AND user_id = ?", req.BookingID, userUUID).First(&gymBooking).Error; err != nil {
			helpers.RespondWithError(c, http.StatusNotFound, "Gym booking not found.")
			return
		}
		amount = gymBooking.ResolveAmount()
		paymentStatus = gymBooking.PaymentStatus
		orderName = fmt.Sprintf("Gym Session: %s", gymBooking.WorkoutType)
	} else {
		if err := gormDB.Preload("Trainer").Where("id = ? AND user_id = ?", req.BookingID, userUUID).First(&trainerBooking).Error; err != nil {
			helpers.RespondWithError(c, http.StatusNotFound, "Trainer booking not found.")
			return
		}
		amount = trainerBooking.ResolveAmount()
		paymentStatus = trainerBooking.PaymentStatus
		name := trainerBooking.TrainerNameSnapshot
		if name == "" {
			name = "Trainer"
		}
		orderName = fmt.Sprintf("Trainer Session with %s", name)
	}

	if models.PaymentSettled(paymentStatus) {
		helpers.RespondWithError(c, http.StatusBadRequest, "This booking is already paid for. Please check your booking details.")
		return
	}

	var user models.User
	if err := gormDB.First(&user, "id = ?", userUUID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return
	}

	siteURL := "http://localhost:5173"
	returnURL := req.ReturnURL
	if cfg := middleware.GetKhaltiConfig(c); cfg != nil {
		siteURL = cfg.SiteURL
		if returnURL == "" {
			returnURL = cfg.ReturnURL
		}
	}
	if returnURL == "" {
		returnURL = siteURL + "/dashboard/payment-confirmation"
	}

	amountPaisa := int64(amount) * 100
	initResp, err := client.Initiate(c.Request.Context(), khalti.InitiateRequest{
		ReturnURL:         returnURL,
		WebsiteURL:        siteURL,
		Amount:            amountPaisa,
		PurchaseOrderID:   req.BookingID.String(),
		PurchaseOrderName: orderName,
		CustomerInfo: khalti.CustomerInfo{
			Name:  user.Name,
			Email: user.Email,
			Phone: user.PhoneNumber,
		},
		ProductDetails: []khalti.ProductDetail{{
			Identity:   req.BookingID.String(),
			Name:       orderName,
			TotalPrice: amountPaisa,
			Quantity:   1,
			UnitPrice:  amountPaisa,
		}},
		Metadata: map[string]string{
			"booking_type": req.BookingType,
			"user_id":      userUUID.String(),
		},
	})
	if err != nil {
		respondGatewayError(c, err, "Failed to initiate payment.")
		return
	}

	updates := map[string]interface{}{
		"payment_method": models.MethodKhalti,
		"payment_status": models.PaymentInitiated,
		"khalti_pidx":    initResp.Pidx,
	}
	// The gateway call above can take seconds, and a webhook for an earlier
	// pidx may settle the booking in that window. The stamp is conditional on
	// the payment still being unsettled so it can never regress a completed
	// or refunded payment and re-open it under a fresh pidx.
	var result *gorm.DB
	if req.BookingType == BookingTypeGym {
		result = gormDB.Model(&models.GymBooking{}).
			Where("id = ? AND payment_status NOT IN ?", req.BookingID, models.SettledPaymentStatuses).
			Updates(updates)
	} else {
		result = gormDB.Model(&models.TrainerBooking{}).
			Where("id = ? AND payment_status NOT IN ?", req.BookingID, models.SettledPaymentStatuses).
			Updates(updates)
	}
	if result.Error != nil {
		middleware.GetLogger(c).Error("payment initiation stamp failed",
			zap.String("pidx", initResp.Pidx), zap.Error(result.Error))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to record initiated payment.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "This booking is already paid for. Please check your booking details.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Payment initiated successfully.",
		"pidx":        initResp.Pidx,
		"payment_url": initResp.PaymentURL,
	})
}

type VerifyPaymentRequest struct {
	Pidx string `json:"pidx" binding:"required"`
}

// VerifyPayment asks the gateway for the pidx status and folds the answer
// into whichever booking carries the reference. The pidx space is shared, so
// both booking kinds are searched.
func VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithFieldError(c, "pidx", "pidx is required.")
		return
	}

	gormDB, ok := database(c)
	if !ok {
		return
	}
	client := middleware.GetKhaltiClient(c)
	if client == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment gateway not configured.")
		return
	}

	lookup, err := client.Lookup(c.Request.Context(), req.Pidx)
	if err != nil {
		respondGatewayError(c, err, "Payment verification failed.")
		return
	}

	if lookup.Status == models.GatewayPending {
		c.JSON(http.StatusAccepted, gin.H{
			"message": "Payment is pending.",
			"status":  lookup.Status,
		})
		return
	}

	outcome, err := reconcileByPidx(c, gormDB, req.Pidx, lookup.Status, lookup.TransactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "No booking found for this payment reference.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to record payment result.")
		return
	}

	if lookup.Status == models.GatewayCompleted {
		c.JSON(http.StatusOK, gin.H{
			"message": "Payment verified successfully.",
			"status":  lookup.Status,
			"booking": outcome.body(),
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"message": fmt.Sprintf("Payment %s.", lookup.Status),
		"status":  lookup.Status,
		"booking": outcome.body(),
	})
}

// PaymentWebhook handles asynchronous gateway notifications. It always
// acknowledges with 200 so the gateway stops retrying; internal failures are
// logged for the operator instead of surfaced.
func PaymentWebhook(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var payload khalti.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Pidx == "" {
		logger.Warn("webhook without payment identifier")
		c.String(http.StatusOK, "Missing payment identifier")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		logger.Error("webhook dropped: database connection not found", zap.String("pidx", payload.Pidx))
		c.String(http.StatusOK, "Webhook received")
		return
	}
	gormDB := db.(*gorm.DB)

	outcome, err := reconcileByPidx(c, gormDB, payload.Pidx, payload.Status, payload.TransactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("webhook for unknown pidx", zap.String("pidx", payload.Pidx))
		} else {
			logger.Error("webhook processing failed", zap.String("pidx", payload.Pidx), zap.Error(err))
		}
		c.String(http.StatusOK, "Webhook received")
		return
	}

	logger.Info("webhook reconciled",
		zap.String("pidx", payload.Pidx),
		zap.String("gateway_status", payload.Status),
		zap.String("booking_type", outcome.bookingType),
		zap.Bool("changed", outcome.transition.Changed),
	)
	c.String(http.StatusOK, "Webhook processed")
}

type DirectConfirmRequest struct {
	BookingID     uuid.UUID `json:"booking_id" binding:"required"`
	BookingType   string    `json:"booking_type"`
	TransactionID string    `json:"transaction_id"`
	Status        string    `json:"status" binding:"required"`
}

// DirectConfirmPayment trusts a caller-supplied payment status without a
// gateway lookup. It is for demo environments only and stays disabled unless
// PAYMENT_DIRECT_CONFIRM=true; production confirmations go through
// VerifyPayment or the webhook.
func DirectConfirmPayment(c *gin.Context) {
	if os.Getenv("PAYMENT_DIRECT_CONFIRM") != "true" {
		helpers.RespondWithError(c, http.StatusForbidden, "Direct payment confirmation is disabled.")
		return
	}

	var req DirectConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "booking_id and status are required.")
		return
	}

	gormDB, ok := database(c)
	if !ok {
		return
	}

	bookingType := req.BookingType
	if bookingType == "" {
		bookingType = BookingTypeGym
	}

	var outcome *reconcileOutcome
	txErr := gormDB.Transaction(func(tx *gorm.DB) error {
		var err error
		if bookingType == BookingTypeTrainer {
			outcome, err = reconcileTrainerBooking(tx, "id = ?", req.BookingID, req.Status, req.TransactionID)
		} else {
			outcome, err = reconcileGymBooking(tx, "id = ?", req.BookingID, req.Status, req.TransactionID)
		}
		return err
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment verification failed.")
		return
	}

	outcome.publish(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Payment verification successful.",
		"booking": outcome.body(),
	})
}

// GetPaymentStatus reports the payment sub-state of one of the caller's
// bookings.
func GetPaymentStatus(c *gin.Context) {
	bookingType := c.Param("bookingType")
	if bookingType != BookingTypeGym && bookingType != BookingTypeTrainer {
		helpers.RespondWithFieldError(c, "booking_type", `Invalid booking type. Must be "gym" or "trainer".`)
		return
	}
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID.")
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

	if bookingType == BookingTypeGym {
		var booking models.GymBooking
		if err := gormDB.Where("id = ? AND user_id = ?", bookingID, userUUID).First(&booking).Error; err != nil {
			helpers.RespondWithError(c, http.StatusNotFound, "Gym booking not found.")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"booking_id":     booking.ID,
			"payment_status": booking.PaymentStatus,
			"payment_method": booking.PaymentMethod,
			"transaction_id": booking.TransactionID,
			"amount":         booking.Amount,
			"booking_status": booking.Status,
		})
		return
	}

	var booking models.TrainerBooking
	if err := gormDB.Where("id = ? AND user_id = ?", bookingID, userUUID).First(&booking).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Trainer booking not found.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking_id":     booking.ID,
		"payment_status": booking.PaymentStatus,
		"payment_method": booking.PaymentMethod,
		"transaction_id": booking.TransactionID,
		"amount":         booking.Amount,
		"booking_status": booking.Status,
	})
}

type reconcileOutcome struct {
	bookingType string
	gym         *models.GymBooking
	trainer     *models.TrainerBooking
	transition  models.PaymentTransition
}

func (o *reconcileOutcome) body() interface{} {
	if o == nil {
		return nil
	}
	if o.bookingType == BookingTypeGym {
		return o.gym
	}
	return o.trainer
}

// publish emits the payment-completed notification when this outcome was the
// transition into completed.
func (o *reconcileOutcome) publish(c *gin.Context) {
	if o == nil || !o.transition.CompletedNow {
		return
	}
	event := queue.PaymentCompletedEvent{BookingType: o.bookingType}
	if o.bookingType == BookingTypeGym {
		event.BookingID = o.gym.ID.String()
		event.UserID = o.gym.UserID.String()
		event.Amount = o.gym.Amount
		if o.gym.TransactionID != nil {
			event.TransactionID = *o.gym.TransactionID
		}
	} else {
		event.BookingID = o.trainer.ID.String()
		event.UserID = o.trainer.UserID.String()
		event.Amount = o.trainer.Amount
		if o.trainer.TransactionID != nil {
			event.TransactionID = *o.trainer.TransactionID
		}
	}
	middleware.GetPublisher(c).Publish(c.Request.Context(), event)
}

// reconcileByPidx applies a gateway status to whichever booking carries the
// pidx, trying gym bookings first, then trainer bookings. The update runs
// under a row lock so duplicate deliveries (webhook plus lookup) serialize;
// the transition table then makes the second delivery a no-op, which keeps
// trainer earnings credited exactly once.
func reconcileByPidx(c *gin.Context, gormDB *gorm.DB, pidx, gatewayStatus, transactionID string) (*reconcileOutcome, error) {
	var outcome *reconcileOutcome
	txErr := gormDB.Transaction(func(tx *gorm.DB) error {
		var err error
		outcome, err = reconcileGymBooking(tx, "khalti_pidx = ?", pidx, gatewayStatus, transactionID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		outcome, err = reconcileTrainerBooking(tx, "khalti_pidx = ?", pidx, gatewayStatus, transactionID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	outcome.publish(c)
	return outcome, nil
}

func reconcileGymBooking(tx *gorm.DB, query string, arg interface{}, gatewayStatus, transactionID string) (*reconcileOutcome, error) {
	var booking models.GymBooking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where(query, arg).First(&booking).Error
	if err != nil {
		return nil, err
	}

	transition := booking.ApplyGatewayStatus(gatewayStatus, transactionID)
	if transition.Changed {
		if err := tx.Save(&booking).Error; err != nil {
			return nil, err
		}
	}
	return &reconcileOutcome{bookingType: BookingTypeGym, gym: &booking, transition: transition}, nil
}

func reconcileTrainerBooking(tx *gorm.DB, query string, arg interface{}, gatewayStatus, transactionID string) (*reconcileOutcome, error) {
	var booking models.TrainerBooking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where(query, arg).First(&booking).Error
	if err != nil {
		return nil, err
	}

	transition := booking.ApplyGatewayStatus(gatewayStatus, transactionID)
	if transition.Changed {
		if err := tx.Omit("Trainer").Save(&booking).Error; err != nil {
			return nil, err
		}
		if transition.CompletedNow {
			if err := creditTrainerEarnings(tx, booking.TrainerID, booking.Amount); err != nil {
				return nil, err
			}
		}
	}
	return &reconcileOutcome{bookingType: BookingTypeTrainer, trainer: &booking, transition: transition}, nil
}

func respondGatewayError(c *gin.Context, err error, fallback string) {
	var gatewayErr *khalti.Error
	if errors.As(err, &gatewayErr) {
		status := gatewayErr.StatusCode
		// Only client-level gateway rejections are passed through; anything
		// else becomes a bad-gateway to the caller.
		if status < 400 || status > 499 {
			status = http.StatusBadGateway
		}
		helpers.RespondWithError(c, status, gatewayErr.Detail)
		return
	}
	middleware.GetLogger(c).Error("gateway call failed", zap.Error(err))
	helpers.RespondWithError(c, http.StatusBadGateway, fallback)
}
