package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fitzone-app/backend/internal/helpers"
	"github.com/fitzone-app/backend/internal/middleware"
	"github.com/fitzone-app/backend/internal/models"
	"github.com/fitzone-app/backend/internal/store"
)

type RegisterRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var role models.Role
	if err := gormDB.Where("name = ?", models.RoleUser).First(&role).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Roles not seeded.")
		return
	}

	var existingUser models.User
	if result := gormDB.Where("email = ?", req.Email).First(&existingUser); result.Error == nil {
		helpers.RespondWithError(c, http.StatusConflict, "User already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to hash the password.")
		return
	}

	user := models.User{
		ID:          uuid.New(),
		Name:        req.Name,
		Email:       req.Email,
		Password:    string(hashedPassword),
		PhoneNumber: req.PhoneNumber,
		RoleID:      role.ID,
	}

	if err := gormDB.Create(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully."})
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Preload("Role").Where("email = ?", req.Email).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		helpers.RespondWithError(c, http.StatusInternalServerError, "JWT_SECRET not configured.")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role.Name,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role.Name,
		},
	})
}

type OTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type OTPVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// RequestOTP issues a short-lived verification code for the email and hands
// it to the notification queue for delivery. The code is never returned in
// the response.
func RequestOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithFieldError(c, "email", "A valid email is required.")
		return
	}

	otpStore := middleware.GetOTPStore(c)
	if !otpStore.Available() {
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Verification codes are temporarily unavailable.")
		return
	}

	code, err := otpStore.Issue(c.Request.Context(), req.Email)
	if err != nil {
		middleware.GetLogger(c).Error("otp issue failed", zap.Error(err))
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to issue verification code.")
		return
	}

	middleware.GetPublisher(c).Publish(c.Request.Context(), gin.H{
		"type":  "otp",
		"email": req.Email,
		"code":  code,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent."})
}

func VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Email and 6-digit code are required.")
		return
	}

	otpStore := middleware.GetOTPStore(c)
	if !otpStore.Available() {
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Verification codes are temporarily unavailable.")
		return
	}

	if err := otpStore.Verify(c.Request.Context(), req.Email, req.Code); err != nil {
		if err == store.ErrOTPMismatch {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid or expired code.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to verify code.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified."})
}
