package api

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"agentledger/internal/domain"
	"agentledger/internal/store"
	"agentledger/internal/utils"
)

// Request and Response structs
type RegisterRequest struct {
	FullName            string `json:"fullName" binding:"required"`
	Address             string `json:"address" binding:"required"`
	PhoneNumber         string `json:"phoneNumber" binding:"required"`
	GuardianPhoneNumber string `json:"guardianPhoneNumber" binding:"required"`
	PIN                 string `json:"pin" binding:"required"`
	ConfirmPIN          string `json:"confirmPin" binding:"required"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	PIN         string `json:"pin" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

var (
	phonePattern = regexp.MustCompile(`^\+234\d{10}$`)
	pinPattern   = regexp.MustCompile(`^\d{4}$`)
)

// RegisterHandler creates a worker account with zero starting balances.
func RegisterHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !phonePattern.MatchString(req.PhoneNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number must be +234 followed by 10 digits"})
			return
		}
		if !phonePattern.MatchString(req.GuardianPhoneNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Guardian phone number must be +234 followed by 10 digits"})
			return
		}
		if !pinPattern.MatchString(req.PIN) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "PIN must be exactly 4 digits"})
			return
		}
		if req.PIN != req.ConfirmPIN {
			c.JSON(http.StatusBadRequest, gin.H{"error": "PINs do not match"})
			return
		}
		ctx := c.Request.Context()
		if _, err := s.FindUserByPhone(ctx, req.PhoneNumber); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number already registered"})
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
			return
		}
		user := domain.User{
			ID:                  uuid.NewString(),
			FullName:            req.FullName,
			Address:             req.Address,
			PhoneNumber:         req.PhoneNumber,
			GuardianPhoneNumber: req.GuardianPhoneNumber,
			PIN:                 req.PIN,
			Role:                domain.RoleWorker,
			CashAtHand:          0,
			CashInBank:          0,
			CreatedAt:           time.Now().UTC().Format(time.RFC3339Nano),
		}
		if err := s.PutUser(ctx, &user); err != nil {
			logrus.WithError(err).Error("user registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "user": user})
	}
}

// LoginHandler authenticates by phone number and cleartext PIN compare
// and returns a JWT carrying the user's ID and role.
func LoginHandler(s store.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := s.FindUserByPhone(c.Request.Context(), req.PhoneNumber)
		if errors.Is(err, store.ErrAccessDenied) {
			// Store permissions misconfigured; operator must fix.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database access denied - check store permissions"})
			return
		}
		if err != nil || user.PIN != req.PIN {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid phone number or PIN"})
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: *user})
	}
}
