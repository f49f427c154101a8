package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kenlin2709/va/middleware"
	"github.com/kenlin2709/va/models"
	"github.com/kenlin2709/va/services"
)

type SessionController struct {
	session *services.SessionService
}

func NewSessionController(session *services.SessionService) *SessionController {
	return &SessionController{session: session}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates the session against the auth backend.
func (sc *SessionController) Login(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	customer, svcErr := sc.session.Login(c.Request.Context(), sessionID, req.Email, req.Password)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// Register creates an account and establishes the session.
func (sc *SessionController) Register(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	customer, svcErr := sc.session.Register(c.Request.Context(), sessionID, req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

// Me hydrates and returns the current identity. An invalid token logs the
// session out and reports unauthenticated rather than erroring.
func (sc *SessionController) Me(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	customer := sc.session.HydrateCustomer(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": sc.session.IsAuthenticated(c.Request.Context(), sessionID),
		"customer":      customer,
	})
}

// UpdateMe patches the customer profile.
func (sc *SessionController) UpdateMe(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	customer, svcErr := sc.session.UpdateProfile(c.Request.Context(), sessionID, req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// Logout clears the session.
func (sc *SessionController) Logout(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	sc.session.Logout(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// respondError translates a ServiceError into the JSON error shape. Conflict
// errors tagged login_required carry the action hint for the storefront.
func respondError(c *gin.Context, svcErr *services.ServiceError) {
	body := gin.H{"error": svcErr.Message}
	if svcErr.Reason != "" {
		body["reason"] = svcErr.Reason
	}
	c.JSON(svcErr.StatusCode, body)
}
