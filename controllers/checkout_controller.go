package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kenlin2709/va/clients"
	"github.com/kenlin2709/va/middleware"
	"github.com/kenlin2709/va/models"
	"github.com/kenlin2709/va/services"
)

type CheckoutController struct {
	checkout  *services.CheckoutService
	referrals clients.ReferralsAPI
}

func NewCheckoutController(checkout *services.CheckoutService, referrals clients.ReferralsAPI) *CheckoutController {
	return &CheckoutController{checkout: checkout, referrals: referrals}
}

// State returns the checkout snapshot for rendering.
func (ch *CheckoutController) State(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	c.JSON(http.StatusOK, ch.checkout.State(c.Request.Context(), sessionID))
}

type emailChangedRequest struct {
	Email string `json:"email"`
}

// EmailChanged records an email-field edit and schedules the debounced
// email-exists probe.
func (ch *CheckoutController) EmailChanged(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req emailChangedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ch.checkout.EmailChanged(c.Request.Context(), sessionID, req.Email)
	c.JSON(http.StatusOK, ch.checkout.State(c.Request.Context(), sessionID))
}

// SendCode requests a verification code for the entered email.
func (ch *CheckoutController) SendCode(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	if svcErr := ch.checkout.SendCode(c.Request.Context(), sessionID); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, ch.checkout.State(c.Request.Context(), sessionID))
}

type verifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// VerifyCode exchanges the emailed code for a verification token.
func (ch *CheckoutController) VerifyCode(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if svcErr := ch.checkout.VerifyCode(c.Request.Context(), sessionID, req.Code); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, ch.checkout.State(c.Request.Context(), sessionID))
}

// ResendCode re-sends the code once the cooldown allows.
func (ch *CheckoutController) ResendCode(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	if svcErr := ch.checkout.ResendCode(c.Request.Context(), sessionID); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, ch.checkout.State(c.Request.Context(), sessionID))
}

// GoBack steps the wizard backwards.
func (ch *CheckoutController) GoBack(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	if svcErr := ch.checkout.GoBack(c.Request.Context(), sessionID); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, ch.checkout.State(c.Request.Context(), sessionID))
}

// MyCoupons lists the customer's coupons for the checkout sidebar.
func (ch *CheckoutController) MyCoupons(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	coupons, svcErr := ch.checkout.AvailableCoupons(c.Request.Context(), sessionID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, coupons)
}

type selectCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// SelectCoupon adds a coupon to the selection.
func (ch *CheckoutController) SelectCoupon(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req selectCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if svcErr := ch.checkout.SelectCoupon(c.Request.Context(), sessionID, req.Code); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, ch.checkout.State(c.Request.Context(), sessionID))
}

// DeselectCoupon removes a coupon from the selection.
func (ch *CheckoutController) DeselectCoupon(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	ch.checkout.DeselectCoupon(c.Request.Context(), sessionID, c.Param("code"))
	c.JSON(http.StatusOK, ch.checkout.State(c.Request.Context(), sessionID))
}

// ValidateReferral resolves a referral code to its discount terms.
func (ch *CheckoutController) ValidateReferral(c *gin.Context) {
	referral, err := ch.referrals.Validate(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": clients.Message(err, "Referral code not found")})
		return
	}
	c.JSON(http.StatusOK, referral)
}

// Submit places the order.
func (ch *CheckoutController) Submit(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var form models.ShippingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	order, svcErr := ch.checkout.Submit(c.Request.Context(), sessionID, form)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// Discard tears down the verification session when the checkout view is
// abandoned.
func (ch *CheckoutController) Discard(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	ch.checkout.Discard(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
