package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kenlin2709/va/middleware"
	"github.com/kenlin2709/va/models"
	"github.com/kenlin2709/va/services"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

// GetCart returns the cart with derived count and subtotal.
func (cc *CartController) GetCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	c.JSON(http.StatusOK, cc.cart.Snapshot(c.Request.Context(), sessionID))
}

type addItemRequest struct {
	ID       string  `json:"id" binding:"required"`
	Title    string  `json:"title" binding:"required"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
	Qty      int     `json:"qty"`
}

// AddItem merges an item into the cart.
func (cc *CartController) AddItem(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	item := models.CartLine{
		ID:       req.ID,
		Title:    req.Title,
		Price:    req.Price,
		ImageURL: req.ImageURL,
	}
	cc.cart.Add(c.Request.Context(), sessionID, item, req.Qty)
	c.JSON(http.StatusOK, cc.cart.Snapshot(c.Request.Context(), sessionID))
}

type setQuantityRequest struct {
	Qty int `json:"qty" binding:"required"`
}

// SetQuantity updates a line's quantity.
func (cc *CartController) SetQuantity(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cc.cart.SetQuantity(c.Request.Context(), sessionID, c.Param("id"), req.Qty)
	c.JSON(http.StatusOK, cc.cart.Snapshot(c.Request.Context(), sessionID))
}

// RemoveItem deletes a line.
func (cc *CartController) RemoveItem(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	cc.cart.Remove(c.Request.Context(), sessionID, c.Param("id"))
	c.JSON(http.StatusOK, cc.cart.Snapshot(c.Request.Context(), sessionID))
}

// ClearCart empties the cart.
func (cc *CartController) ClearCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	cc.cart.Clear(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, cc.cart.Snapshot(c.Request.Context(), sessionID))
}

// ToggleDrawer flips the cart drawer flag.
func (cc *CartController) ToggleDrawer(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	cc.cart.Toggle(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, cc.cart.Snapshot(c.Request.Context(), sessionID))
}

// OpenDrawer marks the cart drawer open.
func (cc *CartController) OpenDrawer(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	cc.cart.Open(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, cc.cart.Snapshot(c.Request.Context(), sessionID))
}

// CloseDrawer marks the cart drawer closed.
func (cc *CartController) CloseDrawer(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	cc.cart.Close(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, cc.cart.Snapshot(c.Request.Context(), sessionID))
}
