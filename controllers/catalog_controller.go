package controllers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/kenlin2709/va/clients"
	"github.com/kenlin2709/va/middleware"
	"github.com/kenlin2709/va/services"
)

// CatalogController proxies the read-only catalog and order-history
// collaborators for the storefront pages.
type CatalogController struct {
	products clients.ProductsAPI
	orders   clients.OrdersAPI
	session  *services.SessionService
}

func NewCatalogController(products clients.ProductsAPI, orders clients.OrdersAPI, session *services.SessionService) *CatalogController {
	return &CatalogController{products: products, orders: orders, session: session}
}

// ListProducts forwards the catalog query upstream.
func (cc *CatalogController) ListProducts(c *gin.Context) {
	query := url.Values{}
	for key, values := range c.Request.URL.Query() {
		for _, v := range values {
			query.Add(key, v)
		}
	}

	page, err := cc.products.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": clients.Message(err, "Failed to load products")})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetProduct returns a single catalog record.
func (cc *CatalogController) GetProduct(c *gin.Context) {
	product, err := cc.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": clients.Message(err, "Product not found")})
		return
	}
	c.JSON(http.StatusOK, product)
}

// MyOrders lists the authenticated customer's orders.
func (cc *CatalogController) MyOrders(c *gin.Context) {
	token := cc.session.Token(c.Request.Context(), middleware.GetSessionID(c))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return
	}

	orders, err := cc.orders.ListMine(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": clients.Message(err, "Failed to load orders")})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetMyOrder returns one of the customer's orders.
func (cc *CatalogController) GetMyOrder(c *gin.Context) {
	token := cc.session.Token(c.Request.Context(), middleware.GetSessionID(c))
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return
	}

	order, err := cc.orders.GetMine(c.Request.Context(), token, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": clients.Message(err, "Order not found")})
		return
	}
	c.JSON(http.StatusOK, order)
}
