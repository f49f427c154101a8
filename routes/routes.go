package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kenlin2709/va/controllers"
	"github.com/kenlin2709/va/middleware"
)

// Register wires the storefront endpoints. Every route runs behind the
// session-cookie middleware; per-route auth is enforced in the services.
func Register(
	r *gin.Engine,
	cart *controllers.CartController,
	session *controllers.SessionController,
	checkout *controllers.CheckoutController,
	catalog *controllers.CatalogController,
) {
	api := r.Group("/")
	api.Use(middleware.SessionMiddleware())

	cartRoutes := api.Group("/cart")
	{
		cartRoutes.GET("", cart.GetCart)
		cartRoutes.POST("/items", cart.AddItem)
		cartRoutes.PATCH("/items/:id", cart.SetQuantity)
		cartRoutes.DELETE("/items/:id", cart.RemoveItem)
		cartRoutes.DELETE("", cart.ClearCart)
		cartRoutes.POST("/toggle", cart.ToggleDrawer)
		cartRoutes.POST("/open", cart.OpenDrawer)
		cartRoutes.POST("/close", cart.CloseDrawer)
	}

	sessionRoutes := api.Group("/session")
	{
		sessionRoutes.POST("/login", session.Login)
		sessionRoutes.POST("/register", session.Register)
		sessionRoutes.POST("/logout", session.Logout)
		sessionRoutes.GET("/me", session.Me)
		sessionRoutes.PATCH("/me", session.UpdateMe)
	}

	checkoutRoutes := api.Group("/checkout")
	{
		checkoutRoutes.GET("", checkout.State)
		checkoutRoutes.POST("/email", checkout.EmailChanged)
		checkoutRoutes.POST("/verification/send", checkout.SendCode)
		checkoutRoutes.POST("/verification/verify", checkout.VerifyCode)
		checkoutRoutes.POST("/verification/resend", checkout.ResendCode)
		checkoutRoutes.POST("/back", checkout.GoBack)
		checkoutRoutes.GET("/coupons", checkout.MyCoupons)
		checkoutRoutes.POST("/coupons", checkout.SelectCoupon)
		checkoutRoutes.DELETE("/coupons/:code", checkout.DeselectCoupon)
		checkoutRoutes.GET("/referral/:code", checkout.ValidateReferral)
		checkoutRoutes.POST("/submit", checkout.Submit)
		checkoutRoutes.DELETE("", checkout.Discard)
	}

	api.GET("/products", catalog.ListProducts)
	api.GET("/products/:id", catalog.GetProduct)
	api.GET("/orders/my", catalog.MyOrders)
	api.GET("/orders/my/:id", catalog.GetMyOrder)
}
