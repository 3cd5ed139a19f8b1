package routes

import (
	"time"

	"servora/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates every handler the router needs.
type HandlerBundle struct {
	Discovery *handlers.DiscoveryHandler
	Booking   *handlers.BookingHandler
	User      *handlers.UserHandler
	Listing   *handlers.ListingHandler
	Invoice   *handlers.InvoiceHandler
	Admin     *handlers.AdminHandler
}

// RegisterRoutes wires the route groups with the assembled handler bundle.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	search := r.Group("/api/search")
	{
		search.POST("/services", hb.Discovery.SearchServices)
		search.POST("/users", hb.Discovery.SearchUsers)
	}

	bookings := r.Group("/api/bookings")
	{
		bookings.POST("", hb.Booking.Create)
		bookings.GET("", hb.Booking.List)
		bookings.POST("/:id/start", hb.Booking.Start)
		bookings.POST("/:id/verify-otp", hb.Booking.VerifyOTP)
		bookings.POST("/:id/complete", hb.Booking.Complete)
		bookings.POST("/:id/cancel", hb.Booking.Cancel)
	}

	services := r.Group("/api/services")
	{
		services.POST("", hb.Listing.Create)
		services.PATCH("/:id", hb.Listing.Update)
		services.DELETE("/:id", hb.Listing.Delete)
	}

	users := r.Group("/api/users")
	{
		users.PUT("/location", hb.User.UpdateLocation)
	}

	invoices := r.Group("/api/invoices")
	{
		invoices.GET("", hb.Invoice.List)
		invoices.POST("/:id/pay", hb.Invoice.Pay)
	}

	r.GET("/api/categories", hb.Admin.ListCategories)

	// Admin endpoints; the upstream gateway enforces the admin role.
	admin := r.Group("/api/admin")
	{
		admin.GET("/commission", hb.Admin.GetCommission)
		admin.PUT("/commission", hb.Admin.SetCommission)
		admin.GET("/cancellation-policy", hb.Admin.GetCancellationPolicy)
		admin.PUT("/cancellation-policy", hb.Admin.SetCancellationPolicy)
		admin.POST("/categories", hb.Admin.CreateCategory)
		admin.POST("/violations/flag", hb.Admin.FlagViolation)
		admin.POST("/invoices/:id/appeal", hb.Admin.ReviewAppeal)
		admin.POST("/services/:id/approve-delete", hb.Admin.ApproveDelete)
	}
}
