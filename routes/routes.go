package routes

import (
	"indastreet/handlers"
	"indastreet/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every endpoint onto the router.
func RegisterRoutes(r *gin.Engine, auth *handlers.AuthHandler, bookings *handlers.BookingHandler, providers *handlers.ProviderHandler) {
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/user/signup", auth.UserSignup)
		authGroup.POST("/user/signin", auth.UserSignin)
		authGroup.POST("/provider/signup", auth.ProviderSignup)
		authGroup.POST("/provider/signin", auth.ProviderSignin)
	}

	bookingGroup := api.Group("/bookings")
	{
		bookingGroup.POST("", middleware.JWTAuthMiddleware("user"), bookings.CreateBooking)
		bookingGroup.POST("/:id/response", middleware.JWTAuthMiddleware("provider"), bookings.RecordResponse)
		bookingGroup.POST("/:id/cancel", middleware.JWTAuthMiddleware(""), bookings.CancelBooking)
		bookingGroup.POST("/:id/complete", middleware.JWTAuthMiddleware("provider"), bookings.CompleteBooking)
		bookingGroup.GET("", middleware.JWTAuthMiddleware(""), bookings.ListBookings)
		bookingGroup.GET("/:id", middleware.JWTAuthMiddleware(""), bookings.GetBooking)
		bookingGroup.GET("/:id/messages", middleware.JWTAuthMiddleware(""), bookings.ListMessages)
		bookingGroup.POST("/:id/messages", middleware.JWTAuthMiddleware(""), bookings.PostMessage)
	}

	providerGroup := api.Group("/providers")
	{
		providerGroup.GET("/nearby", providers.NearbyProviders)
		providerGroup.GET("/me", middleware.JWTAuthMiddleware("provider"), providers.GetProfile)
		providerGroup.PUT("/me/device", middleware.JWTAuthMiddleware("provider"), providers.SetDeviceToken)
		providerGroup.PUT("/me/active", middleware.JWTAuthMiddleware("provider"), providers.SetActive)
	}
}
