package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/travelease/internal/container"
	"github.com/joshua-takyi/travelease/internal/handlers"
	"github.com/joshua-takyi/travelease/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container, allowOrigins []string) *gin.Engine {
	// Set Gin mode for production
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(middleware.CORS(allowOrigins))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/health", handlers.Health(container.SQLRepo))

		// public routes
		api.GET("/packages", handlers.ListPackages(container.CatalogService))
		api.GET("/packages/search", handlers.SearchPackages(container.CatalogService))
		api.GET("/packages/:id", handlers.GetPackage(container.CatalogService))

		api.POST("/auth/register", handlers.Register(container.UserService))
		api.POST("/auth/login", handlers.Login(container.UserService))

		api.POST("/pricing/quote", handlers.Quote(container.CatalogService))
		api.GET("/pricing/options", handlers.ProcessingOptions(container.CatalogService))
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(container.Tokens, container.Logger))

	userRoutes := protected.Group("/user")
	{
		userRoutes.GET("/profile", handlers.GetProfile(container.UserService))
		userRoutes.PUT("/profile", handlers.UpdateProfile(container.UserService))
		userRoutes.PUT("/password", handlers.ChangePassword(container.UserService))
	}

	authRoutes := protected.Group("/auth")
	{
		authRoutes.GET("/me", handlers.GetProfile(container.UserService))
		authRoutes.PUT("/profile", handlers.UpdateProfile(container.UserService))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.GET("", handlers.ListBookings(container.BookingService))
		bookingRoutes.POST("", handlers.CreateBooking(container.BookingService, container.Logger))
		bookingRoutes.GET("/:id", handlers.GetBooking(container.BookingService))
		bookingRoutes.PUT("/:id", handlers.UpdateBooking(container.BookingService))
		bookingRoutes.DELETE("/:id", handlers.CancelBooking(container.BookingService))
		bookingRoutes.GET("/:id/receipt", handlers.BookingReceipt(container.BookingService))
	}

	if container.CartService != nil {
		cartRoutes := protected.Group("/cart")
		{
			cartRoutes.GET("", handlers.GetCart(container.CartService))
			cartRoutes.PUT("", handlers.SaveCart(container.CartService))
			cartRoutes.DELETE("", handlers.ClearCart(container.CartService))
		}
	}

	return r
}
