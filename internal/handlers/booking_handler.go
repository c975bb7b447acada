package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/travelease/internal/middleware"
	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/joshua-takyi/travelease/internal/services"
)

func ListBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		bookings, err := b.ListBookings(c.Request.Context(), userID, c.Query("status"))
		if err != nil {
			respondError(c, err)
			return
		}
		if bookings == nil {
			bookings = []*models.Booking{}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
	}
}

func GetBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id", "booking")
		if !ok {
			return
		}

		booking, err := b.GetBooking(c.Request.Context(), userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
	}
}

// CreateBooking stores a booking priced on the server. Client totals that
// disagree are logged and otherwise ignored.
func CreateBooking(b *services.BookingService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var req services.CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		res, err := b.CreateBooking(c.Request.Context(), userID, req)
		if err != nil {
			respondError(c, err)
			return
		}

		if res.SummaryMismatch {
			logger.Warn("Client booking summary differs from server pricing",
				"request_id", c.GetString(middleware.RequestIDKey),
				"booking_id", res.Booking.ID,
				"client_total", req.Summary.Total.String(),
				"server_total", res.Summary.Total.String(),
			)
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":   true,
			"message":   "Booking created successfully",
			"bookingId": res.Booking.ID,
			"reference": res.Booking.BookingReference,
			"summary":   res.Summary,
		})
	}
}

func UpdateBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id", "booking")
		if !ok {
			return
		}

		var req services.UpdateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		booking, err := b.UpdateBooking(c.Request.Context(), userID, id, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Booking updated successfully",
			"booking": booking,
		})
	}
}

func CancelBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id", "booking")
		if !ok {
			return
		}

		if err := b.CancelBooking(c.Request.Context(), userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse("Booking cancelled successfully"))
	}
}

func BookingReceipt(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id", "booking")
		if !ok {
			return
		}

		booking, pdf, err := b.Receipt(c.Request.Context(), userID, id)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", booking.BookingReference+".pdf"))
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}
