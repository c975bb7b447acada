package storefront

import (
	"strings"

	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/shopspring/decimal"
)

// FilterByStatus keeps bookings with the given status; "" and "all" keep
// everything.
func FilterByStatus(bookings []*models.Booking, status string) []*models.Booking {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" || status == "all" {
		return bookings
	}
	var out []*models.Booking
	for _, b := range bookings {
		if string(b.Status) == status {
			out = append(out, b)
		}
	}
	return out
}

// TotalSpent sums the totals of bookings that were not cancelled.
func TotalSpent(bookings []*models.Booking) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bookings {
		if b.Status != models.BookingCancelled {
			total = total.Add(b.TotalAmount)
		}
	}
	return total
}

func CountByStatus(bookings []*models.Booking) map[models.BookingStatus]int {
	counts := make(map[models.BookingStatus]int)
	for _, b := range bookings {
		counts[b.Status]++
	}
	return counts
}

// PackageCount is the number of booked lines across bookings.
func PackageCount(bookings []*models.Booking) int {
	n := 0
	for _, b := range bookings {
		n += len(b.Items)
	}
	return n
}
