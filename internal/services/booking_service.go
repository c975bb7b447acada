package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joshua-takyi/travelease/internal/helpers"
	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/joshua-takyi/travelease/internal/pricing"
	"github.com/joshua-takyi/travelease/internal/receipt"
	"github.com/shopspring/decimal"
)

const maxSpecialRequests = 1000

type BookingService struct {
	bookingRepo models.BookingRepo
	packageRepo models.PackageRepo
	userRepo    models.UserRepo
	now         func() time.Time
}

func NewBookingService(bookingRepo models.BookingRepo, packageRepo models.PackageRepo, userRepo models.UserRepo) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		packageRepo: packageRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// ClientSummary is the totals the client displayed at checkout. It is never
// stored; it is only compared with the server's figures.
type ClientSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

func (c *ClientSummary) matches(s pricing.Summary) bool {
	return s.Equal(pricing.Summary{
		Subtotal: c.Subtotal,
		Discount: c.Discount,
		Tax:      c.Tax,
		Shipping: c.Shipping,
		Total:    c.Total,
	})
}

type CreateBookingRequest struct {
	Items           []ItemRequest  `json:"items"`
	PromoCode       string         `json:"promoCode"`
	Processing      string         `json:"processing"`
	SpecialRequests string         `json:"specialRequests"`
	TravelDate      string         `json:"travelDate"`
	Summary         *ClientSummary `json:"summary"`
}

type CreateBookingResult struct {
	Booking *models.Booking
	Summary pricing.Summary
	// SummaryMismatch is true when the client sent totals that differ from
	// the server's.
	SummaryMismatch bool
}

// parseTravelDate accepts YYYY-MM-DD or RFC 3339 and returns the calendar date
// at midnight UTC. Past dates are rejected.
func (bs *BookingService) parseTravelDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, validationf("travelDate must be YYYY-MM-DD")
		}
	}
	// Compare calendar days in the caller's own offset and keep only the date.
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ty, tm, td := bs.now().In(t.Location()).Date()
	if date.Before(time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)) {
		return nil, validationf("travelDate cannot be in the past")
	}
	return &date, nil
}

// CreateBooking prices the items from the catalog and stores the booking and
// its items atomically. The client's summary does not influence the result.
func (bs *BookingService) CreateBooking(ctx context.Context, userID int64, req CreateBookingRequest) (*CreateBookingResult, error) {
	special := strings.TrimSpace(req.SpecialRequests)
	if len(special) > maxSpecialRequests {
		return nil, validationf("specialRequests must be at most %d characters", maxSpecialRequests)
	}
	travelDate, err := bs.parseTravelDate(req.TravelDate)
	if err != nil {
		return nil, err
	}

	lines, err := priceItems(ctx, bs.packageRepo, req.Items)
	if err != nil {
		return nil, err
	}
	summary, _, err := resolvePricing(pricingLines(lines), req.Processing, req.PromoCode, true)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		UserID:           userID,
		BookingReference: helpers.GenerateBookingReference(),
		Status:           models.BookingPending,
		Subtotal:         summary.Subtotal,
		TaxAmount:        summary.Tax,
		ShippingCost:     summary.Shipping,
		DiscountAmount:   summary.Discount,
		TotalAmount:      summary.Total,
		PromoCode:        summary.PromoCode,
		ProcessingTier:   summary.ProcessingTier,
		SpecialRequests:  special,
		TravelDate:       travelDate,
		Items:            make([]models.BookingItem, 0, len(lines)),
	}
	for _, l := range lines {
		booking.Items = append(booking.Items, models.BookingItem{
			PackageID:       l.pkg.ID,
			Quantity:        l.quantity,
			UnitPrice:       l.pkg.Price,
			TotalPrice:      l.pkg.Price.Mul(decimal.NewFromInt(int64(l.quantity))),
			SpecialRequests: l.specialRequests,
			PackageName:     l.pkg.Name,
			Destination:     l.pkg.Destination,
			Duration:        l.pkg.Duration,
		})
	}

	if _, err := bs.bookingRepo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	return &CreateBookingResult{
		Booking:         booking,
		Summary:         summary,
		SummaryMismatch: req.Summary != nil && !req.Summary.matches(summary),
	}, nil
}

func (bs *BookingService) ListBookings(ctx context.Context, userID int64, status string) ([]*models.Booking, error) {
	st := models.BookingStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && st != "all" && !st.Valid() {
		return nil, validationf("status must be one of pending, confirmed, cancelled, completed")
	}
	if st == "all" {
		st = ""
	}
	return bs.bookingRepo.ListBookingsByUser(ctx, userID, st)
}

func mapBookingErr(err error) error {
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		return fmt.Errorf("%w: booking not found", ErrNotFound)
	case errors.Is(err, models.ErrStatusConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func (bs *BookingService) GetBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	if bookingID <= 0 {
		return nil, validationf("invalid booking id")
	}
	b, err := bs.bookingRepo.GetBookingForUser(ctx, userID, bookingID)
	if err != nil {
		return nil, mapBookingErr(err)
	}
	return b, nil
}

type UpdateBookingRequest struct {
	Items []ItemRequest `json:"items"`
}

// UpdateBooking changes quantities of packages already on the booking and
// recomputes every item total and the booking summary from the stored unit
// prices, promo code and processing tier.
func (bs *BookingService) UpdateBooking(ctx context.Context, userID, bookingID int64, req UpdateBookingRequest) (*models.Booking, error) {
	if bookingID <= 0 {
		return nil, validationf("invalid booking id")
	}
	changes, err := mergeItems(req.Items)
	if err != nil {
		return nil, err
	}

	b, err := bs.bookingRepo.UpdateBooking(ctx, userID, bookingID, func(b *models.Booking) error {
		if !b.Status.Mutable() {
			return fmt.Errorf("%w: %s bookings cannot be changed", models.ErrStatusConflict, b.Status)
		}

		byPackage := make(map[int64]int, len(b.Items))
		for i, it := range b.Items {
			byPackage[it.PackageID] = i
		}
		for _, c := range changes {
			i, ok := byPackage[c.PackageID]
			if !ok {
				return validationf("package %d is not part of this booking", c.PackageID)
			}
			b.Items[i].Quantity = c.Quantity
		}

		lines := make([]pricing.Line, len(b.Items))
		for i := range b.Items {
			it := &b.Items[i]
			it.TotalPrice = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			lines[i] = pricing.Line{Price: it.UnitPrice, Quantity: it.Quantity}
		}

		tier, err := pricing.LookupTier(b.ProcessingTier)
		if err != nil {
			return fmt.Errorf("stored processing tier %q: %w", b.ProcessingTier, err)
		}
		// A stored promo whose minimum is no longer met is dropped.
		subtotal := pricing.Calculate(lines, tier, nil).Subtotal
		promo, err := pricing.ApplyPromo(b.PromoCode, subtotal)
		if err != nil {
			promo = nil
		}
		s := pricing.Calculate(lines, tier, promo)

		b.Subtotal = s.Subtotal
		b.DiscountAmount = s.Discount
		b.TaxAmount = s.Tax
		b.ShippingCost = s.Shipping
		b.TotalAmount = s.Total
		b.PromoCode = s.PromoCode
		return nil
	})
	if err != nil {
		return nil, mapBookingErr(err)
	}
	return b, nil
}

func (bs *BookingService) CancelBooking(ctx context.Context, userID, bookingID int64) error {
	if bookingID <= 0 {
		return validationf("invalid booking id")
	}
	if err := bs.bookingRepo.CancelBooking(ctx, userID, bookingID); err != nil {
		return mapBookingErr(err)
	}
	return nil
}

// Receipt renders the booking as a PDF for its owner.
func (bs *BookingService) Receipt(ctx context.Context, userID, bookingID int64) (*models.Booking, []byte, error) {
	b, err := bs.GetBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, nil, err
	}

	var customer receipt.Customer
	user, err := bs.userRepo.GetUserByID(ctx, userID)
	switch {
	case err == nil:
		customer = receipt.Customer{Name: user.FirstName + " " + user.LastName, Email: user.Email}
	case !errors.Is(err, models.ErrRecordNotFound):
		return nil, nil, err
	}

	pdf, err := receipt.Render(b, customer)
	if err != nil {
		return nil, nil, err
	}
	return b, pdf, nil
}
