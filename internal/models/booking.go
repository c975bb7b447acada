package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Mutable reports whether items may still be changed or the booking cancelled.
func (s BookingStatus) Mutable() bool {
	return s == BookingPending || s == BookingConfirmed
}

type Booking struct {
	ID               int64           `db:"id" json:"id"`
	UserID           int64           `db:"user_id" json:"user_id"`
	BookingReference string          `db:"booking_reference" json:"booking_reference"`
	Status           BookingStatus   `db:"status" json:"status"`
	Subtotal         decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount        decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	ShippingCost     decimal.Decimal `db:"shipping_cost" json:"shipping_cost"`
	DiscountAmount   decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TotalAmount      decimal.Decimal `db:"total_amount" json:"total_amount"`
	PromoCode        string          `db:"promo_code" json:"promo_code"`
	ProcessingTier   string          `db:"processing_tier" json:"processing_tier"`
	SpecialRequests  string          `db:"special_requests" json:"special_requests"`
	BookingDate      time.Time       `db:"booking_date" json:"booking_date"`
	TravelDate       *time.Time      `db:"travel_date" json:"travel_date"`
	LastModified     time.Time       `db:"last_modified" json:"last_modified"`

	Items   []BookingItem   `db:"-" json:"items"`
	Summary *BookingSummary `db:"-" json:"summary,omitempty"`
}

type BookingItem struct {
	ID              int64           `db:"id" json:"id"`
	BookingID       int64           `db:"booking_id" json:"booking_id"`
	PackageID       int64           `db:"package_id" json:"package_id"`
	Quantity        int             `db:"quantity" json:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice      decimal.Decimal `db:"total_price" json:"total_price"`
	SpecialRequests string          `db:"special_requests" json:"special_requests"`

	PackageName string `db:"package_name" json:"package_name"`
	Destination string `db:"destination" json:"destination"`
	Duration    string `db:"duration" json:"duration"`
}

// BookingSummary mirrors the pricing breakdown stored on the booking row.
type BookingSummary struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	Tax            decimal.Decimal `json:"tax"`
	Shipping       decimal.Decimal `json:"shipping"`
	Total          decimal.Decimal `json:"total"`
	PromoCode      string          `json:"promo_code,omitempty"`
	ProcessingTier string          `json:"processing_tier"`
}

func (b *Booking) fillSummary() {
	if b.Items == nil {
		b.Items = []BookingItem{}
	}
	b.Summary = &BookingSummary{
		Subtotal:       b.Subtotal,
		Discount:       b.DiscountAmount,
		Tax:            b.TaxAmount,
		Shipping:       b.ShippingCost,
		Total:          b.TotalAmount,
		PromoCode:      b.PromoCode,
		ProcessingTier: b.ProcessingTier,
	}
}
