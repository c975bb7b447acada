package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (int64, error)
	ListBookingsByUser(ctx context.Context, userID int64, status BookingStatus) ([]*Booking, error)
	GetBookingForUser(ctx context.Context, userID, bookingID int64) (*Booking, error)
	UpdateBooking(ctx context.Context, userID, bookingID int64, mutate func(*Booking) error) (*Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID int64) error
}

const bookingColumns = `id, user_id, booking_reference, status, subtotal, tax_amount, shipping_cost,
	discount_amount, total_amount, promo_code, processing_tier, special_requests,
	booking_date, travel_date, last_modified`

const bookingItemQuery = `SELECT bi.id, bi.booking_id, bi.package_id, bi.quantity, bi.unit_price, bi.total_price,
	bi.special_requests, COALESCE(tp.name, '') AS package_name, COALESCE(tp.destination, '') AS destination,
	COALESCE(tp.duration, '') AS duration
	FROM booking_items bi
	LEFT JOIN travel_packages tp ON tp.id = bi.package_id
	WHERE bi.booking_id IN (?)
	ORDER BY bi.id`

// CreateBooking inserts the booking row and every item in one transaction. The
// transaction is rolled back on any failure, so a booking never exists without
// its items.
func (r *SQLRepo) CreateBooking(ctx context.Context, booking *Booking) (int64, error) {
	if len(booking.Items) == 0 {
		return 0, fmt.Errorf("booking has no items")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	booking.BookingDate = now
	booking.LastModified = now
	if booking.Status == "" {
		booking.Status = BookingPending
	}

	id, err := insertReturningID(ctx, tx, `INSERT INTO bookings
		(user_id, booking_reference, status, subtotal, tax_amount, shipping_cost, discount_amount,
		total_amount, promo_code, processing_tier, special_requests, booking_date, travel_date, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.UserID, booking.BookingReference, string(booking.Status), booking.Subtotal, booking.TaxAmount,
		booking.ShippingCost, booking.DiscountAmount, booking.TotalAmount, booking.PromoCode,
		booking.ProcessingTier, booking.SpecialRequests, booking.BookingDate, booking.TravelDate, booking.LastModified)
	if err != nil {
		return 0, fmt.Errorf("failed to insert booking: %w", err)
	}

	for i := range booking.Items {
		item := &booking.Items[i]
		item.BookingID = id
		itemID, err := insertReturningID(ctx, tx, `INSERT INTO booking_items
			(booking_id, package_id, quantity, unit_price, total_price, special_requests)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, item.PackageID, item.Quantity, item.UnitPrice, item.TotalPrice, item.SpecialRequests)
		if err != nil {
			return 0, fmt.Errorf("failed to insert booking item for package %d: %w", item.PackageID, err)
		}
		item.ID = itemID
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit booking: %w", err)
	}
	booking.ID = id
	booking.fillSummary()
	return id, nil
}

// ListBookingsByUser returns the user's bookings newest first. An empty status
// returns every status.
func (r *SQLRepo) ListBookingsByUser(ctx context.Context, userID int64, status BookingStatus) ([]*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ?`
	args := []interface{}{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY booking_date DESC, id DESC`

	var bookings []*Booking
	if err := r.db.SelectContext(ctx, &bookings, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	if err := loadItems(ctx, r.db, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *SQLRepo) GetBookingForUser(ctx context.Context, userID, bookingID int64) (*Booking, error) {
	b, err := getBooking(ctx, r.db, userID, bookingID, false)
	if err != nil {
		return nil, err
	}
	if err := loadItems(ctx, r.db, []*Booking{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBooking loads the booking and its items inside a transaction, hands
// them to mutate, then writes back every item quantity and total together with
// the booking's summary columns. mutate must not change item ids.
func (r *SQLRepo) UpdateBooking(ctx context.Context, userID, bookingID int64, mutate func(*Booking) error) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	b, err := getBooking(ctx, tx, userID, bookingID, true)
	if err != nil {
		return nil, err
	}
	if err := loadItems(ctx, tx, []*Booking{b}); err != nil {
		return nil, err
	}

	if err := mutate(b); err != nil {
		return nil, err
	}

	b.LastModified = time.Now().UTC()
	for _, item := range b.Items {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE booking_items SET quantity = ?, total_price = ? WHERE id = ? AND booking_id = ?`),
			item.Quantity, item.TotalPrice, item.ID, b.ID); err != nil {
			return nil, fmt.Errorf("failed to update booking item %d: %w", item.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE bookings
		SET subtotal = ?, tax_amount = ?, shipping_cost = ?, discount_amount = ?, total_amount = ?,
		promo_code = ?, last_modified = ?
		WHERE id = ?`),
		b.Subtotal, b.TaxAmount, b.ShippingCost, b.DiscountAmount, b.TotalAmount, b.PromoCode, b.LastModified, b.ID); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking update: %w", err)
	}
	b.fillSummary()
	return b, nil
}

// CancelBooking moves a pending or confirmed booking to cancelled.
func (r *SQLRepo) CancelBooking(ctx context.Context, userID, bookingID int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE bookings SET status = ?, last_modified = ?
		WHERE id = ? AND user_id = ? AND status IN (?, ?)`),
		string(BookingCancelled), time.Now().UTC(), bookingID, userID, string(BookingPending), string(BookingConfirmed))
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if err := expectAffected(res); !errors.Is(err, ErrRecordNotFound) {
		return err
	}

	// Nothing changed: either the booking is not the caller's or its status
	// no longer allows cancellation.
	if _, err := getBooking(ctx, r.db, userID, bookingID, false); err != nil {
		return err
	}
	return ErrStatusConflict
}

func getBooking(ctx context.Context, q sqlx.ExtContext, userID, bookingID int64, forUpdate bool) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? AND user_id = ?`
	if forUpdate && q.DriverName() != "sqlite" {
		query += ` FOR UPDATE`
	}

	var b Booking
	err := sqlx.GetContext(ctx, q, &b, q.Rebind(query), bookingID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// loadItems attaches items to every booking with one IN query and fills each
// booking's summary.
func loadItems(ctx context.Context, q sqlx.ExtContext, bookings []*Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	ids := make([]int64, len(bookings))
	byID := make(map[int64]*Booking, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		b.Items = []BookingItem{}
		byID[b.ID] = b
	}

	query, args, err := sqlx.In(bookingItemQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to build booking item query: %w", err)
	}

	var items []BookingItem
	if err := sqlx.SelectContext(ctx, q, &items, q.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load booking items: %w", err)
	}
	for _, item := range items {
		if b, ok := byID[item.BookingID]; ok {
			b.Items = append(b.Items, item)
		}
	}
	for _, b := range bookings {
		b.fillSummary()
	}
	return nil
}
