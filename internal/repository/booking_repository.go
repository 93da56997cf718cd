package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// BookingRepo persists seat bookings.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, shift, seat_number, booking_date, booking_status, created_at, updated_at`

func scanBooking(s scanner) (model.SeatBooking, error) {
	var (
		b    model.SeatBooking
		sh   string
		date time.Time
		st   string
	)
	if err := s.Scan(&b.ID, &b.UserID, &sh, &b.SeatNumber, &date, &st, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return model.SeatBooking{}, err
	}
	b.Shift = shift.ID(sh)
	b.BookingDate = date.Format(model.DateLayout)
	b.BookingStatus = model.BookingStatus(st)
	return b, nil
}

func queryBookings(ctx context.Context, q querier, query string, args ...any) ([]model.SeatBooking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SeatBooking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByDate returns every booking row of date, the snapshot the seat
// ledger decides over.
func (r *BookingRepo) ListByDate(ctx context.Context, date string) ([]model.SeatBooking, error) {
	return queryBookings(ctx, r.db,
		`SELECT `+bookingColumns+` FROM seat_bookings WHERE booking_date = ? ORDER BY shift, seat_number`, date)
}

// ListByUser returns the user's most recent bookings first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.SeatBooking, error) {
	if limit <= 0 {
		limit = 50
	}
	return queryBookings(ctx, r.db,
		`SELECT `+bookingColumns+` FROM seat_bookings WHERE user_id = ? ORDER BY booking_date DESC, created_at DESC LIMIT ?`,
		userID, limit)
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (model.SeatBooking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM seat_bookings WHERE id = ?`, id))
	return b, notFound(err)
}

// Create inserts b after re-checking, under a lock on the (date, shift)
// rows, that neither the seat nor the user already holds a booked row.
// Both a failed re-check and a unique-key rejection return ErrConflict.
func (r *BookingRepo) Create(ctx context.Context, b model.SeatBooking) (model.SeatBooking, error) {
	if err := b.Validate(); err != nil {
		return model.SeatBooking{}, err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if b.IsBooked() {
			var clash int
			err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM seat_bookings
				 WHERE booking_date = ? AND shift = ? AND booking_status = 'booked'
				   AND (seat_number = ? OR user_id = ?)
				 FOR UPDATE`,
				b.BookingDate, string(b.Shift), b.SeatNumber, b.UserID).Scan(&clash)
			if err != nil {
				return err
			}
			if clash > 0 {
				return ErrConflict
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO seat_bookings (id, user_id, shift, seat_number, booking_date, booking_status) VALUES (?, ?, ?, ?, ?, ?)`,
			b.ID, b.UserID, string(b.Shift), b.SeatNumber, b.BookingDate, string(b.BookingStatus))
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	})
	if err != nil {
		return model.SeatBooking{}, err
	}
	return r.GetByID(ctx, b.ID)
}

// Delete removes a booking, freeing its seat.
func (r *BookingRepo) Delete(ctx context.Context, id string) error {
	return deleteBookingTx(ctx, r.db, id)
}

func deleteBookingTx(ctx context.Context, q querier, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM seat_bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func setBookingStatusTx(ctx context.Context, q querier, id string, status model.BookingStatus) error {
	_, err := q.ExecContext(ctx, `UPDATE seat_bookings SET booking_status = ? WHERE id = ?`, string(status), id)
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}
