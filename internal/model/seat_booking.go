package model

import (
	"errors"
	"time"

	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// BookingStatus is the state of a seat booking row.
type BookingStatus string

const (
	BookingBooked    BookingStatus = "booked"
	BookingAvailable BookingStatus = "available"
	BookingPending   BookingStatus = "pending"
)

// SeatBooking records a user's seat for one shift on one calendar day.
// For a given (BookingDate, Shift) at most one booked row may exist per
// SeatNumber and at most one per UserID.  Rows are kept as history; a
// booking is only removed when the admin rejects the cash payment for it.
type SeatBooking struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Shift         shift.ID      `json:"shift"`
	SeatNumber    string        `json:"seat_number"`
	BookingDate   string        `json:"booking_date"`
	BookingStatus BookingStatus `json:"booking_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsBooked reports whether the row currently occupies its seat.
func (b SeatBooking) IsBooked() bool { return b.BookingStatus == BookingBooked }

// Validate checks the fields a booking must carry before it is written.
func (b SeatBooking) Validate() error {
	if b.UserID == "" {
		return errors.New("booking: user id required")
	}
	if !shift.Valid(b.Shift) {
		return shift.ErrInvalidShift
	}
	if b.SeatNumber == "" {
		return errors.New("booking: seat number required")
	}
	if !ValidDate(b.BookingDate) {
		return errors.New("booking: invalid booking date")
	}
	switch b.BookingStatus {
	case BookingBooked, BookingAvailable, BookingPending:
	default:
		return errors.New("booking: invalid status")
	}
	return nil
}
