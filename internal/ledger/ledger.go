// Package ledger decides seat bookings against a snapshot of the day's
// bookings.  It never performs I/O: callers load the snapshot, ask for a
// decision and persist the returned intent through a conditional write so
// that concurrent requests for the same seat cannot both succeed.
package ledger

import (
	"errors"
	"strconv"
	"strings"

	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// PoolSize is the number of seats in the library.
const PoolSize = 50

var (
	// ErrSeatTaken means another user holds the seat for that shift and date.
	ErrSeatTaken = errors.New("seat already booked for this shift")
	// ErrUserAlreadyBooked means the user already holds a seat for that
	// shift and date.
	ErrUserAlreadyBooked = errors.New("user already has a seat for this shift")
	// ErrInvalidSeat means the label is not one of S1..S50.
	ErrInvalidSeat = errors.New("invalid seat number")
)

// SeatLabels returns S1..S50 in numeric order.
func SeatLabels() []string {
	out := make([]string, PoolSize)
	for i := range out {
		out[i] = "S" + strconv.Itoa(i+1)
	}
	return out
}

// ValidSeat reports whether label is in the seat pool.  Labels are case
// sensitive and must not carry leading zeros.
func ValidSeat(label string) bool {
	if !strings.HasPrefix(label, "S") {
		return false
	}
	digits := label[1:]
	if digits == "" || digits[0] == '0' {
		return false
	}
	n, err := strconv.Atoi(digits)
	return err == nil && n >= 1 && n <= PoolSize
}

// AttemptBook decides whether userID may take seat for sh on date.  The
// user check runs first, so a user asking for a second seat in the same
// shift gets ErrUserAlreadyBooked even if that seat is also taken.  Only
// booked rows dated date count.  On success the returned booking is an
// intent: it has no id and has not been stored.
func AttemptBook(snapshot []model.SeatBooking, userID string, sh shift.ID, seat, date string) (model.SeatBooking, error) {
	if !shift.Valid(sh) {
		return model.SeatBooking{}, shift.ErrInvalidShift
	}
	if !ValidSeat(seat) {
		return model.SeatBooking{}, ErrInvalidSeat
	}
	for _, b := range snapshot {
		if b.IsBooked() && b.BookingDate == date && b.Shift == sh && b.UserID == userID {
			return model.SeatBooking{}, ErrUserAlreadyBooked
		}
	}
	for _, b := range snapshot {
		if b.IsBooked() && b.BookingDate == date && b.Shift == sh && b.SeatNumber == seat {
			return model.SeatBooking{}, ErrSeatTaken
		}
	}
	return model.SeatBooking{
		UserID:        userID,
		Shift:         sh,
		SeatNumber:    seat,
		BookingDate:   date,
		BookingStatus: model.BookingBooked,
	}, nil
}

// IsBooked reports whether seat is occupied for sh in the snapshot.
func IsBooked(snapshot []model.SeatBooking, seat string, sh shift.ID) bool {
	for _, b := range snapshot {
		if b.IsBooked() && b.Shift == sh && b.SeatNumber == seat {
			return true
		}
	}
	return false
}

// IsOwnedBy reports whether userID occupies seat for sh in the snapshot.
func IsOwnedBy(snapshot []model.SeatBooking, seat string, sh shift.ID, userID string) bool {
	for _, b := range snapshot {
		if b.IsBooked() && b.Shift == sh && b.SeatNumber == seat && b.UserID == userID {
			return true
		}
	}
	return false
}
