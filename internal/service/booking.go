package service

import (
	"context"
	"errors"

	"github.com/iliyamo/library-seat-booking/internal/ledger"
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/queue"
	"github.com/iliyamo/library-seat-booking/internal/repository"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// BookingService books seats through the seat ledger.
type BookingService struct {
	d Deps
}

func NewBookingService(d Deps) *BookingService { return &BookingService{d: d.withDefaults()} }

// BookSeatInput is a seat request.  An empty Date means today.
type BookSeatInput struct {
	Shift      string
	SeatNumber string
	Date       string
}

// BookSeat books a seat for userID.  The ledger decides over the day's
// snapshot; if the conditional insert loses a race the snapshot is read
// again and the decision repeated once.
func (s *BookingService) BookSeat(ctx context.Context, userID string, in BookSeatInput) (model.SeatBooking, error) {
	sh, err := shift.Parse(in.Shift)
	if err != nil {
		return model.SeatBooking{}, err
	}
	now := s.d.Clock.Now()
	date, err := resolveDate(in.Date, s.d.Clock)
	if err != nil {
		return model.SeatBooking{}, err
	}
	if date < model.DateOf(now) {
		return model.SeatBooking{}, ErrInvalidDate
	}
	if err := s.d.requireEligible(ctx, userID, sh, now); err != nil {
		return model.SeatBooking{}, err
	}

	var created model.SeatBooking
	for attempt := 0; ; attempt++ {
		snapshot, err := s.d.Bookings.ListByDate(ctx, date)
		if err != nil {
			return model.SeatBooking{}, err
		}
		intent, err := ledger.AttemptBook(snapshot, userID, sh, in.SeatNumber, date)
		if err != nil {
			s.d.Metrics.BookingAttempt(string(sh), bookingResult(err))
			return model.SeatBooking{}, err
		}
		created, err = s.d.Bookings.Create(ctx, intent)
		if errors.Is(err, repository.ErrConflict) && attempt == 0 {
			s.d.Log.Debug("seat booking lost a race, retrying", "date", date, "shift", sh, "seat", in.SeatNumber)
			continue
		}
		if err != nil {
			s.d.Metrics.BookingAttempt(string(sh), bookingResult(err))
			return model.SeatBooking{}, err
		}
		break
	}

	s.d.Metrics.BookingAttempt(string(sh), "ok")
	s.d.publish(ctx, queue.TypeSeatBooked, queue.SeatBookedEvent{
		BookingID:   created.ID,
		UserID:      created.UserID,
		Shift:       string(created.Shift),
		SeatNumber:  created.SeatNumber,
		BookingDate: created.BookingDate,
	})
	return created, nil
}

func bookingResult(err error) string {
	switch {
	case errors.Is(err, ledger.ErrSeatTaken):
		return "seat_taken"
	case errors.Is(err, ledger.ErrUserAlreadyBooked):
		return "user_already_booked"
	case errors.Is(err, repository.ErrConflict):
		return "conflict"
	case errors.Is(err, ledger.ErrInvalidSeat), errors.Is(err, shift.ErrInvalidShift):
		return "invalid"
	}
	return "error"
}

// SeatMapView is the seat grid of one shift on one date.
type SeatMapView struct {
	Date      string                `json:"date"`
	Shift     shift.ID              `json:"shift"`
	Seats     []ledger.SeatState    `json:"seats"`
	Occupancy ledger.ShiftOccupancy `json:"occupancy"`
}

// SeatMap lists S1..S50 for (date, shift) flagged booked and mine.
func (s *BookingService) SeatMap(ctx context.Context, userID, rawShift, rawDate string) (SeatMapView, error) {
	sh, err := shift.Parse(rawShift)
	if err != nil {
		return SeatMapView{}, err
	}
	date, err := resolveDate(rawDate, s.d.Clock)
	if err != nil {
		return SeatMapView{}, err
	}
	snapshot, err := s.d.Bookings.ListByDate(ctx, date)
	if err != nil {
		return SeatMapView{}, err
	}
	view := SeatMapView{Date: date, Shift: sh, Seats: ledger.SeatMap(snapshot, sh, userID)}
	for _, o := range ledger.Occupancy(snapshot) {
		if o.Shift == sh {
			view.Occupancy = o
		}
	}
	return view, nil
}

// MyBookings returns the user's latest bookings.
func (s *BookingService) MyBookings(ctx context.Context, userID string) ([]model.SeatBooking, error) {
	return s.d.Bookings.ListByUser(ctx, userID, 50)
}
