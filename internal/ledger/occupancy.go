package ledger

import (
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// SeatState is one cell of the seat map shown to a student.
type SeatState struct {
	SeatNumber string `json:"seat_number"`
	Booked     bool   `json:"booked"`
	Mine       bool   `json:"mine"`
}

// SeatMap lays out the whole pool for sh, flagging booked seats and the
// ones held by userID.
func SeatMap(snapshot []model.SeatBooking, sh shift.ID, userID string) []SeatState {
	owner := make(map[string]string)
	for _, b := range snapshot {
		if b.IsBooked() && b.Shift == sh {
			owner[b.SeatNumber] = b.UserID
		}
	}
	out := make([]SeatState, 0, PoolSize)
	for _, label := range SeatLabels() {
		uid, booked := owner[label]
		out = append(out, SeatState{
			SeatNumber: label,
			Booked:     booked,
			Mine:       booked && userID != "" && uid == userID,
		})
	}
	return out
}

// ShiftOccupancy summarizes how full a shift is.
type ShiftOccupancy struct {
	Shift      shift.ID `json:"shift"`
	Booked     int      `json:"booked"`
	Total      int      `json:"total"`
	Percentage int      `json:"percentage"`
}

// Occupancy counts booked seats per shift, in catalog order.  Percentage
// is rounded to the nearest integer.
func Occupancy(snapshot []model.SeatBooking) []ShiftOccupancy {
	counts := make(map[shift.ID]int)
	for _, b := range snapshot {
		if b.IsBooked() {
			counts[b.Shift]++
		}
	}
	out := make([]ShiftOccupancy, 0, 4)
	for _, id := range shift.IDs() {
		n := counts[id]
		out = append(out, ShiftOccupancy{
			Shift:      id,
			Booked:     n,
			Total:      PoolSize,
			Percentage: (n*100 + PoolSize/2) / PoolSize,
		})
	}
	return out
}
