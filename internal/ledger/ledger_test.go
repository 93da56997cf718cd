package ledger

import (
	"errors"
	"testing"

	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

const day = "2026-03-14"

func book(t *testing.T, snapshot []model.SeatBooking, user string, sh shift.ID, seat string) []model.SeatBooking {
	t.Helper()
	b, err := AttemptBook(snapshot, user, sh, seat, day)
	if err != nil {
		t.Fatalf("AttemptBook(%s, %s, %s) unexpected error: %v", user, sh, seat, err)
	}
	return append(snapshot, b)
}

func TestSeatLabels(t *testing.T) {
	labels := SeatLabels()
	if len(labels) != 50 || labels[0] != "S1" || labels[9] != "S10" || labels[49] != "S50" {
		t.Fatalf("unexpected labels: %v", labels)
	}
}

func TestValidSeat(t *testing.T) {
	for _, ok := range []string{"S1", "S25", "S50"} {
		if !ValidSeat(ok) {
			t.Errorf("ValidSeat(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "S", "S0", "S51", "S05", "s5", "A5", "S-1"} {
		if ValidSeat(bad) {
			t.Errorf("ValidSeat(%q) = true", bad)
		}
	}
}

func TestAttemptBookSequence(t *testing.T) {
	snap := book(t, nil, "U1", shift.Morning, "S5")

	// Same user, same seat, different shift is allowed.
	snap = book(t, snap, "U1", shift.Noon, "S5")

	if _, err := AttemptBook(snap, "U2", shift.Morning, "S5", day); !errors.Is(err, ErrSeatTaken) {
		t.Fatalf("want ErrSeatTaken, got %v", err)
	}
	if _, err := AttemptBook(snap, "U1", shift.Morning, "S6", day); !errors.Is(err, ErrUserAlreadyBooked) {
		t.Fatalf("want ErrUserAlreadyBooked, got %v", err)
	}
}

func TestAttemptBookUserCheckWins(t *testing.T) {
	snap := book(t, nil, "U1", shift.Evening, "S1")
	snap = book(t, snap, "U2", shift.Evening, "S2")
	if _, err := AttemptBook(snap, "U1", shift.Evening, "S2", day); !errors.Is(err, ErrUserAlreadyBooked) {
		t.Fatalf("want ErrUserAlreadyBooked, got %v", err)
	}
}

func TestAttemptBookIgnoresOtherDatesAndStatuses(t *testing.T) {
	snap := []model.SeatBooking{
		{UserID: "U2", Shift: shift.Night, SeatNumber: "S9", BookingDate: "2026-03-13", BookingStatus: model.BookingBooked},
		{UserID: "U3", Shift: shift.Night, SeatNumber: "S9", BookingDate: day, BookingStatus: model.BookingPending},
		{UserID: "U1", Shift: shift.Night, SeatNumber: "S8", BookingDate: day, BookingStatus: model.BookingAvailable},
	}
	b, err := AttemptBook(snap, "U1", shift.Night, "S9", day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.BookingStatus != model.BookingBooked || b.BookingDate != day || b.ID != "" {
		t.Fatalf("unexpected intent: %+v", b)
	}
}

func TestAttemptBookValidation(t *testing.T) {
	if _, err := AttemptBook(nil, "U1", "brunch", "S1", day); !errors.Is(err, shift.ErrInvalidShift) {
		t.Fatalf("want ErrInvalidShift, got %v", err)
	}
	if _, err := AttemptBook(nil, "U1", shift.Noon, "S99", day); !errors.Is(err, ErrInvalidSeat) {
		t.Fatalf("want ErrInvalidSeat, got %v", err)
	}
}

func TestIsBookedAndOwned(t *testing.T) {
	snap := book(t, nil, "U1", shift.Morning, "S3")
	if !IsBooked(snap, "S3", shift.Morning) || IsBooked(snap, "S3", shift.Noon) || IsBooked(snap, "S4", shift.Morning) {
		t.Fatal("IsBooked mismatch")
	}
	if !IsOwnedBy(snap, "S3", shift.Morning, "U1") || IsOwnedBy(snap, "S3", shift.Morning, "U2") {
		t.Fatal("IsOwnedBy mismatch")
	}
}

func TestSeatMapAndOccupancy(t *testing.T) {
	snap := book(t, nil, "U1", shift.Morning, "S3")
	snap = book(t, snap, "U2", shift.Morning, "S4")
	snap = book(t, snap, "U2", shift.Night, "S4")

	m := SeatMap(snap, shift.Morning, "U1")
	if len(m) != PoolSize {
		t.Fatalf("seat map size %d", len(m))
	}
	if !m[2].Booked || !m[2].Mine || !m[3].Booked || m[3].Mine || m[4].Booked {
		t.Fatalf("unexpected seat map cells: %+v %+v %+v", m[2], m[3], m[4])
	}

	occ := Occupancy(snap)
	want := map[shift.ID]int{shift.Morning: 2, shift.Noon: 0, shift.Evening: 0, shift.Night: 1}
	for _, o := range occ {
		if o.Booked != want[o.Shift] || o.Total != PoolSize {
			t.Errorf("%s occupancy = %+v", o.Shift, o)
		}
	}
	if occ[0].Percentage != 4 {
		t.Errorf("morning percentage = %d, want 4", occ[0].Percentage)
	}
}
