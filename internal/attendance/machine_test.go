package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

func clock(hour, minute int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

// insideWindow returns a reading that is active for each shift.
var insideWindow = map[shift.ID]time.Time{
	shift.Morning: clock(7, 0),
	shift.Noon:    clock(12, 0),
	shift.Evening: clock(17, 0),
	shift.Night:   clock(22, 0),
}

func TestCheckInOutsideWindowIgnoresRecords(t *testing.T) {
	open := []model.AttendanceRecord{{ID: "a1", UserID: "U1", Shift: shift.Morning, Date: "2026-03-14", CheckInTime: ptr(clock(6, 30))}}
	tests := []struct {
		name     string
		sh       shift.ID
		now      time.Time
		existing []model.AttendanceRecord
	}{
		{"morning too early", shift.Morning, clock(5, 59), nil},
		{"morning at end", shift.Morning, clock(11, 0), open},
		{"noon after end", shift.Noon, clock(16, 30), nil},
		{"evening before", shift.Evening, clock(15, 0), nil},
		{"night midday", shift.Night, clock(12, 0), nil},
		{"night at end", shift.Night, clock(5, 0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CheckIn(tt.now, "U1", tt.sh, tt.existing); !errors.Is(err, ErrOutsideShiftWindow) {
				t.Fatalf("want ErrOutsideShiftWindow, got %v", err)
			}
		})
	}
}

func TestCheckInTransitions(t *testing.T) {
	now := clock(7, 15)
	res, err := CheckIn(now, "U1", shift.Morning, nil)
	if err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	if res.Replaces != "" || res.Record.ID != "" || res.Record.Date != "2026-03-14" || !res.Record.CheckInTime.Equal(now) {
		t.Fatalf("unexpected result: %+v", res)
	}

	existing := []model.AttendanceRecord{{ID: "a1", UserID: "U1", Shift: shift.Morning, Date: "2026-03-14", CheckInTime: ptr(now)}}
	if _, err := CheckIn(clock(8, 0), "U1", shift.Morning, existing); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("want ErrAlreadyCheckedIn, got %v", err)
	}

	existing[0].CheckOutTime = ptr(clock(9, 0))
	if _, err := CheckIn(clock(10, 0), "U1", shift.Morning, existing); !errors.Is(err, ErrShiftAlreadyCompleted) {
		t.Fatalf("want ErrShiftAlreadyCompleted, got %v", err)
	}

	// A different shift, another user or another date is unaffected.
	if _, err := CheckIn(clock(12, 0), "U1", shift.Noon, existing); err != nil {
		t.Fatalf("noon check-in: %v", err)
	}
	if _, err := CheckIn(clock(10, 0), "U2", shift.Morning, existing); err != nil {
		t.Fatalf("other user: %v", err)
	}
	existing[0].Date = "2026-03-13"
	if _, err := CheckIn(clock(10, 0), "U1", shift.Morning, existing); err != nil {
		t.Fatalf("other date: %v", err)
	}
}

func TestCheckInSupersedesAbsence(t *testing.T) {
	existing := []model.AttendanceRecord{{ID: "abs", UserID: "U1", Shift: shift.Night, Date: "2026-03-14", Status: model.AttendanceAbsent, Reason: model.ReasonNoCheckIn}}
	res, err := CheckIn(clock(21, 30), "U1", shift.Night, existing)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if res.Replaces != "abs" || res.Record.ID != "abs" || res.Record.Status != "" || res.Record.Reason != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCheckInInvalidShift(t *testing.T) {
	if _, err := CheckIn(clock(7, 0), "U1", "brunch", nil); !errors.Is(err, shift.ErrInvalidShift) {
		t.Fatalf("want ErrInvalidShift, got %v", err)
	}
}

func TestCheckOut(t *testing.T) {
	in := clock(16, 10)
	existing := []model.AttendanceRecord{{ID: "a1", UserID: "U1", Shift: shift.Evening, Date: "2026-03-14", CheckInTime: ptr(in)}}

	out, err := CheckOut(clock(20, 0), shift.Evening, "a1", existing)
	if err != nil {
		t.Fatalf("check-out: %v", err)
	}
	if out.CheckOutTime == nil || !out.CheckOutTime.Equal(clock(20, 0)) || !out.CheckInTime.Equal(in) {
		t.Fatalf("unexpected record: %+v", out)
	}
	if existing[0].CheckOutTime != nil {
		t.Fatal("input record mutated")
	}

	// Forgetting to check out before the window closes is final.
	if _, err := CheckOut(clock(21, 0), shift.Evening, "a1", existing); !errors.Is(err, ErrOutsideShiftWindow) {
		t.Fatalf("want ErrOutsideShiftWindow, got %v", err)
	}
	if _, err := CheckOut(clock(20, 0), shift.Evening, "missing", existing); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
	if _, err := CheckOut(clock(20, 0), shift.Evening, "a1", []model.AttendanceRecord{out}); !errors.Is(err, ErrShiftAlreadyCompleted) {
		t.Fatalf("want ErrShiftAlreadyCompleted, got %v", err)
	}
	absent := []model.AttendanceRecord{{ID: "a2", UserID: "U1", Shift: shift.Evening, Date: "2026-03-14", Status: model.AttendanceAbsent}}
	if _, err := CheckOut(clock(20, 0), shift.Evening, "a2", absent); !errors.Is(err, ErrNotCheckedIn) {
		t.Fatalf("want ErrNotCheckedIn, got %v", err)
	}
	if _, err := CheckOut(clock(16, 5), shift.Evening, "a1", existing); !errors.Is(err, ErrCheckOutBeforeCheckIn) {
		t.Fatalf("want ErrCheckOutBeforeCheckIn, got %v", err)
	}
}

func TestCheckOutNightAcrossMidnight(t *testing.T) {
	existing := []model.AttendanceRecord{{ID: "n1", UserID: "U1", Shift: shift.Night, Date: "2026-03-14", CheckInTime: ptr(clock(0, 30))}}
	if _, err := CheckOut(clock(4, 30), shift.Night, "n1", existing); err != nil {
		t.Fatalf("night check-out: %v", err)
	}
}

func TestDeriveStatusAllShifts(t *testing.T) {
	closedAt := map[shift.ID]time.Time{
		shift.Morning: clock(11, 0),
		shift.Noon:    clock(16, 0),
		shift.Evening: clock(21, 0),
		shift.Night:   clock(5, 0),
	}
	notClosedAt := map[shift.ID]time.Time{
		shift.Morning: clock(5, 0),
		shift.Noon:    clock(10, 0),
		shift.Evening: clock(15, 0),
		shift.Night:   clock(2, 0),
	}
	for _, sh := range shift.IDs() {
		t.Run(string(sh), func(t *testing.T) {
			if got := DeriveStatus(nil, sh, closedAt[sh]); got != Absent {
				t.Errorf("closed without record = %s, want absent", got)
			}
			if got := DeriveStatus(nil, sh, notClosedAt[sh]); got != Pending {
				t.Errorf("open without record = %s, want pending", got)
			}
			if got := DeriveStatus(nil, sh, insideWindow[sh]); got != Pending {
				t.Errorf("inside window without record = %s, want pending", got)
			}
			in := &model.AttendanceRecord{CheckInTime: ptr(insideWindow[sh])}
			if got := DeriveStatus(in, sh, closedAt[sh]); got != CheckedIn {
				t.Errorf("checked in = %s, want checked_in", got)
			}
			done := &model.AttendanceRecord{CheckInTime: ptr(insideWindow[sh]), CheckOutTime: ptr(insideWindow[sh].Add(time.Minute))}
			if got := DeriveStatus(done, sh, notClosedAt[sh]); got != Completed {
				t.Errorf("completed = %s, want completed", got)
			}
			empty := &model.AttendanceRecord{}
			if got := DeriveStatus(empty, sh, closedAt[sh]); got != Absent {
				t.Errorf("empty record after close = %s, want absent", got)
			}
		})
	}
}

func TestShouldMarkAbsent(t *testing.T) {
	if !ShouldMarkAbsent(shift.Morning, false, clock(12, 0)) {
		t.Error("morning closed without check-in should be absent")
	}
	if ShouldMarkAbsent(shift.Morning, true, clock(12, 0)) {
		t.Error("checked-in user is never absent")
	}
	if ShouldMarkAbsent(shift.Night, false, clock(23, 0)) {
		t.Error("night is running at 23:00")
	}
}

func TestRecordStatusAndFind(t *testing.T) {
	records := []model.AttendanceRecord{
		{ID: "1", UserID: "U1", Shift: shift.Morning, Date: "2026-03-14", Status: model.AttendanceAbsent},
		{ID: "2", UserID: "U1", Shift: shift.Noon, Date: "2026-03-14", CheckInTime: ptr(clock(12, 0))},
	}
	if RecordStatus(records[0]) != Absent || RecordStatus(records[1]) != CheckedIn {
		t.Fatal("RecordStatus mismatch")
	}
	if r := Find(records, "U1", shift.Noon, "2026-03-14"); r == nil || r.ID != "2" {
		t.Fatalf("Find = %+v", r)
	}
	if Find(records, "U1", shift.Night, "2026-03-14") != nil {
		t.Fatal("Find should miss")
	}
}
