// Package attendance holds the per (user, shift, date) attendance
// lifecycle: pending until the user checks in or the shift closes,
// checked in until the user checks out, then completed.  A shift that
// closes without a check-in ends absent.
//
// The functions are pure decisions over the user's existing records for
// the day and an explicit clock reading.
package attendance

import (
	"errors"
	"time"

	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// Status is the derived state of a (user, shift, date) slot.
type Status string

const (
	Pending   Status = "pending"
	CheckedIn Status = "checked_in"
	Completed Status = "completed"
	Absent    Status = "absent"
)

var (
	ErrOutsideShiftWindow    = errors.New("outside shift window")
	ErrAlreadyCheckedIn      = errors.New("already checked in for this shift")
	ErrShiftAlreadyCompleted = errors.New("shift already completed today")
	ErrRecordNotFound        = errors.New("attendance record not found")
	ErrNotCheckedIn          = errors.New("not checked in for this shift")
	ErrCheckOutBeforeCheckIn = errors.New("check-out earlier than check-in")
)

// CheckInResult is the write a successful check-in asks for.  When
// Replaces is set the record supersedes that absent row and should be
// written as an update of it; otherwise it is a new row.
type CheckInResult struct {
	Record   model.AttendanceRecord
	Replaces string
}

// CheckIn decides a check-in for userID at now.  existing holds the
// user's records; only those for sh on now's calendar date are
// considered.  The time gate is evaluated before any record.
func CheckIn(now time.Time, userID string, sh shift.ID, existing []model.AttendanceRecord) (CheckInResult, error) {
	if !shift.Valid(sh) {
		return CheckInResult{}, shift.ErrInvalidShift
	}
	if !shift.IsActive(sh, now) {
		return CheckInResult{}, ErrOutsideShiftWindow
	}
	date := model.DateOf(now)
	var absentID string
	for _, r := range existing {
		if r.UserID != userID || r.Shift != sh || r.Date != date {
			continue
		}
		switch {
		case r.IsCompleted():
			return CheckInResult{}, ErrShiftAlreadyCompleted
		case r.IsOpen():
			return CheckInResult{}, ErrAlreadyCheckedIn
		case r.IsAbsent():
			absentID = r.ID
		}
	}
	at := now
	return CheckInResult{
		Record: model.AttendanceRecord{
			ID:          absentID,
			UserID:      userID,
			Shift:       sh,
			Date:        date,
			CheckInTime: &at,
		},
		Replaces: absentID,
	}, nil
}

// CheckOut closes the record identified by recordID.  Check-out is gated
// by the shift window just like check-in, so a record left open past the
// window end can no longer be closed.
func CheckOut(now time.Time, sh shift.ID, recordID string, existing []model.AttendanceRecord) (model.AttendanceRecord, error) {
	if !shift.Valid(sh) {
		return model.AttendanceRecord{}, shift.ErrInvalidShift
	}
	if !shift.IsActive(sh, now) {
		return model.AttendanceRecord{}, ErrOutsideShiftWindow
	}
	for _, r := range existing {
		if r.ID != recordID || r.Shift != sh {
			continue
		}
		if !r.HasCheckIn() {
			return model.AttendanceRecord{}, ErrNotCheckedIn
		}
		if r.CheckOutTime != nil {
			return model.AttendanceRecord{}, ErrShiftAlreadyCompleted
		}
		if now.Before(*r.CheckInTime) {
			return model.AttendanceRecord{}, ErrCheckOutBeforeCheckIn
		}
		at := now
		r.CheckOutTime = &at
		return r, nil
	}
	return model.AttendanceRecord{}, ErrRecordNotFound
}

// ShouldMarkAbsent reports whether a slot without a check-in counts as
// absent at now.
func ShouldMarkAbsent(sh shift.ID, hasCheckedIn bool, now time.Time) bool {
	return shift.HasClosed(sh, now) && !hasCheckedIn
}

// DeriveStatus computes the state of a slot from its record, if any.
func DeriveStatus(rec *model.AttendanceRecord, sh shift.ID, now time.Time) Status {
	hasCheckIn := rec != nil && rec.CheckInTime != nil
	switch {
	case hasCheckIn && rec.CheckOutTime != nil:
		return Completed
	case hasCheckIn:
		return CheckedIn
	case ShouldMarkAbsent(sh, false, now):
		return Absent
	default:
		return Pending
	}
}

// RecordStatus labels a stored record for history views, honoring an
// explicit absent status ahead of the times.
func RecordStatus(rec model.AttendanceRecord) Status {
	switch {
	case rec.IsAbsent():
		return Absent
	case rec.IsCompleted():
		return Completed
	case rec.HasCheckIn():
		return CheckedIn
	default:
		return Pending
	}
}

// Find returns the record for (userID, sh, date) from records, if any.
func Find(records []model.AttendanceRecord, userID string, sh shift.ID, date string) *model.AttendanceRecord {
	for i := range records {
		r := &records[i]
		if r.UserID == userID && r.Shift == sh && r.Date == date {
			return r
		}
	}
	return nil
}
