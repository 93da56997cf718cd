package model

import (
	"errors"
	"time"

	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// AttendanceStatus is the explicit status column of an attendance row.
// Presence is normally implied by the check-in/out times; the column is
// set to absent by the absence sweep.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// ReasonNoCheckIn is the reason recorded on sweep-generated absences.
const ReasonNoCheckIn = "no_checkin"

// AttendanceRecord tracks one user's presence for one shift on one date.
// CheckOutTime implies CheckInTime and is never earlier than it.  An
// absent row never carries a check-in time.
type AttendanceRecord struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	Shift        shift.ID         `json:"shift"`
	Date         string           `json:"date"`
	CheckInTime  *time.Time       `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time       `json:"check_out_time,omitempty"`
	Status       AttendanceStatus `json:"status,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// HasCheckIn reports whether the user checked in.
func (r AttendanceRecord) HasCheckIn() bool { return r.CheckInTime != nil }

// IsOpen reports a check-in without a check-out.
func (r AttendanceRecord) IsOpen() bool { return r.CheckInTime != nil && r.CheckOutTime == nil }

// IsCompleted reports a record with both times set.
func (r AttendanceRecord) IsCompleted() bool { return r.CheckInTime != nil && r.CheckOutTime != nil }

// IsAbsent reports a sweep-generated absence.
func (r AttendanceRecord) IsAbsent() bool { return r.Status == AttendanceAbsent }

// Validate enforces the record invariants at the persistence boundary.
func (r AttendanceRecord) Validate() error {
	if r.UserID == "" {
		return errors.New("attendance: user id required")
	}
	if !shift.Valid(r.Shift) {
		return shift.ErrInvalidShift
	}
	if !ValidDate(r.Date) {
		return errors.New("attendance: invalid date")
	}
	if r.CheckOutTime != nil {
		if r.CheckInTime == nil {
			return errors.New("attendance: check-out without check-in")
		}
		if r.CheckOutTime.Before(*r.CheckInTime) {
			return errors.New("attendance: check-out before check-in")
		}
	}
	if r.Status == AttendanceAbsent && r.CheckInTime != nil {
		return errors.New("attendance: absent record with check-in")
	}
	return nil
}

// AbsenceRecord is produced by the absence sweep for a paid admission's
// shift that closed without a check-in.  Field names follow the
// check-absent-students response contract.
type AbsenceRecord struct {
	UserID string           `json:"userId"`
	Shift  shift.ID         `json:"shift"`
	Date   string           `json:"date"`
	Status AttendanceStatus `json:"status"`
	Reason string           `json:"reason"`
}

// Key identifies the (user, shift, date) slot an absence belongs to.
func (a AbsenceRecord) Key() string { return a.UserID + "|" + string(a.Shift) + "|" + a.Date }

// AsAttendance converts the absence into the attendance row to upsert.
func (a AbsenceRecord) AsAttendance() AttendanceRecord {
	return AttendanceRecord{
		UserID: a.UserID,
		Shift:  a.Shift,
		Date:   a.Date,
		Status: AttendanceAbsent,
		Reason: a.Reason,
	}
}
