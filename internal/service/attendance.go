package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/library-seat-booking/internal/attendance"
	"github.com/iliyamo/library-seat-booking/internal/model"
	"github.com/iliyamo/library-seat-booking/internal/repository"
	"github.com/iliyamo/library-seat-booking/internal/shift"
)

// RecentDays is the window of the attendance history view.
const RecentDays = 7

// AttendanceService records check-ins and check-outs.
type AttendanceService struct {
	d Deps
}

func NewAttendanceService(d Deps) *AttendanceService { return &AttendanceService{d: d.withDefaults()} }

// ShiftStatus is the derived state of one admitted shift today.
type ShiftStatus struct {
	Shift  shift.Shift             `json:"shift"`
	Status attendance.Status       `json:"status"`
	Active bool                    `json:"active"`
	Record *model.AttendanceRecord `json:"record,omitempty"`
}

// TodayView is the student's attendance screen.
type TodayView struct {
	Date           string        `json:"date"`
	ValidShiftsNow []shift.ID    `json:"valid_shifts_now"`
	Shifts         []ShiftStatus `json:"shifts"`
}

// admittedShifts returns the shifts of the user's paid admissions in
// catalog order.
func (s *AttendanceService) admittedShifts(ctx context.Context, userID string) ([]shift.ID, error) {
	admissions, err := s.d.Admissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	covered := make(map[shift.ID]bool)
	for _, a := range admissions {
		if !a.IsPaid() {
			continue
		}
		for _, sh := range a.SelectedShifts {
			covered[sh] = true
		}
	}
	var out []shift.ID
	for _, id := range shift.IDs() {
		if covered[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// Today derives the status of every admitted shift for the current date.
func (s *AttendanceService) Today(ctx context.Context, userID string) (TodayView, error) {
	now := s.d.Clock.Now()
	date := model.DateOf(now)
	ids, err := s.admittedShifts(ctx, userID)
	if err != nil {
		return TodayView{}, err
	}
	yesterday := model.DateOf(now.AddDate(0, 0, -1))
	records, err := s.d.Attendance.ListByUser(ctx, userID, yesterday, date)
	if err != nil {
		return TodayView{}, err
	}
	view := TodayView{Date: date, ValidShiftsNow: shift.ValidShiftsNow(ids, now), Shifts: make([]ShiftStatus, 0, len(ids))}
	for _, id := range ids {
		sh, _ := shift.Lookup(id)
		rec := attendance.Find(records, userID, id, date)
		if prev := openCarryover(records, userID, id, yesterday, now); prev != nil {
			rec = prev
		}
		st := ShiftStatus{Shift: sh, Active: shift.IsActive(id, now), Record: rec}
		if rec != nil && rec.IsAbsent() {
			st.Status = attendance.Absent
		} else {
			st.Status = attendance.DeriveStatus(rec, id, now)
		}
		view.Shifts = append(view.Shifts, st)
	}
	return view, nil
}

// CheckIn records the user's arrival for rawShift.  An absent row left by
// an earlier sweep is converted in place.
func (s *AttendanceService) CheckIn(ctx context.Context, userID, rawShift string) (model.AttendanceRecord, error) {
	sh, err := shift.Parse(rawShift)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	now := s.d.Clock.Now()
	if err := s.d.requireEligible(ctx, userID, sh, now); err != nil {
		return model.AttendanceRecord{}, err
	}
	rec, err := s.checkIn(ctx, userID, sh, now)
	s.d.Metrics.Attendance("check_in", string(sh), attendanceResult(err))
	return rec, err
}

func (s *AttendanceService) checkIn(ctx context.Context, userID string, sh shift.ID, now time.Time) (model.AttendanceRecord, error) {
	date := model.DateOf(now)
	from := date
	if carriesOver(sh, now) {
		from = model.DateOf(now.AddDate(0, 0, -1))
	}
	for attempt := 0; ; attempt++ {
		records, err := s.d.Attendance.ListByUser(ctx, userID, from, date)
		if err != nil {
			return model.AttendanceRecord{}, err
		}
		if openCarryover(records, userID, sh, from, now) != nil {
			return model.AttendanceRecord{}, attendance.ErrAlreadyCheckedIn
		}
		res, err := attendance.CheckIn(now, userID, sh, records)
		if err != nil {
			return model.AttendanceRecord{}, err
		}
		var rec model.AttendanceRecord
		if res.Replaces != "" {
			rec, err = s.d.Attendance.Update(ctx, res.Replaces, repository.AttendancePatch{CheckInTime: res.Record.CheckInTime})
		} else {
			rec, err = s.d.Attendance.Create(ctx, res.Record)
		}
		if errors.Is(err, repository.ErrConflict) && attempt == 0 {
			continue
		}
		return rec, err
	}
}

// CheckOut closes the user's open record for rawShift.  recordID may be
// empty, in which case today's record for the shift is used.
func (s *AttendanceService) CheckOut(ctx context.Context, userID, rawShift, recordID string) (model.AttendanceRecord, error) {
	sh, err := shift.Parse(rawShift)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	now := s.d.Clock.Now()
	rec, err := s.checkOut(ctx, userID, sh, recordID, now)
	s.d.Metrics.Attendance("check_out", string(sh), attendanceResult(err))
	return rec, err
}

func (s *AttendanceService) checkOut(ctx context.Context, userID string, sh shift.ID, recordID string, now time.Time) (model.AttendanceRecord, error) {
	date := model.DateOf(now)
	// A night check-in may carry yesterday's date.
	from := model.DateOf(now.AddDate(0, 0, -1))
	for attempt := 0; ; attempt++ {
		records, err := s.d.Attendance.ListByUser(ctx, userID, from, date)
		if err != nil {
			return model.AttendanceRecord{}, err
		}
		id := recordID
		if id == "" {
			id = openRecordID(records, sh, date, from)
		}
		closed, err := attendance.CheckOut(now, sh, id, records)
		if err != nil {
			return model.AttendanceRecord{}, err
		}
		rec, err := s.d.Attendance.Update(ctx, closed.ID, repository.AttendancePatch{CheckOutTime: closed.CheckOutTime})
		if errors.Is(err, repository.ErrConflict) && attempt == 0 {
			continue
		}
		return rec, err
	}
}

// openRecordID picks the record a check-out without an explicit id refers
// to: an open row dated today, then yesterday's open row, then today's row
// in whatever state so the check-out can report why it cannot close it.
func openRecordID(records []model.AttendanceRecord, sh shift.ID, today, yesterday string) string {
	fallback := ""
	for _, r := range records {
		if r.Shift == sh && r.Date == today && r.IsOpen() {
			return r.ID
		}
	}
	for _, r := range records {
		if r.Shift != sh {
			continue
		}
		if r.Date == yesterday && r.IsOpen() {
			return r.ID
		}
		if r.Date == today && fallback == "" {
			fallback = r.ID
		}
	}
	return fallback
}

// carriesOver reports whether now falls in the after-midnight part of a
// shift that started the previous evening.
func carriesOver(sh shift.ID, now time.Time) bool {
	w, err := shift.WindowFor(sh)
	if err != nil || !w.CrossesMidnight {
		return false
	}
	return now.Hour()*60+now.Minute() < w.EndMinutes()
}

// openCarryover returns the still-open row for sh dated yesterday when now
// belongs to the session that started then.
func openCarryover(records []model.AttendanceRecord, userID string, sh shift.ID, yesterday string, now time.Time) *model.AttendanceRecord {
	if !carriesOver(sh, now) || yesterday == model.DateOf(now) {
		return nil
	}
	if r := attendance.Find(records, userID, sh, yesterday); r != nil && r.IsOpen() {
		return r
	}
	return nil
}

func attendanceResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, attendance.ErrOutsideShiftWindow):
		return "outside_window"
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		return "already_checked_in"
	case errors.Is(err, attendance.ErrShiftAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, repository.ErrConflict):
		return "conflict"
	}
	return "error"
}

// RecentEntry is one row of the attendance history.
type RecentEntry struct {
	model.AttendanceRecord
	DerivedStatus attendance.Status `json:"derived_status"`
}

// Recent returns the last RecentDays days of the user's attendance,
// absences included, newest first.
func (s *AttendanceService) Recent(ctx context.Context, userID string) ([]RecentEntry, error) {
	now := s.d.Clock.Now()
	from := model.DateOf(now.AddDate(0, 0, -(RecentDays - 1)))
	records, err := s.d.Attendance.ListByUser(ctx, userID, from, model.DateOf(now))
	if err != nil {
		return nil, err
	}
	out := make([]RecentEntry, 0, len(records))
	for _, r := range records {
		out = append(out, RecentEntry{AttendanceRecord: r, DerivedStatus: attendance.RecordStatus(r)})
	}
	return out, nil
}
