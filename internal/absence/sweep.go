// Package absence reconciles paid admissions against the attendance of a
// day: every admitted shift that has closed without a check-in produces an
// absence entry.  Sweep is a pure function; Scheduler runs it periodically
// under a distributed lease.
package absence

import (
	"sort"
	"time"

	"github.com/iliyamo/library-seat-booking/internal/attendance"
	"github.com/iliyamo/library-seat-booking/internal/model"
)

// Result is the outcome of one sweep.
type Result struct {
	Date     string                `json:"date"`
	Absences []model.AbsenceRecord `json:"absentStudents"`
	Count    int                   `json:"absentCount"`
}

// Sweep returns the absences for date given the admissions and the
// attendance rows recorded on that date.  Closure is judged against now's
// time of day.  Unpaid admissions are skipped, and a slot yields at most one
// entry even when a user holds overlapping admissions.  Entries are ordered
// by user then shift so repeated runs over the same input are identical.
func Sweep(admissions []model.Admission, records []model.AttendanceRecord, date string, now time.Time) Result {
	checkedIn := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.Date == date && r.HasCheckIn() {
			checkedIn[slotKey(r.UserID, string(r.Shift), date)] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	out := make([]model.AbsenceRecord, 0)
	for _, a := range admissions {
		if !a.IsPaid() {
			continue
		}
		for _, sh := range a.SelectedShifts {
			key := slotKey(a.UserID, string(sh), date)
			if _, dup := seen[key]; dup {
				continue
			}
			_, hasCheckIn := checkedIn[key]
			if !attendance.ShouldMarkAbsent(sh, hasCheckIn, now) {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, model.AbsenceRecord{
				UserID: a.UserID,
				Shift:  sh,
				Date:   date,
				Status: model.AttendanceAbsent,
				Reason: model.ReasonNoCheckIn,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Shift < out[j].Shift
	})
	return Result{Date: date, Absences: out, Count: len(out)}
}

func slotKey(userID, sh, date string) string {
	return userID + "|" + sh + "|" + date
}
