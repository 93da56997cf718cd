package shift

import "time"

// minuteOfDay reduces a clock reading to minutes since midnight in the
// reading's own location.  Seconds are ignored.
func minuteOfDay(now time.Time) int {
	return now.Hour()*60 + now.Minute()
}

// IsActive reports whether now falls inside the shift window.  Day shifts
// are active on [start, end); the night shift wraps, so it is active when
// t >= start or t < end.  Unknown ids are never active.
func IsActive(id ID, now time.Time) bool {
	w, err := WindowFor(id)
	if err != nil {
		return false
	}
	t := minuteOfDay(now)
	start, end := w.StartMinutes(), w.EndMinutes()
	if w.CrossesMidnight {
		return t >= start || t < end
	}
	return t >= start && t < end
}

// HasClosed reports whether the shift counts as finished for absence
// marking.  Day shifts close at t >= end.  The night shift is closed only
// on [end, start), i.e. 05:00 to 21:00; between midnight and 05:00 it is
// still running and from 21:00 it has started again.
//
// A day shift that has not started yet is not closed, which holds only
// because end > start on the same day.
func HasClosed(id ID, now time.Time) bool {
	w, err := WindowFor(id)
	if err != nil {
		return false
	}
	t := minuteOfDay(now)
	start, end := w.StartMinutes(), w.EndMinutes()
	if w.CrossesMidnight {
		return t >= end && t < start
	}
	return t >= end
}

// ValidShiftsNow filters ids down to those active at now, keeping order.
func ValidShiftsNow(ids []ID, now time.Time) []ID {
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		if IsActive(id, now) {
			out = append(out, id)
		}
	}
	return out
}
