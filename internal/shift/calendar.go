// Package shift holds the fixed catalog of library shifts, the rules that
// decide whether a wall-clock reading falls inside a shift window, and the
// fee table used to price a selection of shifts.  Everything in this
// package is a pure lookup or computation; callers supply the clock.
package shift

import (
	"errors"
	"strings"
)

// ID identifies one of the four daily shifts.
type ID string

const (
	Morning ID = "morning"
	Noon    ID = "noon"
	Evening ID = "evening"
	Night   ID = "night"
)

// ErrInvalidShift is returned for any id outside the catalog.  Handlers
// should translate it into a 422 response and stop processing.
var ErrInvalidShift = errors.New("invalid shift")

// Window is the time-of-day span of a shift.  When CrossesMidnight is
// set the end time belongs to the following calendar day.
type Window struct {
	StartHour       int
	StartMinute     int
	EndHour         int
	EndMinute       int
	CrossesMidnight bool
}

// StartMinutes returns the window start as minutes since midnight.
func (w Window) StartMinutes() int { return w.StartHour*60 + w.StartMinute }

// EndMinutes returns the window end as minutes since midnight.
func (w Window) EndMinutes() int { return w.EndHour*60 + w.EndMinute }

// Shift is a catalog entry.  Price is in whole currency units.
type Shift struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	TimeRange string `json:"time_range"`
	Window    Window `json:"-"`
	Price     int    `json:"price"`
}

var catalog = [...]Shift{
	{ID: Morning, Name: "Morning", TimeRange: "06:00 AM – 11:00 AM", Window: Window{6, 0, 11, 0, false}, Price: 299},
	{ID: Noon, Name: "Noon", TimeRange: "11:00 AM – 04:00 PM", Window: Window{11, 0, 16, 0, false}, Price: 349},
	{ID: Evening, Name: "Evening", TimeRange: "04:00 PM – 09:00 PM", Window: Window{16, 0, 21, 0, false}, Price: 299},
	{ID: Night, Name: "Night", TimeRange: "09:00 PM – 05:00 AM", Window: Window{21, 0, 5, 0, true}, Price: 299},
}

// All returns a copy of the catalog in display order.
func All() []Shift {
	out := make([]Shift, len(catalog))
	copy(out, catalog[:])
	return out
}

// IDs returns the catalog ids in display order.
func IDs() []ID {
	out := make([]ID, 0, len(catalog))
	for _, s := range catalog {
		out = append(out, s.ID)
	}
	return out
}

// Lookup returns the catalog entry for id.
func Lookup(id ID) (Shift, error) {
	for _, s := range catalog {
		if s.ID == id {
			return s, nil
		}
	}
	return Shift{}, ErrInvalidShift
}

// Valid reports whether id names a catalog shift.
func Valid(id ID) bool {
	_, err := Lookup(id)
	return err == nil
}

// WindowFor returns the time window of a shift.
func WindowFor(id ID) (Window, error) {
	s, err := Lookup(id)
	if err != nil {
		return Window{}, err
	}
	return s.Window, nil
}

// PriceFor returns the single-shift price.
func PriceFor(id ID) (int, error) {
	s, err := Lookup(id)
	if err != nil {
		return 0, err
	}
	return s.Price, nil
}

// Parse normalizes raw input (case, surrounding space) into a catalog id.
func Parse(raw string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(raw)))
	if !Valid(id) {
		return "", ErrInvalidShift
	}
	return id, nil
}

// ParseList parses a comma separated list such as "noon,morning".  Empty
// items are skipped and duplicates collapse; order of first appearance is
// kept.
func ParseList(raw string) ([]ID, error) {
	var out []ID
	seen := make(map[ID]struct{})
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := Parse(part)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// Join renders ids as a comma separated list, the inverse of ParseList.
func Join(ids []ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
