// Package hours evaluates restaurant business-hours schedules for the
// storefront pickup pickers. A schedule is stored on the restaurant record
// as an opaque JSON string keyed by lowercase weekday name; each day maps
// to an open/close window or null for closed.
//
// The read side follows an assume-open-when-unknown policy: an absent or
// unparsable schedule never blocks ordering. Write paths validate instead
// (see restaurants.Service), so the asymmetry is deliberate and one-sided.
package hours

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultPreparationBuffer is the minimum lead time before a same-day pickup.
const DefaultPreparationBuffer = 30 * time.Minute

// DefaultLookaheadDays bounds how far ahead pickup dates are offered.
const DefaultLookaheadDays = 30

// DayWindow is one day's opening window, both clocks "HH:mm".
type DayWindow struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// WeekSchedule maps lowercase weekday names to windows. A nil entry or a
// missing key means closed that day. A nil WeekSchedule means unknown.
type WeekSchedule map[string]*DayWindow

// Parse decodes a stored schedule. Malformed input yields (nil, false);
// parse failures are never surfaced further.
func Parse(raw string) (WeekSchedule, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}
	var sched WeekSchedule
	if err := json.Unmarshal([]byte(raw), &sched); err != nil {
		return nil, false
	}
	return sched, true
}

// Validate checks a schedule document for the write path: recognized day
// keys, well-formed clocks, open strictly before close.
func Validate(raw string) error {
	var sched WeekSchedule
	if err := json.Unmarshal([]byte(raw), &sched); err != nil {
		return fmt.Errorf("business hours must be a JSON object: %w", err)
	}
	for day, window := range sched {
		if !isWeekdayName(day) {
			return fmt.Errorf("unknown weekday %q", day)
		}
		if window == nil {
			continue
		}
		open, ok := parseClock(window.Open)
		if !ok {
			return fmt.Errorf("%s: invalid open time %q", day, window.Open)
		}
		close, ok := parseClock(window.Close)
		if !ok {
			return fmt.Errorf("%s: invalid close time %q", day, window.Close)
		}
		if open >= close {
			return fmt.Errorf("%s: open %q must be before close %q", day, window.Open, window.Close)
		}
	}
	return nil
}

// DateAvailable reports whether pickup can be scheduled on the date. An
// unknown schedule is treated as open.
func (s WeekSchedule) DateAvailable(date time.Time) bool {
	if s == nil {
		return true
	}
	return s[weekdayKey(date)] != nil
}

// TimeAvailable reports whether the "HH:mm" clock falls inside the date's
// window, inclusive on both bounds so closing-minute orders are allowed.
// Malformed clocks are unavailable rather than silently miscompared.
func (s WeekSchedule) TimeAvailable(date time.Time, clock string) bool {
	if s == nil {
		return true
	}
	window := s[weekdayKey(date)]
	if window == nil {
		return false
	}
	t, ok := parseClock(clock)
	if !ok {
		return false
	}
	open, okOpen := parseClock(window.Open)
	close, okClose := parseClock(window.Close)
	if !okOpen || !okClose {
		return false
	}
	return open <= t && t <= close
}

// AvailableDates returns up to daysAhead open dates starting at from,
// strictly increasing.
func (s WeekSchedule) AvailableDates(from time.Time, daysAhead int) []time.Time {
	if daysAhead <= 0 {
		return nil
	}
	var dates []time.Time
	day := truncateToDay(from)
	for i := 0; i < daysAhead; i++ {
		candidate := day.AddDate(0, 0, i)
		if s.DateAvailable(candidate) {
			dates = append(dates, candidate)
		}
	}
	return dates
}

// MinDate returns the earliest pickup date: today when open, otherwise the
// first open date within the lookahead window. ok is false when every day
// in the window is closed; callers must not fall back to a closed today.
func (s WeekSchedule) MinDate(now time.Time) (time.Time, bool) {
	today := truncateToDay(now)
	for i := 0; i < DefaultLookaheadDays; i++ {
		candidate := today.AddDate(0, 0, i)
		if s.DateAvailable(candidate) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// MinTime returns the earliest pickup clock for the date. For today that is
// the later of now+buffer and opening time; for future dates the opening
// time. ok is false for closed days and unknown schedules.
func (s WeekSchedule) MinTime(date, now time.Time, buffer time.Duration) (string, bool) {
	if s == nil {
		return "", false
	}
	window := s[weekdayKey(date)]
	if window == nil {
		return "", false
	}
	open, ok := parseClock(window.Open)
	if !ok {
		return "", false
	}
	if !sameDay(date, now) {
		return formatClock(open), true
	}
	earliest := now.Add(buffer)
	earliestMinutes := earliest.Hour()*60 + earliest.Minute()
	if earliestMinutes > open {
		return formatClock(earliestMinutes), true
	}
	return formatClock(open), true
}

// MaxTime returns the closing clock for the date, or ok=false when the day
// is closed or the schedule is unknown.
func (s WeekSchedule) MaxTime(date time.Time) (string, bool) {
	if s == nil {
		return "", false
	}
	window := s[weekdayKey(date)]
	if window == nil {
		return "", false
	}
	if _, ok := parseClock(window.Close); !ok {
		return "", false
	}
	return window.Close, true
}

// ShouldDisableDate is the picker-facing inverse of DateAvailable: closed
// or undefined days disable, an unknown schedule disables nothing.
func (s WeekSchedule) ShouldDisableDate(date time.Time) bool {
	if s == nil {
		return false
	}
	return s[weekdayKey(date)] == nil
}

var weekdayNames = map[string]struct{}{
	"sunday": {}, "monday": {}, "tuesday": {}, "wednesday": {},
	"thursday": {}, "friday": {}, "saturday": {},
}

func isWeekdayName(name string) bool {
	_, ok := weekdayNames[name]
	return ok
}

func weekdayKey(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// parseClock converts "HH:mm" to minutes since midnight.
func parseClock(clock string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return 0, false
	}
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
