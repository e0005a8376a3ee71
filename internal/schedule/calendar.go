package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a clock time within a business day, minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Minutes returns the time of day as minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("schedule: invalid time of day %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("schedule: invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("schedule: invalid minute in %q", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// DayHours describes the open window of a single weekday.
type DayHours struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// BusinessHours maps each weekday to its open window. A missing entry
// means the business is closed that day. Read-only after construction.
type BusinessHours struct {
	days map[time.Weekday]DayHours
}

// NewBusinessHours builds a uniform weekly table: every weekday not listed
// in closed gets the same open/close window.
func NewBusinessHours(open, close TimeOfDay, closed ...time.Weekday) *BusinessHours {
	closedSet := make(map[time.Weekday]struct{}, len(closed))
	for _, d := range closed {
		closedSet[d] = struct{}{}
	}
	days := make(map[time.Weekday]DayHours, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if _, skip := closedSet[d]; skip {
			continue
		}
		days[d] = DayHours{Open: open, Close: close}
	}
	return &BusinessHours{days: days}
}

// ParseBusinessHours builds the table from "HH:MM" strings and a
// comma-separated closed-weekday list ("0" = Sunday).
func ParseBusinessHours(open, close, closedWeekdays string) (*BusinessHours, error) {
	openTod, err := ParseTimeOfDay(open)
	if err != nil {
		return nil, err
	}
	closeTod, err := ParseTimeOfDay(close)
	if err != nil {
		return nil, err
	}
	if closeTod.Minutes() <= openTod.Minutes() {
		return nil, fmt.Errorf("schedule: close %s must be after open %s", close, open)
	}

	var closed []time.Weekday
	for _, tok := range strings.Split(closedWeekdays, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("schedule: invalid closed weekday %q", tok)
		}
		closed = append(closed, time.Weekday(n))
	}
	return NewBusinessHours(openTod, closeTod, closed...), nil
}

// HoursFor returns the open window for a weekday, or ok=false when the
// business is closed that day.
func (b *BusinessHours) HoursFor(day time.Weekday) (DayHours, bool) {
	h, ok := b.days[day]
	return h, ok
}
