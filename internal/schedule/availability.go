package schedule

import (
	"time"
)

// Booking is an existing appointment as the availability engine sees it.
type Booking struct {
	Phone string
	Time  time.Time
}

// BookingSource supplies the current appointment set.
type BookingSource interface {
	Bookings() []Booking
}

// Engine computes free dates and time slots against the business-hours
// table and the current bookings. All date arithmetic happens in loc;
// conflict checks compare local calendar dates, never UTC day splits.
type Engine struct {
	hours    *BusinessHours
	source   BookingSource
	slotSize time.Duration
	loc      *time.Location
	now      func() time.Time
}

// NewEngine creates an availability engine. now is injectable for tests;
// nil defaults to time.Now.
func NewEngine(hours *BusinessHours, source BookingSource, slotSize time.Duration, loc *time.Location, now func() time.Time) *Engine {
	if slotSize <= 0 {
		slotSize = time.Hour
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{hours: hours, source: source, slotSize: slotSize, loc: loc, now: now}
}

// SlotSize returns the configured slot granularity.
func (e *Engine) SlotSize() time.Duration {
	return e.slotSize
}

// Location returns the engine's local timezone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// CandidateDates walks forward horizonDays calendar days starting from
// tomorrow and returns the days the business is open, chronologically.
// Produces fewer than horizonDays entries when some days are closed.
func (e *Engine) CandidateDates(horizonDays int) []time.Time {
	today := e.today()
	var dates []time.Time
	for i := 1; i <= horizonDays; i++ {
		day := today.AddDate(0, 0, i)
		if _, open := e.hours.HoursFor(day.Weekday()); open {
			dates = append(dates, day)
		}
	}
	return dates
}

// CandidateSlots generates the free slots on date, excluding conflicts
// with any other phone's booking. The excluded phone's own appointment
// never counts as a conflict, so a contact can keep their current time.
// Returns nil when the day is closed.
func (e *Engine) CandidateSlots(date time.Time, excludePhone string) []time.Time {
	day := date.In(e.loc)
	hours, open := e.hours.HoursFor(day.Weekday())
	if !open {
		return nil
	}

	bookings := e.otherBookings(excludePhone)

	start := time.Date(day.Year(), day.Month(), day.Day(), hours.Open.Hour, hours.Open.Minute, 0, 0, e.loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), hours.Close.Hour, hours.Close.Minute, 0, 0, e.loc)

	var slots []time.Time
	for t := start; t.Before(end); t = t.Add(e.slotSize) {
		if !e.conflicts(t, bookings) {
			slots = append(slots, t)
		}
	}
	return slots
}

// conflicts reports whether candidate collides with any booking: same
// local calendar date and absolute difference below one slot size.
func (e *Engine) conflicts(candidate time.Time, bookings []Booking) bool {
	for _, b := range bookings {
		booked := b.Time.In(e.loc)
		if !sameLocalDate(candidate, booked) {
			continue
		}
		diff := candidate.Sub(booked)
		if diff < 0 {
			diff = -diff
		}
		if diff < e.slotSize {
			return true
		}
	}
	return false
}

func (e *Engine) otherBookings(excludePhone string) []Booking {
	if e.source == nil {
		return nil
	}
	all := e.source.Bookings()
	out := all[:0:0]
	for _, b := range all {
		if b.Phone == excludePhone {
			continue
		}
		out = append(out, b)
	}
	return out
}

// today returns midnight of the current local day.
func (e *Engine) today() time.Time {
	n := e.now().In(e.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, e.loc)
}

func sameLocalDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
