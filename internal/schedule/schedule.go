// Package schedule holds the interval-reconciliation core: pure functions
// that merge availability windows, bookings and imported busy intervals into
// a conflict-free set of slots. Nothing here performs I/O or reads the wall
// clock; callers capture "now" once per query and pass it in.
package schedule

import (
	"time"

	"slotbook/internal/model"
)

// DefaultSlotMinutes is used by callers when a query omits the duration.
const DefaultSlotMinutes = 30

// DateLayout is the calendar-date label format produced by AvailableDates.
const DateLayout = "2006-01-02"

// SlotStarts returns the lattice of candidate slot starts inside
// [rangeStart, rangeEnd]: rangeStart, rangeStart+d, ... while the full slot
// still fits before rangeEnd. An inverted range or a non-positive duration
// yields no candidates, never an error.
func SlotStarts(rangeStart, rangeEnd time.Time, durationMinutes int) []time.Time {
	if durationMinutes <= 0 {
		return nil
	}
	d := time.Duration(durationMinutes) * time.Minute
	if rangeEnd.Sub(rangeStart) < d {
		return nil
	}

	count := int(rangeEnd.Sub(rangeStart) / d)
	starts := make([]time.Time, 0, count)
	for cursor := rangeStart; len(starts) < count; cursor = cursor.Add(d) {
		starts = append(starts, cursor)
	}
	return starts
}

// HasConflict reports whether [start, end) overlaps any booking or busy
// interval. Overlap is strict half-open: sharing only a boundary instant is
// not a conflict, so back-to-back scheduling is allowed.
func HasConflict(start, end time.Time, bookings []model.Booking, busy []model.BusyInterval) bool {
	for _, b := range bookings {
		if overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	for _, iv := range busy {
		if overlaps(start, end, iv.Start, iv.End) {
			return true
		}
	}
	return false
}

func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}

// intersectsDay reports whether the window touches [dayStart, dayEnd]: its
// start falls within the day, its end falls within the day, or it fully
// spans the day.
func intersectsDay(w model.AvailabilityWindow, dayStart, dayEnd time.Time) bool {
	if !w.Start.Before(dayStart) && !w.Start.After(dayEnd) {
		return true
	}
	if !w.End.Before(dayStart) && !w.End.After(dayEnd) {
		return true
	}
	return w.SpansDay(dayStart, dayEnd)
}

// clipToDay bounds the window to the day: max(start, dayStart) to
// min(end, dayEnd).
func clipToDay(w model.AvailabilityWindow, dayStart, dayEnd time.Time) (time.Time, time.Time) {
	start := w.Start
	if start.Before(dayStart) {
		start = dayStart
	}
	end := w.End
	if end.After(dayEnd) {
		end = dayEnd
	}
	return start, end
}

// DayHasFreeSlot reports whether [dayStart, dayEnd] contains at least one
// conflict-free slot of the given duration. It short-circuits on the first
// free candidate; the result equals "AvailableSlots for this day would be
// non-empty" when evaluated with the same inputs.
func DayHasFreeSlot(windows []model.AvailabilityWindow, bookings []model.Booking, dayStart, dayEnd time.Time, durationMinutes int, busy []model.BusyInterval) bool {
	d := time.Duration(durationMinutes) * time.Minute
	for _, w := range windows {
		if !intersectsDay(w, dayStart, dayEnd) {
			continue
		}
		start, end := clipToDay(w, dayStart, dayEnd)
		for _, candidate := range SlotStarts(start, end, durationMinutes) {
			if !HasConflict(candidate, candidate.Add(d), bookings, busy) {
				return true
			}
		}
	}
	return false
}

// AvailableDates enumerates every calendar day from startDate to endDate
// inclusive and keeps the days that still have at least one free slot. Days
// strictly before the day of now are dropped. Labels are YYYY-MM-DD in
// ascending order without duplicates.
func AvailableDates(windows []model.AvailabilityWindow, bookings []model.Booking, startDate, endDate time.Time, durationMinutes int, busy []model.BusyInterval, now time.Time) []string {
	today := startOfDay(now)

	var dates []string
	for day := startOfDay(startDate); !day.After(endDate); day = day.AddDate(0, 0, 1) {
		if day.Before(today) {
			continue
		}
		dayEnd := day.AddDate(0, 0, 1)
		if DayHasFreeSlot(windows, bookings, day, dayEnd, durationMinutes, busy) {
			dates = append(dates, day.Format(DateLayout))
		}
	}
	return dates
}

// AvailableSlots returns every conflict-free slot on the day of date whose
// start is not in the past relative to now. Windows are processed
// independently: overlapping availability windows produce overlapping slots
// on purpose, since callers may not assume windows are pre-merged.
func AvailableSlots(windows []model.AvailabilityWindow, bookings []model.Booking, date time.Time, durationMinutes int, busy []model.BusyInterval, now time.Time) []model.FreeSlot {
	dayStart := startOfDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)
	d := time.Duration(durationMinutes) * time.Minute

	var slots []model.FreeSlot
	for _, w := range windows {
		if !intersectsDay(w, dayStart, dayEnd) {
			continue
		}
		start, end := clipToDay(w, dayStart, dayEnd)
		for _, candidate := range SlotStarts(start, end, durationMinutes) {
			if candidate.Before(now) {
				continue
			}
			if HasConflict(candidate, candidate.Add(d), bookings, busy) {
				continue
			}
			slots = append(slots, model.FreeSlot{Start: candidate, End: candidate.Add(d)})
		}
	}
	return slots
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
