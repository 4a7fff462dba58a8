package model

import "time"

// AvailabilityWindow is a contiguous span during which the host is open for
// booking. Windows may span multiple days and are not required to be disjoint.
type AvailabilityWindow struct {
	ID    int64     `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Booking is a confirmed reservation that removes availability.
type Booking struct {
	ID          int64     `json:"id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Status      string    `json:"status"`
	GuestStatus string    `json:"guest_status,omitempty"`
}

// BusyInterval is a block imported from an external calendar. It has no
// identity beyond its span.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FreeSlot is a bookable span of exactly one slot duration. Slots are
// computed fresh per query and never persisted.
type FreeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w AvailabilityWindow) Duration() time.Duration { return w.End.Sub(w.Start) }

// SpansDay reports whether the window covers the whole of [dayStart, dayEnd].
func (w AvailabilityWindow) SpansDay(dayStart, dayEnd time.Time) bool {
	return !w.Start.After(dayStart) && !w.End.Before(dayEnd)
}

func (b Booking) Duration() time.Duration { return b.End.Sub(b.Start) }

// OverlapsWith uses the half-open rule: intervals that only touch at a
// boundary do not overlap.
func (b Booking) OverlapsWith(other *Booking) bool {
	return b.Start.Before(other.End) && other.Start.Before(b.End)
}

// ContainsTime reports whether t falls inside [Start, End).
func (b Booking) ContainsTime(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// ContainsDate reports whether the booking touches the calendar day of date.
func (b Booking) ContainsDate(date time.Time) bool {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)
	return b.Start.Before(dayEnd) && b.End.After(dayStart)
}

func (s FreeSlot) Duration() time.Duration { return s.End.Sub(s.Start) }

// BookingStatusInfo is what the external booking-status collaborator reports
// for a booking identifier.
type BookingStatusInfo struct {
	IsCancelled bool
	GuestStatus string
}

// ActiveBookings drops cancelled bookings and attaches guest status. Bookings
// without a status entry are kept as-is; the core only ever sees the result.
func ActiveBookings(bookings []Booking, status map[int64]BookingStatusInfo) []Booking {
	active := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		info, ok := status[b.ID]
		if ok && info.IsCancelled {
			continue
		}
		if ok {
			b.GuestStatus = info.GuestStatus
		}
		active = append(active, b)
	}
	return active
}
