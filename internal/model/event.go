package model

import "time"

// EventKind discriminates the calendar-event variants that share one display
// surface. Dispatch on Kind is exhaustive; there is no duck typing.
type EventKind string

const (
	EventAvailability EventKind = "availability"
	EventBusy         EventKind = "busy"
	EventBooked       EventKind = "booked"
)

// CalendarEvent is the tagged union over the three interval sources.
type CalendarEvent struct {
	Kind  EventKind `json:"kind"`
	ID    int64     `json:"id,omitempty"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w AvailabilityWindow) Event() CalendarEvent {
	return CalendarEvent{Kind: EventAvailability, ID: w.ID, Start: w.Start, End: w.End}
}

func (b Booking) Event() CalendarEvent {
	return CalendarEvent{Kind: EventBooked, ID: b.ID, Start: b.Start, End: b.End}
}

func (i BusyInterval) Event() CalendarEvent {
	return CalendarEvent{Kind: EventBusy, Start: i.Start, End: i.End}
}

// Blocking reports whether the event removes availability rather than
// granting it.
func (e CalendarEvent) Blocking() bool {
	switch e.Kind {
	case EventBusy, EventBooked:
		return true
	case EventAvailability:
		return false
	}
	return false
}
