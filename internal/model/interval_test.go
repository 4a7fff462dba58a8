package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestBooking_OverlapsWith(t *testing.T) {
	existing := Booking{
		Start: datetime(2026, 3, 10, 10, 0),
		End:   datetime(2026, 3, 10, 14, 0),
	}

	// Back-to-back before
	before := Booking{Start: datetime(2026, 3, 10, 8, 0), End: datetime(2026, 3, 10, 10, 0)}
	assert.False(t, existing.OverlapsWith(&before))

	// Back-to-back after
	after := Booking{Start: datetime(2026, 3, 10, 14, 0), End: datetime(2026, 3, 10, 16, 0)}
	assert.False(t, existing.OverlapsWith(&after))

	during := Booking{Start: datetime(2026, 3, 10, 12, 0), End: datetime(2026, 3, 10, 16, 0)}
	assert.True(t, existing.OverlapsWith(&during))

	contained := Booking{Start: datetime(2026, 3, 10, 11, 0), End: datetime(2026, 3, 10, 13, 0)}
	assert.True(t, existing.OverlapsWith(&contained))
}

func TestBooking_ContainsTime(t *testing.T) {
	b := Booking{
		Start: datetime(2026, 3, 10, 10, 0),
		End:   datetime(2026, 3, 10, 14, 0),
	}

	assert.True(t, b.ContainsTime(datetime(2026, 3, 10, 10, 0)))
	assert.True(t, b.ContainsTime(datetime(2026, 3, 10, 12, 0)))
	assert.False(t, b.ContainsTime(datetime(2026, 3, 10, 14, 0)))
	assert.False(t, b.ContainsTime(datetime(2026, 3, 10, 9, 0)))
}

func TestBooking_ContainsDate(t *testing.T) {
	multiDay := Booking{
		Start: datetime(2026, 3, 10, 10, 0),
		End:   datetime(2026, 3, 12, 14, 0),
	}

	assert.True(t, multiDay.ContainsDate(datetime(2026, 3, 10, 0, 0)))
	assert.True(t, multiDay.ContainsDate(datetime(2026, 3, 11, 0, 0)))
	assert.True(t, multiDay.ContainsDate(datetime(2026, 3, 12, 0, 0)))
	assert.False(t, multiDay.ContainsDate(datetime(2026, 3, 9, 0, 0)))
	assert.False(t, multiDay.ContainsDate(datetime(2026, 3, 13, 0, 0)))
}

func TestAvailabilityWindow_SpansDay(t *testing.T) {
	dayStart := datetime(2026, 3, 11, 0, 0)
	dayEnd := datetime(2026, 3, 12, 0, 0)

	spanning := AvailabilityWindow{Start: datetime(2026, 3, 10, 8, 0), End: datetime(2026, 3, 12, 8, 0)}
	assert.True(t, spanning.SpansDay(dayStart, dayEnd))

	inside := AvailabilityWindow{Start: datetime(2026, 3, 11, 9, 0), End: datetime(2026, 3, 11, 17, 0)}
	assert.False(t, inside.SpansDay(dayStart, dayEnd))

	exact := AvailabilityWindow{Start: dayStart, End: dayEnd}
	assert.True(t, exact.SpansDay(dayStart, dayEnd))
}

func TestActiveBookings(t *testing.T) {
	bookings := []Booking{
		{ID: 1, Status: "confirmed"},
		{ID: 2, Status: "confirmed"},
		{ID: 3, Status: "confirmed"},
	}
	status := map[int64]BookingStatusInfo{
		1: {IsCancelled: false, GuestStatus: "accepted"},
		2: {IsCancelled: true},
	}

	active := ActiveBookings(bookings, status)

	assert.Len(t, active, 2)
	assert.Equal(t, int64(1), active[0].ID)
	assert.Equal(t, "accepted", active[0].GuestStatus)
	assert.Equal(t, int64(3), active[1].ID)
}

func TestCalendarEvent_Kinds(t *testing.T) {
	w := AvailabilityWindow{ID: 7, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 12, 0)}
	b := Booking{ID: 8, Start: datetime(2026, 3, 10, 10, 0), End: datetime(2026, 3, 10, 10, 30)}
	busy := BusyInterval{Start: datetime(2026, 3, 10, 11, 0), End: datetime(2026, 3, 10, 11, 30)}

	assert.Equal(t, EventAvailability, w.Event().Kind)
	assert.False(t, w.Event().Blocking())

	assert.Equal(t, EventBooked, b.Event().Kind)
	assert.True(t, b.Event().Blocking())

	assert.Equal(t, EventBusy, busy.Event().Kind)
	assert.True(t, busy.Event().Blocking())
}
