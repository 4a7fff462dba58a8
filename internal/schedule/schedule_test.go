package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotbook/internal/model"
)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestSlotStarts(t *testing.T) {
	day := datetime(2026, 3, 10, 0, 0)

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		duration int
		want     int
	}{
		{"three hours of 30 min slots", day.Add(9 * time.Hour), day.Add(12 * time.Hour), 30, 6},
		{"exact single slot", day.Add(9 * time.Hour), day.Add(9*time.Hour + 30*time.Minute), 30, 1},
		{"range shorter than duration", day.Add(9 * time.Hour), day.Add(9*time.Hour + 20*time.Minute), 30, 0},
		{"inverted range", day.Add(12 * time.Hour), day.Add(9 * time.Hour), 30, 0},
		{"empty range", day.Add(9 * time.Hour), day.Add(9 * time.Hour), 30, 0},
		{"zero duration", day.Add(9 * time.Hour), day.Add(12 * time.Hour), 0, 0},
		{"negative duration", day.Add(9 * time.Hour), day.Add(12 * time.Hour), -15, 0},
		{"60 minute slots", day.Add(9 * time.Hour), day.Add(12 * time.Hour), 60, 3},
		{"partial trailing slot dropped", day.Add(9 * time.Hour), day.Add(10*time.Hour + 45*time.Minute), 30, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			starts := SlotStarts(tt.start, tt.end, tt.duration)
			require.Len(t, starts, tt.want)

			d := time.Duration(tt.duration) * time.Minute
			for i, s := range starts {
				// Equally spaced from the range start, each slot fits entirely.
				assert.Equal(t, tt.start.Add(time.Duration(i)*d), s)
				assert.False(t, s.Add(d).After(tt.end))
			}
		})
	}
}

func TestSlotStarts_Deterministic(t *testing.T) {
	start := datetime(2026, 3, 10, 9, 0)
	end := datetime(2026, 3, 10, 18, 0)

	first := SlotStarts(start, end, 45)
	second := SlotStarts(start, end, 45)
	assert.Equal(t, first, second)
}

func TestHasConflict(t *testing.T) {
	bookings := []model.Booking{
		{ID: 1, Start: datetime(2026, 3, 10, 10, 0), End: datetime(2026, 3, 10, 11, 0)},
	}
	busy := []model.BusyInterval{
		{Start: datetime(2026, 3, 10, 15, 0), End: datetime(2026, 3, 10, 16, 0)},
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"clear of everything", datetime(2026, 3, 10, 8, 0), datetime(2026, 3, 10, 9, 0), false},
		{"overlaps booking", datetime(2026, 3, 10, 10, 30), datetime(2026, 3, 10, 11, 30), true},
		{"inside booking", datetime(2026, 3, 10, 10, 15), datetime(2026, 3, 10, 10, 45), true},
		{"covers booking", datetime(2026, 3, 10, 9, 30), datetime(2026, 3, 10, 11, 30), true},
		{"ends when booking starts", datetime(2026, 3, 10, 9, 0), datetime(2026, 3, 10, 10, 0), false},
		{"starts when booking ends", datetime(2026, 3, 10, 11, 0), datetime(2026, 3, 10, 12, 0), false},
		{"overlaps busy interval", datetime(2026, 3, 10, 15, 30), datetime(2026, 3, 10, 16, 30), true},
		{"ends when busy starts", datetime(2026, 3, 10, 14, 0), datetime(2026, 3, 10, 15, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasConflict(tt.start, tt.end, bookings, busy))
		})
	}
}

func TestHasConflict_EmptyCollections(t *testing.T) {
	assert.False(t, HasConflict(datetime(2026, 3, 10, 10, 0), datetime(2026, 3, 10, 10, 30), nil, nil))
}

func TestDayHasFreeSlot(t *testing.T) {
	dayStart := datetime(2026, 3, 10, 0, 0)
	dayEnd := datetime(2026, 3, 11, 0, 0)

	morning := model.AvailabilityWindow{ID: 1, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 12, 0)}

	t.Run("open morning", func(t *testing.T) {
		assert.True(t, DayHasFreeSlot([]model.AvailabilityWindow{morning}, nil, dayStart, dayEnd, 30, nil))
	})

	t.Run("no windows", func(t *testing.T) {
		assert.False(t, DayHasFreeSlot(nil, nil, dayStart, dayEnd, 30, nil))
	})

	t.Run("window on another day", func(t *testing.T) {
		other := model.AvailabilityWindow{ID: 2, Start: datetime(2026, 3, 12, 9, 0), End: datetime(2026, 3, 12, 12, 0)}
		assert.False(t, DayHasFreeSlot([]model.AvailabilityWindow{other}, nil, dayStart, dayEnd, 30, nil))
	})

	t.Run("fully booked window", func(t *testing.T) {
		bookings := []model.Booking{
			{ID: 1, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 12, 0)},
		}
		assert.False(t, DayHasFreeSlot([]model.AvailabilityWindow{morning}, bookings, dayStart, dayEnd, 30, nil))
	})

	t.Run("busy covers exact window", func(t *testing.T) {
		window := model.AvailabilityWindow{ID: 3, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 10, 0)}
		busy := []model.BusyInterval{
			{Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 10, 0)},
		}
		assert.False(t, DayHasFreeSlot([]model.AvailabilityWindow{window}, nil, dayStart, dayEnd, 30, busy))
	})

	t.Run("spanning window clipped to day", func(t *testing.T) {
		spanning := model.AvailabilityWindow{ID: 4, Start: datetime(2026, 3, 9, 8, 0), End: datetime(2026, 3, 11, 8, 0)}
		assert.True(t, DayHasFreeSlot([]model.AvailabilityWindow{spanning}, nil, dayStart, dayEnd, 30, nil))
	})

	t.Run("malformed window yields nothing", func(t *testing.T) {
		inverted := model.AvailabilityWindow{ID: 5, Start: datetime(2026, 3, 10, 12, 0), End: datetime(2026, 3, 10, 9, 0)}
		assert.False(t, DayHasFreeSlot([]model.AvailabilityWindow{inverted}, nil, dayStart, dayEnd, 30, nil))
	})
}

func TestAvailableSlots_MorningWithBooking(t *testing.T) {
	// Availability 09:00-12:00, one booking 10:00-10:30, 30 min slots,
	// now = 08:00 the same day.
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 12, 0)},
	}
	bookings := []model.Booking{
		{ID: 1, Start: datetime(2026, 3, 10, 10, 0), End: datetime(2026, 3, 10, 10, 30)},
	}
	now := datetime(2026, 3, 10, 8, 0)

	slots := AvailableSlots(windows, bookings, datetime(2026, 3, 10, 0, 0), 30, nil, now)

	want := []model.FreeSlot{
		{Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 9, 30)},
		{Start: datetime(2026, 3, 10, 9, 30), End: datetime(2026, 3, 10, 10, 0)},
		{Start: datetime(2026, 3, 10, 10, 30), End: datetime(2026, 3, 10, 11, 0)},
		{Start: datetime(2026, 3, 10, 11, 0), End: datetime(2026, 3, 10, 11, 30)},
		{Start: datetime(2026, 3, 10, 11, 30), End: datetime(2026, 3, 10, 12, 0)},
	}
	assert.Equal(t, want, slots)
}

func TestAvailableSlots_BusyCoversWholeWindow(t *testing.T) {
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 10, 0)},
	}
	busy := []model.BusyInterval{
		{Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 10, 0)},
	}
	now := datetime(2026, 3, 10, 8, 0)

	slots := AvailableSlots(windows, nil, datetime(2026, 3, 10, 0, 0), 30, busy, now)
	assert.Empty(t, slots)
}

func TestAvailableSlots_PastExclusion(t *testing.T) {
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 11, 0)},
	}
	now := datetime(2026, 3, 10, 10, 0)

	slots := AvailableSlots(windows, nil, datetime(2026, 3, 10, 0, 0), 30, nil, now)

	require.Len(t, slots, 2)
	for _, s := range slots {
		assert.False(t, s.Start.Before(now))
	}
	assert.Equal(t, datetime(2026, 3, 10, 10, 0), slots[0].Start)
}

func TestAvailableSlots_DurationFidelityAndClipping(t *testing.T) {
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 9, 22, 0), End: datetime(2026, 3, 10, 10, 25)},
	}
	now := datetime(2026, 3, 9, 0, 0)
	dayStart := datetime(2026, 3, 10, 0, 0)

	slots := AvailableSlots(windows, nil, dayStart, 45, nil, now)
	require.NotEmpty(t, slots)

	for _, s := range slots {
		assert.Equal(t, 45*time.Minute, s.Duration())
		assert.False(t, s.Start.Before(dayStart))
		assert.False(t, s.End.After(datetime(2026, 3, 10, 10, 25)))
	}
}

func TestAvailableSlots_OverlappingWindowsNotDeduplicated(t *testing.T) {
	// Overlapping windows are processed independently; duplicate slots are
	// expected and callers must not assume pre-merged windows.
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 10, 0)},
		{ID: 2, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 10, 0)},
	}
	now := datetime(2026, 3, 10, 8, 0)

	slots := AvailableSlots(windows, nil, datetime(2026, 3, 10, 0, 0), 30, nil, now)
	assert.Len(t, slots, 4)
	assert.Equal(t, slots[0], slots[2])
	assert.Equal(t, slots[1], slots[3])
}

func TestAvailableSlots_NoOverlapWithInputs(t *testing.T) {
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 10, 8, 0), End: datetime(2026, 3, 10, 20, 0)},
	}
	bookings := []model.Booking{
		{ID: 1, Start: datetime(2026, 3, 10, 9, 15), End: datetime(2026, 3, 10, 10, 45)},
		{ID: 2, Start: datetime(2026, 3, 10, 13, 0), End: datetime(2026, 3, 10, 14, 0)},
	}
	busy := []model.BusyInterval{
		{Start: datetime(2026, 3, 10, 16, 30), End: datetime(2026, 3, 10, 17, 10)},
	}
	now := datetime(2026, 3, 10, 0, 0)

	slots := AvailableSlots(windows, bookings, datetime(2026, 3, 10, 0, 0), 30, busy, now)
	require.NotEmpty(t, slots)

	for _, s := range slots {
		assert.False(t, HasConflict(s.Start, s.End, bookings, busy), "slot %v conflicts", s)
	}
}

func TestAvailableSlots_Idempotent(t *testing.T) {
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 18, 0)},
	}
	bookings := []model.Booking{
		{ID: 1, Start: datetime(2026, 3, 10, 11, 0), End: datetime(2026, 3, 10, 12, 0)},
	}
	now := datetime(2026, 3, 10, 8, 0)

	first := AvailableSlots(windows, bookings, datetime(2026, 3, 10, 0, 0), 30, nil, now)
	second := AvailableSlots(windows, bookings, datetime(2026, 3, 10, 0, 0), 30, nil, now)
	assert.Equal(t, first, second)
}

func TestAvailableDates_Basic(t *testing.T) {
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 12, 0)},
		{ID: 2, Start: datetime(2026, 3, 12, 9, 0), End: datetime(2026, 3, 12, 12, 0)},
	}
	now := datetime(2026, 3, 9, 8, 0)

	dates := AvailableDates(windows, nil, datetime(2026, 3, 9, 0, 0), datetime(2026, 3, 13, 0, 0), 30, nil, now)
	assert.Equal(t, []string{"2026-03-10", "2026-03-12"}, dates)
}

func TestAvailableDates_ExcludesPastDays(t *testing.T) {
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 8, 9, 0), End: datetime(2026, 3, 8, 12, 0)},
		{ID: 2, Start: datetime(2026, 3, 12, 9, 0), End: datetime(2026, 3, 12, 12, 0)},
	}
	now := datetime(2026, 3, 10, 15, 0)

	dates := AvailableDates(windows, nil, datetime(2026, 3, 7, 0, 0), datetime(2026, 3, 13, 0, 0), 30, nil, now)
	assert.Equal(t, []string{"2026-03-12"}, dates)
}

func TestAvailableDates_SpanningWindowCoversMiddleDay(t *testing.T) {
	// Availability 08:00 day1 to 08:00 day3: the fully spanned middle day must
	// be included even though no window starts or ends on it.
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 10, 8, 0), End: datetime(2026, 3, 12, 8, 0)},
	}
	now := datetime(2026, 3, 9, 0, 0)

	dates := AvailableDates(windows, nil, datetime(2026, 3, 10, 0, 0), datetime(2026, 3, 12, 0, 0), 30, nil, now)
	assert.Equal(t, []string{"2026-03-10", "2026-03-11", "2026-03-12"}, dates)
}

func TestAvailableDates_FullyBookedDayDropped(t *testing.T) {
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 10, 0)},
	}
	bookings := []model.Booking{
		{ID: 1, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 10, 0)},
	}
	now := datetime(2026, 3, 9, 0, 0)

	dates := AvailableDates(windows, bookings, datetime(2026, 3, 10, 0, 0), datetime(2026, 3, 10, 0, 0), 30, nil, now)
	assert.Empty(t, dates)
}

func TestAvailableDates_EmptyInputs(t *testing.T) {
	now := datetime(2026, 3, 9, 0, 0)
	dates := AvailableDates(nil, nil, datetime(2026, 3, 10, 0, 0), datetime(2026, 3, 12, 0, 0), 30, nil, now)
	assert.Empty(t, dates)
}

func TestAvailableDates_Idempotent(t *testing.T) {
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 12, 0)},
	}
	now := datetime(2026, 3, 9, 0, 0)

	first := AvailableDates(windows, nil, datetime(2026, 3, 9, 0, 0), datetime(2026, 3, 11, 0, 0), 30, nil, now)
	second := AvailableDates(windows, nil, datetime(2026, 3, 9, 0, 0), datetime(2026, 3, 11, 0, 0), 30, nil, now)
	assert.Equal(t, first, second)
}

func TestAggregatorsAgree(t *testing.T) {
	// A date reported by AvailableDates must yield a non-empty slot list from
	// AvailableSlots with the same inputs, and vice versa.
	windows := []model.AvailabilityWindow{
		{ID: 1, Start: datetime(2026, 3, 10, 9, 0), End: datetime(2026, 3, 10, 12, 0)},
		{ID: 2, Start: datetime(2026, 3, 11, 9, 0), End: datetime(2026, 3, 11, 10, 0)},
		{ID: 3, Start: datetime(2026, 3, 12, 14, 0), End: datetime(2026, 3, 12, 18, 0)},
	}
	bookings := []model.Booking{
		{ID: 1, Start: datetime(2026, 3, 11, 9, 0), End: datetime(2026, 3, 11, 10, 0)},
	}
	busy := []model.BusyInterval{
		{Start: datetime(2026, 3, 12, 14, 0), End: datetime(2026, 3, 12, 16, 0)},
	}
	now := datetime(2026, 3, 9, 0, 0)
	start := datetime(2026, 3, 9, 0, 0)
	end := datetime(2026, 3, 13, 0, 0)

	dates := AvailableDates(windows, bookings, start, end, 30, busy, now)
	reported := make(map[string]bool, len(dates))
	for _, d := range dates {
		reported[d] = true
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		slots := AvailableSlots(windows, bookings, day, 30, busy, now)
		assert.Equal(t, len(slots) > 0, reported[day.Format(DateLayout)],
			"aggregators disagree on %s", day.Format(DateLayout))
	}
}
