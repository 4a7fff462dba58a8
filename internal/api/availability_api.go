package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"slotbook/internal/metrics"
	"slotbook/internal/model"
	"slotbook/internal/schedule"
)

// DatesResponse is the response for GET /api/v1/availability/dates.
type DatesResponse struct {
	Dates  []string `json:"dates"`
	Period struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"period"`
}

// SlotsResponse is the response for GET /api/v1/availability/slots.
type SlotsResponse struct {
	Date  string           `json:"date"`
	Slots []model.FreeSlot `json:"slots"`
}

// handleDates returns the calendar dates with at least one free slot.
// GET /api/v1/availability/dates?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD&duration=30
func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	metrics.IncQuery("dates")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	startDate, endDate, err := s.parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	duration, err := s.parseDuration(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := fmt.Sprintf("dates:%s:%s:%d",
		startDate.Format(schedule.DateLayout), endDate.Format(schedule.DateLayout), duration)
	var resp DatesResponse
	if s.cache.read(r.Context(), cacheKey, &resp) {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	now := s.now()
	windows, bookings, busy, err := s.loadSnapshot(r, startDate, endDate.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error().Err(err).Msg("load snapshot")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp.Dates = schedule.AvailableDates(windows, bookings, startDate, endDate, duration, busy, now)
	if resp.Dates == nil {
		resp.Dates = []string{}
	}
	resp.Period.Start = startDate.Format(schedule.DateLayout)
	resp.Period.End = endDate.Format(schedule.DateLayout)

	s.cache.write(r.Context(), cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

// handleSlots returns the free slots of a single day.
// GET /api/v1/availability/slots?date=YYYY-MM-DD&duration=30
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncQuery("slots")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.Parse(schedule.DateLayout, dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	duration, err := s.parseDuration(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := s.now()
	windows, bookings, busy, err := s.loadSnapshot(r, date, date.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error().Err(err).Msg("load snapshot")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slots := schedule.AvailableSlots(windows, bookings, date, duration, busy, now)
	if slots == nil {
		slots = []model.FreeSlot{}
	}
	metrics.AddFreeSlots(len(slots))

	writeJSON(w, http.StatusOK, SlotsResponse{Date: dateStr, Slots: slots})
}

func (s *Server) parseDateRange(r *http.Request) (start, end time.Time, err error) {
	q := r.URL.Query()
	startStr, endStr := q.Get("start_date"), q.Get("end_date")
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date and end_date are required")
	}

	start, err = time.Parse(schedule.DateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format; expected YYYY-MM-DD")
	}
	end, err = time.Parse(schedule.DateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format; expected YYYY-MM-DD")
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must be before or equal to end_date")
	}
	if maxDays := s.maxRangeDays(); int(end.Sub(start).Hours()/24) > maxDays {
		return time.Time{}, time.Time{}, fmt.Errorf("date range exceeds maximum of %d days", maxDays)
	}
	return start, end, nil
}

func (s *Server) parseDuration(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("duration")
	if raw == "" {
		return s.defaultDuration(), nil
	}
	duration, err := strconv.Atoi(raw)
	if err != nil || duration <= 0 {
		return 0, fmt.Errorf("duration must be a positive number of minutes")
	}
	return duration, nil
}

func (s *Server) loadSnapshot(r *http.Request, from, to time.Time) ([]model.AvailabilityWindow, []model.Booking, []model.BusyInterval, error) {
	ctx := r.Context()

	windows, err := s.store.WindowsInRange(ctx, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("windows: %w", err)
	}
	bookings, err := s.store.ActiveBookingsInRange(ctx, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("bookings: %w", err)
	}
	busy, err := s.store.BusyInRange(ctx, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("busy: %w", err)
	}
	return windows, bookings, busy, nil
}
