package api

import (
	"fmt"
	"net/http"

	"slotbook/internal/export"
	"slotbook/internal/metrics"
	"slotbook/internal/schedule"
)

// handleReport streams an availability workbook for the requested range.
// GET /api/v1/availability/report.xlsx?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD&duration=30
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	metrics.IncQuery("report")

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

	now := s.now()
	windows, bookings, busy, err := s.loadSnapshot(r, startDate, endDate.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error().Err(err).Msg("load snapshot")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	reports := export.BuildDayReports(windows, bookings, busy, startDate, endDate, duration, now)

	wr := export.NewWriter()
	defer wr.Close()
	if err := wr.WriteReport(reports); err != nil {
		s.logger.Error().Err(err).Msg("build report")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	filename := fmt.Sprintf("availability_%s_%s.xlsx",
		startDate.Format(schedule.DateLayout), endDate.Format(schedule.DateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := wr.Save(w); err != nil {
		s.logger.Error().Err(err).Msg("write report")
	}
}
