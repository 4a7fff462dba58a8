package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"slotbook/internal/model"
	"slotbook/internal/schedule"
)

// DayReport collects everything shown for one calendar day.
type DayReport struct {
	Date      string
	FreeSlots []model.FreeSlot
	Events    []model.CalendarEvent
}

// BuildDayReports computes a per-day report over [startDate, endDate]
// inclusive, using the same core functions as the query endpoints.
func BuildDayReports(windows []model.AvailabilityWindow, bookings []model.Booking, busy []model.BusyInterval, startDate, endDate time.Time, durationMinutes int, now time.Time) []DayReport {
	var reports []DayReport
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)

		report := DayReport{Date: dayStart.Format(schedule.DateLayout)}
		report.FreeSlots = schedule.AvailableSlots(windows, bookings, dayStart, durationMinutes, busy, now)

		for _, w := range windows {
			if w.Start.Before(dayEnd) && w.End.After(dayStart) {
				report.Events = append(report.Events, w.Event())
			}
		}
		for _, b := range bookings {
			if b.Start.Before(dayEnd) && b.End.After(dayStart) {
				report.Events = append(report.Events, b.Event())
			}
		}
		for _, iv := range busy {
			if iv.Start.Before(dayEnd) && iv.End.After(dayStart) {
				report.Events = append(report.Events, iv.Event())
			}
		}

		reports = append(reports, report)
	}
	return reports
}

// Writer produces availability report workbooks.
type Writer struct {
	file       *excelize.File
	currentRow int
	sheet      string
}

// NewWriter creates an empty workbook writer.
func NewWriter() *Writer {
	return &Writer{file: excelize.NewFile()}
}

func (w *Writer) addSheet(name string) error {
	if len(name) > 31 {
		name = name[:31] // Excel sheet name limit
	}
	if w.sheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	w.sheet = name
	w.currentRow = 1
	return nil
}

func (w *Writer) writeHeader(columns []string) error {
	if err := w.writeRow(toAny(columns)); err != nil {
		return err
	}
	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow-1)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow-1)
		_ = w.file.SetCellStyle(w.sheet, startCell, endCell, style)
	}
	return nil
}

func (w *Writer) writeRow(row []interface{}) error {
	if w.sheet == "" {
		return fmt.Errorf("no active sheet")
	}
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, val); err != nil {
			return err
		}
	}
	w.currentRow++
	return nil
}

// WriteReport writes a two-sheet workbook: free slots, then the full event
// calendar with the kind tag and whether the row blocks availability.
func (w *Writer) WriteReport(reports []DayReport) error {
	if err := w.addSheet("Free Slots"); err != nil {
		return err
	}
	if err := w.writeHeader([]string{"Date", "Start", "End", "Minutes"}); err != nil {
		return err
	}
	for _, r := range reports {
		for _, s := range r.FreeSlots {
			row := []interface{}{r.Date, s.Start.Format("15:04"), s.End.Format("15:04"), int(s.Duration().Minutes())}
			if err := w.writeRow(row); err != nil {
				return err
			}
		}
	}

	if err := w.addSheet("Calendar"); err != nil {
		return err
	}
	if err := w.writeHeader([]string{"Date", "Kind", "Start", "End", "Blocking"}); err != nil {
		return err
	}
	for _, r := range reports {
		for _, e := range r.Events {
			row := []interface{}{r.Date, string(e.Kind), e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), e.Blocking()}
			if err := w.writeRow(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// Save writes the workbook to wr.
func (w *Writer) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

// SaveToFile writes the workbook to disk.
func (w *Writer) SaveToFile(path string) error {
	return w.file.SaveAs(path)
}

// Close releases resources.
func (w *Writer) Close() error {
	return w.file.Close()
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
