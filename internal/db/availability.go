package db

import (
	"context"
	"fmt"
	"time"

	"slotbook/internal/model"
)

// WindowsInRange returns availability windows touching [from, to), ordered by
// start time. Windows that begin before the range but extend into it are
// included.
func (db *DB) WindowsInRange(ctx context.Context, from, to time.Time) ([]model.AvailabilityWindow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, start_time, end_time
		FROM availability_windows
		WHERE start_time < ? AND end_time > ?
		ORDER BY start_time`,
		to, from,
	)
	if err != nil {
		return nil, fmt.Errorf("query windows: %w", err)
	}
	defer rows.Close()

	var windows []model.AvailabilityWindow
	for rows.Next() {
		var w model.AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.Start, &w.End); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// ActiveBookingsInRange returns non-cancelled bookings touching [from, to).
func (db *DB) ActiveBookingsInRange(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, start_time, end_time, status, COALESCE(guest_status, '')
		FROM bookings
		WHERE start_time < ? AND end_time > ?
		AND status NOT IN ('cancelled', 'rejected')
		ORDER BY start_time`,
		to, from,
	)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.Start, &b.End, &b.Status, &b.GuestStatus); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// BusyInRange returns imported busy intervals touching [from, to).
func (db *DB) BusyInRange(ctx context.Context, from, to time.Time) ([]model.BusyInterval, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT start_time, end_time
		FROM busy_intervals
		WHERE start_time < ? AND end_time > ?
		ORDER BY start_time`,
		to, from,
	)
	if err != nil {
		return nil, fmt.Errorf("query busy intervals: %w", err)
	}
	defer rows.Close()

	var intervals []model.BusyInterval
	for rows.Next() {
		var iv model.BusyInterval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

// CreateWindow stores a new availability window.
func (db *DB) CreateWindow(ctx context.Context, w *model.AvailabilityWindow) error {
	if w == nil {
		return fmt.Errorf("window is nil")
	}
	res, err := db.ExecContext(ctx,
		"INSERT INTO availability_windows (start_time, end_time) VALUES (?, ?)",
		w.Start, w.End,
	)
	if err != nil {
		return fmt.Errorf("insert window: %w", err)
	}
	w.ID, err = res.LastInsertId()
	return err
}

// DeleteWindow removes an availability window.
func (db *DB) DeleteWindow(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM availability_windows WHERE id = ?", id)
	return err
}

// CreateBooking stores a booking snapshot row.
func (db *DB) CreateBooking(ctx context.Context, b *model.Booking) error {
	if b == nil {
		return fmt.Errorf("booking is nil")
	}
	if b.Status == "" {
		b.Status = "confirmed"
	}
	res, err := db.ExecContext(ctx,
		"INSERT INTO bookings (start_time, end_time, status, guest_status) VALUES (?, ?, ?, ?)",
		b.Start, b.End, b.Status, b.GuestStatus,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	b.ID, err = res.LastInsertId()
	return err
}

// UpdateBookingStatus mirrors a lifecycle change made by the booking product.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	_, err := db.ExecContext(ctx,
		"UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), id,
	)
	return err
}

// ReplaceBusyIntervals swaps all busy intervals for a source with a freshly
// synced set, in one transaction.
func (db *DB) ReplaceBusyIntervals(ctx context.Context, source string, intervals []model.BusyInterval) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM busy_intervals WHERE source = ?", source); err != nil {
		return fmt.Errorf("clear busy intervals: %w", err)
	}

	now := time.Now()
	for _, iv := range intervals {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO busy_intervals (source, start_time, end_time, synced_at) VALUES (?, ?, ?, ?)",
			source, iv.Start, iv.End, now,
		); err != nil {
			return fmt.Errorf("insert busy interval: %w", err)
		}
	}
	return tx.Commit()
}
