package gcal

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"slotbook/internal/model"
)

// Client queries busy intervals from a Google calendar via the FreeBusy API.
type Client struct {
	svc        *calendar.Service
	calendarID string
}

// NewClient builds a read-only calendar client from a service-account
// credentials file.
func NewClient(ctx context.Context, credentialsFile, calendarID string) (*Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &Client{svc: svc, calendarID: calendarID}, nil
}

// BusyIntervals returns the calendar's busy spans within [from, to].
func (c *Client) BusyIntervals(ctx context.Context, from, to time.Time) ([]model.BusyInterval, error) {
	req := &calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: c.calendarID}},
	}

	resp, err := c.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query: %w", err)
	}

	cal, ok := resp.Calendars[c.calendarID]
	if !ok {
		return nil, fmt.Errorf("calendar %s missing from freebusy response", c.calendarID)
	}
	for _, e := range cal.Errors {
		return nil, fmt.Errorf("freebusy error for %s: %s", c.calendarID, e.Reason)
	}

	return parseBusyPeriods(cal.Busy)
}

func parseBusyPeriods(periods []*calendar.TimePeriod) ([]model.BusyInterval, error) {
	intervals := make([]model.BusyInterval, 0, len(periods))
	for _, p := range periods {
		start, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			return nil, fmt.Errorf("parse busy start %q: %w", p.Start, err)
		}
		end, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			return nil, fmt.Errorf("parse busy end %q: %w", p.End, err)
		}
		intervals = append(intervals, model.BusyInterval{Start: start, End: end})
	}
	return intervals, nil
}
