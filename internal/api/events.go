package api

import (
	"context"
	"errors"
	"fmt"
)

// NewEvent is the form a club fills to create an event.
type NewEvent struct {
	Title           string
	Description     string
	Venue           string
	Date            string
	Time            string
	FormLink        string
	GoogleSheetLink string
}

// ErrEventNotFound is returned by GetEvent when no listed event matches.
var ErrEventNotFound = errors.New("event not found")

// ListEvents returns every published event.
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.getJSON(ctx, "/events", &events); err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	return events, nil
}

// MyEvents returns the events created by the logged-in club.
func (c *Client) MyEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.getJSON(ctx, "/events/my", &events); err != nil {
		return nil, fmt.Errorf("fetching my events: %w", err)
	}
	return events, nil
}

// GetEvent finds a single event. The backend has no per-event route, so
// this scans the full listing.
func (c *Client) GetEvent(ctx context.Context, id string) (*Event, error) {
	events, err := c.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].ID == id {
			return &events[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
}

// CreateEvent publishes a new event for the logged-in club. image may be nil.
func (c *Client) CreateEvent(ctx context.Context, ev NewEvent, image *Upload) (*Event, error) {
	fields := [][2]string{
		{"title", ev.Title},
		{"description", ev.Description},
		{"venue", ev.Venue},
		{"date", ev.Date},
		{"time", ev.Time},
		{"formLink", ev.FormLink},
		{"googleSheetLink", ev.GoogleSheetLink},
	}
	var created Event
	if err := c.postForm(ctx, "/events", fields, "image", image, &created); err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}
	return &created, nil
}

// DeleteEvent removes one of the logged-in club's events.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	if err := c.delete(ctx, "/events/"+id); err != nil {
		return fmt.Errorf("deleting event %s: %w", id, err)
	}
	return nil
}
