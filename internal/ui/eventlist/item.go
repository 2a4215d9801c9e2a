package eventlist

import (
	"strings"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/render"
)

// EventItem wraps an event for the bubbles list.
type EventItem struct {
	api.Event
	Index      int
	Registered bool
}

func (e EventItem) Title() string {
	if e.Event.Title != "" {
		return e.Event.Title
	}
	return "(untitled event)"
}

func (e EventItem) Description() string {
	parts := make([]string, 0, 3)
	parts = append(parts, render.FormatEventDate(e.Date))
	if e.Time != "" {
		parts = append(parts, e.Time)
	}
	if e.Venue != "" {
		parts = append(parts, e.Venue)
	}
	return strings.Join(parts, " | ")
}

func (e EventItem) FilterValue() string {
	return e.Event.Title + " " + e.Venue
}
