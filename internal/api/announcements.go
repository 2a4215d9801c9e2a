package api

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ListAnnouncements returns the announcements posted on an event.
func (c *Client) ListAnnouncements(ctx context.Context, eventID string) ([]Announcement, error) {
	var anns []Announcement
	if err := c.getJSON(ctx, "/announcements/"+eventID, &anns); err != nil {
		return nil, fmt.Errorf("fetching announcements for %s: %w", eventID, err)
	}
	return anns, nil
}

// BatchGetAnnouncements fetches announcements for several events
// concurrently with a concurrency limit. Events whose fetch fails are
// absent from the result.
func (c *Client) BatchGetAnnouncements(ctx context.Context, eventIDs []string) (map[string][]Announcement, error) {
	results := make(map[string][]Announcement, len(eventIDs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, id := range eventIDs {
		g.Go(func() error {
			anns, err := c.ListAnnouncements(ctx, id)
			if err != nil {
				// Non-fatal: one event failing shouldn't hide the rest.
				c.log.Debug("announcement fetch failed", "event", id, "error", err)
				return nil
			}
			mu.Lock()
			results[id] = anns
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// PostAnnouncement publishes message on eventID. file may be nil.
func (c *Client) PostAnnouncement(ctx context.Context, eventID, message string, file *Upload) error {
	fields := [][2]string{
		{"eventId", eventID},
		{"message", message},
	}
	if err := c.postForm(ctx, "/announcements", fields, "file", file, nil); err != nil {
		return fmt.Errorf("posting announcement: %w", err)
	}
	return nil
}

// DeleteAnnouncement removes an announcement the logged-in club posted.
func (c *Client) DeleteAnnouncement(ctx context.Context, id string) error {
	if err := c.delete(ctx, "/announcements/"+id); err != nil {
		return fmt.Errorf("deleting announcement %s: %w", id, err)
	}
	return nil
}
