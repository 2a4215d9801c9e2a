package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// MonitoredEvent tracks which announcements of an event have been seen.
type MonitoredEvent struct {
	EventID     string
	KnownIDs    []string
	LastChecked time.Time
}

// Known reports whether announcementID was already seen.
func (m MonitoredEvent) Known(announcementID string) bool {
	for _, id := range m.KnownIDs {
		if id == announcementID {
			return true
		}
	}
	return false
}

// GetMonitoredEvent returns the tracking row for eventID. ok is false when
// the event has never been polled.
func (d *DB) GetMonitoredEvent(eventID string) (MonitoredEvent, bool, error) {
	me := MonitoredEvent{EventID: eventID}
	var idsJSON string
	var lastChecked int64
	err := d.db.QueryRow(`SELECT known_ids, last_checked FROM monitored_events WHERE event_id = ?`, eventID).
		Scan(&idsJSON, &lastChecked)
	if errors.Is(err, sql.ErrNoRows) {
		return me, false, nil
	}
	if err != nil {
		return me, false, err
	}
	if err := json.Unmarshal([]byte(idsJSON), &me.KnownIDs); err != nil {
		return me, false, err
	}
	me.LastChecked = time.Unix(lastChecked, 0)
	return me, true, nil
}

// UpsertMonitoredEvent inserts or updates a tracking row.
func (d *DB) UpsertMonitoredEvent(me MonitoredEvent) error {
	ids := me.KnownIDs
	if ids == nil {
		ids = []string{}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`INSERT OR REPLACE INTO monitored_events (event_id, known_ids, last_checked) VALUES (?, ?, ?)`,
		me.EventID, string(idsJSON), me.LastChecked.Unix())
	return err
}

// Notification is a new announcement on an event the user is registered for.
type Notification struct {
	ID             int64
	AnnouncementID string
	EventID        string
	EventTitle     string
	PostedBy       string
	Preview        string
	CreatedAt      time.Time
	Read           bool
}

// AddNotification records n. A second notification for the same
// announcement is ignored.
func (d *DB) AddNotification(n Notification) error {
	_, err := d.db.Exec(`INSERT OR IGNORE INTO notifications
		(announcement_id, event_id, event_title, posted_by, preview, created_at, read)
		VALUES (?, ?, ?, ?, ?, ?, 0)`,
		n.AnnouncementID, n.EventID, n.EventTitle, n.PostedBy, n.Preview, n.CreatedAt.Unix())
	return err
}

// ListNotifications returns up to limit notifications, newest first.
func (d *DB) ListNotifications(limit int) ([]Notification, error) {
	rows, err := d.db.Query(`SELECT id, announcement_id, event_id, event_title, posted_by, preview, created_at, read
		FROM notifications ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		var n Notification
		var title, by, preview sql.NullString
		var createdAt int64
		var read int
		if err := rows.Scan(&n.ID, &n.AnnouncementID, &n.EventID, &title, &by, &preview, &createdAt, &read); err != nil {
			return nil, err
		}
		n.EventTitle = title.String
		n.PostedBy = by.String
		n.Preview = preview.String
		n.CreatedAt = time.Unix(createdAt, 0)
		n.Read = read != 0
		result = append(result, n)
	}
	return result, rows.Err()
}

func (d *DB) MarkNotificationRead(id int64) error {
	_, err := d.db.Exec(`UPDATE notifications SET read = 1 WHERE id = ?`, id)
	return err
}

// UnreadNotificationCount returns the number of unread notifications.
func (d *DB) UnreadNotificationCount() int {
	var count int
	d.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE read = 0`).Scan(&count)
	return count
}
