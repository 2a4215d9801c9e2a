package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/fragmede/campusevents/internal/api"
)

// Event list keys.
const (
	ListAll = "all"
	ListMy  = "my"
)

// GetEventList returns the cached events for listType and whether they are
// younger than ttl. events is nil on a miss.
func (d *DB) GetEventList(listType string, ttl time.Duration) ([]api.Event, bool, error) {
	row := d.db.QueryRow(`SELECT payload, fetched_at FROM event_lists WHERE list_type = ?`, listType)

	var payload string
	var fetchedAt int64
	err := row.Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var events []api.Event
	if err := json.Unmarshal([]byte(payload), &events); err != nil {
		return nil, false, err
	}
	if events == nil {
		events = []api.Event{}
	}

	fresh := time.Since(time.Unix(fetchedAt, 0)) < ttl
	return events, fresh, nil
}

// PutEventList stores events under listType, stamped now.
func (d *DB) PutEventList(listType string, events []api.Event) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`INSERT OR REPLACE INTO event_lists (list_type, payload, fetched_at) VALUES (?, ?, ?)`,
		listType, string(payload), time.Now().Unix())
	return err
}

// InvalidateEventList drops listType so the next read misses. Called after
// creating or deleting an event.
func (d *DB) InvalidateEventList(listType string) error {
	_, err := d.db.Exec(`DELETE FROM event_lists WHERE list_type = ?`, listType)
	return err
}
