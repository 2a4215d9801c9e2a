package cache

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/campusevents/internal/api"
)

const server = "http://localhost:5000"

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestEventListMissThenHit(t *testing.T) {
	db := openTestDB(t)

	events, fresh, err := db.GetEventList(ListAll, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, events)
	assert.False(t, fresh)

	want := []api.Event{{ID: "E1", Title: "Hackathon", Venue: "LT-1"}, {ID: "E2", Title: "Fresher's Night"}}
	require.NoError(t, db.PutEventList(ListAll, want))

	events, fresh, err = db.GetEventList(ListAll, time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, want, events)

	_, fresh, err = db.GetEventList(ListAll, 0)
	require.NoError(t, err)
	assert.False(t, fresh, "zero ttl is always stale")
}

func TestEmptyEventListIsAHit(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.PutEventList(ListMy, nil))

	events, fresh, err := db.GetEventList(ListMy, time.Minute)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
	assert.True(t, fresh)
}

func TestInvalidateEventList(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.PutEventList(ListMy, []api.Event{{ID: "E1"}}))
	require.NoError(t, db.PutEventList(ListAll, []api.Event{{ID: "E1"}}))

	require.NoError(t, db.InvalidateEventList(ListMy))

	events, _, err := db.GetEventList(ListMy, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, events)
	events, _, err = db.GetEventList(ListAll, time.Minute)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestCookiesPersist(t *testing.T) {
	db := openTestDB(t)

	got, err := db.LoadCookies(server)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, db.SaveCookies(server, []*http.Cookie{
		{Name: "token", Value: "abc", Path: "/", HttpOnly: true},
		{Name: "old", Value: "x", Expires: time.Now().Add(-time.Hour)},
	}))

	got, err = db.LoadCookies(server)
	require.NoError(t, err)
	require.Len(t, got, 1, "expired cookies are dropped")
	assert.Equal(t, "token", got[0].Name)
	assert.Equal(t, "abc", got[0].Value)
	assert.True(t, got[0].HttpOnly)

	other, err := db.LoadCookies("https://other.example.edu")
	require.NoError(t, err)
	assert.Nil(t, other, "cookies are scoped to their server")

	require.NoError(t, db.ClearCookies(server))
	got, err = db.LoadCookies(server)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveNoCookiesClears(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveCookies(server, []*http.Cookie{{Name: "token", Value: "abc"}}))

	require.NoError(t, db.SaveCookies(server, nil))

	got, err := db.LoadCookies(server)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMonitoredEvent(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := db.GetMonitoredEvent("E1")
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Unix(time.Now().Unix(), 0)
	require.NoError(t, db.UpsertMonitoredEvent(MonitoredEvent{EventID: "E1", KnownIDs: []string{"A1"}, LastChecked: now}))
	require.NoError(t, db.UpsertMonitoredEvent(MonitoredEvent{EventID: "E1", KnownIDs: []string{"A1", "A2"}, LastChecked: now}))

	me, ok, err := db.GetMonitoredEvent("E1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"A1", "A2"}, me.KnownIDs)
	assert.True(t, me.Known("A2"))
	assert.False(t, me.Known("A3"))
	assert.True(t, now.Equal(me.LastChecked))
}

func TestNotifications(t *testing.T) {
	db := openTestDB(t)
	base := time.Now().Add(-time.Hour)

	require.NoError(t, db.AddNotification(Notification{AnnouncementID: "A1", EventID: "E1", EventTitle: "Hackathon", PostedBy: "Robotics", Preview: "Room changed", CreatedAt: base}))
	require.NoError(t, db.AddNotification(Notification{AnnouncementID: "A2", EventID: "E1", EventTitle: "Hackathon", PostedBy: "Robotics", Preview: "Bring laptops", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, db.AddNotification(Notification{AnnouncementID: "A1", EventID: "E1", Preview: "duplicate", CreatedAt: base}))

	assert.Equal(t, 2, db.UnreadNotificationCount())

	list, err := db.ListNotifications(10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A2", list[0].AnnouncementID, "newest first")
	assert.Equal(t, "Room changed", list[1].Preview, "duplicate ignored")
	assert.Equal(t, "Robotics", list[1].PostedBy)

	require.NoError(t, db.MarkNotificationRead(list[0].ID))
	assert.Equal(t, 1, db.UnreadNotificationCount())

	list, err = db.ListNotifications(1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
}
