package eventlist

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/cache"
	"github.com/fragmede/campusevents/internal/config"
	"github.com/fragmede/campusevents/internal/session"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

func openDB(t *testing.T) *cache.DB {
	t.Helper()
	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// newSession returns a manager logged in as u1 whose confirmation never
// fires during the test, so only the list talks to the backend.
func newSession(t *testing.T, client *api.Client) *session.Manager {
	t.Helper()
	opts := session.DefaultOptions()
	opts.SettleDelay = time.Hour
	sess := session.New(client, opts)
	t.Cleanup(sess.Dispose)
	require.NoError(t, sess.Login(&api.User{ID: "u1", Name: "Asha"}, api.RoleStudent))
	return sess
}

func TestLoadRegisteredSyncsSession(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/registrations/my", r.URL.Path)
		calls.Add(1)
		io.WriteString(w, `[
			{"event":{"_id":"E1","title":"Hackathon"}},
			{"event":null},
			{"event":{"_id":"E2","title":"Quiz Night"}}
		]`)
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, nil)
	sess := newSession(t, client)

	msg := loadRegistered(client, sess)
	require.NoError(t, msg.Err)
	assert.Equal(t, messages.TabRegistered, msg.Tab)
	require.Len(t, msg.Events, 2)
	assert.Equal(t, "Hackathon", msg.Events[0].Title)

	assert.Equal(t, int32(1), calls.Load())
	assert.ElementsMatch(t, []string{"E1", "E2"}, sess.RegisteredEvents())
}

func TestLoadRegisteredUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Not authenticated"}`)
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, nil)
	sess := newSession(t, client)
	sess.RegisterEventLocally("E1")

	msg := loadRegistered(client, sess)
	require.Error(t, msg.Err)
	assert.Equal(t, "log in to see your registrations", msg.Err.Error())
	assert.Equal(t, []string{"E1"}, sess.RegisteredEvents(), "failed fetch leaves the set alone")
}

func TestLoadCached(t *testing.T) {
	db := openDB(t)
	events := []api.Event{{ID: "E1", Title: "Hackathon"}}
	fresh := []api.Event{{ID: "E2", Title: "Quiz Night"}}

	var fetches int
	ok := func(context.Context) ([]api.Event, error) { fetches++; return fresh, nil }
	fail := func(context.Context) ([]api.Event, error) { fetches++; return nil, errors.New("offline") }

	msg := loadCached(messages.TabAll, cache.ListAll, fail, db, time.Hour, false)
	assert.EqualError(t, msg.Err, "offline")

	require.NoError(t, db.PutEventList(cache.ListAll, events))

	msg = loadCached(messages.TabAll, cache.ListAll, ok, db, time.Hour, false)
	assert.Equal(t, events, msg.Events)
	assert.Zero(t, fetches, "fresh cache is served without fetching")

	msg = loadCached(messages.TabAll, cache.ListAll, fail, db, time.Hour, true)
	require.NoError(t, msg.Err)
	assert.Equal(t, events, msg.Events, "failed refresh falls back to the cache")

	msg = loadCached(messages.TabAll, cache.ListAll, ok, db, time.Hour, true)
	assert.Equal(t, fresh, msg.Events)
	cached, _, err := db.GetEventList(cache.ListAll, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, fresh, cached)
}

func TestRegistrationMarkers(t *testing.T) {
	client := api.NewClient("http://127.0.0.1:0", nil)
	m := New(config.Default(), client, openDB(t), nil)
	m.SetSize(80, 20)

	m.SetSnapshot(session.Snapshot{
		Identity:      &api.User{ID: "u1"},
		Role:          api.RoleStudent,
		Registrations: []string{"E2"},
	})
	m, _ = m.Update(messages.EventsLoadedMsg{Tab: messages.TabAll, Events: []api.Event{
		{ID: "E1", Title: "Hackathon"},
		{ID: "E2", Title: "Quiz Night"},
	}})

	items := m.list.Items()
	require.Len(t, items, 2)
	assert.False(t, items[0].(EventItem).Registered)
	assert.True(t, items[1].(EventItem).Registered)

	// Clubs never see registration markers.
	m.SetSnapshot(session.Snapshot{Identity: &api.User{ID: "c1"}, Role: api.RoleClub, Registrations: []string{"E2"}})
	assert.False(t, m.list.Items()[1].(EventItem).Registered)
}

func TestEventsForOtherTabIgnored(t *testing.T) {
	m := New(config.Default(), api.NewClient("http://127.0.0.1:0", nil), openDB(t), nil)
	m.SetSize(80, 20)

	m, _ = m.Update(messages.EventsLoadedMsg{Tab: messages.TabMine, Events: []api.Event{{ID: "E1"}}})
	assert.Empty(t, m.list.Items())
}
