package ui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/cache"
	"github.com/fragmede/campusevents/internal/config"
	"github.com/fragmede/campusevents/internal/logging"
	"github.com/fragmede/campusevents/internal/session"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

const studentCheck = `{"user":{"_id":"u1","name":"Asha"},"role":"student"}`

func newTestApp(t *testing.T) *App {
	return newTestAppChecking(t, studentCheck)
}

// newTestAppChecking builds an App whose backend answers the session
// check with check.
func newTestAppChecking(t *testing.T, check string) *App {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/check":
			io.WriteString(w, check)
		default:
			io.WriteString(w, `[]`)
		}
	}))
	t.Cleanup(srv.Close)

	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Default()
	cfg.ServerURL = srv.URL
	client := api.NewClient(srv.URL, nil)

	opts := cfg.SessionOptions()
	opts.SettleDelay = time.Millisecond
	sess := session.New(client, opts)
	t.Cleanup(sess.Dispose)

	return NewApp(cfg, client, db, sess, nil, logging.Discard())
}

func TestAppStartsOnSplash(t *testing.T) {
	a := newTestApp(t)
	assert.True(t, a.snap.Initializing)
	assert.Contains(t, a.View(), "Checking session")

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'L'}})
	assert.Nil(t, cmd)
	assert.Equal(t, ViewEventList, a.activeView)
}

func TestAppDropsStaleSnapshots(t *testing.T) {
	a := newTestApp(t)

	a.Update(messages.SessionChangedMsg{Snapshot: session.Snapshot{
		Identity: &api.User{ID: "u1"},
		Role:     api.RoleStudent,
		State:    session.StateAuthenticated,
		Version:  5,
	}})
	a.Update(messages.SessionChangedMsg{Snapshot: session.Snapshot{Initializing: true, Version: 3}})

	assert.True(t, a.snap.LoggedIn())
	assert.False(t, a.snap.Initializing)
	assert.Equal(t, uint64(5), a.snap.Version)
}

func TestAppLoginResultStartsSession(t *testing.T) {
	a := newTestApp(t)
	a.applySnapshot(session.Snapshot{Version: a.snap.Version})
	a.openLogin()
	require.Equal(t, ViewLogin, a.activeView)

	a.Update(messages.LoginResultMsg{Resp: &api.LoginResponse{
		User: &api.User{ID: "u1", Name: "Asha"},
		Role: api.RoleStudent,
	}})

	assert.Equal(t, ViewEventList, a.activeView)
	assert.True(t, a.snap.LoggedIn())
	assert.Equal(t, api.RoleStudent, a.snap.Role)
	assert.True(t, a.sess.Snapshot().LoggedIn())
}

func TestAppClubLosesMineTabOnLogout(t *testing.T) {
	a := newTestApp(t)
	a.applySnapshot(session.Snapshot{Identity: &api.User{ID: "c1"}, Role: api.RoleClub, Version: 10})
	a.switchTab(1)
	require.Equal(t, messages.TabMine, a.eventList.Tab())

	a.applySnapshot(session.Snapshot{State: session.StateAnonymous, Version: 11})
	assert.Equal(t, messages.TabAll, a.eventList.Tab())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// resumedApp is an App whose stored cookie resolved to the user in check.
func resumedApp(t *testing.T, check string) *App {
	t.Helper()
	a := newTestAppChecking(t, check)
	a.sess.Initialize(context.Background())
	a.applySnapshot(a.sess.Snapshot())
	require.False(t, a.snap.Initializing)
	require.True(t, a.snap.LoggedIn())
	return a
}

func TestAppLogoutClearsBeforeBackendReturns(t *testing.T) {
	a := resumedApp(t, studentCheck)
	a.pushView(ViewNotifications)

	_, cmd := a.Update(runes("X"))
	require.NotNil(t, cmd)

	// Nothing from the backend has run yet.
	assert.False(t, a.snap.LoggedIn())
	assert.False(t, a.sess.Snapshot().LoggedIn())
	assert.Equal(t, ViewEventList, a.activeView)
	assert.Empty(t, a.previousViews)

	msg := cmd()
	require.IsType(t, messages.LoggedOutMsg{}, msg)
	a.Update(msg)
	assert.False(t, a.snap.LoggedIn())
	assert.Equal(t, session.StateAnonymous, a.snap.State)
}

func TestAppRegisterResultRecordsLocally(t *testing.T) {
	a := resumedApp(t, studentCheck)

	a.Update(messages.RegisterResultMsg{EventID: "E1", Err: errors.New("closed")})
	assert.False(t, a.sess.IsRegistered("E1"))

	a.Update(messages.RegisterResultMsg{EventID: "E1"})
	assert.True(t, a.sess.IsRegistered("E1"))
	assert.True(t, a.snap.IsRegistered("E1"))
}

func TestAppDashboardIsForClubs(t *testing.T) {
	a := resumedApp(t, studentCheck)
	_, cmd := a.Update(runes("D"))
	assert.Nil(t, cmd)
	assert.Equal(t, ViewEventList, a.activeView)

	c := resumedApp(t, `{"user":{"_id":"c1","clubName":"Robotics"},"role":"club"}`)
	_, cmd = c.Update(runes("D"))
	assert.NotNil(t, cmd)
	assert.Equal(t, ViewDashboard, c.activeView)
	assert.Contains(t, c.View(), "Robotics Dashboard")
}
