package statusbar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/session"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

func TestTabsByRole(t *testing.T) {
	assert.Equal(t, []messages.Tab{messages.TabAll, messages.TabRegistered}, Tabs(api.RoleStudent))
	assert.Equal(t, []messages.Tab{messages.TabAll, messages.TabMine}, Tabs(api.RoleClub))
	assert.Equal(t, []messages.Tab{messages.TabAll, messages.TabRegistered}, Tabs(""))
}

func TestViewReflectsSession(t *testing.T) {
	m := New()
	m.SetSize(120)

	m.SetSnapshot(session.Snapshot{Initializing: true})
	assert.Contains(t, m.View(), "checking session")

	m.SetSnapshot(session.Snapshot{})
	assert.Contains(t, m.View(), "L:login")

	m.SetSnapshot(session.Snapshot{Identity: &api.User{ID: "c1", ClubName: "Robotics"}, Role: api.RoleClub})
	m.SetUnread(3)
	view := m.View()
	assert.Contains(t, view, "Robotics (club)")
	assert.Contains(t, view, "My Events")
	assert.Contains(t, view, " 3 ")
}
