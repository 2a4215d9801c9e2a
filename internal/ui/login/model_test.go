package login

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

func typeInto(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestModeToggle(t *testing.T) {
	m := New(nil)
	assert.Equal(t, ModeLogin, m.Mode())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, ModeRegister, m.Mode())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, ModeLogin, m.Mode())
}

func TestSubmitRequiresFields(t *testing.T) {
	m := New(nil)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "Email and password required", m.err)
}

func TestSubmitLogsIn(t *testing.T) {
	var got api.Credentials
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"user":{"_id":"c1","clubName":"Robotics"},"role":"club"}`)
	}))
	defer srv.Close()

	m := New(api.NewClient(srv.URL, nil))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = typeInto(m, "club@x.edu")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeInto(m, "secret")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)

	msg, ok := cmd().(messages.LoginResultMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, api.RoleClub, msg.Resp.Role)
	assert.Equal(t, "Robotics", msg.Resp.User.DisplayName())
	assert.Equal(t, api.Credentials{Email: "club@x.edu", Password: "secret", Role: api.RoleClub}, got)

	m, _ = m.Update(msg)
	assert.False(t, m.submitting)
}
