package clubs

import (
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

func newLoaded(t *testing.T, status int, body string) Model {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/clubs", r.URL.Path)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	m := New(api.NewClient(srv.URL, nil))
	m.SetSize(100, 40)
	assert.Contains(t, m.View(), "Loading clubs")
	m, _ = m.Update(m.Init()())
	return m
}

func TestListsClubs(t *testing.T) {
	m := newLoaded(t, http.StatusOK, `[
		{"_id":"c1","clubName":"Robotics","website":"https://robotics.example"},
		{"_id":"c2","clubName":"Chess","description":"<p>Weekly blitz</p>"}
	]`)

	out := m.View()
	assert.Contains(t, out, "Robotics")
	assert.Contains(t, out, "https://robotics.example")
	assert.Contains(t, out, "Chess")
	assert.Contains(t, out, "Weekly blitz")
}

func TestOpenWebsite(t *testing.T) {
	m := newLoaded(t, http.StatusOK, `[
		{"_id":"c1","clubName":"Robotics","website":"https://robotics.example"},
		{"_id":"c2","clubName":"Chess"}
	]`)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.StatusMsg{Text: "Opening: https://robotics.example"}, cmd())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "club without a website has nothing to open")
}

func TestLoadError(t *testing.T) {
	m := newLoaded(t, http.StatusInternalServerError, `{"message":"db down"}`)
	assert.Contains(t, m.View(), "Error:")
}

func TestNoClubs(t *testing.T) {
	m := newLoaded(t, http.StatusOK, `[]`)
	assert.Contains(t, m.View(), "No clubs yet.")
}
