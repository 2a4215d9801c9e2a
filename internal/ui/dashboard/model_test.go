package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/sheets"
)

type fakeReader struct {
	rows  [][]string
	err   error
	links []string
}

func (f *fakeReader) Rows(_ context.Context, link string) ([][]string, error) {
	f.links = append(f.links, link)
	return f.rows, f.err
}

const sheetLink = "https://docs.google.com/spreadsheets/d/sheet-1/edit"

func newTestModel(t *testing.T, reader SheetReader) Model {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events/my", r.URL.Path)
		io.WriteString(w, `[
			{"_id":"E1","title":"Hackathon","googleSheetLink":"`+sheetLink+`"},
			{"_id":"E2","title":"Quiz Night"},
			{"_id":"E3","title":"Robo Race","googleSheetLink":"https://example.com/not-a-sheet"}
		]`)
	}))
	t.Cleanup(srv.Close)

	m := New("Robotics", api.NewClient(srv.URL, nil), reader)
	m.SetSize(120, 40)
	m, _ = m.Update(m.Init()())
	require.Len(t, m.events, 3)
	return m
}

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestShowsRegistrationsFromSheet(t *testing.T) {
	reader := &fakeReader{rows: [][]string{
		{"Name", "Email"},
		{"Asha", "a@x.edu"},
		{"Ravi", "r@x.edu"},
	}}
	m := newTestModel(t, reader)

	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Fetching registrations")

	m, _ = m.Update(cmd())
	assert.Equal(t, []string{sheetLink}, reader.links)
	assert.Equal(t, "E1", m.Selected())
	assert.Equal(t, 2, m.Total())
	view := m.View()
	assert.Contains(t, view, "Robotics Dashboard")
	assert.Contains(t, view, "Asha")
	assert.Contains(t, view, "Total Registrations: 2")
}

func TestEventWithoutSheetShowsNoData(t *testing.T) {
	reader := &fakeReader{}
	m := newTestModel(t, reader)

	m, _ = m.Update(key("j"))
	m, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, "E2", m.Selected())
	assert.Contains(t, m.View(), "No registration data found.")
	assert.Empty(t, reader.links)
}

func TestInvalidSheetLink(t *testing.T) {
	reader := &fakeReader{}
	m := newTestModel(t, reader)

	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("j"))
	m, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), sheets.ErrInvalidLink.Error())
	assert.Empty(t, reader.links)
}

func TestMissingAPIKey(t *testing.T) {
	m := newTestModel(t, nil)

	m, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "no Google API key configured")
}

func TestSheetErrorClearsTable(t *testing.T) {
	reader := &fakeReader{rows: [][]string{{"Name"}, {"Asha"}}}
	m := newTestModel(t, reader)
	m, cmd := m.Update(key("enter"))
	m, _ = m.Update(cmd())
	require.Equal(t, 1, m.Total())

	reader.err = errors.New("quota exceeded")
	m, cmd = m.Update(key("r"))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.Zero(t, m.Total())
	assert.Contains(t, m.View(), "quota exceeded")
}

func TestStaleSheetResultIgnored(t *testing.T) {
	m := newTestModel(t, &fakeReader{})
	m.selected = "E2"
	m, _ = m.Update(sheetLoadedMsg{EventID: "E1", Rows: [][]string{{"Name"}, {"Asha"}}})
	assert.Zero(t, m.Total())
}
