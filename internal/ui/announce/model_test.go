package announce

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

// board is an in-memory announcements endpoint for one event.
type board struct {
	mu    sync.Mutex
	anns  []api.Announcement
	seq   int
	posts int
}

func (b *board) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/announcements/E1":
			json.NewEncoder(w).Encode(b.anns)
		case r.Method == http.MethodPost && r.URL.Path == "/api/announcements":
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "E1", r.FormValue("eventId"))
			b.seq++
			b.posts++
			b.anns = append(b.anns, api.Announcement{ID: fmt.Sprintf("A%d", b.seq), Event: "E1", Message: r.FormValue("message")})
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{}`))
		case r.Method == http.MethodDelete:
			id := r.URL.Path[len("/api/announcements/"):]
			kept := b.anns[:0]
			for _, a := range b.anns {
				if a.ID != id {
					kept = append(kept, a)
				}
			}
			b.anns = kept
			w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func (b *board) count() (anns, posts int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.anns), b.posts
}

func newComposer(t *testing.T, b *board) Model {
	t.Helper()
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)

	m := New("E1", "Hackathon", api.NewClient(srv.URL, nil))
	m.SetSize(100, 40)
	m, _ = m.Update(m.Init()())
	return m
}

func ctrlS() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyCtrlS} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestEmptyMessageRejected(t *testing.T) {
	b := &board{}
	m := newComposer(t, b)

	m.textarea.SetValue("   ")
	m, cmd := m.Update(ctrlS())
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Message cannot be empty")
	_, posts := b.count()
	assert.Zero(t, posts)
}

func TestPostThenReload(t *testing.T) {
	b := &board{}
	m := newComposer(t, b)
	assert.Contains(t, m.View(), "Posted (0)")

	m.textarea.SetValue("Bring laptops")
	m, cmd := m.Update(ctrlS())
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Posting...")

	posted := cmd()
	require.Equal(t, messages.AnnouncementPostedMsg{EventID: "E1"}, posted)

	m, cmd = m.Update(posted)
	require.NotNil(t, cmd)
	assert.Empty(t, m.textarea.Value())

	m, _ = m.Update(cmd())
	out := m.View()
	assert.Contains(t, out, "Posted (1)")
	assert.Contains(t, out, "Bring laptops")
}

func TestPostedMsgForOtherEventIgnored(t *testing.T) {
	m := newComposer(t, &board{})
	m.textarea.SetValue("draft")

	m, cmd := m.Update(messages.AnnouncementPostedMsg{EventID: "E9"})
	assert.Nil(t, cmd)
	assert.Equal(t, "draft", m.textarea.Value())
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	b := &board{anns: []api.Announcement{
		{ID: "A1", Event: "E1", Message: "first"},
		{ID: "A2", Event: "E1", Message: "second"},
	}}
	m := newComposer(t, b)
	require.Len(t, m.posted, 2)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusList, m.focused)
	m, _ = m.Update(runes("j"))

	m, _ = m.Update(runes("x"))
	assert.Contains(t, m.View(), "Delete this announcement? (y/n)")
	m, cmd := m.Update(runes("n"))
	assert.Nil(t, cmd)
	anns, _ := b.count()
	assert.Equal(t, 2, anns)

	m, _ = m.Update(runes("x"))
	m, cmd = m.Update(runes("y"))
	require.NotNil(t, cmd)
	deleted := cmd()
	assert.Equal(t, announcementDeletedMsg{ID: "A2"}, deleted)

	m, cmd = m.Update(deleted)
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	require.Len(t, m.posted, 1)
	assert.Equal(t, "A1", m.posted[0].ID)
}
