package eventlist

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/cache"
	"github.com/fragmede/campusevents/internal/config"
	"github.com/fragmede/campusevents/internal/session"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

// Model is the event list view. It shows one tab at a time.
type Model struct {
	list          list.Model
	tab           messages.Tab
	client        *api.Client
	cache         *cache.DB
	sess          *session.Manager
	cfg           config.Config
	snap          session.Snapshot
	loading       bool
	confirmDelete string
	width         int
	height        int
}

// New creates the event list, starting on the all-events tab.
func New(cfg config.Config, client *api.Client, db *cache.DB, sess *session.Manager) Model {
	l := list.New(nil, Delegate{}, 0, 0)
	l.Title = "Campus Events"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	return Model{
		list:   l,
		tab:    messages.TabAll,
		client: client,
		cache:  db,
		sess:   sess,
		cfg:    cfg,
	}
}

// Init loads the initial list.
func (m Model) Init() tea.Cmd {
	return m.load(false)
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w, h)
}

// SetSnapshot updates the registration markers.
func (m *Model) SetSnapshot(s session.Snapshot) {
	m.snap = s
	items := m.list.Items()
	for i, it := range items {
		if ev, ok := it.(EventItem); ok {
			ev.Registered = m.showRegistered(ev.ID)
			items[i] = ev
		}
	}
	m.list.SetItems(items)
}

func (m Model) showRegistered(id string) bool {
	return m.snap.Role == api.RoleStudent && m.snap.IsRegistered(id)
}

// Tab returns the tab being shown.
func (m Model) Tab() messages.Tab {
	return m.tab
}

// Filtering reports whether the list filter has focus, so global keys
// should be left to it.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.EventsLoadedMsg:
		if msg.Tab != m.tab {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Error: " + msg.Err.Error()
			m.list.SetItems(nil)
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.Events))
		for i, ev := range msg.Events {
			items = append(items, EventItem{Event: ev, Index: i, Registered: m.showRegistered(ev.ID)})
		}
		m.list.SetItems(items)
		m.list.Title = tabTitle(m.tab)
		return m, nil

	case messages.SwitchTabMsg:
		m.tab = msg.Tab
		m.confirmDelete = ""
		m.list.ResetFilter()
		m.list.Title = tabTitle(m.tab) + " (loading...)"
		m.loading = true
		return m, m.load(false)

	case messages.EventDeletedMsg:
		m.confirmDelete = ""
		if msg.Err != nil {
			return m, nil
		}
		m.list.Title = tabTitle(m.tab) + " (refreshing...)"
		return m, m.load(true)

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		if m.confirmDelete != "" {
			id := m.confirmDelete
			m.confirmDelete = ""
			m.list.Title = tabTitle(m.tab)
			if msg.String() == "y" {
				return m, m.deleteEvent(id)
			}
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(EventItem); ok {
				return m, func() tea.Msg {
					return messages.OpenEventMsg{EventID: item.ID}
				}
			}
		case "r", "ctrl+r":
			m.loading = true
			m.list.Title = tabTitle(m.tab) + " (refreshing...)"
			return m, m.load(true)
		case "d":
			if m.tab != messages.TabMine {
				break
			}
			if item, ok := m.list.SelectedItem().(EventItem); ok {
				m.confirmDelete = item.ID
				m.list.Title = "Delete " + item.Title() + "? (y/n)"
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}

func (m Model) load(force bool) tea.Cmd {
	tab := m.tab
	client := m.client
	db := m.cache
	sess := m.sess
	ttl := m.cfg.EventListTTL

	switch tab {
	case messages.TabRegistered:
		return func() tea.Msg {
			return loadRegistered(client, sess)
		}
	case messages.TabMine:
		return func() tea.Msg {
			return loadCached(tab, cache.ListMy, client.MyEvents, db, ttl, force)
		}
	default:
		return func() tea.Msg {
			return loadCached(tab, cache.ListAll, client.ListEvents, db, ttl, force)
		}
	}
}

// loadCached serves a fresh cached list, otherwise fetches and caches. A
// failed fetch falls back to whatever was cached.
func loadCached(tab messages.Tab, key string, fetch func(context.Context) ([]api.Event, error), db *cache.DB, ttl time.Duration, force bool) messages.EventsLoadedMsg {
	cached, fresh, _ := db.GetEventList(key, ttl)
	if fresh && !force {
		return messages.EventsLoadedMsg{Tab: tab, Events: cached}
	}
	events, err := fetch(context.Background())
	if err != nil {
		if cached != nil {
			return messages.EventsLoadedMsg{Tab: tab, Events: cached}
		}
		return messages.EventsLoadedMsg{Tab: tab, Err: err}
	}
	db.PutEventList(key, events)
	return messages.EventsLoadedMsg{Tab: tab, Events: events}
}

// loadRegistered lists the events behind the user's registrations and
// hands the same records to the session so its registration set matches.
func loadRegistered(client *api.Client, sess *session.Manager) messages.EventsLoadedMsg {
	var userID string
	if snap := sess.Snapshot(); snap.Identity != nil {
		userID = snap.Identity.ID
	}

	regs, err := client.MyRegistrations(context.Background())
	if err != nil {
		if api.IsUnauthorized(err) {
			err = errors.New("log in to see your registrations")
		}
		return messages.EventsLoadedMsg{Tab: messages.TabRegistered, Err: err}
	}
	events := make([]api.Event, 0, len(regs))
	for _, r := range regs {
		if r.Event != nil && r.Event.ID != "" {
			events = append(events, *r.Event)
		}
	}
	if userID != "" {
		sess.ApplyRegistrations(userID, regs)
	}
	return messages.EventsLoadedMsg{Tab: messages.TabRegistered, Events: events}
}

func (m Model) deleteEvent(id string) tea.Cmd {
	client := m.client
	db := m.cache
	return func() tea.Msg {
		err := client.DeleteEvent(context.Background(), id)
		if err == nil {
			db.InvalidateEventList(cache.ListAll)
			db.InvalidateEventList(cache.ListMy)
		}
		return messages.EventDeletedMsg{EventID: id, Err: err}
	}
}

func tabTitle(t messages.Tab) string {
	switch t {
	case messages.TabRegistered:
		return "Registered Events"
	case messages.TabMine:
		return "My Events"
	default:
		return "All Events"
	}
}
