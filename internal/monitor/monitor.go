package monitor

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/cache"
	"github.com/fragmede/campusevents/internal/render"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

const previewLen = 200

// Source fetches announcements for a batch of events.
type Source interface {
	BatchGetAnnouncements(ctx context.Context, eventIDs []string) (map[string][]api.Announcement, error)
}

// Sender delivers messages to the running program. *tea.Program
// satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Monitor polls announcements on the events the user is registered for
// and records a notification for each new one.
type Monitor struct {
	source   Source
	cache    *cache.DB
	interval time.Duration
	events   func() []string
	log      *slog.Logger
	program  Sender
	stopCh   chan struct{}
}

// New creates a monitor. events returns the IDs to watch on each poll,
// normally the session's registration set.
func New(source Source, db *cache.DB, interval time.Duration, events func() []string, logger *slog.Logger) *Monitor {
	return &Monitor{
		source:   source,
		cache:    db,
		interval: interval,
		events:   events,
		log:      logger.With("component", "monitor"),
		stopCh:   make(chan struct{}),
	}
}

// Start begins polling in the background. The first poll runs right away.
func (m *Monitor) Start(program Sender) {
	m.program = program
	go m.loop()
}

// Stop halts polling. It is safe to call more than once.
func (m *Monitor) Stop() {
	select {
	case <-m.stopCh:
	default:
		close(m.stopCh)
	}
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.poll()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

// poll checks every watched event once and returns how many new
// announcements it found.
func (m *Monitor) poll() int {
	ids := m.events()
	if len(ids) == 0 {
		return 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-m.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	batch, err := m.source.BatchGetAnnouncements(ctx, ids)
	if err != nil {
		m.log.Warn("fetching announcements", "error", err)
		return 0
	}
	titles := m.eventTitles()

	found := 0
	now := time.Now()
	for _, id := range ids {
		anns, ok := batch[id]
		if !ok {
			continue
		}
		current := make([]string, 0, len(anns))
		for _, a := range anns {
			current = append(current, a.ID)
		}

		tracked, seen, err := m.cache.GetMonitoredEvent(id)
		if err != nil {
			m.log.Warn("reading monitor state", "event", id, "error", err)
			continue
		}
		// First sight of an event: remember what is there without
		// notifying about history.
		if seen {
			for _, a := range anns {
				if tracked.Known(a.ID) {
					continue
				}
				created := a.CreatedAt
				if created.IsZero() {
					created = now
				}
				err := m.cache.AddNotification(cache.Notification{
					AnnouncementID: a.ID,
					EventID:        id,
					EventTitle:     titles[id],
					PostedBy:       a.PosterName(),
					Preview:        render.Truncate(render.SingleLine(a.Message), previewLen),
					CreatedAt:      created,
				})
				if err != nil {
					m.log.Warn("recording notification", "announcement", a.ID, "error", err)
					continue
				}
				found++
			}
		}

		tracked.KnownIDs = current
		tracked.LastChecked = now
		if err := m.cache.UpsertMonitoredEvent(tracked); err != nil {
			m.log.Warn("saving monitor state", "event", id, "error", err)
		}
	}

	if found > 0 {
		m.log.Info("new announcements", "count", found)
		if m.program != nil {
			m.program.Send(messages.NewNotificationMsg{UnreadCount: m.cache.UnreadNotificationCount()})
		}
	}
	return found
}

// eventTitles maps event IDs to titles from the cached event list, however
// old it is.
func (m *Monitor) eventTitles() map[string]string {
	titles := make(map[string]string)
	events, _, err := m.cache.GetEventList(cache.ListAll, 0)
	if err != nil {
		return titles
	}
	for _, e := range events {
		titles[e.ID] = e.Title
	}
	return titles
}
