package ui

import (
	"context"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/cache"
	"github.com/fragmede/campusevents/internal/config"
	"github.com/fragmede/campusevents/internal/monitor"
	"github.com/fragmede/campusevents/internal/session"
	"github.com/fragmede/campusevents/internal/ui/announce"
	"github.com/fragmede/campusevents/internal/ui/clubs"
	"github.com/fragmede/campusevents/internal/ui/createevent"
	"github.com/fragmede/campusevents/internal/ui/dashboard"
	"github.com/fragmede/campusevents/internal/ui/eventlist"
	"github.com/fragmede/campusevents/internal/ui/eventview"
	"github.com/fragmede/campusevents/internal/ui/login"
	"github.com/fragmede/campusevents/internal/ui/messages"
	"github.com/fragmede/campusevents/internal/ui/notifications"
	"github.com/fragmede/campusevents/internal/ui/statusbar"
)

// ViewType identifies the active view.
type ViewType int

const (
	ViewEventList ViewType = iota
	ViewEventDetail
	ViewLogin
	ViewCreateEvent
	ViewAnnounce
	ViewNotifications
	ViewClubs
	ViewDashboard
)

// App is the root Bubble Tea model.
type App struct {
	activeView    ViewType
	previousViews []ViewType
	showHelp      bool

	eventList     eventlist.Model
	eventView     eventview.Model
	loginForm     login.Model
	createForm    createevent.Model
	announceForm  announce.Model
	clubs         clubs.Model
	dashboard     dashboard.Model
	notifications notifications.Model
	statusBar     statusbar.Model
	help          help.Model

	cfg            config.Config
	client         *api.Client
	cache          *cache.DB
	sess           *session.Manager
	sheets         dashboard.SheetReader
	monitor        *monitor.Monitor
	monitorStarted bool
	log            *slog.Logger

	// snap is the newest session snapshot seen. Snapshots arrive from
	// background goroutines and may be delivered out of order.
	snap session.Snapshot

	width  int
	height int

	program *tea.Program
}

// NewApp creates the root model. sess should not have been initialized
// yet; Init does that. sheets may be nil when no Google API key is set.
func NewApp(cfg config.Config, client *api.Client, db *cache.DB, sess *session.Manager, sheets dashboard.SheetReader, logger *slog.Logger) *App {
	mon := monitor.New(client, db, cfg.MonitorInterval, sess.RegisteredEvents, logger)

	a := &App{
		activeView:    ViewEventList,
		eventList:     eventlist.New(cfg, client, db, sess),
		statusBar:     statusbar.New(),
		notifications: notifications.New(db),
		help:          help.New(),
		cfg:           cfg,
		client:        client,
		cache:         db,
		sess:          sess,
		sheets:        sheets,
		monitor:       mon,
		log:           logger.With("component", "ui"),
	}
	a.applySnapshot(sess.Snapshot())
	a.statusBar.SetUnread(db.UnreadNotificationCount())
	return a
}

// SetProgram stores the program so background work can send messages.
func (a *App) SetProgram(p *tea.Program) {
	a.program = p
}

// Init resolves the stored session and loads the first list.
func (a *App) Init() tea.Cmd {
	sess := a.sess
	return tea.Batch(a.eventList.Init(), func() tea.Msg {
		sess.Initialize(context.Background())
		return messages.SessionChangedMsg{Snapshot: sess.Snapshot()}
	})
}

// Stop halts background work started by the app.
func (a *App) Stop() {
	a.monitor.Stop()
}

func (a *App) inTextInput() bool {
	switch a.activeView {
	case ViewLogin, ViewCreateEvent, ViewAnnounce:
		return true
	case ViewEventList:
		return a.eventList.Filtering()
	}
	return false
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentHeight := msg.Height - 1
		a.eventList.SetSize(msg.Width, contentHeight)
		a.statusBar.SetSize(msg.Width)
		a.help.Width = msg.Width
		switch a.activeView {
		case ViewEventDetail:
			a.eventView.SetSize(msg.Width, contentHeight)
		case ViewLogin:
			a.loginForm.SetSize(msg.Width, contentHeight)
		case ViewCreateEvent:
			a.createForm.SetSize(msg.Width, contentHeight)
		case ViewAnnounce:
			a.announceForm.SetSize(msg.Width, contentHeight)
		case ViewNotifications:
			a.notifications.SetSize(msg.Width, contentHeight)
		case ViewClubs:
			a.clubs.SetSize(msg.Width, contentHeight)
		case ViewDashboard:
			a.dashboard.SetSize(msg.Width, contentHeight)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.Stop()
			return a, tea.Quit
		}
		if a.snap.Initializing {
			return a, nil
		}
		if a.inTextInput() {
			if key.Matches(msg, Keys.Back) && a.activeView != ViewEventList {
				return a, a.goBack()
			}
			break
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}
		switch {
		case key.Matches(msg, Keys.Quit):
			if a.activeView == ViewEventList {
				a.Stop()
				return a, tea.Quit
			}
			return a, a.goBack()
		case key.Matches(msg, Keys.Back):
			if len(a.previousViews) > 0 {
				return a, a.goBack()
			}
		case key.Matches(msg, Keys.Help):
			a.showHelp = true
			return a, nil
		case key.Matches(msg, Keys.NextTab):
			return a, a.cycleTab(1)
		case key.Matches(msg, Keys.PrevTab):
			return a, a.cycleTab(-1)
		case key.Matches(msg, Keys.Tab1):
			return a, a.switchTab(0)
		case key.Matches(msg, Keys.Tab2):
			return a, a.switchTab(1)
		case key.Matches(msg, Keys.Login):
			if !a.snap.LoggedIn() {
				a.openLogin()
			}
			return a, nil
		case key.Matches(msg, Keys.Logout):
			if a.snap.LoggedIn() {
				return a, a.logout()
			}
			return a, nil
		case key.Matches(msg, Keys.Notify):
			a.pushView(ViewNotifications)
			a.notifications.SetSize(a.width, a.height-1)
			a.notifications.Load()
			return a, nil
		case key.Matches(msg, Keys.Clubs):
			a.pushView(ViewClubs)
			a.clubs = clubs.New(a.client)
			a.clubs.SetSize(a.width, a.height-1)
			return a, a.clubs.Init()
		case key.Matches(msg, Keys.Dashboard):
			if a.snap.Role == api.RoleClub {
				a.pushView(ViewDashboard)
				a.dashboard = dashboard.New(a.snap.Identity.DisplayName(), a.client, a.sheets)
				a.dashboard.SetSize(a.width, a.height-1)
				return a, a.dashboard.Init()
			}
			return a, nil
		case key.Matches(msg, Keys.Create):
			if a.snap.Role == api.RoleClub {
				a.pushView(ViewCreateEvent)
				a.createForm = createevent.New(a.client)
				a.createForm.SetSize(a.width, a.height-1)
			}
			return a, nil
		}

	case messages.OpenEventMsg:
		a.pushView(ViewEventDetail)
		a.eventView = eventview.New(msg.EventID, a.cfg, a.client, a.cache, a.snap)
		a.eventView.SetSize(a.width, a.height-1)
		return a, a.eventView.Init()

	case messages.OpenLoginMsg:
		a.openLogin()
		return a, nil

	case messages.OpenAnnounceMsg:
		if a.snap.Role != api.RoleClub {
			return a, nil
		}
		a.pushView(ViewAnnounce)
		a.announceForm = announce.New(msg.EventID, msg.EventTitle, a.client)
		a.announceForm.SetSize(a.width, a.height-1)
		return a, a.announceForm.Init()

	case messages.GoBackMsg:
		return a, a.goBack()

	case messages.SessionChangedMsg:
		a.applySnapshot(msg.Snapshot)
		return a, nil

	case messages.LoginResultMsg:
		if msg.Err == nil && msg.Resp != nil {
			if err := a.sess.Login(msg.Resp.User, msg.Resp.Role); err != nil {
				msg.Err = err
			} else {
				a.applySnapshot(a.sess.Snapshot())
				a.saveCookies()
				a.cache.InvalidateEventList(cache.ListMy)
				a.statusBar.SetStatus("Logged in as "+msg.Resp.User.DisplayName(), false)
				cmds = append(cmds, a.goBack(), a.switchTab(0))
				return a, tea.Batch(cmds...)
			}
		}
		a.loginForm, _ = a.loginForm.Update(msg)
		return a, nil

	case messages.LoggedOutMsg:
		a.applySnapshot(a.sess.Snapshot())
		a.statusBar.SetStatus("Logged out", false)
		return a, nil

	case messages.RegisterResultMsg:
		if msg.Err != nil {
			a.statusBar.SetStatus("Registration failed: "+msg.Err.Error(), true)
		} else {
			a.sess.RegisterEventLocally(msg.EventID)
			a.applySnapshot(a.sess.Snapshot())
			a.statusBar.SetStatus("You are now registered for this event", false)
		}

	case messages.EventCreatedMsg:
		if msg.Err == nil {
			a.cache.InvalidateEventList(cache.ListAll)
			a.cache.InvalidateEventList(cache.ListMy)
			a.statusBar.SetStatus("Event created", false)
			a.goBack()
			return a, a.switchTab(1)
		}

	case messages.AnnouncementPostedMsg:
		if msg.Err == nil {
			a.statusBar.SetStatus("Announcement posted", false)
			if a.activeView != ViewEventDetail {
				var reload tea.Cmd
				a.eventView, reload = a.eventView.Update(msg)
				cmds = append(cmds, reload)
			}
		}

	case messages.EventDeletedMsg:
		if msg.Err != nil {
			a.statusBar.SetStatus("Delete failed: "+msg.Err.Error(), true)
		} else {
			a.statusBar.SetStatus("Event deleted", false)
		}

	case messages.NewNotificationMsg:
		a.statusBar.SetUnread(msg.UnreadCount)

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text, msg.IsError)
		if url, ok := strings.CutPrefix(msg.Text, "Opening: "); ok && !msg.IsError {
			go openBrowser(url)
		}
	}

	var cmd tea.Cmd
	switch a.activeView {
	case ViewEventList:
		a.eventList, cmd = a.eventList.Update(msg)
		a.statusBar.SetActiveTab(a.eventList.Tab())
	case ViewEventDetail:
		a.eventView, cmd = a.eventView.Update(msg)
	case ViewLogin:
		a.loginForm, cmd = a.loginForm.Update(msg)
	case ViewCreateEvent:
		a.createForm, cmd = a.createForm.Update(msg)
	case ViewAnnounce:
		a.announceForm, cmd = a.announceForm.Update(msg)
	case ViewNotifications:
		a.notifications, cmd = a.notifications.Update(msg)
	case ViewClubs:
		a.clubs, cmd = a.clubs.Update(msg)
	case ViewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	}
	cmds = append(cmds, cmd)

	// Lists loaded while another view is on top still need to land.
	if _, ok := msg.(messages.EventsLoadedMsg); ok && a.activeView != ViewEventList {
		a.eventList, cmd = a.eventList.Update(msg)
		cmds = append(cmds, cmd)
	}
	if _, ok := msg.(messages.EventDeletedMsg); ok && a.activeView != ViewEventList {
		a.eventList, cmd = a.eventList.Update(msg)
		cmds = append(cmds, cmd)
	}

	a.statusBar, cmd = a.statusBar.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

func (a *App) View() string {
	if a.snap.Initializing {
		splash := SplashStyle.Render("Campus Events") + "\n\n" + DimStyle.Render("Checking session…")
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, splash)
	}

	var content string
	switch a.activeView {
	case ViewEventList:
		content = a.eventList.View()
	case ViewEventDetail:
		content = a.eventView.View()
	case ViewLogin:
		content = a.loginForm.View()
	case ViewCreateEvent:
		content = a.createForm.View()
	case ViewAnnounce:
		content = a.announceForm.View()
	case ViewNotifications:
		content = a.notifications.View()
	case ViewClubs:
		content = a.clubs.View()
	case ViewDashboard:
		content = a.dashboard.View()
	}

	if a.showHelp {
		a.help.ShowAll = true
		content = lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center,
			HelpStyle.Render(a.help.View(Keys)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, a.statusBar.View())
}

// applySnapshot adopts s unless a newer snapshot was already seen.
func (a *App) applySnapshot(s session.Snapshot) {
	if s.Version < a.snap.Version {
		return
	}
	wasLoggedIn := a.snap.LoggedIn()
	a.snap = s
	a.statusBar.SetSnapshot(s)
	a.eventList.SetSnapshot(s)
	if a.activeView == ViewEventDetail {
		a.eventView.SetSnapshot(s)
	}

	if s.LoggedIn() && !a.monitorStarted && a.program != nil {
		a.monitorStarted = true
		a.monitor.Start(a.program)
	}
	if wasLoggedIn && !s.LoggedIn() && a.eventList.Tab() == messages.TabMine {
		a.eventList, _ = a.eventList.Update(messages.SwitchTabMsg{Tab: messages.TabAll})
		a.statusBar.SetActiveTab(messages.TabAll)
	}
}

func (a *App) openLogin() {
	if a.activeView == ViewLogin {
		return
	}
	a.pushView(ViewLogin)
	a.loginForm = login.New(a.client)
	a.loginForm.SetSize(a.width, a.height-1)
}

// logout clears the session before returning, so the next render shows
// nobody logged in. Ending the backend session and wiping the saved cookie
// happen in the returned command.
func (a *App) logout() tea.Cmd {
	a.sess.ClearLocal()
	a.applySnapshot(a.sess.Snapshot())
	a.activeView = ViewEventList
	a.previousViews = nil

	sess := a.sess
	client := a.client
	db := a.cache
	return func() tea.Msg {
		sess.EndRemote(context.Background())
		client.ClearCookies()
		db.ClearCookies(client.BaseURL())
		db.InvalidateEventList(cache.ListMy)
		return messages.LoggedOutMsg{}
	}
}

func (a *App) saveCookies() {
	if err := a.cache.SaveCookies(a.client.BaseURL(), a.client.Cookies()); err != nil {
		a.log.Warn("persisting session cookie", "error", err)
	}
}

func (a *App) pushView(v ViewType) {
	a.previousViews = append(a.previousViews, a.activeView)
	a.activeView = v
}

func (a *App) goBack() tea.Cmd {
	if len(a.previousViews) > 0 {
		a.activeView = a.previousViews[len(a.previousViews)-1]
		a.previousViews = a.previousViews[:len(a.previousViews)-1]
	}
	if a.activeView == ViewEventDetail {
		a.eventView.SetSnapshot(a.snap)
	}
	return nil
}

func (a *App) cycleTab(step int) tea.Cmd {
	tabs := statusbar.Tabs(a.snap.Role)
	current := a.eventList.Tab()
	for i, t := range tabs {
		if t == current {
			return a.switchTab((i + step + len(tabs)) % len(tabs))
		}
	}
	return a.switchTab(0)
}

// switchTab shows the i-th tab available to the current role.
func (a *App) switchTab(i int) tea.Cmd {
	tabs := statusbar.Tabs(a.snap.Role)
	if i < 0 || i >= len(tabs) {
		return nil
	}
	if a.activeView != ViewEventList {
		a.activeView = ViewEventList
		a.previousViews = nil
	}
	m, cmd := a.eventList.Update(messages.SwitchTabMsg{Tab: tabs[i]})
	a.eventList = m
	a.statusBar.SetActiveTab(tabs[i])
	return cmd
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		return
	}
	cmd.Run()
}
