package messages

import (
	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/session"
)

// Tab is one of the top-level event lists.
type Tab int

const (
	TabAll Tab = iota
	TabRegistered
	TabMine
)

func (t Tab) String() string {
	switch t {
	case TabRegistered:
		return "Registered"
	case TabMine:
		return "My Events"
	default:
		return "Events"
	}
}

// View transition messages.
type (
	OpenEventMsg       struct{ EventID string }
	GoBackMsg          struct{}
	SwitchTabMsg       struct{ Tab Tab }
	OpenLoginMsg       struct{}
	OpenCreateEventMsg struct{}
	OpenAnnounceMsg    struct {
		EventID    string
		EventTitle string
	}
	OpenClubsMsg  struct{}
	OpenNotifyMsg struct{}
	ShowHelpMsg   struct{}
)

// Data messages.
type (
	EventsLoadedMsg struct {
		Tab    Tab
		Events []api.Event
		Err    error
	}

	EventLoadedMsg struct {
		Event         *api.Event
		Announcements []api.Announcement
		Err           error
	}

	LoginResultMsg struct {
		Resp *api.LoginResponse
		Err  error
	}

	RegisterResultMsg struct {
		EventID string
		Err     error
	}

	EventCreatedMsg struct {
		Event *api.Event
		Err   error
	}

	EventDeletedMsg struct {
		EventID string
		Err     error
	}

	AnnouncementPostedMsg struct {
		EventID string
		Err     error
	}

	ClubsLoadedMsg struct {
		Clubs []api.Club
		Err   error
	}

	NewNotificationMsg struct {
		UnreadCount int
	}

	StatusMsg struct {
		Text    string
		IsError bool
	}

	// SessionChangedMsg carries a session snapshot from the manager's
	// OnChange hook into the program.
	SessionChangedMsg struct {
		Snapshot session.Snapshot
	}

	LoggedOutMsg struct{}
)
