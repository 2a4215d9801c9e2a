package api

import (
	"time"
)

// Role is the kind of account a user logs in as.
type Role string

const (
	RoleStudent Role = "student"
	RoleClub    Role = "club"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleClub
}

// User is the account object returned by the auth endpoints. Students
// carry a Name, clubs a ClubName.
type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	ClubName string `json:"clubName,omitempty"`
}

// DisplayName returns the best human-readable label for the user.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.ClubName != "":
		return u.ClubName
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	}
	return u.ID
}

// SessionCheck is the body of GET /auth/check. User is nil when the
// cookie is missing or not yet recognized.
type SessionCheck struct {
	User *User `json:"user"`
	Role Role  `json:"role"`
}

// LoginResponse is the body returned by login and account registration.
type LoginResponse struct {
	User    *User  `json:"user"`
	Role    Role   `json:"role"`
	Message string `json:"message,omitempty"`
}

// Event is an event as listed by the backend.
type Event struct {
	ID              string `json:"_id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Venue           string `json:"venue,omitempty"`
	Date            string `json:"date,omitempty"`
	Time            string `json:"time,omitempty"`
	FormLink        string `json:"formLink,omitempty"`
	GoogleSheetLink string `json:"googleSheetLink,omitempty"`
	Image           string `json:"image,omitempty"`
}

// Registration links the current user to an event. Event is nil when the
// event was deleted after the user registered.
type Registration struct {
	Event        *Event    `json:"event"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// EventIDs extracts the event identifiers from regs, dropping records
// with no resolvable event.
func EventIDs(regs []Registration) []string {
	ids := make([]string, 0, len(regs))
	for _, r := range regs {
		if r.Event == nil || r.Event.ID == "" {
			continue
		}
		ids = append(ids, r.Event.ID)
	}
	return ids
}

// Announcement is a message a club posts on one of its events.
type Announcement struct {
	ID        string    `json:"_id"`
	Event     string    `json:"event"`
	Message   string    `json:"message"`
	File      string    `json:"file,omitempty"`
	PostedBy  *Poster   `json:"postedBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Poster is the populated club behind an announcement.
type Poster struct {
	ID       string `json:"_id"`
	ClubName string `json:"clubName"`
}

// PosterName returns the posting club's name, or "Club" if unknown.
func (a Announcement) PosterName() string {
	if a.PostedBy != nil && a.PostedBy.ClubName != "" {
		return a.PostedBy.ClubName
	}
	return "Club"
}

// Club is a registered club account.
type Club struct {
	ID          string `json:"_id"`
	ClubName    string `json:"clubName"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Website     string `json:"website,omitempty"`
}
