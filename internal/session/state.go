package session

import "github.com/fragmede/campusevents/internal/api"

// State is where the session is in its lifecycle.
type State int

const (
	// StateUnresolved is the state before Initialize runs.
	StateUnresolved State = iota
	// StateResolving means Initialize is waiting on the backend.
	StateResolving
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the session handed to views. Views read it and
// never write back.
type Snapshot struct {
	Identity      *api.User
	Role          api.Role
	Registrations []string
	Initializing  bool
	State         State

	// Version increases with every change, so a subscriber receiving
	// snapshots out of order can drop stale ones.
	Version uint64
}

// LoggedIn reports whether an identity is present.
func (s Snapshot) LoggedIn() bool {
	return s.Identity != nil
}

// IsRegistered reports whether eventID is in the registration set.
func (s Snapshot) IsRegistered(eventID string) bool {
	for _, id := range s.Registrations {
		if id == eventID {
			return true
		}
	}
	return false
}

// registrationSet is an insertion-ordered set of event IDs.
type registrationSet struct {
	ids   []string
	index map[string]struct{}
}

func newRegistrationSet() *registrationSet {
	return &registrationSet{index: make(map[string]struct{})}
}

// add inserts id and reports whether it was absent.
func (r *registrationSet) add(id string) bool {
	if _, ok := r.index[id]; ok {
		return false
	}
	r.index[id] = struct{}{}
	r.ids = append(r.ids, id)
	return true
}

func (r *registrationSet) has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// replace discards the current contents in favor of ids.
func (r *registrationSet) replace(ids []string) {
	r.reset()
	for _, id := range ids {
		r.add(id)
	}
}

func (r *registrationSet) reset() {
	r.ids = nil
	r.index = make(map[string]struct{})
}

func (r *registrationSet) list() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}
