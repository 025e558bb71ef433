package realtime

import (
	"errors"

	"sync"

	"go.uber.org/zap"
)

// ErrDuplicateSession is returned when registering an id that is already live
var ErrDuplicateSession = errors.New("session already registered")

// Registry tracks live sessions and the userId -> sessions index. It is an
// owned value passed to every handler rather than package-global state, so
// tests can run independent hubs side by side. All methods are safe for
// concurrent use; reads hand out snapshots so broadcast iteration tolerates
// concurrent disconnects.
type Registry struct {
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	users    map[string]map[string]struct{}
}

// NewRegistry creates an empty session registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		logger:   logger.Named("realtime.registry"),
		sessions: make(map[string]*Session),
		users:    make(map[string]map[string]struct{}),
	}
}

// Register adds an authenticated session and indexes it under its user id
func (r *Registry) Register(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ID]; exists {
		return ErrDuplicateSession
	}
	r.sessions[s.ID] = s

	userID := s.Principal().UserID
	if r.users[userID] == nil {
		r.users[userID] = make(map[string]struct{})
	}
	r.users[userID][s.ID] = struct{}{}
	return nil
}

// Unregister removes a session, closes it, and cleans up the user index.
// An emptied user entry is deleted entirely so no stale sets remain.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		userID := s.Principal().UserID
		if set, exists := r.users[userID]; exists {
			delete(set, id)
			if len(set) == 0 {
				delete(r.users, userID)
			}
		}
	}
	r.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Get returns a session by id
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Members returns a snapshot of the sessions currently in the room
func (r *Registry) Members(room string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var members []*Session
	for _, s := range r.sessions {
		if s.InRoom(room) {
			members = append(members, s)
		}
	}
	return members
}

// All returns a snapshot of every live session
func (r *Registry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	return all
}

// IsUserOnline reports whether the user has at least one live session
func (r *Registry) IsUserOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID]) > 0
}

// OnlineUsers returns the distinct user ids with live sessions
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.users))
	for userID := range r.users {
		users = append(users, userID)
	}
	return users
}

// Counts returns the number of live sessions and distinct users
func (r *Registry) Counts() (sessions int, users int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), len(r.users)
}
