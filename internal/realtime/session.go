package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/kushal45/OMS-sub001/internal/auth"
	"github.com/kushal45/OMS-sub001/internal/common/cnst"
)

var (
	// ErrQueueFull is returned when a session's outbound buffer is saturated
	ErrQueueFull = errors.New("session queue is full")
	// ErrSessionClosed is returned when sending to a disconnected session
	ErrSessionClosed = errors.New("session is closed")
)

// Envelope is the wire shape of every event delivered to realtime clients
type Envelope struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEnvelope builds an event envelope stamped with the current time
func NewEnvelope(eventType string, data any) *Envelope {
	return &Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Session represents one live persistent connection. The transport goroutine
// drains Queue; everything else talks to the session through Send and the
// room membership methods, all of which are safe for concurrent use.
type Session struct {
	ID        string
	principal auth.Principal

	mu    sync.RWMutex
	rooms map[string]struct{}

	queue     chan *Envelope
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession creates an authenticated session with its auto-joined user and
// role rooms already in place.
func NewSession(id string, principal auth.Principal, queueSize int) *Session {
	s := &Session{
		ID:        id,
		principal: principal,
		rooms:     make(map[string]struct{}),
		queue:     make(chan *Envelope, queueSize),
		done:      make(chan struct{}),
	}
	s.rooms[cnst.RoomUserPrefix+principal.UserID] = struct{}{}
	if principal.Role != "" {
		s.rooms[cnst.RoomRolePrefix+principal.Role] = struct{}{}
	}
	return s
}

// Principal returns the identity established at handshake time
func (s *Session) Principal() auth.Principal {
	return s.principal
}

// Join adds the session to a room. Returns false when already a member.
func (s *Session) Join(room string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room]; ok {
		return false
	}
	s.rooms[room] = struct{}{}
	return true
}

// Leave removes the session from a room. Returns false when not a member.
func (s *Session) Leave(room string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room]; !ok {
		return false
	}
	delete(s.rooms, room)
	return true
}

// InRoom reports current membership
func (s *Session) InRoom(room string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[room]
	return ok
}

// Rooms returns a snapshot of the session's room labels
func (s *Session) Rooms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]string, 0, len(s.rooms))
	for room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Send enqueues an event without blocking. A full queue drops the event and
// reports ErrQueueFull so the caller can log it per session.
func (s *Session) Send(ev *Envelope) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.queue <- ev:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrQueueFull
	}
}

// Queue returns the outbound event channel drained by the transport
func (s *Session) Queue() <-chan *Envelope {
	return s.queue
}

// Done is closed when the session is closed
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close marks the session disconnected. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
