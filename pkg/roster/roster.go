// Package roster tracks live client sessions and answers presence queries.
package roster

import (
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/gcammarata/wirechat/pkg/wire"
)

// Session is one authenticated client connection. The write mutex
// serializes frames from concurrent senders onto the socket; reads are
// owned by the connection goroutine and never locked.
type Session struct {
	ID         uuid.UUID
	Username   string
	RemoteAddr string

	conn    net.Conn
	writeMu sync.Mutex
}

// NewSession wraps an accepted connection. The username is set later,
// once the client authenticates.
func NewSession(conn net.Conn) *Session {
	return &Session{
		ID:         uuid.New(),
		RemoteAddr: conn.RemoteAddr().String(),
		conn:       conn,
	}
}

// WriteFrame encodes and sends one frame on the session's socket.
func (s *Session) WriteFrame(f wire.Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return wire.WriteFrame(s.conn, f)
}

// ReadFrame blocks until a full frame arrives.
func (s *Session) ReadFrame() (wire.Frame, error) {
	return wire.ReadFrame(s.conn)
}

// Close shuts the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// Roster is the in-memory index of authenticated sessions. One mutex
// guards both maps; it is never held while writing to a socket.
type Roster struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	byName   map[string][]*Session
}

func New() *Roster {
	return &Roster{
		sessions: make(map[uuid.UUID]*Session),
		byName:   make(map[string][]*Session),
	}
}

// Add registers an authenticated session under its username.
func (r *Roster) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	r.byName[s.Username] = append(r.byName[s.Username], s)
}

// Remove drops a session from the index. Safe to call for sessions
// that were never added.
func (r *Roster) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s.ID)

	list := r.byName[s.Username]
	for i, candidate := range list {
		if candidate.ID == s.ID {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.byName, s.Username)
	} else {
		r.byName[s.Username] = list
	}
}

// Online reports whether the user has at least one live session.
func (r *Roster) Online(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName[username]) > 0
}

// Find returns the live sessions for one user.
func (r *Roster) Find(username string) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Session(nil), r.byName[username]...)
}

// Snapshot returns the live sessions for the named users, skipping the
// excluded session. Callers deliver frames after the lock is released.
func (r *Roster) Snapshot(usernames []string, exclude uuid.UUID) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Session
	for _, name := range usernames {
		for _, s := range r.byName[name] {
			if s.ID != exclude {
				out = append(out, s)
			}
		}
	}
	return out
}

// SnapshotAll returns every live session except the excluded one.
func (r *Roster) SnapshotAll(exclude uuid.UUID) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.ID != exclude {
			out = append(out, s)
		}
	}
	return out
}

// Len counts live sessions.
func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
