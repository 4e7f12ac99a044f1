// Package session holds per-connection SFMP session state and the registry
// of live sessions.
//
// A Session is owned by the goroutine serving its connection. Other
// goroutines (the status API, shutdown) only read its counters and state,
// which are atomic.
package session

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a session.
type State int32

const (
	// AwaitingCommand waits for the next command line from the client.
	AwaitingCommand State = iota

	// Validating parses the command and runs its feasibility check.
	Validating

	// Transferring moves the payload of a validated command.
	Transferring

	// Terminated is final: the connection is closed and the session has left
	// the registry.
	Terminated
)

var stateNames = [...]string{
	AwaitingCommand: "awaiting_command",
	Validating:      "validating",
	Transferring:    "transferring",
	Terminated:      "terminated",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Session is one client connection and its counters.
type Session struct {
	id      string
	addr    string
	conn    net.Conn
	started time.Time

	state    atomic.Int32
	commands atomic.Uint64
	rejected atomic.Uint64
	bytesIn  atomic.Int64
	bytesOut atomic.Int64
	lastCmd  atomic.Value // string

	closeOnce sync.Once
	closeErr  error
}

// New creates a session for conn in the AwaitingCommand state.
func New(conn net.Conn) *Session {
	s := &Session{
		id:      uuid.NewString(),
		conn:    conn,
		started: time.Now(),
	}
	if conn != nil && conn.RemoteAddr() != nil {
		s.addr = conn.RemoteAddr().String()
	}
	s.lastCmd.Store("")
	return s
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Addr returns the remote address the session is registered under.
func (s *Session) Addr() string { return s.addr }

// Conn returns the underlying connection.
func (s *Session) Conn() net.Conn { return s.conn }

// StartedAt returns the time the connection was accepted.
func (s *Session) StartedAt() time.Time { return s.started }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// SetState moves the session to next. Terminated is final; transitions out
// of it are ignored and reported as false.
func (s *Session) SetState(next State) bool {
	for {
		cur := s.state.Load()
		if State(cur) == Terminated {
			return next == Terminated
		}
		if s.state.CompareAndSwap(cur, int32(next)) {
			return true
		}
	}
}

// RecordCommand counts a command line received from the client.
func (s *Session) RecordCommand(line string, accepted bool) {
	s.commands.Add(1)
	if !accepted {
		s.rejected.Add(1)
	}
	s.lastCmd.Store(line)
}

// AddBytesIn adds to the count of payload bytes received.
func (s *Session) AddBytesIn(n int64) { s.bytesIn.Add(n) }

// AddBytesOut adds to the count of payload bytes sent.
func (s *Session) AddBytesOut(n int64) { s.bytesOut.Add(n) }

// Close terminates the session and closes its connection. It is safe to
// call more than once; later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.state.Store(int32(Terminated))
		if s.conn != nil {
			s.closeErr = s.conn.Close()
		}
	})
	return s.closeErr
}

// Info is a point-in-time view of a session.
type Info struct {
	ID          string    `json:"id" yaml:"id"`
	Address     string    `json:"address" yaml:"address"`
	State       string    `json:"state" yaml:"state"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	Commands    uint64    `json:"commands" yaml:"commands"`
	Rejected    uint64    `json:"rejected" yaml:"rejected"`
	BytesIn     int64     `json:"bytes_in" yaml:"bytes_in"`
	BytesOut    int64     `json:"bytes_out" yaml:"bytes_out"`
	LastCommand string    `json:"last_command,omitempty" yaml:"last_command,omitempty"`
}

// Info returns a snapshot of the session.
func (s *Session) Info() Info {
	last, _ := s.lastCmd.Load().(string)
	return Info{
		ID:          s.id,
		Address:     s.addr,
		State:       s.State().String(),
		StartedAt:   s.started,
		Commands:    s.commands.Load(),
		Rejected:    s.rejected.Load(),
		BytesIn:     s.bytesIn.Load(),
		BytesOut:    s.bytesOut.Load(),
		LastCommand: last,
	}
}
