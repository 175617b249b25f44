package rcon

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gamehost-labs/rconctl/pkg/log"
)

// DefaultTimeout bounds one request/response round trip when no explicit
// timeout is configured.
const DefaultTimeout = 15 * time.Second

// State is the lifecycle state of a session.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateAuthenticated
	StateClosed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnected:
		return "Connected"
	case StateAuthenticated:
		return "Authenticated"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Session is one authenticated connection to a remote console. It owns its
// transport exclusively: no other component may read or write the connection
// while the session is alive. The protocol multiplexes nothing, so exactly
// one Authenticate or Execute may be outstanding at a time; a second
// concurrent Execute fails with ErrPending rather than interleaving frames.
//
// Closed is terminal. Any transport, decode, or authentication failure moves
// the session to Closed; callers reconnect by dialing a new session.
type Session struct {
	mu       sync.Mutex
	conn     net.Conn
	fr       *FrameReader
	state    State
	inflight bool
	nextID   int32

	addr     string
	timeout  time.Duration
	maxFrame int32
	logger   log.Logger
}

// Option configures a session before it is used.
type Option func(*Session)

// WithTimeout bounds connection establishment and each request/response
// round trip. Zero or negative disables the deadline entirely.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithLogger routes session debug output to l. The default discards it.
func WithLogger(l log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxFrameSize overrides the largest declared frame length the session
// will accept before failing with ErrDecode.
func WithMaxFrameSize(n int32) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxFrame = n
		}
	}
}

// WithStartingID sets the first request id the session allocates. Values
// below 1 are ignored; -1 is reserved by the protocol for auth rejection.
func WithStartingID(id int32) Option {
	return func(s *Session) {
		if id > 0 {
			s.nextID = id
		}
	}
}

func newSession(opts ...Option) *Session {
	s := &Session{
		state:    StateDisconnected,
		nextID:   1,
		timeout:  DefaultTimeout,
		maxFrame: DefaultMaxFrameSize,
		logger:   log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial opens a TCP connection to host:port and returns a session in the
// Connected state, ready for Authenticate. Refusal, timeout, and resolution
// failures return ErrConnection.
func Dial(host string, port int, opts ...Option) (*Session, error) {
	s := newSession(opts...)
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	var timeout time.Duration
	if s.timeout > 0 {
		timeout = s.timeout
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnection, addr, err)
	}
	s.attach(conn, addr)
	return s, nil
}

// NewSession wraps an already-established connection. Anything satisfying
// net.Conn works: a TLS connection, a Unix socket, or a test double. The
// conn must not be used outside the session afterwards.
func NewSession(conn net.Conn, opts ...Option) *Session {
	s := newSession(opts...)
	s.attach(conn, conn.RemoteAddr().String())
	return s
}

func (s *Session) attach(conn net.Conn, addr string) {
	s.conn = conn
	s.fr = NewFrameReader(conn, s.maxFrame)
	s.addr = addr
	s.state = StateConnected
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr returns the remote address the session was dialed against.
func (s *Session) Addr() string {
	return s.addr
}

// Authenticate performs the shared-secret handshake. The server answers
// with an empty response-value packet followed by the auth response proper;
// the former is discarded. Success requires the auth response to echo the
// request id. A rejected secret answers with id -1 and the server closes
// the connection, so the session moves to Closed and must not be reused.
func (s *Session) Authenticate(secret string) error {
	s.mu.Lock()
	if s.state != StateConnected {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: authenticate in state %s", ErrInvalidState, st)
	}
	if s.inflight {
		s.mu.Unlock()
		return ErrPending
	}
	s.inflight = true
	id := s.allocIDLocked()
	s.mu.Unlock()
	defer s.clearInflight()

	s.logger.Debug("sending auth request", log.String("addr", s.addr), log.Int("id", int(id)))
	if err := s.send(Packet{ID: id, Kind: KindAuth, Body: []byte(secret)}); err != nil {
		return s.fail(err)
	}

	s.armDeadline()
	defer s.disarmDeadline()

	for {
		p, err := s.fr.Next()
		if err != nil {
			return s.fail(s.mapReadErr(err))
		}
		if p.Kind == KindResponseValue {
			// Empty response value preceding the auth response; discard.
			continue
		}
		// Handshake phase, so kind 2 is an auth response here.
		if p.ID == id {
			s.setState(StateAuthenticated)
			s.logger.Debug("authenticated", log.String("addr", s.addr))
			return nil
		}
		s.closeConn()
		if p.ID == -1 {
			return fmt.Errorf("%w: server rejected secret", ErrAuthentication)
		}
		return fmt.Errorf("%w: auth response for unexpected id %d", ErrAuthentication, p.ID)
	}
}

// Execute sends a console command and returns the full response text. Valid
// only in the Authenticated state.
//
// The protocol neither bounds a response to one frame nor marks the last
// frame of a multi-frame response, so termination has to be detected
// actively: an empty follow-up command is sent immediately after the real
// one, and because responses on a connection are strictly ordered, the
// follow-up's response can only arrive after every frame of the real
// response. Bodies of response-value frames matching the command id are
// accumulated in arrival order; accumulation stops at the first frame
// matching the sentinel id, whose own body is discarded.
func (s *Session) Execute(command string) (string, error) {
	s.mu.Lock()
	if s.state != StateAuthenticated {
		st := s.state
		s.mu.Unlock()
		return "", fmt.Errorf("%w: execute in state %s", ErrInvalidState, st)
	}
	if s.inflight {
		s.mu.Unlock()
		return "", ErrPending
	}
	s.inflight = true
	cmdID := s.allocIDLocked()
	sentinelID := s.allocIDLocked()
	s.mu.Unlock()
	defer s.clearInflight()

	s.logger.Debug("executing command",
		log.String("addr", s.addr), log.Int("id", int(cmdID)), log.String("command", command))

	if err := s.send(Packet{ID: cmdID, Kind: KindExecCommand, Body: []byte(command)}); err != nil {
		return "", s.fail(err)
	}
	if err := s.send(Packet{ID: sentinelID, Kind: KindExecCommand}); err != nil {
		return "", s.fail(err)
	}

	s.armDeadline()
	defer s.disarmDeadline()

	var out strings.Builder
	for {
		p, err := s.fr.Next()
		if err != nil {
			err = s.mapReadErr(err)
			if errors.Is(err, ErrTransport) {
				err = fmt.Errorf("%w: %w", ErrIncomplete, err)
			}
			return "", s.fail(err)
		}
		switch {
		case p.Kind == KindResponseValue && p.ID == cmdID:
			out.Write(p.Body)
		case p.ID == sentinelID:
			return out.String(), nil
		default:
			s.logger.Debug("discarding unmatched frame",
				log.String("addr", s.addr), log.Int("id", int(p.ID)), log.Int("kind", int(p.Kind)))
		}
	}
}

// Close moves the session to Closed and releases the transport. It is
// idempotent and valid in every state.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosed
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// send encodes and writes one packet, honoring the session timeout as a
// write deadline.
func (s *Session) send(p Packet) error {
	frame, err := Encode(p)
	if err != nil {
		return err
	}
	if s.timeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.timeout))
		defer s.conn.SetWriteDeadline(time.Time{})
	}
	if _, err := s.conn.Write(frame); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return fmt.Errorf("%w: write: %w", ErrTimeout, err)
		}
		return fmt.Errorf("%w: write: %w", ErrTransport, err)
	}
	return nil
}

// fail closes the session and passes the error through.
func (s *Session) fail(err error) error {
	s.closeConn()
	return err
}

func (s *Session) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) clearInflight() {
	s.mu.Lock()
	s.inflight = false
	s.mu.Unlock()
}

// allocIDLocked hands out the next request id. Wraps stay positive; -1 is
// reserved for auth rejection.
func (s *Session) allocIDLocked() int32 {
	id := s.nextID
	s.nextID++
	if s.nextID < 0 {
		s.nextID = 1
	}
	return id
}

func (s *Session) armDeadline() {
	if s.timeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.timeout))
	}
}

func (s *Session) disarmDeadline() {
	if s.timeout > 0 {
		_ = s.conn.SetReadDeadline(time.Time{})
	}
}

// mapReadErr converts reader errors into the session error taxonomy. A
// deadline expiry becomes ErrTimeout; a clean EOF mid-exchange is still a
// transport failure from the session's point of view.
func (s *Session) mapReadErr(err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if err == io.EOF {
		return fmt.Errorf("%w: connection closed", ErrTransport)
	}
	return err
}
