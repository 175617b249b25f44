package rcon

import "errors"

// Protocol and session errors returned by the public API.
// All are sentinel values suitable for errors.Is checks; most are returned
// wrapped with additional detail.
var (
	// ErrConnection is returned when the transport cannot be established
	// (refused, timed out, or unresolvable).
	ErrConnection = errors.New("rcon: connection failed")

	// ErrTransport is returned on a mid-session I/O failure. The session is
	// closed and cannot be reused.
	ErrTransport = errors.New("rcon: transport failure")

	// ErrTimeout is returned when a round trip exceeds the session timeout.
	ErrTimeout = errors.New("rcon: timed out")

	// ErrEncode is returned when a packet body would exceed the maximum
	// frame size and the declared length field would be meaningless.
	ErrEncode = errors.New("rcon: packet too large to encode")

	// ErrDecode is returned on a malformed frame: truncated buffer,
	// implausible declared length, or missing terminators. It indicates a
	// protocol or version mismatch and is fatal to the session.
	ErrDecode = errors.New("rcon: malformed frame")

	// ErrAuthentication is returned when the server rejects the shared
	// secret. The server closes the connection after rejecting, so the
	// session transitions to Closed.
	ErrAuthentication = errors.New("rcon: authentication rejected")

	// ErrIncomplete is returned when the transport closes or fails before
	// the sentinel response terminating a command is observed.
	ErrIncomplete = errors.New("rcon: response incomplete")

	// ErrInvalidState is returned when an operation is attempted in a state
	// that does not permit it, e.g. Execute before Authenticate. This is a
	// programming error in the integration, not a protocol condition.
	ErrInvalidState = errors.New("rcon: invalid session state")

	// ErrPending is returned when Execute is called while another command
	// is still in flight on the same session. The protocol multiplexes
	// nothing, so commands are strictly one at a time per connection.
	ErrPending = errors.New("rcon: command already in flight")
)
