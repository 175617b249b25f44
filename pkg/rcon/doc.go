// Package rcon implements the client side of the Source remote-console
// protocol as spoken by ARK dedicated servers: a length-prefixed binary
// frame format, a shared-secret handshake, and sequential command execution
// with multi-frame response reassembly.
//
// # Basic usage
//
//	sess, err := rcon.Dial("203.0.113.7", 27020)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//
//	if err := sess.Authenticate(password); err != nil {
//	    log.Fatal(err)
//	}
//	out, err := sess.Execute("saveworld")
//
// A session moves through Disconnected, Connected, Authenticated, and
// Closed. Closed is terminal: every transport or protocol failure lands
// there, and recovery means dialing a fresh session.
//
// # Wire format
//
// Each frame is a little-endian signed 32-bit length followed by the packet
// id, the packet kind, the body, and two null bytes:
//
//	[ length ][ id ][ kind ][ body ][ 0x00 ][ 0x00 ]
//	length = 4 + 4 + len(body) + 2
//
// Kind 2 means auth response from the server and exec command from the
// client; the session resolves the ambiguity by connection phase.
package rcon
