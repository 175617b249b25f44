// Package rconctl provides an embeddable remote-console client for ARK
// dedicated servers speaking the Source RCON protocol.
//
// Example usage:
//
//	sess, err := rconctl.Dial("203.0.113.7", 27020)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//	if err := sess.Authenticate(password); err != nil {
//	    log.Fatal(err)
//	}
//	out, err := sess.Execute("saveworld")
package rconctl

import (
	"github.com/gamehost-labs/rconctl/pkg/cluster"
	"github.com/gamehost-labs/rconctl/pkg/rcon"
)

// Session is one authenticated connection to a remote console.
type Session = rcon.Session

// Packet is the logical protocol unit carried by one wire frame.
type Packet = rcon.Packet

// State is the lifecycle state of a Session.
type State = rcon.State

// Target identifies one sibling server for a cluster broadcast.
type Target = cluster.Target

// Result holds per-target outcomes of a cluster shutdown.
type Result = cluster.Result

// Dial opens a TCP connection and returns a session ready for
// Authenticate.
func Dial(host string, port int, opts ...rcon.Option) (*rcon.Session, error) {
	return rcon.Dial(host, port, opts...)
}

// NewBroadcaster creates a cluster broadcaster issuing the default
// save-then-stop sequence.
func NewBroadcaster(opts ...cluster.Option) *cluster.Broadcaster {
	return cluster.New(opts...)
}
