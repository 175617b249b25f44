package ports

import "github.com/gamehost-labs/rconctl/pkg/cluster"

// Session is the slice of the rcon session contract the console drives.
type Session interface {
	// Execute runs one console command and returns its output.
	Execute(command string) (string, error)

	// Close releases the session. Idempotent.
	Close() error
}

// Broadcaster fans the shutdown sequence out across cluster targets.
type Broadcaster interface {
	Shutdown(primary cluster.Session, primaryTarget cluster.Target, extra []cluster.Target, secret string) cluster.Result
}
