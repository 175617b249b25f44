package cluster

import (
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/gamehost-labs/rconctl/pkg/log"
	"github.com/gamehost-labs/rconctl/pkg/rcon"
)

// DefaultCommands is the sequence issued to every target during a cluster
// shutdown: persist the world, then stop the server. The order matters; a
// stopped server cannot save.
var DefaultCommands = []string{"saveworld", "doexit"}

// Target identifies one sibling server in the cluster. Cluster members
// share host and secret; only the port varies.
type Target struct {
	Host string
	Port int
}

// Addr returns the target in host:port form.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Session is the slice of the rcon session contract the broadcaster drives.
type Session interface {
	Execute(command string) (string, error)
	Close() error
}

// Dialer opens and authenticates a session against one target.
type Dialer func(target Target, secret string) (Session, error)

// Outcome records how one target fared.
type Outcome struct {
	Target Target
	Err    error
}

// OK reports whether the target received the full command sequence.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Result holds one outcome per target, in the order the targets were given,
// primary first.
type Result []Outcome

// Failed returns the number of targets that did not complete the sequence.
func (r Result) Failed() int {
	n := 0
	for _, o := range r {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Broadcaster issues the shutdown sequence across a cluster.
type Broadcaster struct {
	dial     Dialer
	commands []string
	logger   log.Logger
	sessOpts []rcon.Option
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithDialer replaces how sessions to extra targets are opened. Mainly
// useful for tests.
func WithDialer(d Dialer) Option {
	return func(b *Broadcaster) { b.dial = d }
}

// WithCommands replaces the command sequence issued to each target.
func WithCommands(commands []string) Option {
	return func(b *Broadcaster) {
		if len(commands) > 0 {
			b.commands = commands
		}
	}
}

// WithLogger routes broadcast progress to l.
func WithLogger(l log.Logger) Option {
	return func(b *Broadcaster) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithSessionOptions passes options through to sessions the default dialer
// opens, e.g. a timeout or max frame size.
func WithSessionOptions(opts ...rcon.Option) Option {
	return func(b *Broadcaster) { b.sessOpts = opts }
}

// New creates a Broadcaster. Without options it dials real sessions and
// issues DefaultCommands.
func New(opts ...Option) *Broadcaster {
	b := &Broadcaster{
		commands: DefaultCommands,
		logger:   log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.dial == nil {
		b.dial = b.dialSession
	}
	return b
}

func (b *Broadcaster) dialSession(target Target, secret string) (Session, error) {
	sess, err := rcon.Dial(target.Host, target.Port, b.sessOpts...)
	if err != nil {
		return nil, err
	}
	if err := sess.Authenticate(secret); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

// Shutdown issues the command sequence to the primary session and to a
// fresh session per extra target. Targets are processed concurrently; each
// session keeps its own one-command-at-a-time rule, and target state is
// fully isolated, so concurrency here is purely a latency win.
//
// Per-target failures are recorded in the result rather than propagated, so
// one bad target never aborts its siblings. Sessions opened here are closed
// before returning regardless of outcome; the primary session stays open
// and remains owned by the caller.
func (b *Broadcaster) Shutdown(primary Session, primaryTarget Target, extra []Target, secret string) Result {
	result := make(Result, 1+len(extra))
	result[0] = Outcome{Target: primaryTarget}
	for i, t := range extra {
		result[i+1] = Outcome{Target: t}
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		result[0].Err = b.run(primary, primaryTarget)
	}()

	for i, t := range extra {
		wg.Add(1)
		go func(i int, t Target) {
			defer wg.Done()
			sess, err := b.dial(t, secret)
			if err != nil {
				b.logger.Warn("target unreachable", log.String("target", t.Addr()), log.Err(err))
				result[i+1].Err = err
				return
			}
			defer sess.Close()
			result[i+1].Err = b.run(sess, t)
		}(i, t)
	}

	wg.Wait()
	return result
}

func (b *Broadcaster) run(sess Session, target Target) error {
	for _, cmd := range b.commands {
		out, err := sess.Execute(cmd)
		if err != nil {
			b.logger.Warn("command failed",
				log.String("target", target.Addr()), log.String("command", cmd), log.Err(err))
			return fmt.Errorf("%s: %w", cmd, err)
		}
		b.logger.Info("command acknowledged",
			log.String("target", target.Addr()), log.String("command", cmd), log.String("output", out))
	}
	return nil
}
