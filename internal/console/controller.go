// Package console implements the interactive directive loop: one user
// directive at a time, dispatched against an authenticated session. It owns
// no protocol logic; it only sequences user intent against the session and
// broadcaster contracts.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gamehost-labs/rconctl/internal/cliconfig"
	"github.com/gamehost-labs/rconctl/internal/ports"
	"github.com/gamehost-labs/rconctl/pkg/cluster"
	"github.com/gamehost-labs/rconctl/pkg/rcon"
)

// Config wires a Controller. Input and Output default to nothing; callers
// pass os.Stdin/os.Stdout in production and buffers in tests.
type Config struct {
	Input  io.Reader
	Output io.Writer

	Session     ports.Session
	Broadcaster ports.Broadcaster

	Host   string
	Port   int
	Secret string

	// ClusterPorts supplies the live configured port list for the
	// cluster-shutdown directive. May be nil.
	ClusterPorts func() []int

	Logger zerolog.Logger
}

// Controller reads directives and drives the session until the user quits,
// the session dies, or a cluster shutdown completes.
type Controller struct {
	in           *bufio.Scanner
	out          io.Writer
	session      ports.Session
	broadcaster  ports.Broadcaster
	host         string
	port         int
	secret       string
	clusterPorts func() []int
	log          zerolog.Logger
}

// New creates a Controller from cfg.
func New(cfg Config) *Controller {
	clusterPorts := cfg.ClusterPorts
	if clusterPorts == nil {
		clusterPorts = func() []int { return nil }
	}
	return &Controller{
		in:           bufio.NewScanner(cfg.Input),
		out:          cfg.Output,
		session:      cfg.Session,
		broadcaster:  cfg.Broadcaster,
		host:         cfg.Host,
		port:         cfg.Port,
		secret:       cfg.Secret,
		clusterPorts: clusterPorts,
		log:          cfg.Logger,
	}
}

// Run loops until quit, end of input, a fatal session error, or a completed
// cluster shutdown. The session is closed on every exit path. Fatal session
// errors are returned; no reconnection is attempted.
func (c *Controller) Run() error {
	defer c.session.Close()

	c.printf("Connected to %s:%d.\n", c.host, c.port)
	c.printf("Enter 'i' to issue a command, 'q' to quit, or 's' to shut down the cluster.\n")

	for {
		line, ok := c.readLine("> ")
		if !ok {
			return nil
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue

		case "i":
			if err := c.issueCommand(); err != nil {
				return err
			}

		case "q":
			c.printf("Quit directive issued.\n")
			return nil

		case "s":
			done, err := c.clusterShutdown()
			if err != nil || done {
				return err
			}

		default:
			c.printf("Unknown directive %q. Use 'i', 'q', or 's'.\n", strings.TrimSpace(line))
		}
	}
}

// issueCommand prompts for one command, executes it, and prints the result.
// Any execution error is fatal to the session, so it ends the loop.
func (c *Controller) issueCommand() error {
	cmd, ok := c.readLine("rcon> ")
	if !ok {
		return nil
	}
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return nil
	}

	out, err := c.session.Execute(cmd)
	if err != nil {
		c.printf("Command failed: %v\n", err)
		if errors.Is(err, rcon.ErrPending) {
			return nil
		}
		return err
	}

	if out == "" {
		c.printf("(no output)\n")
		return nil
	}
	c.printf("%s\n", out)
	return nil
}

// clusterShutdown prompts for the sibling ports, broadcasts the shutdown
// sequence, and reports per-target outcomes. Returns done=true when the
// broadcast ran; the whole cluster is down afterwards, so the loop ends.
func (c *Controller) clusterShutdown() (bool, error) {
	c.printf("All servers in the cluster must share this host and password; only the port varies.\n")

	configured := c.clusterPorts()
	prompt := "Ports to shut down, whitespace separated ('c' to cancel): "
	if len(configured) > 0 {
		prompt = fmt.Sprintf("Ports to shut down (enter for configured %v, 'c' to cancel): ", configured)
	}

	raw, ok := c.readLine(prompt)
	if !ok {
		return true, nil
	}
	raw = strings.TrimSpace(raw)

	if strings.EqualFold(raw, "c") {
		c.printf("Operation cancelled.\n")
		return false, nil
	}

	extraPorts := configured
	if raw != "" {
		parsed, err := cliconfig.ParsePorts(raw)
		if err != nil {
			c.printf("%v; operation cancelled.\n", err)
			return false, nil
		}
		extraPorts = parsed
	}

	primary := cluster.Target{Host: c.host, Port: c.port}
	extra := cliconfig.PortsToTargets(c.host, c.port, extraPorts)

	c.printf("Shutting down %d server(s)...\n", 1+len(extra))
	c.log.Info().Int("targets", 1+len(extra)).Msg("cluster shutdown initiated")

	result := c.broadcaster.Shutdown(c.session, primary, extra, c.secret)
	for _, o := range result {
		if o.OK() {
			c.printf("  %s: saved and stopped\n", o.Target.Addr())
		} else {
			c.printf("  %s: %v\n", o.Target.Addr(), o.Err)
		}
	}
	c.printf("Cluster shutdown finished: %d of %d targets succeeded.\n", len(result)-result.Failed(), len(result))
	return true, nil
}

// readLine prints a prompt and reads one line. ok is false when input ends.
func (c *Controller) readLine(prompt string) (string, bool) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		return "", false
	}
	return c.in.Text(), true
}

func (c *Controller) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}
