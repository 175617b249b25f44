package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gamehost-labs/rconctl/pkg/cluster"
)

// Config holds CLI configuration for rconctl.
type Config struct {
	Host     string
	Port     int
	Password string

	// ClusterPorts lists the RCON ports of sibling servers reachable on the
	// same host with the same password, used by the cluster-shutdown
	// directive.
	ClusterPorts []int

	SaveCommand     string
	ShutdownCommand string

	Timeout      time.Duration
	MaxFrameSize int

	// Exec, when non-empty, runs a single command and exits instead of
	// entering the interactive loop.
	Exec string

	Verbose bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		SaveCommand:     "saveworld",
		ShutdownCommand: "doexit",
		Timeout:         15 * time.Second,
		MaxFrameSize:    4096,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Password == "" {
		return fmt.Errorf("password is required (argument, config file, or RCONCTL_PASSWORD)")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.MaxFrameSize < 14 {
		return fmt.Errorf("max frame size %d below the minimum frame", c.MaxFrameSize)
	}
	for _, p := range c.ClusterPorts {
		if p < 1 || p > 65535 {
			return fmt.Errorf("cluster port %d out of range", p)
		}
	}
	if c.SaveCommand == "" || c.ShutdownCommand == "" {
		return fmt.Errorf("save and shutdown commands must not be empty")
	}
	return nil
}

// Targets maps the configured cluster ports onto broadcast targets,
// skipping the primary port and duplicates.
func (c *Config) Targets() []cluster.Target {
	return PortsToTargets(c.Host, c.Port, c.ClusterPorts)
}

// PortsToTargets builds the extra-target list for a cluster shutdown: every
// port once, the primary excluded since its session already exists.
func PortsToTargets(host string, primaryPort int, ports []int) []cluster.Target {
	seen := map[int]bool{primaryPort: true}
	var targets []cluster.Target
	for _, p := range ports {
		if seen[p] {
			continue
		}
		seen[p] = true
		targets = append(targets, cluster.Target{Host: host, Port: p})
	}
	return targets
}

// ParsePorts splits a whitespace or comma separated port list.
func ParsePorts(raw string) ([]int, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	ports := make([]int, 0, len(fields))
	for _, f := range fields {
		p, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q", f)
		}
		ports = append(ports, p)
	}
	return ports, nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntList sets an int slice if non-empty and flag not changed.
func (s *configSetter) setIntList(flag string, value []int, dst *[]int) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]int(nil), value...)
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setIntListFromString parses a port list string and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setIntListFromString(flag, value string, dst *[]int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	ports, err := ParsePorts(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if len(ports) == 0 {
		return nil
	}
	*dst = ports
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
