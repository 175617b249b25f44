package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (RCONCTL_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", os.Getenv("RCONCTL_HOST"), &cfg.Host)
	s.setString("password", os.Getenv("RCONCTL_PASSWORD"), &cfg.Password)
	s.setString("save-command", os.Getenv("RCONCTL_SAVE_COMMAND"), &cfg.SaveCommand)
	s.setString("shutdown-command", os.Getenv("RCONCTL_SHUTDOWN_COMMAND"), &cfg.ShutdownCommand)

	if err := s.setIntFromString("port", os.Getenv("RCONCTL_PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("max-frame-size", os.Getenv("RCONCTL_MAX_FRAME_SIZE"), &cfg.MaxFrameSize); err != nil {
		return err
	}
	if err := s.setIntListFromString("cluster-ports", os.Getenv("RCONCTL_CLUSTER_PORTS"), &cfg.ClusterPorts); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("RCONCTL_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}

	s.setBoolFromString("verbose", os.Getenv("RCONCTL_VERBOSE"), &cfg.Verbose)

	return nil
}
