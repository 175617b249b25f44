package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/gamehost-labs/rconctl/internal/cliconfig"
	"github.com/gamehost-labs/rconctl/internal/console"
	"github.com/gamehost-labs/rconctl/pkg/cluster"
	logAdapter "github.com/gamehost-labs/rconctl/pkg/log"
	"github.com/gamehost-labs/rconctl/pkg/rcon"
)

const helpDescription = `
Remote console client for ARK dedicated servers and their clusters.

Highlights:
  - Speaks the Source RCON wire protocol: authenticated sessions, multi-frame
    response reassembly, strict one-command-at-a-time sequencing.
  - Cluster shutdown saves and stops every sibling server, tolerating
    individual failures so as many worlds as possible get persisted.
  - Configure via file, environment (RCONCTL_*), or flags; the cluster port
    list is hot-reloaded from the config file while the console runs.
`

var longHelp = strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  rconctl 203.0.113.7 27020 hunter2
  rconctl 203.0.113.7 27020 --exec saveworld
  rconctl --config $HOME/.rconctl/config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "rconctl <host> <port> [password]",
		Short:   "Remote console client for ARK dedicated server clusters",
		Long:    longHelp,
		Example: exampleUsage,
		Args:    cobra.MaximumNArgs(3),
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Build set of changed flags; positional arguments count as
			// explicitly set for precedence purposes.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if len(args) > 0 {
				cfg.Host = args[0]
				changed["host"] = true
			}
			if len(args) > 1 {
				p, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid port %q", args[1])
				}
				cfg.Port = p
				changed["port"] = true
			}
			if len(args) > 2 {
				cfg.Password = args[2]
				changed["password"] = true
			}

			// Load config file first (default $HOME/.rconctl/config.toml),
			// then env overrides, with explicit arguments winning
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}

			// Log configuration (masking the password)
			logCfg := cfg
			if len(logCfg.Password) > 0 {
				logCfg.Password = "*****"
			}
			log.Debug().Interface("config", logCfg).Msg("configuration")

			sessLog := logAdapter.NewZerologAdapterWithLogger(log)
			sessOpts := []rcon.Option{
				rcon.WithTimeout(cfg.Timeout),
				rcon.WithMaxFrameSize(int32(cfg.MaxFrameSize)),
				rcon.WithLogger(sessLog),
			}

			sess, err := rcon.Dial(cfg.Host, cfg.Port, sessOpts...)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.Authenticate(cfg.Password); err != nil {
				return err
			}
			log.Info().Str("addr", sess.Addr()).Msg("authenticated")

			// Single-command mode: run and exit, no interactive loop.
			if cfg.Exec != "" {
				out, err := sess.Execute(cfg.Exec)
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, out)
				return sess.Close()
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			portList := cliconfig.NewClusterPortList(cfg.ClusterPorts)
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				go cliconfig.NewConfigWatcher(cfgFile, portList).Run(ctx)
			}

			// Closing the session unblocks the console's pending read so a
			// signal ends the loop promptly.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				select {
				case <-sigCh:
					log.Info().Msg("received signal, closing session...")
					sess.Close()
					cancel()
				case <-ctx.Done():
				}
			}()

			bc := cluster.New(
				cluster.WithCommands([]string{cfg.SaveCommand, cfg.ShutdownCommand}),
				cluster.WithLogger(sessLog),
				cluster.WithSessionOptions(sessOpts...),
			)

			ctrl := console.New(console.Config{
				Input:        os.Stdin,
				Output:       os.Stdout,
				Session:      sess,
				Broadcaster:  bc,
				Host:         cfg.Host,
				Port:         cfg.Port,
				Secret:       cfg.Password,
				ClusterPorts: portList.Get,
				Logger:       log,
			})
			return ctrl.Run()
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.rconctl/config.toml)")
	root.Flags().StringVar(&cfg.Host, "host", cfg.Host, "server host (positional argument preferred)")
	root.Flags().IntVar(&cfg.Port, "port", cfg.Port, "RCON port (positional argument preferred)")
	root.Flags().StringVar(&cfg.Password, "password", cfg.Password, "RCON password (prefer RCONCTL_PASSWORD or the config file)")

	root.Flags().IntSliceVar(&cfg.ClusterPorts, "cluster-ports", cfg.ClusterPorts, "RCON ports of sibling cluster servers")
	root.Flags().StringVar(&cfg.SaveCommand, "save-command", cfg.SaveCommand, "command issued to persist the world during cluster shutdown")
	root.Flags().StringVar(&cfg.ShutdownCommand, "shutdown-command", cfg.ShutdownCommand, "command issued to stop a server during cluster shutdown")

	root.Flags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "round-trip timeout per request (0 disables)")
	root.Flags().IntVar(&cfg.MaxFrameSize, "max-frame-size", cfg.MaxFrameSize, "largest accepted frame length before failing fast")

	root.Flags().StringVar(&cfg.Exec, "exec", cfg.Exec, "run a single command and exit")
	root.Flags().BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable debug logging, including frame traffic")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("rconctl")
		os.Exit(1)
	}
}
