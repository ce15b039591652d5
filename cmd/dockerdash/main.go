package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dockerdash/internal/collector"
	"dockerdash/internal/config"
	"dockerdash/internal/repository/sqlite"
	"dockerdash/internal/service"
)

var (
	configPath string
	dbPath     string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "dockerdash",
		Short: "Container and process topology for a docker host",
		Long: `dockerdash records snapshots of the containers and processes on a docker
host, along with the connections between them, and serves the resulting
topology graph over HTTP.`,
		SilenceUsage: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: search standard locations)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(initCmd, serveCmd, collectCmd, importCmd, graphCmd)
}

// loadConfig reads the config file and applies command line overrides
func loadConfig() (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if configPath != "" {
		cfg, path, err = config.LoadFromPath(configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, path, err
	}

	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, path, err
		}
	}
	log.SetLevel(cfg.Level())

	if path != "" {
		log.WithField("path", path).Debug("Loaded config")
	}
	return cfg, path, nil
}

func openStore(cfg *config.Config) (*sqlite.Repository, error) {
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.WithField("path", cfg.Database.Path).Info("Database opened")
	return repo, nil
}

func policyFromConfig(cfg *config.Config) service.Policy {
	return service.Policy{
		Limit:        cfg.Graph.SnapshotLimit,
		MaskIPLabels: cfg.Graph.MaskIPLabels,
		Retain:       cfg.Database.Retain,
	}
}

// newCollector wires a collector to the local machine or, when configured,
// to a remote host over SSH. The returned cleanup releases both clients.
func newCollector(cfg *config.Config) (*collector.Collector, func(), error) {
	cc := cfg.Collector
	opts := collector.Options{
		HostProcesses: cc.HostProcesses,
		Containers:    cc.Containers,
		Sudo:          cc.Sudo,
	}

	var (
		runner  collector.Runner = collector.LocalRunner{}
		cleanup []func()
	)
	if cc.SSH.Remote() {
		sshRunner, err := collector.NewSSHRunner(cc.SSH.Host, cc.SSH.Port, cc.SSH.User, cc.SSH.KeyPath, 10*time.Second)
		if err != nil {
			return nil, nil, err
		}
		runner = sshRunner
		opts.HostName = cc.SSH.Host
		cleanup = append(cleanup, func() { sshRunner.Close() })
	} else if name, err := os.Hostname(); err == nil {
		opts.HostName = name
	}

	var source collector.ContainerSource
	if cc.Containers {
		inspector, err := collector.NewDockerInspector()
		if err != nil {
			for _, fn := range cleanup {
				fn()
			}
			return nil, nil, err
		}
		source = inspector
		cleanup = append(cleanup, func() { inspector.Close() })
	}

	return collector.New(runner, source, opts), func() {
		for _, fn := range cleanup {
			fn()
		}
	}, nil
}
