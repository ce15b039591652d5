package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dockerdash/internal/config"
)

var (
	initForce bool

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if err := writeDefaultConfig(path, initForce); err != nil {
				return err
			}
			log.WithField("path", path).Info("Config written")
			return nil
		},
	}
)

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func writeDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	return config.DefaultConfig().Save(path)
}
