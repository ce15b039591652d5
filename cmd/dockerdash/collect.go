package main

import (
	"encoding/json"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dockerdash/internal/service"
)

var (
	storeSnapshot bool

	collectCmd = &cobra.Command{
		Use:   "collect",
		Short: "Capture one snapshot and print it, or store it with --store",
		RunE:  runCollect,
	}
)

func init() {
	collectCmd.Flags().BoolVar(&storeSnapshot, "store", false, "store the snapshot in the database instead of printing it")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	c, cleanup, err := newCollector(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := c.Collect(cmd.Context())
	if err != nil {
		return err
	}

	if !storeSnapshot {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	repo, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc := service.NewGraphService(repo, nil, policyFromConfig(cfg), nil)
	if err := svc.IngestSnapshot(cmd.Context(), snap); err != nil {
		return err
	}
	log.WithField("snapshot", snap.ID).Info("Inserted snapshot")
	return nil
}
