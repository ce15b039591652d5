package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dockerdash/internal/service"
)

var (
	importFormat string

	importCmd = &cobra.Command{
		Use:   "import [file...]",
		Short: "Load snapshot files (JSON or YAML) into the database",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImport,
	}
)

func init() {
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "input format: json or yaml (default: from file extension)")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	repo, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc := service.NewGraphService(repo, nil, policyFromConfig(cfg), nil)

	var stored, skipped int
	for _, path := range args {
		format := importFormat
		if format == "" {
			format = formatFromPath(path)
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		result, err := svc.Import(cmd.Context(), f, format)
		f.Close()
		if result != nil {
			stored += result.Stored
			skipped += result.Skipped
			for _, msg := range result.Errors {
				log.WithField("file", path).Warn(msg)
			}
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	log.WithFields(log.Fields{"stored": stored, "skipped": skipped}).Info("Import complete")
	return nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
