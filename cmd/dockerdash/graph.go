package main

import (
	"os"

	"github.com/spf13/cobra"

	"dockerdash/internal/service"
)

var (
	graphFormat string
	graphLimit  int
	graphMask   bool

	graphCmd = &cobra.Command{
		Use:   "graph",
		Short: "Build the topology graph from stored snapshots and print it",
		RunE:  runGraph,
	}
)

func init() {
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "json", "output format: json or yaml")
	graphCmd.Flags().IntVarP(&graphLimit, "limit", "n", 0, "number of recent snapshots to use (default: from config)")
	graphCmd.Flags().BoolVar(&graphMask, "mask", false, "mask the last octet of IP labels")
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	repo, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	policy := policyFromConfig(cfg)
	if cmd.Flags().Changed("limit") {
		policy.Limit = graphLimit
	}
	if graphMask {
		policy.MaskIPLabels = true
	}
	if err := policy.Validate(); err != nil {
		return err
	}

	svc := service.NewGraphService(repo, nil, policy, nil)
	return svc.Export(cmd.Context(), graphFormat, os.Stdout)
}
