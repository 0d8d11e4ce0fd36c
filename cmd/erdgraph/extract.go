package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"erdgraph/internal/db"
	"erdgraph/internal/logger"
)

var (
	extractDriver  string
	extractDSN     string
	extractTimeout time.Duration
	extractOutput  string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the metadata payload of a live database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if extractDriver == "" || extractDSN == "" {
			return fmt.Errorf("--driver and --dsn are required")
		}
		m, err := db.ConnectAndExtract(cmd.Context(), extractDriver, extractDSN, extractTimeout)
		if err != nil {
			return err
		}
		logger.Debug("extracted %d tables, %d columns from %s", len(m.Tables), len(m.Columns), extractDriver)

		out, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(extractOutput, out)
	},
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractDriver, "driver", "", "db driver (postgres,pgx,mysql,sqlite,sqlserver,godror)")
	f.StringVar(&extractDSN, "dsn", "", "connection string")
	f.DurationVar(&extractTimeout, "timeout", 10*time.Second, "db connect timeout")
	f.StringVarP(&extractOutput, "output", "o", "", "output file (default: stdout)")
}
