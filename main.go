// zpool_influxdb gathers top-level ZFS pool and resilver/scan statistics
// and prints them using the InfluxDB line protocol.
//
// The tool takes one snapshot per invocation and exits; an external
// scheduler (cron, telegraf's inputs.exec plugin) drives it once per
// scrape.
//
// Usage:
//
//	zpool_influxdb [pool] [--config config.yaml] [--debug]
//
// With no positional argument every imported pool is reported; with one,
// only the exactly-named pool. Metric lines go to standard output, or to
// an InfluxDB v1 write endpoint when --influx-url is set. Diagnostics go
// to standard error.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zfskit/zpool-influxdb/internal/exporter"
	"github.com/zfskit/zpool-influxdb/internal/influx"
	"github.com/zfskit/zpool-influxdb/internal/logging"
	"github.com/zfskit/zpool-influxdb/internal/models"
	"github.com/zfskit/zpool-influxdb/internal/utils"
	"github.com/zfskit/zpool-influxdb/internal/zpool"
)

const programName = "zpool_influxdb"

var (
	configFile       string
	debug            bool
	influxURL        string
	influxDB         string
	fixRemainingTime bool
	fixReadOps       bool
)

// loadConfig returns the effective configuration: the YAML file when one
// was given, defaults otherwise, with command line overrides applied.
func loadConfig() (*models.Config, error) {
	var cfg models.Config

	if configFile != "" {
		if !utils.FileExists(configFile) {
			return nil, fmt.Errorf("config file not found: %s", configFile)
		}
		if err := utils.ReadFile(&cfg, configFile); err != nil {
			return nil, err
		}
	}

	if influxURL != "" {
		cfg.Influx.URL = influxURL
	}
	if influxDB != "" {
		cfg.Influx.Database = influxDB
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// runCollection executes one collection pass against the given pool
// filter ("" = all pools) and writes the result to the configured sink.
func runCollection(cfg *models.Config, filter string) error {
	provider := zpool.NewCLI(cfg.Zpool.BinaryPath, cfg.ZpoolTimeout())

	var out io.Writer = os.Stdout
	var sink *influx.Writer
	if cfg.PushEnabled() {
		sink = influx.NewWriter(cfg.Influx.URL, cfg.Influx.Database, cfg.InfluxTimeout())
		out = sink
	}

	collector := &exporter.Collector{
		Provider: provider,
		Out:      out,
		Filter:   filter,
		Opts: exporter.Options{
			FixRemainingTime: fixRemainingTime,
			FixReadOps:       fixReadOps,
		},
	}

	ctx := context.Background()
	if err := collector.Run(ctx); err != nil {
		return err
	}

	if sink != nil {
		log.Debugf("Flushing %d buffered bytes to %s", sink.Len(), cfg.Influx.URL)
		return sink.Flush(ctx)
	}
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   programName + " [pool]",
		Short: "Emit ZFS pool and scan statistics as InfluxDB line protocol",
		Long: "zpool_influxdb takes a point-in-time snapshot of ZFS pool health and\n" +
			"scan/resilver progress and emits it as InfluxDB line protocol records,\n" +
			"one pool-stats line and at most one scan-stats line per pool.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if err := logging.Prepare(cfg.LogName, debug); err != nil {
				return err
			}

			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}

			return runCollection(cfg, filter)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&influxURL, "influx-url", "", "InfluxDB base URL to push lines to instead of stdout")
	rootCmd.PersistentFlags().StringVar(&influxDB, "influx-db", "", "InfluxDB database for --influx-url")
	rootCmd.PersistentFlags().BoolVar(&fixRemainingTime, "fix-remaining-time", false,
		"Estimate remaining scan time as (to_examine-examined)/rate instead of the legacy formula")
	rootCmd.PersistentFlags().BoolVar(&fixReadOps, "fix-read-ops", false,
		"Emit the real read op counter in read_ops instead of the legacy read_bytes value")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
