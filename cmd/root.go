package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chrisdamba/trafficsim/internal/logging"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/chrisdamba/trafficsim/internal/simulator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	cfg     *models.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "trafficsim",
	Short: "Simulates camera feeds, junction status and alerts for a city traffic dashboard",
	Long: `trafficsim streams simulated vehicle counts from edge camera feeds, rolls them up into
junction congestion and speed, raises incident alerts and publishes KPI snapshots to the
console, files, Kafka or Postgres.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = models.LoadConfig(viper.GetViper(), cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Info("using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		sim := simulator.NewSimulator(cfg, logger)
		return sim.Run(cmd.Context())
	},
}

// flagKeys maps each command-line flag onto its config key.
var flagKeys = map[string]string{
	"seed":                   "seed",
	"start-date":             "start_date",
	"end-date":               "end_date",
	"continuous":             "continuous",
	"step-duration":          "step_duration",
	"step-interval":          "step_interval",
	"tick-min-period":        "tick_min_period",
	"tick-max-period":        "tick_max_period",
	"junction-update-period": "junction_update_period",
	"kpi-snapshot-period":    "kpi_snapshot_period",
	"snapshot-schedule":      "snapshot_schedule",
	"offline-probability":    "offline_probability",
	"recovery-probability":   "recovery_probability",
	"incident-probability":   "incident_probability",
	"initial-junctions":      "initial_junctions",
	"kafka-enabled":          "kafka_enabled",
	"kafka-broker-list":      "kafka_broker_list",
	"output-format":          "output_format",
	"output-path":            "output_path",
	"output-folder":          "output_folder",
	"output-destination":     "output_destination",
	"db-driver":              "database.driver",
	"db-path":                "database.path",
	"log-level":              "log_level",
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	flags.Int64("seed", 42, "Random seed for simulation")
	flags.String("start-date", "", "Start of the simulated window, RFC3339 (default now)")
	flags.String("end-date", "", "End of the simulated window, RFC3339 (default start + 1h)")
	flags.Bool("continuous", false, "Run until interrupted instead of stopping at end-date")
	flags.Duration("step-duration", 0, "Simulated time per step (default 1s)")
	flags.Duration("step-interval", 0, "Wall-clock time between steps (default 1s)")
	flags.Duration("tick-min-period", 0, "Shortest gap between two ticks of a feed (default 2s)")
	flags.Duration("tick-max-period", 0, "Longest gap between two ticks of a feed (default 3s)")
	flags.Duration("junction-update-period", 0, "Junction roll-up period (default 10s)")
	flags.Duration("kpi-snapshot-period", 0, "KPI snapshot period in simulated time (default 1m)")
	flags.String("snapshot-schedule", "", "Cron spec for extra KPI snapshots in continuous mode")
	flags.Float64("offline-probability", 0.002, "Chance per tick that an online feed drops out")
	flags.Float64("recovery-probability", 0.05, "Chance per tick that an offline feed comes back")
	flags.Float64("incident-probability", 0.01, "Chance per junction update of a new incident")
	flags.Int("initial-junctions", 0, "Generated junctions added to the built-in catalogue")
	flags.Bool("kafka-enabled", false, "Publish events to Kafka")
	flags.String("kafka-broker-list", "localhost:9092", "Comma separated Kafka brokers")
	flags.String("output-format", "console", "console, json, csv, parquet or postgres")
	flags.String("output-path", "", "Base directory for file outputs")
	flags.String("output-folder", "trafficsim", "Folder under output-path (or bucket prefix)")
	flags.String("output-destination", "local", "local or s3 (parquet only)")
	flags.String("db-driver", "sqlite", "Catalogue database driver: sqlite or postgres")
	flags.String("db-path", "data/trafficsim.db", "SQLite database file")
	flags.String("log-level", "info", "debug, info, warn or error")

	for flag, key := range flagKeys {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}

	rootCmd.AddCommand(seedCmd)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
