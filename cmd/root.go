package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// CLI flags for the simulation run
	configPath  string  // Park configuration YAML (empty = built-in default park)
	seed        int64   // Master seed for all sampling streams
	speedFactor float64 // Real seconds per simulated minute (0 = from config)
	horizon     int64   // Simulated minutes until closing (0 = from config)
	logLevel    string  // Log verbosity level
	outDir      string  // Directory for the metrics CSV
	metricsFile string  // Metrics CSV filename
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "parksim",
	Short: "Concurrent amusement park simulator",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the park simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := DefaultParkConfig()
		if configPath != "" {
			cfg, err = LoadParkConfig(configPath)
			if err != nil {
				logrus.Fatalf("Unable to load park config: %v", err)
			}
		}
		if speedFactor > 0 {
			cfg.Time.SpeedFactor = speedFactor
		}
		if horizon > 0 {
			cfg.Time.OpenMinutes = horizon
		}

		logrus.Infof("Starting simulation: %d rides, %d food facilities, horizon=%dmin, speed=%.3fs/min, seed=%d",
			len(cfg.Rides), len(cfg.Food), cfg.Time.OpenMinutes, cfg.Time.SpeedFactor, seed)

		sim, err := composeSimulation(cfg, seed, outDir, metricsFile)
		if err != nil {
			logrus.Fatalf("Unable to compose simulation: %v", err)
		}

		startTime := time.Now()
		sim.run()

		sim.metrics.Print(cfg.Time.OpenMinutes)
		if err := sim.metrics.Close(); err != nil {
			logrus.Warnf("Closing metrics: %v", err)
		}
		logrus.Infof("Simulation complete in %s. Metrics at %s (run %s)",
			time.Since(startTime).Round(time.Millisecond), sim.metrics.Path(), sim.metrics.RunID())
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Park configuration YAML (empty = built-in default park)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for all random sampling streams")
	runCmd.Flags().Float64Var(&speedFactor, "speed-factor", 0, "Real seconds per simulated minute (overrides config)")
	runCmd.Flags().Int64Var(&horizon, "horizon", 0, "Simulated minutes until closing (overrides config)")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&outDir, "out-dir", "results", "Directory for the metrics CSV")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "metrics.csv", "Metrics CSV filename")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
