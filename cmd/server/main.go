/*
main.go - Application entry point

PURPOSE:
  Command-line entry of the HR engine. Loads configuration, wires the
  SQLite store, award generator, cache, metrics and HTTP API, and runs
  one of the subcommands below.

COMMANDS:
  serve      Run the HTTP API and the award scheduler (default)
  generate   Generate one year's awards and print the result as JSON
  seed       Reset the database and load a demo scenario

CONFIGURATION (config package):
  Defaults, then .env, then the YAML file named by HR_CONFIG, then HR_*
  environment variables. Flags override the loaded values:
    --addr       HTTP listen address
    --db         SQLite database path (":memory:" for in-memory)
    --log-level  debug, info, warn, error

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler
  4. Close cache and database connections

EXAMPLES:
  hr-engine serve --db=./data/hr.db
  hr-engine generate --year=2024
  hr-engine generate --year=2024 --force
  hr-engine seed --scenario=demo

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Every setting and its default
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/hr-engine/config"
)

var (
	flagAddr     string
	flagDB       string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "hr-engine",
	Short:         "HR engine: employees, behavior scores, recruitment and annual awards",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "", "HTTP listen address (overrides HR_ADDR)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides HR_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (overrides HR_LOG_LEVEL)")

	generateCmd.Flags().IntVar(&flagYear, "year", 0, "Award year (default: last year)")
	generateCmd.Flags().BoolVar(&flagForce, "force", false, "Replace an already generated year")
	seedCmd.Flags().StringVar(&flagScenario, "scenario", "demo", "Scenario id")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(seedCmd)
}

// loadConfig loads the layered configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
