package cmd

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Environment variables that provide flag defaults. A .env file in the working
// directory is loaded first; variables already set win.
const (
	envOutputDir = "FDKG_ADVISOR_OUTPUT_DIR"
	envLogLevel  = "FDKG_ADVISOR_LOG"
	envAddr      = "FDKG_ADVISOR_ADDR"
)

var logLevel string // Log verbosity level

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "fdkg-advisor",
	Short: "Guardian and threshold recommendations from FDKG liveness sweeps",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

var loadDotenv = sync.OnceFunc(func() {
	_ = godotenv.Load()
})

// envOr returns the value of key, or fallback when it is unset or empty.
func envOr(key, fallback string) string {
	loadDotenv()
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", envOr(envLogLevel, "info"), "Log level (trace, debug, info, warn, error, fatal, panic)")
}
