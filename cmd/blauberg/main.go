// Blauberg is a command line client for Blauberg ventilation fans.
//
// It talks to fans over the local network using their UDP protocol:
// reading and writing raw parameters, controlling a fan through its model
// profile, discovering fans by broadcast, monitoring one fan in a terminal
// UI and exporting fan parameters to Prometheus.
//
// Usage:
//
//	blauberg [command] [flags]
//
// Fans saved with 'blauberg fans add' can be addressed by name with --fan.
// See 'blauberg --help' for available commands.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/blauberg/internal/config"
	"github.com/muurk/blauberg/internal/logging"
	"github.com/muurk/blauberg/internal/ui"
	"github.com/muurk/blauberg/internal/version"
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Connection and output flags shared by every command
var (
	fanName      string
	fanHost      string
	fanPort      int
	deviceID     string
	password     string
	timeout      time.Duration
	outputFormat string
	logLevel     string
	configPath   string
)

var rootCmd = &cobra.Command{
	Use:   "blauberg",
	Short: "Blauberg Ventilation Fan Utility",
	Long: `A command line client for Blauberg ventilation fans.

Reads and writes fan parameters over the fan's UDP protocol, controls
fans through their model profile, discovers fans on the local network,
and exports fan parameters as Prometheus metrics.

A fan is addressed either by a saved name (--fan) or directly (--host).`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if level == "" {
			if reg, err := loadRegistry(); err == nil {
				level = reg.Preferences.LogLevel
			}
		}
		return logging.Initialize(level)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&fanName, "fan", "", "Name of a saved fan")
	flags.StringVar(&fanHost, "host", "", "Fan IP address or hostname (overrides the saved host)")
	flags.IntVar(&fanPort, "port", 0, "Fan UDP port (default 4000)")
	flags.StringVar(&deviceID, "device-id", "", "Fan device id (default DEFAULT_DEVICEID)")
	flags.StringVar(&password, "password", "", "Fan password (default 1111, \"\" for none)")
	flags.DurationVar(&timeout, "timeout", 0, "How long to wait for an answer (default 1s)")
	flags.StringVar(&outputFormat, "format", "table", "Output format (table, json)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&configPath, "config", "", "Config file (default $BLAUBERG_CONFIG or the user config dir)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		p := newPrinter()
		if p.JSON() {
			_ = p.PrintJSON(version.Details())
			return
		}
		fmt.Printf("blauberg %s\n", version.Full())
	},
}

// loadRegistry loads the config file named by --config or the default one.
func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.LoadRegistryFrom(configPath)
	}
	return config.LoadRegistry()
}

func newPrinter() *ui.Printer {
	return ui.NewPrinter(os.Stdout).SetJSON(outputFormat == "json")
}
