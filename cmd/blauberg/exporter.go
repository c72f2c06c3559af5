package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/blauberg/internal/config"
	"github.com/muurk/blauberg/internal/devices"
	"github.com/muurk/blauberg/internal/fan"
	"github.com/muurk/blauberg/internal/logging"
	"github.com/muurk/blauberg/internal/metrics"
	"github.com/muurk/blauberg/internal/server"
)

var (
	exporterListen   string
	exporterInterval time.Duration
	exporterRate     float64
)

func init() {
	exporterCmd.Flags().StringVar(&exporterListen, "listen", ":9105", "Address to serve /metrics on")
	exporterCmd.Flags().DurationVar(&exporterInterval, "interval", 30*time.Second, "Time between polls")
	exporterCmd.Flags().Float64Var(&exporterRate, "max-rate", 5, "Maximum fan polls per second (0 for no limit)")
	rootCmd.AddCommand(exporterCmd)
}

// exporterCmd serves fan parameters to Prometheus
var exporterCmd = &cobra.Command{
	Use:   "exporter",
	Short: "Export fan parameters as Prometheus metrics",
	Long: `Poll saved fans and serve their parameters as Prometheus metrics.

Every saved fan is polled (or only the one named by --fan). Each poll reads
all parameters of the fan's profile in one exchange and publishes them as
blauberg_parameter_value{fan,param}. Protocol counters for timeouts,
checksum mismatches and truncated answers are served alongside.

The exporter stops cleanly on Ctrl+C or SIGTERM.`,
	Example: `  # Export every saved fan on the default port
  blauberg exporter

  # One fan, polled every 10 seconds
  blauberg exporter --fan bathroom --interval 10s --listen 127.0.0.1:9105`,
	Args: cobra.NoArgs,
	RunE: runExporter,
}

func runExporter(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	names := reg.FanNames()
	if fanName != "" {
		if reg.Fan(fanName) == nil {
			return fmt.Errorf("no saved fan named %q", fanName)
		}
		names = []string{fanName}
	}

	promReg := metrics.NewRegistry()
	m := metrics.New(promReg)

	targets := make([]server.Target, 0, len(names))
	for _, name := range names {
		t, err := exportTarget(cmd.Context(), reg, name, m)
		if err != nil {
			return err
		}
		targets = append(targets, t)
	}

	srv, err := server.New(&server.Config{
		Listen:      exporterListen,
		Interval:    exporterInterval,
		MaxPollRate: exporterRate,
	}, promReg, m, targets)
	if err != nil {
		return err
	}

	fmt.Printf("Serving metrics for %d fan(s) on %s/metrics\n", len(targets), exporterListen)
	fmt.Println("Press Ctrl+C to stop")
	return srv.Start()
}

// exportTarget builds the poll target of a saved fan. A fan without a
// saved profile that cannot be reached at startup is polled with the
// generic profile.
func exportTarget(ctx context.Context, reg *config.Registry, name string, m *metrics.Metrics) (server.Target, error) {
	entry := reg.Fan(name)
	opts := append(entry.ClientOptions(reg.Preferences), flagOptions()...)
	opts = append(opts, fan.WithMetrics(m))
	client, err := fan.NewClient(entry.Host, opts...)
	if err != nil {
		return server.Target{}, fmt.Errorf("fan %s: %w", name, err)
	}

	t := &target{name: name, entry: entry, registry: reg, client: client}
	profile, err := t.profile(ctx)
	if err != nil {
		if entry.Profile != "" {
			return server.Target{}, err
		}
		logging.Warn("Could not read unit type, using generic profile",
			zap.String("fan", name), zap.Error(err))
		profile = devices.Generic
	}
	return server.Target{Name: name, Fan: client, Profile: profile}, nil
}
