package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/blauberg/internal/devices"
	"github.com/muurk/blauberg/internal/fan"
	"github.com/muurk/blauberg/internal/protocol"
)

var (
	writeVerify   bool
	writeRollback bool
)

func init() {
	writeCmd.Flags().BoolVar(&writeVerify, "verify", false, "Read the values back and fail if the fan did not apply them")
	writeCmd.Flags().BoolVar(&writeRollback, "rollback", false, "Restore the previous values if verification fails (implies --verify)")

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(setCmd)
}

// readCmd reads raw parameters
var readCmd = &cobra.Command{
	Use:   "read <id>...",
	Short: "Read fan parameters",
	Long: `Read one or more parameters from a fan in a single exchange.

Parameter ids are given in decimal or 0x-prefixed hex. Parameters the fan
does not know are shown as invalid. A fan that does not answer within the
timeout yields an empty result.`,
	Example: `  # Read power state and unit type of a saved fan
  blauberg read 0x01 0xB9 --fan bathroom

  # Read the humidity sensor of a fan by address
  blauberg read 0x25 --host 192.168.1.50 --device-id 003A00345753560A

  # JSON output for scripting
  blauberg read 0x01 0x02 --fan bathroom --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRead,
}

func runRead(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	t, err := resolveTarget()
	if err != nil {
		return err
	}

	params, err := t.client.ReadParams(cmd.Context(), ids...)
	if err != nil {
		return fmt.Errorf("read from %s failed: %w", t.name, err)
	}
	newPrinter().PrintParams(params, paramNames())
	return nil
}

// writeCmd writes raw parameters
var writeCmd = &cobra.Command{
	Use:   "write <id=value>...",
	Short: "Write fan parameters",
	Long: `Write one or more parameters in a single exchange and show the values
the fan reports back.

Values are integers in decimal or 0x-prefixed hex, or text in double
quotes. Each value is sent in as few bytes as it needs.

With --verify the values are read back, retrying a few times while the fan
applies them. With --rollback the previous values are saved first and
written back if verification fails.`,
	Example: `  # Turn a fan on
  blauberg write 0x01=1 --fan bathroom

  # Change the manual rate, restoring the old one if it does not stick
  blauberg write 0x44=200 --fan bathroom --rollback

  # Set speed preset 2 and manual rate 128 at once
  blauberg write 0x02=2 0x44=128 --fan bathroom`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWrite,
}

func runWrite(cmd *cobra.Command, args []string) error {
	values, err := parseAssignments(args)
	if err != nil {
		return err
	}
	t, err := resolveTarget()
	if err != nil {
		return err
	}

	if writeVerify || writeRollback {
		return runVerifiedWrite(cmd.Context(), t, values)
	}

	params, err := t.client.WriteValues(cmd.Context(), values)
	if err != nil {
		return fmt.Errorf("write to %s failed: %w", t.name, err)
	}
	newPrinter().PrintParams(params, paramNames())
	return nil
}

func runVerifiedWrite(ctx context.Context, t *target, values protocol.Params) error {
	p := newPrinter()
	var result, rollback *fan.VerificationResult
	if writeRollback {
		result, rollback = fan.NewRollbackManager(t.client).WriteWithRollback(ctx, values, nil)
	} else {
		result = t.client.WriteAndVerify(ctx, values, nil)
	}

	if result.Success {
		p.PrintParams(result.Actual, paramNames())
		return nil
	}

	p.PrintError("Write not applied", result.Error, []string{
		"Check that the parameters are writable on this model",
		"Values outside the allowed range may be clamped by the fan",
		"Check --password; fans ignore writes with a wrong password",
	})
	if rollback != nil {
		if rollback.Success {
			p.PrintWarning("Previous values restored", map[string]string{"Attempts": strconv.Itoa(rollback.Attempts)})
		} else {
			p.PrintError("Rollback failed", rollback.Error, nil)
		}
	}
	return fmt.Errorf("write to %s not verified", t.name)
}

// typeCmd shows the unit type
var typeCmd = &cobra.Command{
	Use:   "type",
	Short: "Show the unit type of a fan",
	Long: `Read the unit type code (parameter 0x00B9) and show which profile
matches it.`,
	Example: `  blauberg type --host 192.168.1.50`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := resolveTarget()
		if err != nil {
			return err
		}
		unitType, err := t.client.DeviceType(cmd.Context())
		if err != nil {
			return err
		}
		catalog, err := t.registry.Catalog()
		if err != nil {
			return err
		}

		p := newPrinter()
		details := map[string]string{
			"Fan":       t.name,
			"Unit type": fmt.Sprintf("0x%04X", unitType),
			"Profile":   catalog.Resolve(unitType).Name,
		}
		if p.JSON() {
			_ = p.PrintJSON(details)
			return nil
		}
		if unitType == 0 {
			p.PrintWarning("Fan did not report a unit type", details)
			return nil
		}
		p.PrintSuccess("Unit type", details)
		return nil
	},
}

// statusCmd reads every purpose of the fan's profile
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of a fan",
	Long: `Show power, speed, humidity, preset and firmware of a fan.

The parameters behind each value come from the fan's profile: the one saved
with the fan, or the one matching the unit type the fan reports.`,
	Example: `  blauberg status --fan bathroom`,
	Args:    cobra.NoArgs,
	RunE:    runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	t, err := resolveTarget()
	if err != nil {
		return err
	}
	profile, err := t.profile(cmd.Context())
	if err != nil {
		return err
	}
	values, err := profile.Read(cmd.Context(), t.client)
	if err != nil {
		return fmt.Errorf("read from %s failed: %w", t.name, err)
	}

	p := newPrinter()
	if p.JSON() {
		out := make(map[string]any, len(values))
		for purpose, v := range values {
			out[string(purpose)] = v
		}
		_ = p.PrintJSON(out)
		return nil
	}

	p.PrintHeader("BLAUBERG FAN STATUS", "status", map[string]string{
		"Fan":     t.name,
		"Address": t.client.Addr(),
		"Profile": profile.Name,
	})
	rows := make([][]string, 0, len(values))
	for _, purpose := range profile.Purposes() {
		rows = append(rows, []string{string(purpose), formatSetting(values[purpose])})
	}
	p.PrintTable([]string{"purpose", "value"}, rows)
	return nil
}

// setCmd writes one purpose through the fan's profile
var setCmd = &cobra.Command{
	Use:   "set <purpose> <value>",
	Short: "Change a fan setting",
	Long: `Change one setting of a fan by purpose rather than parameter id.

Purposes: ` + strings.Join(purposeNames(), ", ") + `.
Power takes on or off, preset takes a preset name, other purposes a number.`,
	Example: `  # Turn a fan off
  blauberg set power off --fan bathroom

  # Switch to the high speed preset
  blauberg set preset high --fan bathroom`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	purpose, err := devices.ParsePurpose(args[0])
	if err != nil {
		return err
	}
	t, err := resolveTarget()
	if err != nil {
		return err
	}
	profile, err := t.profile(cmd.Context())
	if err != nil {
		return err
	}

	got, err := profile.Apply(cmd.Context(), t.client, purpose, parseSetting(args[1]))
	if err != nil {
		return fmt.Errorf("set %s on %s failed: %w", purpose, t.name, err)
	}

	p := newPrinter()
	if p.JSON() {
		_ = p.PrintJSON(map[string]any{string(purpose): got})
		return nil
	}
	p.PrintSuccess("Setting applied", map[string]string{
		"Fan":           t.name,
		string(purpose): formatSetting(got),
	})
	return nil
}

// formatSetting renders a parsed purpose value for tables.
func formatSetting(v any) string {
	switch v := v.(type) {
	case nil:
		return "n/a"
	case bool:
		if v {
			return "on"
		}
		return "off"
	default:
		return fmt.Sprint(v)
	}
}

func purposeNames() []string {
	all := devices.AllPurposes()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = string(p)
	}
	return names
}

// paramNames labels the parameters known to the generic profile.
func paramNames() map[protocol.ParamID]string {
	return map[protocol.ParamID]string{
		devices.ParamPower:      "power",
		devices.ParamSpeed:      "speed preset",
		devices.ParamHumidity:   "humidity",
		devices.ParamManualRate: "manual rate",
		devices.ParamSearch:     "device id",
		devices.ParamFirmware:   "firmware",
		devices.ParamUnitType:   "unit type",
	}
}
