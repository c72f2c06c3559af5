package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/blauberg/internal/config"
	"github.com/muurk/blauberg/internal/discovery"
	"github.com/muurk/blauberg/internal/fan"
)

var (
	scanWait time.Duration
	scanSave bool
)

func init() {
	scanCmd.Flags().DurationVar(&scanWait, "wait", 0, "How long to listen for answers (default from config, 3s)")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "Save found fans to the config file")
	rootCmd.AddCommand(scanCmd)
}

// scanCmd discovers fans on the local network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for fans on the local network",
	Long: `Broadcast a search request and list every fan that answers.

Only fans whose password matches --password (default 1111) answer. Found
fans are listed with their device id, which is needed to address them.
With --save each fan is added to the config file, named after its device
id, or its saved address is updated if it is already known.`,
	Example: `  # Scan with the default password
  blauberg scan

  # Listen longer and save the results
  blauberg scan --wait 10s --save

  # Fans with a changed password
  blauberg scan --password 4321`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	scanner := discovery.NewScanner()
	scanner.Timeout = reg.Preferences.ScanTimeout
	if scanWait > 0 {
		scanner.Timeout = scanWait
	}
	if pwd, ok := passwordFlag(); ok {
		scanner.Password = pwd
	}
	if fanPort != 0 {
		scanner.Address = net.JoinHostPort(discovery.BroadcastAddress, strconv.Itoa(fanPort))
	}

	p := newPrinter()
	if !p.JSON() {
		fmt.Printf("Scanning for fans (timeout: %s)...\n\n", scanner.Timeout)
	}

	found, err := scanner.ScanForDevicesWithContext(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(found) == 0 && !p.JSON() {
		p.PrintWarning("No fans found", map[string]string{"Password": scanner.Password})
		fmt.Println("Troubleshooting:")
		fmt.Println("  - Ensure the fan is powered on and joined to this network")
		fmt.Println("  - Check the fan password (--password)")
		fmt.Println("  - Try increasing --wait for slower networks")
		fmt.Println("  - Broadcasts do not cross routers; use --host with the fan address")
		return nil
	}

	rows := make([][]string, 0, len(found))
	for _, d := range found {
		rows = append(rows, []string{d.ID, d.IP, strconv.Itoa(d.Port), fmt.Sprintf("0x%04X", d.Type)})
	}
	p.PrintTable([]string{"device id", "ip", "port", "unit type"}, rows)

	if !scanSave {
		if !p.JSON() {
			fmt.Println("\nUse 'blauberg scan --save' to store these fans")
		}
		return nil
	}

	names := saveFound(reg, found)
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	if !p.JSON() {
		fmt.Printf("\nSaved %d fan(s): %s\n", len(names), strings.Join(names, ", "))
	}
	return nil
}

// saveFound records found fans in reg and returns their names. Known fans
// keep their name and get the new address.
func saveFound(reg *config.Registry, found []*discovery.Device) []string {
	names := make([]string, 0, len(found))
	for _, d := range found {
		name := reg.FindByDeviceID(d.ID)
		if name == "" {
			name = d.ID
		}
		entry := reg.EnsureFan(name)
		entry.Host = d.IP
		entry.DeviceID = d.ID
		if d.Port != fan.DefaultPort {
			entry.Port = d.Port
		}
		if pwd, ok := passwordFlag(); ok {
			entry.Password = pwd
			entry.NoPassword = pwd == ""
		}
		reg.UpdateFanLastSeen(name, d.IP)
		names = append(names, name)
	}
	return names
}
