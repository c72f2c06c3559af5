package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/blauberg/internal/ui"
)

var (
	addProfile  string
	addNickname string
	removeYes   bool
)

func init() {
	fansAddCmd.Flags().StringVar(&addProfile, "profile", "", "Profile name (default: picked by unit type)")
	fansAddCmd.Flags().StringVar(&addNickname, "nickname", "", "Display name")
	fansRemoveCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Do not ask for confirmation")

	fansCmd.AddCommand(fansListCmd)
	fansCmd.AddCommand(fansAddCmd)
	fansCmd.AddCommand(fansRemoveCmd)
	rootCmd.AddCommand(fansCmd)
}

// fansCmd manages saved fans
var fansCmd = &cobra.Command{
	Use:   "fans",
	Short: "Manage saved fans",
	Long: `List, add and remove the fans saved in the config file.

Saved fans are addressed with --fan <name> in every other command.`,
}

var fansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved fans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		p := newPrinter()
		names := reg.FanNames()
		if len(names) == 0 && !p.JSON() {
			fmt.Println("No fans saved. Use 'blauberg scan --save' or 'blauberg fans add'.")
			return nil
		}

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			f := reg.Fan(name)
			port := ""
			if f.Port != 0 {
				port = strconv.Itoa(f.Port)
			}
			lastSeen := ""
			if !f.LastSeen.IsZero() {
				lastSeen = f.LastSeen.Format(time.DateTime)
			}
			rows = append(rows, []string{name, f.Nickname, f.Host, port, f.DeviceID, f.Profile, lastSeen})
		}
		p.PrintTable([]string{"name", "nickname", "host", "port", "device id", "profile", "last seen"}, rows)
		return nil
	},
}

var fansAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Save a fan",
	Long: `Save a fan under a name, or update a saved one.

Connection settings come from --host, --port, --device-id, --password and
--timeout. Settings not given keep their saved value. --password ""
saves a fan that takes commands without a password.`,
	Example: `  blauberg fans add bathroom --host 192.168.1.50 --device-id 003A00345753560A

  # A fan with a changed password and an explicit profile
  blauberg fans add attic --host 192.168.1.51 --device-id 0012001D4B5A4E10 --password 4321 --profile generic`,
	Args: cobra.ExactArgs(1),
	RunE: runFansAdd,
}

func runFansAdd(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	name := args[0]
	existed := reg.Fan(name) != nil
	f := reg.EnsureFan(name)

	if fanHost != "" {
		f.Host = fanHost
	}
	if fanPort != 0 {
		f.Port = fanPort
	}
	if deviceID != "" {
		f.DeviceID = deviceID
	}
	if pwd, ok := passwordFlag(); ok {
		f.Password = pwd
		f.NoPassword = pwd == ""
	}
	if timeout != 0 {
		f.Timeout = timeout
	}
	if addNickname != "" {
		f.Nickname = addNickname
	}
	if addProfile != "" {
		catalog, err := reg.Catalog()
		if err != nil {
			return err
		}
		if _, ok := catalog.Named(addProfile); !ok {
			return fmt.Errorf("unknown profile %q (known: %v)", addProfile, catalog.Names())
		}
		f.Profile = addProfile
	}

	if err := f.Validate(); err != nil {
		if !existed {
			reg.RemoveFan(name)
		}
		return fmt.Errorf("fan %s: %w", name, err)
	}
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	newPrinter().PrintSuccess("Fan saved", map[string]string{
		"Name":   name,
		"Host":   f.Host,
		"Config": reg.Path(),
	})
	return nil
}

var fansRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a saved fan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		name := args[0]
		f := reg.Fan(name)
		if f == nil {
			return fmt.Errorf("no saved fan named %q", name)
		}

		if !removeYes {
			warnings := []string{
				fmt.Sprintf("Fan %s at %s will be removed from %s", name, f.Host, reg.Path()),
				"Its device id and password will be forgotten",
			}
			if !ui.Confirm(os.Stdin, os.Stdout, "Remove fan", warnings) {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		reg.RemoveFan(name)
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		newPrinter().PrintSuccess("Fan removed", map[string]string{"Name": name})
		return nil
	},
}
