package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/muurk/blauberg/internal/config"
	"github.com/muurk/blauberg/internal/devices"
	"github.com/muurk/blauberg/internal/fan"
	"github.com/muurk/blauberg/internal/protocol"
)

// target is the fan a command talks to.
type target struct {
	name     string // Saved name, or the host when addressed directly
	entry    *config.Fan
	registry *config.Registry
	client   *fan.Client
}

// resolveTarget builds a client from the saved fan (if --fan is given) with
// command line flags taking precedence.
func resolveTarget(extra ...fan.Option) (*target, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	t := &target{registry: reg, entry: &config.Fan{}}
	if fanName != "" {
		entry := reg.Fan(fanName)
		if entry == nil {
			return nil, fmt.Errorf("no saved fan named %q (see 'blauberg fans list')", fanName)
		}
		t.entry = entry
		t.name = fanName
	}

	host := t.entry.Host
	if fanHost != "" {
		host = fanHost
	}
	if host == "" {
		return nil, fmt.Errorf("no fan given: use --fan <name> or --host <ip>")
	}
	if t.name == "" {
		t.name = host
	}

	opts := append(t.entry.ClientOptions(reg.Preferences), flagOptions()...)
	opts = append(opts, extra...)
	t.client, err = fan.NewClient(host, opts...)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// flagOptions turns connection flags that were set into client options.
func flagOptions() []fan.Option {
	var opts []fan.Option
	if fanPort != 0 {
		opts = append(opts, fan.WithPort(fanPort))
	}
	if deviceID != "" {
		opts = append(opts, fan.WithDeviceID(deviceID))
	}
	if pwd, ok := passwordFlag(); ok {
		opts = append(opts, fan.WithPassword(pwd))
	}
	if timeout != 0 {
		opts = append(opts, fan.WithTimeout(timeout))
	}
	return opts
}

// passwordFlag returns --password and whether it was given. An explicit
// empty password (--password "") sends commands without one.
func passwordFlag() (string, bool) {
	return password, rootCmd.PersistentFlags().Changed("password")
}

// profile returns the saved profile of the fan, or the one matching the
// unit type the fan reports.
func (t *target) profile(ctx context.Context) (*devices.Profile, error) {
	catalog, err := t.registry.Catalog()
	if err != nil {
		return nil, err
	}
	if t.entry.Profile != "" {
		p, ok := catalog.Named(t.entry.Profile)
		if !ok {
			return nil, fmt.Errorf("fan %s uses unknown profile %q", t.name, t.entry.Profile)
		}
		return p, nil
	}
	unitType, err := t.client.DeviceType(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Resolve(unitType), nil
}

// parseIDs parses parameter ids given as decimal or 0x-prefixed hex.
func parseIDs(args []string) ([]protocol.ParamID, error) {
	ids := make([]protocol.ParamID, 0, len(args))
	for _, arg := range args {
		id, err := protocol.ParseParamID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseAssignments parses id=value pairs. Numeric values (decimal or
// 0x-prefixed hex) are sent as integers; a value in double quotes is sent
// as its bytes.
func parseAssignments(args []string) (protocol.Params, error) {
	values := make(protocol.Params, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid assignment %q, expected id=value", arg)
		}
		id, err := protocol.ParseParamID(key)
		if err != nil {
			return nil, err
		}
		if len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
			values[id] = protocol.KnownBytes([]byte(raw[1 : len(raw)-1]))
			continue
		}
		v, err := strconv.ParseUint(raw, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", id, raw)
		}
		values[id] = protocol.Known(v)
	}
	return values, nil
}

// parseSetting turns a command line value into what a profile action
// accepts: on/off become booleans, numbers integers, anything else a name.
func parseSetting(raw string) any {
	switch strings.ToLower(raw) {
	case "on", "true":
		return true
	case "off", "false":
		return false
	}
	if v, err := strconv.ParseUint(raw, 0, 64); err == nil {
		return v
	}
	return raw
}
