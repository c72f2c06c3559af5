// Package config provides user configuration management for the blauberg CLI.
//
// This package manages a YAML file that stores the fans a user talks to
// (host, port, device id, password), fan model profiles beyond the built-in
// ones, and application preferences.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/blauberg/config.yaml or $HOME/.config/blauberg/config.yaml
//   - macOS: $HOME/.config/blauberg/config.yaml
//   - Windows: %LOCALAPPDATA%\blauberg\config.yaml
//
// The BLAUBERG_CONFIG environment variable replaces the location entirely.
//
// # File Format
//
//	version: 1
//	fans:
//	  bathroom:
//	    host: 192.168.1.50
//	    device_id: 003A00345753560A
//	    password: "1111"
//	profiles:
//	  bodo:
//	    type: 0xD00
//	    presets: [eco, boost]
//	    params:
//	      power: "0x0001"
//	      preset: "0x0002"
//	preferences:
//	  default_port: 4000
//	  default_timeout: 1s
//	  scan_timeout: 3s
//
// # Security
//
// A fan with no_password: true takes commands without a password field;
// an unset password means the factory default.
//
// Fan passwords travel in clear text on the wire and are stored in clear
// text here. The file is written with user-only permissions (0600).
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
