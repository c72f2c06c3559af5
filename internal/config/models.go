package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/muurk/blauberg/internal/devices"
	"github.com/muurk/blauberg/internal/fan"
	"github.com/muurk/blauberg/internal/protocol"
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                     `yaml:"version"`
	Fans        map[string]*Fan         `yaml:"fans,omitempty"`     // Keyed by a user chosen name
	Profiles    map[string]*ProfileSpec `yaml:"profiles,omitempty"` // Model definitions beyond the built-in ones
	Preferences *Preferences            `yaml:"preferences,omitempty"`

	path string
}

// Fan is one configured fan.
type Fan struct {
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port,omitempty"`        // 0 uses Preferences.DefaultPort
	DeviceID   string        `yaml:"device_id,omitempty"`   // Printed on the unit, found by scan
	Password   string        `yaml:"password,omitempty"`    // Stored in clear; the fan sends it in clear too
	NoPassword bool          `yaml:"no_password,omitempty"` // Send no password; an empty Password means the default
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	Profile    string        `yaml:"profile,omitempty"` // Empty picks one by unit type
	Nickname   string        `yaml:"nickname,omitempty"`
	LastIP     string        `yaml:"last_ip,omitempty"`
	LastSeen   time.Time     `yaml:"last_seen,omitempty"`
}

// ProfileSpec declares a fan model by the parameter behind each purpose.
type ProfileSpec struct {
	Type    uint64            `yaml:"type,omitempty"`    // Unit type code reported in 0x00B9
	Presets []string          `yaml:"presets,omitempty"` // Names of preset values 1..n
	Params  map[string]string `yaml:"params"`            // purpose -> parameter id, e.g. power: "0x0001"
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultPort    int           `yaml:"default_port"`
	DefaultTimeout time.Duration `yaml:"default_timeout"`
	ScanTimeout    time.Duration `yaml:"scan_timeout"`
	LogLevel       string        `yaml:"log_level,omitempty"`
}

func defaultPreferences() *Preferences {
	return &Preferences{
		DefaultPort:    fan.DefaultPort,
		DefaultTimeout: fan.DefaultTimeout,
		ScanTimeout:    3 * time.Second,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Fans:        make(map[string]*Fan),
		Profiles:    make(map[string]*ProfileSpec),
		Preferences: defaultPreferences(),
	}
}

// Path returns the file the registry was loaded from, if any.
func (r *Registry) Path() string { return r.path }

// Fan retrieves a fan by name. Returns nil if it isn't configured.
func (r *Registry) Fan(name string) *Fan {
	return r.Fans[name]
}

// EnsureFan ensures a fan entry exists and returns it.
func (r *Registry) EnsureFan(name string) *Fan {
	if r.Fans == nil {
		r.Fans = make(map[string]*Fan)
	}
	if f, exists := r.Fans[name]; exists {
		return f
	}
	f := &Fan{}
	r.Fans[name] = f
	return f
}

// RemoveFan deletes a fan entry. Reports whether it existed.
func (r *Registry) RemoveFan(name string) bool {
	if _, ok := r.Fans[name]; !ok {
		return false
	}
	delete(r.Fans, name)
	return true
}

// FanNames lists configured fans in name order.
func (r *Registry) FanNames() []string {
	names := make([]string, 0, len(r.Fans))
	for n := range r.Fans {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FindByDeviceID returns the name of the fan with device id, or "".
func (r *Registry) FindByDeviceID(id string) string {
	for _, name := range r.FanNames() {
		if r.Fans[name].DeviceID == id {
			return name
		}
	}
	return ""
}

// UpdateFanLastSeen records where and when a fan last answered.
func (r *Registry) UpdateFanLastSeen(name, ip string) {
	f := r.EnsureFan(name)
	f.LastSeen = time.Now()
	f.LastIP = ip
}

// Validate checks every fan and profile entry.
func (r *Registry) Validate() error {
	for _, name := range r.FanNames() {
		if err := r.Fans[name].Validate(); err != nil {
			return fmt.Errorf("fan %s: %w", name, err)
		}
	}
	for name, spec := range r.Profiles {
		if _, err := spec.Profile(name); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a fan entry.
func (f *Fan) Validate() error {
	if f.Host == "" {
		return fmt.Errorf("host is required")
	}
	if f.Port < 0 || f.Port > 65535 {
		return fmt.Errorf("invalid port %d", f.Port)
	}
	if f.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s", f.Timeout)
	}
	if f.NoPassword && f.Password != "" {
		return fmt.Errorf("password and no_password are both set")
	}
	return nil
}

// ClientOptions turns the entry into client options. Unset fields fall
// back to prefs, then to the client defaults.
func (f *Fan) ClientOptions(prefs *Preferences) []fan.Option {
	if prefs == nil {
		prefs = defaultPreferences()
	}
	var opts []fan.Option

	switch {
	case f.Port != 0:
		opts = append(opts, fan.WithPort(f.Port))
	case prefs.DefaultPort != 0:
		opts = append(opts, fan.WithPort(prefs.DefaultPort))
	}
	switch {
	case f.Timeout != 0:
		opts = append(opts, fan.WithTimeout(f.Timeout))
	case prefs.DefaultTimeout != 0:
		opts = append(opts, fan.WithTimeout(prefs.DefaultTimeout))
	}
	if f.DeviceID != "" {
		opts = append(opts, fan.WithDeviceID(f.DeviceID))
	}
	switch {
	case f.NoPassword:
		opts = append(opts, fan.WithPassword(""))
	case f.Password != "":
		opts = append(opts, fan.WithPassword(f.Password))
	}
	return opts
}

// Profile builds the device profile s declares.
func (s *ProfileSpec) Profile(name string) (*devices.Profile, error) {
	params := make(map[devices.Purpose]protocol.ParamID, len(s.Params))
	for key, raw := range s.Params {
		purpose, err := devices.ParsePurpose(key)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		id, err := protocol.ParseParamID(raw)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %s: %w", name, key, err)
		}
		params[purpose] = id
	}
	return devices.FromMapping(name, s.Type, params, s.Presets)
}

// Catalog returns the built-in profiles plus every declared one.
func (r *Registry) Catalog() (*devices.Catalog, error) {
	catalog := devices.NewCatalog(devices.Generic)
	names := make([]string, 0, len(r.Profiles))
	for n := range r.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		p, err := r.Profiles[name].Profile(name)
		if err != nil {
			return nil, err
		}
		catalog.Register(p)
	}
	return catalog, nil
}
