package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/muurk/blauberg/internal/devices"
	"github.com/muurk/blauberg/internal/fan"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "blauberg") {
		t.Errorf("GetConfigDir() = %v, should contain 'blauberg'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	got, err := GetConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join("/tmp/xdg", "blauberg") {
		t.Errorf("GetConfigDir() = %v", got)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}

	t.Setenv(ConfigEnvVar, "/etc/fans.yaml")
	if configPath, _ = GetConfigPath(); configPath != "/etc/fans.yaml" {
		t.Errorf("GetConfigPath() with %s = %v", ConfigEnvVar, configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Fans == nil || reg.Profiles == nil {
		t.Error("NewRegistry() maps should not be nil")
	}
	if reg.Preferences.DefaultPort != 4000 {
		t.Errorf("DefaultPort = %v, want 4000", reg.Preferences.DefaultPort)
	}
	if reg.Preferences.DefaultTimeout != time.Second {
		t.Errorf("DefaultTimeout = %v, want 1s", reg.Preferences.DefaultTimeout)
	}
}

func TestRegistryEnsureAndRemoveFan(t *testing.T) {
	reg := NewRegistry()

	f1 := reg.EnsureFan("bathroom")
	if f1 == nil {
		t.Fatal("EnsureFan() returned nil")
	}
	if f2 := reg.EnsureFan("bathroom"); f1 != f2 {
		t.Error("EnsureFan() should return same instance for same name")
	}
	if reg.Fan("kitchen") != nil {
		t.Error("Fan(kitchen) should be nil")
	}

	reg.EnsureFan("attic")
	if got := reg.FanNames(); len(got) != 2 || got[0] != "attic" {
		t.Errorf("FanNames() = %v", got)
	}

	if !reg.RemoveFan("bathroom") {
		t.Error("RemoveFan() should report an existing fan")
	}
	if reg.RemoveFan("bathroom") {
		t.Error("RemoveFan() should report a missing fan")
	}
}

func TestRegistryUpdateFanLastSeen(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateFanLastSeen("bathroom", "192.168.1.50")
	after := time.Now()

	f := reg.Fan("bathroom")
	if f == nil {
		t.Fatal("Fan should exist after UpdateFanLastSeen()")
	}
	if f.LastIP != "192.168.1.50" {
		t.Errorf("LastIP = %v, want 192.168.1.50", f.LastIP)
	}
	if f.LastSeen.Before(before) || f.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", f.LastSeen, before, after)
	}
}

func TestFindByDeviceID(t *testing.T) {
	reg := NewRegistry()
	reg.EnsureFan("a").DeviceID = "AAAA"
	reg.EnsureFan("b").DeviceID = "BBBB"

	if got := reg.FindByDeviceID("BBBB"); got != "b" {
		t.Errorf("FindByDeviceID(BBBB) = %q, want b", got)
	}
	if got := reg.FindByDeviceID("CCCC"); got != "" {
		t.Errorf("FindByDeviceID(CCCC) = %q, want empty", got)
	}
}

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	f := reg.EnsureFan("bathroom")
	f.Host = "192.168.1.50"
	f.DeviceID = "003A00345753560A"
	f.Password = "1111"
	f.Timeout = 2 * time.Second
	reg.Profiles["bodo"] = &ProfileSpec{
		Type:    0xD00,
		Presets: []string{"eco", "boost"},
		Params:  map[string]string{"power": "0x0001", "preset": "0x0002"},
	}

	if err := SaveRegistryTo(reg, path); err != nil {
		t.Fatalf("SaveRegistryTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if loaded.Path() != path {
		t.Errorf("Path() = %v, want %v", loaded.Path(), path)
	}

	got := loaded.Fan("bathroom")
	if got == nil {
		t.Fatal("bathroom fan lost")
	}
	if got.Host != f.Host || got.DeviceID != f.DeviceID || got.Password != f.Password || got.Timeout != f.Timeout {
		t.Errorf("loaded fan = %+v, want %+v", got, f)
	}
	spec := loaded.Profiles["bodo"]
	if spec == nil || spec.Type != 0xD00 || spec.Params["preset"] != "0x0002" {
		t.Errorf("loaded profile = %+v", spec)
	}
}

func TestLoadRegistryFrom(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name: "durations and hex type",
			content: `version: 1
fans:
  attic:
    host: 10.0.0.7
    timeout: 500ms
profiles:
  bodo:
    type: 0xD00
    params:
      power: 0x0001
preferences:
  default_port: 4001
  default_timeout: 2s
  scan_timeout: 5s
`,
		},
		{
			name:    "wrong version",
			content: "version: 2\n",
			wantErr: true,
		},
		{
			name:    "not yaml",
			content: "version: [1\n",
			wantErr: true,
		},
		{
			name:    "fan without host",
			content: "version: 1\nfans:\n  attic:\n    port: 4000\n",
			wantErr: true,
		},
		{
			name:    "unknown purpose",
			content: "version: 1\nprofiles:\n  x:\n    params:\n      fog: 0x0001\n",
			wantErr: true,
		},
		{
			name:    "bad parameter id",
			content: "version: 1\nprofiles:\n  x:\n    params:\n      power: 0x10000\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			reg, err := LoadRegistryFrom(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadRegistryFrom() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if reg.Fan("attic").Timeout != 500*time.Millisecond {
				t.Errorf("timeout = %v, want 500ms", reg.Fan("attic").Timeout)
			}
			if reg.Profiles["bodo"].Type != 0xD00 {
				t.Errorf("type = %#x, want 0xd00", reg.Profiles["bodo"].Type)
			}
			if reg.Preferences.DefaultPort != 4001 || reg.Preferences.ScanTimeout != 5*time.Second {
				t.Errorf("preferences = %+v", reg.Preferences)
			}
		})
	}
}

func TestLoadRegistryFrom_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if len(reg.Fans) != 0 || reg.Path() != path {
		t.Errorf("default registry = %+v", reg)
	}
	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Save() did not create %s", path)
	}
}

func TestLoadRegistry_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nfans:\n  env:\n    host: 10.1.1.1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigEnvVar, path)

	reg, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}
	if reg.Fan("env") == nil {
		t.Error("registry was not read from BLAUBERG_CONFIG")
	}
}

func TestClientOptions(t *testing.T) {
	prefs := &Preferences{DefaultPort: 4001, DefaultTimeout: 3 * time.Second}

	tests := []struct {
		name        string
		fan         Fan
		wantAddr    string
		wantID      string
		wantTimeout time.Duration
	}{
		{
			name:        "preferences fill gaps",
			fan:         Fan{Host: "10.0.0.7"},
			wantAddr:    "10.0.0.7:4001",
			wantID:      fan.DefaultDeviceID,
			wantTimeout: 3 * time.Second,
		},
		{
			name:        "fan values win",
			fan:         Fan{Host: "10.0.0.7", Port: 5000, DeviceID: "ABC", Timeout: time.Second},
			wantAddr:    "10.0.0.7:5000",
			wantID:      "ABC",
			wantTimeout: time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := fan.NewClient(tt.fan.Host, tt.fan.ClientOptions(prefs)...)
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			if c.Addr() != tt.wantAddr {
				t.Errorf("Addr() = %v, want %v", c.Addr(), tt.wantAddr)
			}
			if c.DeviceID() != tt.wantID {
				t.Errorf("DeviceID() = %v, want %v", c.DeviceID(), tt.wantID)
			}
			if c.Timeout() != tt.wantTimeout {
				t.Errorf("Timeout() = %v, want %v", c.Timeout(), tt.wantTimeout)
			}
		})
	}
}

// recordingTransport keeps every command and never answers
type recordingTransport struct {
	sent [][]byte
}

func (r *recordingTransport) Exchange(ctx context.Context, addr string, payload []byte) ([]byte, error) {
	r.sent = append(r.sent, append([]byte(nil), payload...))
	return nil, nil
}

func TestClientOptionsPassword(t *testing.T) {
	tests := []struct {
		name    string
		fan     Fan
		wantPwd string
	}{
		{"default", Fan{Host: "10.0.0.7", DeviceID: "ABC"}, "1111"},
		{"custom", Fan{Host: "10.0.0.7", DeviceID: "ABC", Password: "4321"}, "4321"},
		{"none", Fan{Host: "10.0.0.7", DeviceID: "ABC", NoPassword: true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingTransport{}
			opts := append(tt.fan.ClientOptions(nil), fan.WithTransport(rec))
			c, err := fan.NewClient(tt.fan.Host, opts...)
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			if _, err := c.ReadParams(context.Background(), 0x0001); err != nil {
				t.Fatalf("ReadParams() error = %v", err)
			}

			// FD FD 02 | 03 "ABC" | pwdLen pwd | func
			cmd := rec.sent[0]
			pwdLen := int(cmd[7])
			if pwdLen != len(tt.wantPwd) || string(cmd[8:8+pwdLen]) != tt.wantPwd {
				t.Errorf("password field = % X, want %q", cmd[7:8+pwdLen], tt.wantPwd)
			}
			if cmd[8+pwdLen] != 0x01 {
				t.Errorf("function byte = 0x%02X, want 0x01 right after the password", cmd[8+pwdLen])
			}
		})
	}
}

func TestNoPasswordRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	reg := NewRegistry()
	reg.Fans["open"] = &Fan{Host: "10.0.0.8", NoPassword: true}
	if err := SaveRegistryTo(reg, path); err != nil {
		t.Fatalf("SaveRegistryTo() error = %v", err)
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if f := loaded.Fan("open"); f == nil || !f.NoPassword || f.Password != "" {
		t.Errorf("loaded fan = %+v", f)
	}

	conflict := &Fan{Host: "10.0.0.8", Password: "1111", NoPassword: true}
	if err := conflict.Validate(); err == nil {
		t.Error("Validate() accepted both password and no_password")
	}
}

func TestRegistryCatalog(t *testing.T) {
	reg := NewRegistry()
	reg.Profiles["bodo"] = &ProfileSpec{
		Type:    0xD00,
		Presets: []string{"eco", "boost"},
		Params:  map[string]string{"power": "1", "preset": "0x0002"},
	}

	catalog, err := reg.Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	p := catalog.Resolve(0xD00)
	if p.Name != "bodo" || !p.Supports(devices.PurposePreset) {
		t.Errorf("Resolve(0xD00) = %+v", p)
	}
	if catalog.Resolve(0x600) != devices.Generic {
		t.Error("Resolve(0x600) should fall back to generic")
	}

	reg.Profiles["broken"] = &ProfileSpec{Params: map[string]string{"power": "x"}}
	if _, err := reg.Catalog(); err == nil {
		t.Error("Catalog() accepted a bad parameter id")
	}
}
