package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/blauberg/internal/devices"
	"github.com/muurk/blauberg/internal/fan"
	"github.com/muurk/blauberg/internal/logging"
	"github.com/muurk/blauberg/internal/protocol"
	"github.com/muurk/blauberg/internal/transport"
)

const (
	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 3 * time.Second

	// BroadcastAddress reaches every fan on the local segment
	BroadcastAddress = "255.255.255.255"
)

// Broadcaster sends one datagram and reports every answer.
type Broadcaster interface {
	Broadcast(ctx context.Context, addr string, payload []byte, handle func(from *net.UDPAddr, data []byte)) error
}

// Scanner finds fans by broadcasting a read of the device search parameter
// with the wildcard device id. Every fan that accepts the password answers
// with its own id.
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration

	// Address is where the request goes, host:port
	Address string

	// Password is sent with the request; fans with another password stay silent
	Password string

	transport Broadcaster
}

// NewScanner creates a new scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout:  DefaultScanTimeout,
		Address:  net.JoinHostPort(BroadcastAddress, strconv.Itoa(fan.DefaultPort)),
		Password: fan.DefaultPassword,
	}
}

// WithTransport replaces the UDP broadcaster
func (s *Scanner) WithTransport(b Broadcaster) *Scanner {
	s.transport = b
	return s
}

// request builds the search command.
func (s *Scanner) request() ([]byte, error) {
	layout, err := protocol.NewLayout(fan.DefaultDeviceID, s.Password)
	if err != nil {
		return nil, err
	}
	block := protocol.EncodeBlock(protocol.ReadRequest(devices.ParamSearch, devices.ParamUnitType))
	return layout.BuildCommand(protocol.FuncRead, block)
}

// ScanForDevices discovers all fans on the local network
func (s *Scanner) ScanForDevices() ([]*Device, error) {
	return s.ScanForDevicesWithContext(context.Background())
}

// ScanForDevicesWithContext discovers fans until the timeout or ctx ends.
// Each fan is reported once, in order of first answer.
func (s *Scanner) ScanForDevicesWithContext(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	payload, err := s.request()
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	b := s.transport
	if b == nil {
		b = transport.NewUDP(s.Timeout)
	}

	found := make([]*Device, 0)
	seen := make(map[string]bool)
	err = b.Broadcast(ctx, s.Address, payload, func(from *net.UDPAddr, data []byte) {
		device := parseAnswer(from, data)
		if device == nil || seen[device.ID] {
			return
		}
		seen[device.ID] = true
		logging.Info("fan found",
			zap.String("device_id", device.ID),
			zap.String("ip", device.IP),
			zap.Uint64("type", device.Type),
		)
		found = append(found, device)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to broadcast search request: %w", err)
	}
	return found, nil
}

// WaitForDevice scans and returns the fan with device id
func (s *Scanner) WaitForDevice(ctx context.Context, id string) (*Device, error) {
	found, err := s.ScanForDevicesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range found {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("fan with device id %s not found within timeout", id)
}

// parseAnswer turns a search answer into a Device. Returns nil if the
// datagram is not a fan response.
func parseAnswer(from *net.UDPAddr, data []byte) *Device {
	resp := protocol.InspectResponse(data)
	if !resp.Complete || resp.HeaderBroken {
		logging.Debug("ignoring datagram", zap.String("from", from.String()), zap.Int("length", len(data)))
		return nil
	}
	if !resp.ChecksumValid() {
		logging.Warn("invalid checksum response",
			zap.String("remote_addr", from.String()),
			zap.Uint16("expected", resp.Expected),
			zap.Uint16("actual", resp.Checksum),
		)
	}

	params := protocol.DecodeBlock(resp.Data)
	id := string(resp.DeviceID)
	if v, ok := params[devices.ParamSearch]; ok && v.IsKnown() {
		id = string(v.Bytes())
	}
	if id == "" || id == fan.DefaultDeviceID {
		return nil
	}

	unitType, _ := params.Get(devices.ParamUnitType)
	return &Device{
		ID:           id,
		IP:           from.IP.String(),
		Port:         from.Port,
		Type:         unitType,
		DiscoveredAt: time.Now(),
	}
}

// ScanForDevices is a convenience function to scan for fans with a custom timeout
func ScanForDevices(timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForDevices()
}
