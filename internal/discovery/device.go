package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Device represents a fan that answered a search
type Device struct {
	// ID is the device id used to address the fan (e.g., "003A00345753560A")
	ID string

	// IP is the address the answer came from
	IP string

	// Port is the UDP port the answer came from (normally 4000)
	Port int

	// Type is the unit type code, 0 when the fan did not report it
	Type uint64

	// DiscoveredAt is when the fan answered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("Blauberg fan %s (type 0x%X) at %s", d.ID, d.Type, d.Addr())
}

// Addr returns host:port of the fan
func (d *Device) Addr() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}
