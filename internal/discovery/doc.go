// Package discovery finds Blauberg fans on the local network.
//
// Fans do not advertise themselves. Instead the scanner broadcasts a read
// request for the device search parameter (0x007C) and the unit type
// (0x00B9), addressed to the wildcard device id DEFAULT_DEVICEID. Every fan
// that accepts the password answers with its own device id.
//
// # Discovery Process
//
//  1. Build the search command with the regular frame codec
//  2. Send it from an unconnected socket to 255.255.255.255:4000
//  3. Collect every answer until the scan timeout
//  4. Decode each answer's data block into a Device
//
// # Usage Example
//
//	fans, err := discovery.ScanForDevices(3 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range fans {
//	    fmt.Printf("Found: %s at %s\n", d.ID, d.Addr())
//	}
//
// # Network Requirements
//
// - Fans must be on the same broadcast domain
// - Firewall must allow inbound UDP from port 4000
package discovery
