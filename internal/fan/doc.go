// Package fan is the client for Blauberg ventilation fans.
//
// A Client addresses one fan by host, UDP port, device id and password and
// exposes read and write operations over numbered parameters:
//
//	client, err := fan.NewClient("192.168.1.50",
//	    fan.WithDeviceID("003A00345753560A"),
//	    fan.WithPassword("1111"),
//	)
//	if err != nil {
//	    log.Fatal(err) // empty device id, bad port
//	}
//
//	params, err := client.ReadParams(ctx, 0x0001, 0x0002)
//	speed, err := client.ReadParam(ctx, 0x0002)
//	_, err = client.WriteParams(ctx, map[protocol.ParamID]uint64{0x0002: 3})
//
// # Failure Model
//
// Every call sends a single datagram and waits at most the configured
// timeout for the answer. There are no retries. A fan that does not answer
// yields an empty result and a nil error. A response whose checksum does not
// match is logged and counted but still decoded. A data block that ends in
// the middle of an entry yields the parameters decoded before that point.
//
// Errors are returned only for construction mistakes (ErrTypeConfig) and
// socket failures such as an unresolvable host (ErrTypeNetwork, ErrTypeDNS,
// ErrTypeConnectionRefused).
//
// # Verified Writes
//
// A fan acknowledges a write with the values it holds, which may still be
// the old ones while it applies the change. WriteAndVerify reads the values
// back with retries until they match. RollbackManager snapshots parameters
// before a write and restores them when verification fails:
//
//	rm := fan.NewRollbackManager(client)
//	result, rollback := rm.WriteWithRollback(ctx, values, nil)
//
// # Thread Safety
//
// A Client serializes its own calls with a mutex; at most one request is in
// flight per client. Separate clients share nothing and may run in parallel.
package fan
