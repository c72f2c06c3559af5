package fan

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/blauberg/internal/logging"
	"github.com/muurk/blauberg/internal/metrics"
	"github.com/muurk/blauberg/internal/protocol"
	"github.com/muurk/blauberg/internal/transport"
)

const (
	// DefaultPort is the UDP port fans listen on
	DefaultPort = 4000

	// DefaultTimeout is how long a call waits for the fan to answer
	DefaultTimeout = 1 * time.Second

	// DefaultPassword is the factory password of a fan
	DefaultPassword = "1111"

	// DefaultDeviceID addresses any fan; used for discovery
	DefaultDeviceID = "DEFAULT_DEVICEID"

	// DeviceTypeParam holds the unit type code
	DeviceTypeParam protocol.ParamID = 0x00B9
)

// Client talks to one fan. Each call opens its own socket and waits for at
// most one response. Calls on one Client are serialized.
type Client struct {
	host      string
	port      int
	password  string
	deviceID  string
	timeout   time.Duration
	layout    *protocol.Layout
	transport transport.Transport
	metrics   *metrics.Metrics

	mu sync.Mutex
}

// Option configures a Client
type Option func(*Client)

// WithPort sets the fan UDP port
func WithPort(port int) Option {
	return func(c *Client) { c.port = port }
}

// WithPassword sets the fan password. An empty password leaves the
// password field out of every command.
func WithPassword(password string) Option {
	return func(c *Client) { c.password = password }
}

// WithDeviceID sets the id of the fan being addressed
func WithDeviceID(id string) Option {
	return func(c *Client) { c.deviceID = id }
}

// WithTimeout sets how long a call waits for a response
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithTransport replaces the UDP transport
func WithTransport(t transport.Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithMetrics records exchanges and protocol anomalies in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for the fan at host. An empty device id is a
// configuration error.
func NewClient(host string, opts ...Option) (*Client, error) {
	c := &Client{
		host:     host,
		port:     DefaultPort,
		password: DefaultPassword,
		deviceID: DefaultDeviceID,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.host == "" {
		return nil, NewConfigError("fan host is required", nil)
	}
	if c.port <= 0 || c.port > 65535 {
		return nil, NewConfigError(fmt.Sprintf("invalid port %d", c.port), nil)
	}

	layout, err := protocol.NewLayout(c.deviceID, c.password)
	if err != nil {
		return nil, NewConfigError("invalid fan identity", err)
	}
	c.layout = layout

	if c.transport == nil {
		c.transport = transport.NewUDP(c.timeout)
	}
	return c, nil
}

// DeviceID returns the id of the addressed fan
func (c *Client) DeviceID() string { return c.deviceID }

// Timeout returns how long a call waits for the fan
func (c *Client) Timeout() time.Duration { return c.timeout }

// Addr returns host:port of the fan
func (c *Client) Addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// ReadParams asks the fan for every id. Ids the fan reports as invalid are
// present with an unknown value; ids the fan leaves out are missing. No
// response yields an empty map.
func (c *Client) ReadParams(ctx context.Context, ids ...protocol.ParamID) (protocol.Params, error) {
	if len(ids) == 0 {
		return protocol.Params{}, nil
	}
	block := protocol.EncodeBlock(protocol.ReadRequest(ids...))
	return c.communicate(ctx, protocol.FuncRead, block)
}

// ReadParam reads one parameter. Missing or invalid values read as 0.
func (c *Client) ReadParam(ctx context.Context, id protocol.ParamID) (uint64, error) {
	params, err := c.ReadParams(ctx, id)
	if err != nil {
		return 0, err
	}
	return params[id].Or(0), nil
}

// WriteParams stores values on the fan and returns the fan's answer.
func (c *Client) WriteParams(ctx context.Context, values map[protocol.ParamID]uint64) (protocol.Params, error) {
	return c.WriteValues(ctx, protocol.WriteRequest(values))
}

// WriteValues is WriteParams for values that are not plain integers, such
// as strings written as big-endian bytes. Unknown entries are read back.
func (c *Client) WriteValues(ctx context.Context, values protocol.Params) (protocol.Params, error) {
	if len(values) == 0 {
		return protocol.Params{}, nil
	}
	return c.communicate(ctx, protocol.FuncReadWrite, protocol.EncodeBlock(values))
}

// WriteParam stores a single value with the uncompressed id/value block and
// returns the value the fan reports back, or 0.
func (c *Client) WriteParam(ctx context.Context, id protocol.ParamID, value uint64) (uint64, error) {
	params, err := c.communicate(ctx, protocol.FuncReadWrite, protocol.EncodePair(id, value))
	if err != nil {
		return 0, err
	}
	return params[id].Or(0), nil
}

// DeviceType reads the unit type code from DeviceTypeParam.
func (c *Client) DeviceType(ctx context.Context) (uint64, error) {
	return c.ReadParam(ctx, DeviceTypeParam)
}

// DeviceTypeFrom reads the unit type code from a model specific parameter.
func (c *Client) DeviceTypeFrom(ctx context.Context, id protocol.ParamID) (uint64, error) {
	return c.ReadParam(ctx, id)
}

// communicate sends one command and decodes the data block of the answer.
func (c *Client) communicate(ctx context.Context, fn protocol.Function, block []byte) (protocol.Params, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	command, err := c.layout.BuildCommand(fn, block)
	if err != nil {
		return nil, &DeviceError{Type: ErrTypeEncode, Message: "failed to build command", Host: c.host, Err: err}
	}

	logging.Debug("sending command",
		zap.String("remote_addr", c.Addr()),
		zap.Stringer("function", fn),
		zap.Binary("data", block),
	)
	c.metrics.ObserveExchange(fn.String())

	raw, err := c.transport.Exchange(ctx, c.Addr(), command)
	if err != nil {
		return nil, ClassifyNetworkError(err, c.host)
	}
	if len(raw) == 0 {
		c.metrics.ObserveTimeout()
		return protocol.Params{}, nil
	}

	resp := c.layout.ParseResponse(raw)
	if !resp.Complete {
		c.metrics.ObserveShortFrame()
		return protocol.Params{}, nil
	}
	if !resp.ChecksumValid() {
		// the response is still decoded and returned
		c.metrics.ObserveChecksumMismatch()
		logging.Warn("invalid checksum response",
			zap.String("remote_addr", c.Addr()),
			zap.Uint16("expected", resp.Expected),
			zap.Uint16("actual", resp.Checksum),
		)
	}

	decoder := protocol.NewDecoder(resp.Data)
	params := decoder.Decode()
	if decoder.Truncated() {
		c.metrics.ObserveTruncatedBlock()
	}
	logging.LogRawBytes("response data block", resp.Data)
	return params, nil
}
