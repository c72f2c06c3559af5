package protocol

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/blauberg/internal/logging"
)

// Frame constants
const (
	Header       uint16 = 0xFDFD
	HeaderSize          = 2
	ProtocolType byte   = 0x02

	// MaxStringSize is the longest device id or password a one byte length prefix allows.
	MaxStringSize = 0xFF
)

// Function is the command function code.
type Function byte

const (
	FuncRead      Function = 0x01
	FuncReadWrite Function = 0x03
)

func (f Function) String() string {
	switch f {
	case FuncRead:
		return "read"
	case FuncReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("func(0x%02X)", byte(f))
	}
}

var (
	// ErrEmptyDeviceID is returned when a layout is built without a device id.
	ErrEmptyDeviceID = errors.New("device id can not be blank")

	// ErrFieldTooLong is returned when a device id or password does not fit its length prefix.
	ErrFieldTooLong = errors.New("value longer than 255 bytes")
)

// Layout holds the per-device parts of every command and response frame.
// It is immutable once built.
type Layout struct {
	deviceID []byte
	password []byte
}

// NewLayout validates the device id and password of a fan.
func NewLayout(deviceID, password string) (*Layout, error) {
	if len(deviceID) == 0 {
		return nil, ErrEmptyDeviceID
	}
	if len(deviceID) > MaxStringSize {
		return nil, fmt.Errorf("device id: %w", ErrFieldTooLong)
	}
	if len(password) > MaxStringSize {
		return nil, fmt.Errorf("password: %w", ErrFieldTooLong)
	}
	return &Layout{deviceID: []byte(deviceID), password: []byte(password)}, nil
}

// DeviceID returns the device id the layout addresses.
func (l *Layout) DeviceID() string { return string(l.deviceID) }

// CommandFrame returns the request layout:
//
//	FDFD | 02 | idLen | id | pwdLen | [pwd] | func | data | checksum
//
// The password field is left out entirely when the password is empty.
func (l *Layout) CommandFrame(fn Function, data []byte) Frame {
	frame := Frame{
		NewSizedField(uint64(Header), HeaderSize),
		NewField(uint64(ProtocolType)),
		NewField(uint64(len(l.deviceID))),
		BytesField(l.deviceID),
		NewField(uint64(len(l.password))),
	}
	if len(l.password) > 0 {
		frame = append(frame, BytesField(l.password))
	}
	return append(frame,
		NewField(uint64(fn)),
		ExpandingBytesField(data),
		TemplateField(ChecksumSize),
	)
}

// BuildCommand serializes a command carrying data. The checksum covers the
// protocol type through the end of the data block.
func (l *Layout) BuildCommand(fn Function, data []byte) ([]byte, error) {
	frame := l.CommandFrame(fn, data)
	covered, err := frame[1 : len(frame)-1].Bytes()
	if err != nil {
		return nil, fmt.Errorf("build command: %w", err)
	}
	frame[len(frame)-1] = ChecksumField(covered)
	return frame.Bytes()
}

// ResponseFrame returns the template responses are parsed against. The fan
// echoes the password length but not the password.
func (l *Layout) ResponseFrame() Frame {
	return Frame{
		TemplateField(HeaderSize),
		TemplateField(1),
		TemplateField(1),
		TemplateField(len(l.deviceID)),
		TemplateField(1),
		TemplateField(1),
		ExpandingField(),
		TemplateField(ChecksumSize),
	}
}

// Response is a parsed response frame.
type Response struct {
	Header       uint16
	DeviceID     []byte
	Function     Function
	Data         []byte
	Checksum     uint16 // as received
	Expected     uint16 // recomputed over the received bytes
	Complete     bool   // frame matched the template exactly
	HeaderBroken bool
}

// ChecksumValid reports whether the received checksum matches the recomputed one.
func (r *Response) ChecksumValid() bool {
	return r.Complete && r.Checksum == r.Expected
}

// ParseResponse parses raw against the response template. An empty or short
// datagram yields a response with no data and Complete false; it is never an
// error.
func (l *Layout) ParseResponse(raw []byte) *Response {
	return parseResponse(l.ResponseFrame(), raw)
}

// InspectResponse parses a response without knowing the device id in
// advance, taking the id length from the frame itself.
func InspectResponse(raw []byte) *Response {
	const idLenOffset = HeaderSize + 1
	if len(raw) <= idLenOffset {
		return parseResponse(Frame{TemplateField(HeaderSize), TemplateField(1), TemplateField(1)}, raw)
	}
	layout := &Layout{deviceID: make([]byte, raw[idLenOffset])}
	return parseResponse(layout.ResponseFrame(), raw)
}

func parseResponse(template Frame, raw []byte) *Response {
	resp := &Response{}
	if len(raw) == 0 {
		return resp
	}

	frame, ok := template.Parse(raw)
	if !ok || len(frame) != 8 {
		logging.Warn("response frame shorter than its fixed fields",
			zap.Int("length", len(raw)),
			zap.Int("fixed", template.Len()),
		)
		return resp
	}

	resp.Complete = true
	resp.Header = uint16(frame[0].Uint())
	resp.HeaderBroken = resp.Header != Header
	resp.DeviceID, _ = frame[3].Bytes()
	resp.Function = Function(frame[5].Uint())
	resp.Data, _ = frame[6].Bytes()
	resp.Checksum = uint16(frame[7].Uint())

	covered, _ := frame[1:7].Bytes()
	resp.Expected = Checksum(covered)

	if resp.HeaderBroken {
		logging.Warn("unexpected response header", zap.Uint16("header", resp.Header))
	}
	return resp
}
