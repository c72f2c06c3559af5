package fan

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/muurk/blauberg/internal/protocol"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeConfig indicates misuse at construction time (empty device id, bad port)
	ErrTypeConfig ErrorType = iota
	// ErrTypeNetwork indicates a socket-level failure other than a timeout
	ErrTypeNetwork
	// ErrTypeDNS indicates the fan host name could not be resolved
	ErrTypeDNS
	// ErrTypeConnectionRefused indicates the host answered with port unreachable
	ErrTypeConnectionRefused
	// ErrTypeEncode indicates a command could not be serialized
	ErrTypeEncode
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeConfig:
		return "Configuration Error"
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeEncode:
		return "Encode Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred talking to a fan
type DeviceError struct {
	Type    ErrorType
	Message string
	Host    string
	Err     error
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// ErrEmptyDeviceID is returned by NewClient when no device id is configured.
var ErrEmptyDeviceID = protocol.ErrEmptyDeviceID

// NewConfigError creates a construction-time error. These are never retried.
func NewConfigError(message string, err error) *DeviceError {
	return &DeviceError{Type: ErrTypeConfig, Message: message, Err: err}
}

// ClassifyNetworkError maps a transport error to a DeviceError.
func ClassifyNetworkError(err error, host string) *DeviceError {
	if err == nil {
		return nil
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &DeviceError{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Host:    host,
			Err:     err,
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &DeviceError{
			Type:    ErrTypeConnectionRefused,
			Message: "fan port unreachable",
			Host:    host,
			Err:     err,
		}
	}

	return &DeviceError{
		Type:    ErrTypeNetwork,
		Message: "network error occurred",
		Host:    host,
		Err:     err,
	}
}

// IsConfigError checks if an error happened while building a client
func IsConfigError(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr) && devErr.Type == ErrTypeConfig
}

// IsNetworkError checks if an error is a network error (including DNS and connection refused)
func IsNetworkError(err error) bool {
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return false
	}
	return devErr.Type == ErrTypeNetwork ||
		devErr.Type == ErrTypeDNS ||
		devErr.Type == ErrTypeConnectionRefused
}
