package devices

import (
	"errors"
	"fmt"
	"math"

	"github.com/muurk/blauberg/internal/protocol"
)

var (
	// ErrNoValue is returned when a nil value is requested.
	ErrNoValue = errors.New("no value")

	// ErrReadOnly is returned when writing through an action without a request builder.
	ErrReadOnly = errors.New("action is read only")
)

// Action is one feature of a fan. Parse may see parameters beyond Params
// when the answer carries them.
type Action struct {
	Params  []protocol.ParamID
	Parse   func(protocol.Params) any
	Request func(any) (protocol.Params, error)
}

// SinglePointAction maps a feature one to one onto parameter id. The parsed
// value is the parameter as an integer, or nil when the fan did not report it.
func SinglePointAction(id protocol.ParamID) Action {
	return Action{
		Params: []protocol.ParamID{id},
		Parse: func(p protocol.Params) any {
			v, ok := p.Get(id)
			if !ok {
				return nil
			}
			return v
		},
		Request: func(in any) (protocol.Params, error) {
			v, err := VariableToValue(in)
			if err != nil {
				return nil, err
			}
			return protocol.Params{id: v}, nil
		},
	}
}

// StringAction reads a parameter that holds text, such as a firmware
// version or a unit name.
func StringAction(id protocol.ParamID) Action {
	a := SinglePointAction(id)
	a.Parse = func(p protocol.Params) any {
		v, ok := p[id]
		if !ok || !v.IsKnown() {
			return nil
		}
		return string(v.Bytes())
	}
	return a
}

// VariableToValue converts a user supplied value to a parameter value.
// Booleans become 1 or 0, strings their bytes, floats are rounded. Negative
// numbers have no wire form.
func VariableToValue(in any) (protocol.Value, error) {
	switch v := in.(type) {
	case nil:
		return protocol.Unknown, ErrNoValue
	case protocol.Value:
		return v, nil
	case bool:
		if v {
			return protocol.Known(1), nil
		}
		return protocol.Known(0), nil
	case string:
		return protocol.KnownBytes([]byte(v)), nil
	case []byte:
		return protocol.KnownBytes(v), nil
	case float64:
		if v < 0 || math.IsNaN(v) {
			return protocol.Unknown, fmt.Errorf("value %v out of range", v)
		}
		return protocol.Known(uint64(math.Round(v))), nil
	case float32:
		return VariableToValue(float64(v))
	case int:
		return signed(int64(v))
	case int8:
		return signed(int64(v))
	case int16:
		return signed(int64(v))
	case int32:
		return signed(int64(v))
	case int64:
		return signed(v)
	case uint:
		return protocol.Known(uint64(v)), nil
	case uint8:
		return protocol.Known(uint64(v)), nil
	case uint16:
		return protocol.Known(uint64(v)), nil
	case uint32:
		return protocol.Known(uint64(v)), nil
	case uint64:
		return protocol.Known(v), nil
	default:
		return protocol.Unknown, fmt.Errorf("unsupported value type %T", in)
	}
}

func signed(v int64) (protocol.Value, error) {
	if v < 0 {
		return protocol.Unknown, fmt.Errorf("value %d out of range", v)
	}
	return protocol.Known(uint64(v)), nil
}
