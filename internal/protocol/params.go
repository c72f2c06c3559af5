package protocol

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// ParamID identifies a fan parameter. The high byte is the lead byte, the
// low byte the tail byte.
type ParamID uint16

// NewParamID joins a lead and tail byte into a parameter identifier.
func NewParamID(lead, tail byte) ParamID {
	return ParamID(uint16(lead)<<8 | uint16(tail))
}

// Lead returns the high 8 bits of the identifier.
func (p ParamID) Lead() byte { return byte(p >> 8) }

// Tail returns the low 8 bits of the identifier.
func (p ParamID) Tail() byte { return byte(p) }

func (p ParamID) String() string {
	return fmt.Sprintf("0x%04X", uint16(p))
}

// ParseParamID accepts decimal ("185") or prefixed hex ("0xB9") notation.
func ParseParamID(s string) (ParamID, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid parameter id %q: %w", s, err)
	}
	return ParamID(v), nil
}

// Value is a parameter value as carried on the wire: a big-endian byte
// string, or unknown when the fan did not report one.
type Value struct {
	raw   []byte
	known bool
}

// Unknown is the value of a parameter that is absent or marked invalid.
var Unknown = Value{}

// Known returns a value holding v in the minimum number of bytes (at least one).
func Known(v uint64) Value {
	return Value{raw: uintBytes(v, byteSize(v)), known: true}
}

// KnownBytes returns a value holding a copy of the big-endian bytes b.
func KnownBytes(b []byte) Value {
	raw := make([]byte, len(b))
	copy(raw, b)
	return Value{raw: raw, known: true}
}

// IsKnown reports whether the fan supplied a value.
func (v Value) IsKnown() bool { return v.known }

// Uint returns the value as an integer. Values wider than eight bytes keep
// only their eight least significant bytes.
func (v Value) Uint() uint64 {
	raw := v.raw
	if len(raw) > 8 {
		raw = raw[len(raw)-8:]
	}
	var n uint64
	for _, b := range raw {
		n = n<<8 | uint64(b)
	}
	return n
}

// Or returns the integer value, or def when the value is unknown.
func (v Value) Or(def uint64) uint64 {
	if !v.known {
		return def
	}
	return v.Uint()
}

// Bytes returns a copy of the big-endian wire bytes.
func (v Value) Bytes() []byte {
	if !v.known {
		return nil
	}
	out := make([]byte, len(v.raw))
	copy(out, v.raw)
	return out
}

// Len is the number of wire bytes carried by the value.
func (v Value) Len() int { return len(v.raw) }

// Equal compares two values numerically, ignoring leading zero bytes.
func (v Value) Equal(o Value) bool {
	if v.known != o.known {
		return false
	}
	return bytes.Equal(bytes.TrimLeft(v.raw, "\x00"), bytes.TrimLeft(o.raw, "\x00"))
}

func (v Value) String() string {
	if !v.known {
		return "unknown"
	}
	if len(v.raw) > 8 {
		return fmt.Sprintf("0x%X", v.raw)
	}
	return strconv.FormatUint(v.Uint(), 10)
}

// Params maps parameter identifiers to values. In a request an unknown value
// asks the fan to report the parameter; a known value asks it to store it.
type Params map[ParamID]Value

// ReadRequest builds a request that reads every id.
func ReadRequest(ids ...ParamID) Params {
	p := make(Params, len(ids))
	for _, id := range ids {
		p[id] = Unknown
	}
	return p
}

// WriteRequest builds a request that writes every value.
func WriteRequest(values map[ParamID]uint64) Params {
	p := make(Params, len(values))
	for id, v := range values {
		p[id] = Known(v)
	}
	return p
}

// IDs returns the identifiers in ascending order.
func (p Params) IDs() []ParamID {
	ids := make([]ParamID, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Get returns the integer value of id and whether it is known.
func (p Params) Get(id ParamID) (uint64, bool) {
	v, ok := p[id]
	if !ok || !v.known {
		return 0, false
	}
	return v.Uint(), true
}

// Equal reports whether both maps hold the same ids with numerically equal values.
func (p Params) Equal(o Params) bool {
	if len(p) != len(o) {
		return false
	}
	for id, v := range p {
		ov, ok := o[id]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
