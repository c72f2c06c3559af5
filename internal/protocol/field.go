package protocol

import (
	"errors"
	"fmt"
)

// ErrUnresolvedField is returned when serializing a field that was declared
// as a template and never filled.
var ErrUnresolvedField = errors.New("field has no value")

// Field is one big-endian integer slot of a frame. A pending field only
// carries its byte size and is resolved by parsing; a resolved field carries
// size and bytes. An expanding field has no fixed size.
type Field struct {
	size      int
	data      []byte
	resolved  bool
	expanding bool
}

// NewField returns a resolved field holding v in the minimum number of bytes.
func NewField(v uint64) Field {
	return NewSizedField(v, byteSize(v))
}

// NewSizedField returns a resolved field of exactly size bytes. Bits of v
// that do not fit are dropped.
func NewSizedField(v uint64, size int) Field {
	return Field{size: size, data: uintBytes(v, size), resolved: true}
}

// BytesField returns a resolved field holding a copy of b.
func BytesField(b []byte) Field {
	data := make([]byte, len(b))
	copy(data, b)
	return Field{size: len(b), data: data, resolved: true}
}

// ExpandingBytesField returns a resolved expanding field holding b.
func ExpandingBytesField(b []byte) Field {
	f := BytesField(b)
	f.expanding = true
	return f
}

// TemplateField returns a pending field of size bytes.
func TemplateField(size int) Field {
	return Field{size: size}
}

// ExpandingField returns a pending field that absorbs whatever bytes the
// fixed fields of its frame leave over.
func ExpandingField() Field {
	return Field{expanding: true}
}

// Size is the number of bytes the field occupies. A pending expanding field
// reports zero.
func (f Field) Size() int { return f.size }

// IsResolved reports whether the field holds a value.
func (f Field) IsResolved() bool { return f.resolved }

// IsExpanding reports whether the field has no fixed size.
func (f Field) IsExpanding() bool { return f.expanding }

// Bytes returns the serialized field.
func (f Field) Bytes() ([]byte, error) {
	if !f.resolved {
		return nil, ErrUnresolvedField
	}
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out, nil
}

// Uint returns the field as an integer, zero when pending. Only the eight
// least significant bytes contribute.
func (f Field) Uint() uint64 {
	return Value{raw: f.data, known: f.resolved}.Uint()
}

// Fill resolves the field from raw. A fixed field requires exactly Size bytes.
func (f Field) Fill(raw []byte) (Field, error) {
	if !f.expanding && len(raw) != f.size {
		return f, fmt.Errorf("field expects %d bytes, got %d", f.size, len(raw))
	}
	filled := BytesField(raw)
	filled.expanding = f.expanding
	return filled, nil
}

func (f Field) String() string {
	if !f.resolved {
		if f.expanding {
			return "Field{expanding}"
		}
		return fmt.Sprintf("Field{size=%d}", f.size)
	}
	return fmt.Sprintf("Field{size=%d, 0x%X}", f.size, f.data)
}

// byteSize is the number of bytes needed to hold v; zero still takes one byte.
func byteSize(v uint64) int {
	n := 1
	for v > 0xFF {
		v >>= 8
		n++
	}
	return n
}

func uintBytes(v uint64, size int) []byte {
	out := make([]byte, size)
	for i := size - 1; i >= 0 && v > 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
