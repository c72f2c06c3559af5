package protocol

import (
	"fmt"
	"strings"
)

// Frame is an ordered list of fields. At most one field is expanding.
type Frame []Field

// Len is the total byte length of the frame's resolved and fixed fields.
func (f Frame) Len() int {
	n := 0
	for _, field := range f {
		n += field.Size()
	}
	return n
}

// Bytes concatenates every field in order.
func (f Frame) Bytes() ([]byte, error) {
	out := make([]byte, 0, f.Len())
	for i, field := range f {
		b, err := field.Bytes()
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out = append(out, b...)
	}
	return out, nil
}

// Parse fills a copy of the template from buf. The expanding field, if any,
// receives len(buf) minus the sum of the fixed field sizes. ok is false when
// buf is too short for the fixed fields or, without an expanding field, has
// bytes left over; in that case the fields that fit are filled and the rest
// stay pending.
func (f Frame) Parse(buf []byte) (Frame, bool) {
	fixed := 0
	hasExpanding := false
	for _, field := range f {
		if field.IsExpanding() {
			hasExpanding = true
			continue
		}
		fixed += field.size
	}

	spare := len(buf) - fixed
	ok := spare >= 0 && (hasExpanding || spare == 0)
	if spare < 0 {
		spare = 0
	}

	out := make(Frame, len(f))
	copy(out, f)
	pos := 0
	for i, field := range f {
		n := field.size
		if field.IsExpanding() {
			n = spare
		}
		if pos+n > len(buf) {
			return out, false
		}
		filled, err := field.Fill(buf[pos : pos+n])
		if err != nil {
			return out, false
		}
		out[i] = filled
		pos += n
	}
	return out, ok
}

func (f Frame) String() string {
	parts := make([]string, len(f))
	for i, field := range f {
		parts[i] = field.String()
	}
	return "Frame[" + strings.Join(parts, " ") + "]"
}
