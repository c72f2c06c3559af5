package protocol

import (
	"go.uber.org/zap"

	"github.com/muurk/blauberg/internal/logging"
)

// Decoder scans an incoming data block left to right. The current lead byte
// is carried across steps and only changes on a LeadIndicator, so a response
// may list many parameters of one group after a single group header.
type Decoder struct {
	data      []byte
	pos       int
	lead      byte
	values    Params
	truncated bool
}

// NewDecoder returns a decoder positioned at the start of data with lead byte zero.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data, values: make(Params)}
}

// DecodeBlock decodes a whole data block. Truncated input yields the
// parameters decoded before the truncation.
func DecodeBlock(data []byte) Params {
	return NewDecoder(data).Decode()
}

// Decode runs the decoder to the end of the block and returns the result.
func (d *Decoder) Decode() Params {
	for d.Step() {
	}
	return d.values
}

// Values returns the parameters decoded so far.
func (d *Decoder) Values() Params { return d.values }

// Lead returns the current lead byte.
func (d *Decoder) Lead() byte { return d.lead }

// Truncated reports whether the scan stopped because a step needed more
// bytes than the block holds.
func (d *Decoder) Truncated() bool { return d.truncated }

// Step decodes one marker or default entry. It returns false once the block
// is exhausted or truncated.
func (d *Decoder) Step() bool {
	if d.truncated || d.pos >= len(d.data) {
		return false
	}

	switch Classify(d.data[d.pos]) {
	case MarkerLead:
		b, ok := d.take(1, 1)
		if !ok {
			return false
		}
		d.lead = b[0]

	case MarkerInvalid:
		b, ok := d.take(1, 1)
		if !ok {
			return false
		}
		id := NewParamID(d.lead, b[0])
		if _, seen := d.values[id]; !seen {
			d.values[id] = Unknown
		}

	case MarkerDynamic:
		hdr, ok := d.take(1, 1)
		if !ok {
			return false
		}
		length := int(hdr[0])
		// tail byte plus length value bytes must remain
		if d.pos+1+length > len(d.data) {
			d.truncate(length)
			return false
		}
		tail := d.data[d.pos]
		value := d.data[d.pos+1 : d.pos+1+length]
		d.pos += 1 + length
		d.values[NewParamID(d.lead, tail)] = KnownBytes(value)

	default:
		b, ok := d.take(0, 2)
		if !ok {
			return false
		}
		d.values[NewParamID(d.lead, b[0])] = KnownBytes(b[1:])
	}
	return true
}

// take skips skip bytes at the current position and returns the following n
// bytes, or marks the decoder truncated when they are not all there.
func (d *Decoder) take(skip, n int) ([]byte, bool) {
	start := d.pos + skip
	if start+n > len(d.data) {
		d.truncate(n)
		return nil, false
	}
	d.pos = start + n
	return d.data[start:d.pos], true
}

func (d *Decoder) truncate(need int) {
	d.truncated = true
	logging.Warn("data block truncated",
		zap.Int("offset", d.pos),
		zap.Int("needed", need),
		zap.Int("remaining", len(d.data)-d.pos),
		zap.Int("decoded", len(d.values)),
	)
}
