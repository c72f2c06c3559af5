package protocol

// Reserved data block bytes. A tail byte equal to one of these cannot be
// sent with the default encoding; this is a firmware limitation.
const (
	LeadIndicator byte = 0xFF // next byte is the new lead byte
	DynamicValue  byte = 0xFE // length, tail byte, then length value bytes
	InvalidValue  byte = 0xFD // next byte is a tail byte with no value
)

// Marker classifies a byte at a step boundary of a data block.
type Marker int

const (
	MarkerDefault Marker = iota // the byte is a tail byte followed by a one byte value
	MarkerLead
	MarkerInvalid
	MarkerDynamic
)

// Classify maps a raw byte to its marker. Encoder and decoder both go
// through here so the reserved set is defined once.
func Classify(b byte) Marker {
	switch b {
	case LeadIndicator:
		return MarkerLead
	case InvalidValue:
		return MarkerInvalid
	case DynamicValue:
		return MarkerDynamic
	default:
		return MarkerDefault
	}
}

// Byte returns the reserved byte of the marker. MarkerDefault has none and
// returns zero.
func (m Marker) Byte() byte {
	switch m {
	case MarkerLead:
		return LeadIndicator
	case MarkerInvalid:
		return InvalidValue
	case MarkerDynamic:
		return DynamicValue
	default:
		return 0
	}
}

func (m Marker) String() string {
	switch m {
	case MarkerLead:
		return "lead"
	case MarkerInvalid:
		return "invalid"
	case MarkerDynamic:
		return "dynamic"
	default:
		return "default"
	}
}

// IsReserved reports whether b is one of the marker bytes.
func IsReserved(b byte) bool {
	return Classify(b) != MarkerDefault
}
