package protocol

// EncodeBlock builds the data block of an outgoing command. Parameters are
// sorted and grouped by lead byte; each group opens with LeadIndicator and
// the lead byte. Unknown values are read requests and emit the bare tail
// byte. Known values emit DynamicValue, the value length, the tail byte and
// the big-endian value.
func EncodeBlock(params Params) []byte {
	var out []byte
	group := -1
	for _, id := range params.IDs() {
		if int(id.Lead()) != group {
			group = int(id.Lead())
			out = append(out, MarkerLead.Byte(), id.Lead())
		}
		v := params[id]
		if !v.IsKnown() {
			out = append(out, id.Tail())
			continue
		}
		raw := v.raw
		if len(raw) == 0 {
			raw = []byte{0}
		}
		out = append(out, MarkerDynamic.Byte(), byte(len(raw)), id.Tail())
		out = append(out, raw...)
	}
	return out
}

// EncodePair builds the uncompressed two field block used to write a single
// parameter: the id and the value, each in the minimum number of bytes.
func EncodePair(id ParamID, value uint64) []byte {
	block, _ := Frame{NewField(uint64(id)), NewField(value)}.Bytes()
	return block
}
