// Package protocol implements the Blauberg fan UDP binary protocol.
//
// This package handles construction of command frames, parsing of response
// frames, the frame checksum, and the data block codec that carries
// parameter identifiers and values.
//
// # Frame Layout
//
// Commands sent to a fan:
//
//	FDFD | 02 | idLen | id | pwdLen | [pwd] | func | data | checksum
//
// Responses from a fan echo the password length but not the password:
//
//	FDFD | 02 | idLen | id | pwdLen | func | data | checksum
//
// The function byte is 0x01 for read and 0x03 for read-write. The checksum
// is the byte-swapped 16 bit sum of every byte from the protocol type to the
// end of the data block.
//
// Frames are described as a Frame, an ordered list of Field values. A field
// is either resolved (it has bytes) or a template that only knows its size.
// One field per frame may be expanding and takes whatever bytes the fixed
// fields leave over when a frame is parsed.
//
// # Data Blocks
//
// A parameter id is 16 bits: a lead byte and a tail byte. Outgoing blocks
// group ids by lead byte:
//
//	FF lead tail tail FE len tail value...
//
// A bare tail byte asks the fan to report the parameter. DynamicValue (0xFE)
// introduces a write with an explicit value length.
//
// Incoming blocks are decoded by Decoder, a small state machine that keeps
// the current lead byte between entries:
//
//	FF lead   switch lead byte
//	FD tail   parameter has no value
//	FE len tail value...   multi-byte value
//	tail value             any other byte: one byte value
//
// A block that ends in the middle of an entry stops the decoder; the
// parameters decoded before that point are returned and a warning is logged.
//
// # Usage Example
//
//	layout, err := protocol.NewLayout("003A00345753560A", "1111")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	block := protocol.EncodeBlock(protocol.ReadRequest(0x01, 0x02, 0xB9))
//	cmd, err := layout.BuildCommand(protocol.FuncRead, block)
//	...
//	resp := layout.ParseResponse(datagram)
//	params := protocol.DecodeBlock(resp.Data)
//
// # Thread Safety
//
// Layout is immutable and safe for concurrent use. A Decoder belongs to one goroutine.
package protocol
