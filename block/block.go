package block

import "github.com/a6tools/a6fw/handler"

// Block is one decoded header plus its 256-byte data payload, borrowed from
// the caller's buffer.
type Block struct {
	Header BlockHeader
	Data   []byte
}

// Outcome is the result of FromBytes.
type Outcome int

const (
	// Decoded means bytes was block-sized (or larger, and the handler
	// allowed truncation) and Block is valid.
	Decoded Outcome = iota
	// NeedMoreInput means bytes was too short and the handler allowed
	// the caller to retry once more bytes are available.
	NeedMoreInput
	// Aborted means the handler returned Stop in response to a bad
	// length.
	Aborted
)

// FromBytes decodes a Block from exactly HeadLen+DataLen bytes of bytes.
//
// If bytes is the wrong length, InvalidBlockLength is reported to hd first.
// If hd returns Stop, FromBytes returns Aborted. Otherwise: if bytes is too
// short, FromBytes returns NeedMoreInput (the caller should supply more
// bytes and retry); if bytes is too long, the excess is truncated and
// decoding proceeds.
func FromBytes(bytes []byte, hd handler.Handler[Event]) (Block, Outcome) {
	if len(bytes) != blockLen {
		if hd.On(InvalidBlockLength{Actual: len(bytes)}) == handler.Stop {
			return Block{}, Aborted
		}

		if len(bytes) < blockLen {
			return Block{}, NeedMoreInput
		}

		bytes = bytes[:blockLen]
	}

	return Block{
		Header: decodeHeader(bytes[:HeadLen]),
		Data:   bytes[HeadLen:blockLen],
	}, Decoded
}
