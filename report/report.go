// Package report turns the structured sysex and block event taxonomies
// into operator-facing strings. No core package imports this one; the
// core only ever returns structured values, per the handler contract.
package report

import (
	"fmt"

	"github.com/a6tools/a6fw/block"
	"github.com/a6tools/a6fw/sysex"
)

// Sysex formats a detector event.
func Sysex(e sysex.Event) string {
	switch ev := e.(type) {
	case sysex.Message:
		return fmt.Sprintf("offset %d: message, %d byte(s) payload", ev.Offset, len(ev.Payload))
	case sysex.SkipNotSysEx:
		return fmt.Sprintf("offset %d: %d byte(s) not part of any SysEx message", ev.Offset, ev.Len)
	case sysex.Overflow:
		return fmt.Sprintf("offset %d: message overflowed detector capacity, %d byte(s) discarded", ev.Offset, ev.Len)
	case sysex.UnexpectedByte:
		return fmt.Sprintf("offset %d: message interrupted by an invalid byte after %d byte(s)", ev.Offset, ev.Len)
	case sysex.UnexpectedEof:
		return fmt.Sprintf("offset %d: message still open at end of input, %d byte(s) read", ev.Offset, ev.Len)
	default:
		return fmt.Sprintf("unrecognized sysex event: %#v", e)
	}
}

// Block formats a block-decoder event.
func Block(e block.Event) string {
	switch ev := e.(type) {
	case block.InvalidBlockLength:
		return fmt.Sprintf(
			"invalid block length: %d byte(s). blocks must be exactly %d bytes (%d header, %d data)",
			ev.Actual, block.HeadLen+block.DataLen, block.HeadLen, block.DataLen,
		)
	case block.InvalidImageLength:
		return fmt.Sprintf("invalid image length: %d byte(s). maximum is %d bytes", ev.Actual, block.ImageMaxBytes)
	case block.InvalidBlockCount:
		return fmt.Sprintf("invalid block count: %d. this image requires %d block(s)", ev.Actual, ev.Expected)
	case block.InvalidBlockIndex:
		return fmt.Sprintf("invalid block index: %d. maximum for this image is %d", ev.Actual, ev.Max)
	case block.InconsistentVersion:
		return fmt.Sprintf("block %d: inconsistent version %#x, initial block specified %#x", ev.Index, ev.Actual, ev.Expected)
	case block.InconsistentChecksum:
		return fmt.Sprintf("block %d: inconsistent checksum %#x, initial block specified %#x", ev.Index, ev.Actual, ev.Expected)
	case block.InconsistentImageLength:
		return fmt.Sprintf("block %d: inconsistent image length %d byte(s), initial block specified %d byte(s)", ev.Index, ev.Actual, ev.Expected)
	case block.InconsistentBlockCount:
		return fmt.Sprintf("block %d: inconsistent block count %d, initial block specified %d", ev.Index, ev.Actual, ev.Expected)
	case block.ChecksumMismatch:
		return fmt.Sprintf("computed checksum %#x does not match checksum %#x from block headers", ev.Actual, ev.Expected)
	case block.DuplicateBlock:
		return fmt.Sprintf("block %d: duplicate block", ev.Index)
	case block.MissingBlock:
		return fmt.Sprintf("incomplete image: first missing block is at index %d", ev.Index)
	default:
		return fmt.Sprintf("unrecognized block event: %#v", e)
	}
}
