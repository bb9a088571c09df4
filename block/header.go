// Package block parses, validates, and reassembles the fixed-layout
// firmware-update blocks carried inside decoded SysEx payloads.
package block

import (
	"encoding/binary"

	"github.com/a6tools/a6fw/handler"
)

const (
	HeadLen = 16  // raw block header length, bytes
	DataLen = 256 // raw block data length, bytes
	Len7Bit = 311 // 7-bit-encoded block length, bytes

	blockLen     = HeadLen + DataLen
	blockDivShift = 8

	// ImageMaxBytes is the largest image this package will ever assemble.
	ImageMaxBytes uint32 = 2 * 1024 * 1024

	// ImageMaxBlocks is ImageMaxBytes expressed in whole blocks.
	ImageMaxBlocks uint16 = uint16(ImageMaxBytes / DataLen)
)

// BlockHeader is the 16-byte, big-endian metadata record prefixed to every
// block's 256 bytes of data.
type BlockHeader struct {
	Version     uint32
	Checksum    uint32
	Length      uint32
	BlockCount  uint16
	BlockIndex  uint16
}

// BlockCountFor returns the number of 256-byte blocks an image of the given
// length requires: ceil(length/256), with BlockCountFor(0) == 0.
func BlockCountFor(length uint32) uint16 {
	if length == 0 {
		return 0
	}
	return uint16(1 + ((length - 1) >> blockDivShift))
}

// CheckLen verifies that the header specifies an image length no greater
// than max and a block_count consistent with that length. A failure always
// rejects the header; the returned signal only says whether the caller
// should keep processing further input.
func (h BlockHeader) CheckLen(max uint32, hd handler.Handler[Event]) (ok bool, sig handler.Signal) {
	if h.Length > max {
		return false, hd.On(InvalidImageLength{Actual: h.Length})
	}

	var expected = BlockCountFor(h.Length)
	if h.BlockCount != expected {
		return false, hd.On(InvalidBlockCount{Actual: h.BlockCount, Expected: expected})
	}

	return true, handler.Continue
}

// CheckMatch verifies that every field of h except BlockIndex agrees with
// ref, the reassembly's reference header. All four fields are always
// compared, even after an early mismatch, so a single bad block can surface
// every way in which it disagrees. sig is Stop if any one of the handler
// calls returned Stop.
func (h BlockHeader) CheckMatch(ref BlockHeader, hd handler.Handler[Event]) (ok bool, sig handler.Signal) {
	ok = true
	sig = handler.Continue

	if h.Version != ref.Version {
		if hd.On(InconsistentVersion{Actual: h.Version, Expected: ref.Version, Index: h.BlockIndex}) == handler.Stop {
			sig = handler.Stop
		}
		ok = false
	}

	if h.Checksum != ref.Checksum {
		if hd.On(InconsistentChecksum{Actual: h.Checksum, Expected: ref.Checksum, Index: h.BlockIndex}) == handler.Stop {
			sig = handler.Stop
		}
		ok = false
	}

	if h.Length != ref.Length {
		if hd.On(InconsistentImageLength{Actual: h.Length, Expected: ref.Length, Index: h.BlockIndex}) == handler.Stop {
			sig = handler.Stop
		}
		ok = false
	}

	if h.BlockCount != ref.BlockCount {
		if hd.On(InconsistentBlockCount{Actual: h.BlockCount, Expected: ref.BlockCount, Index: h.BlockIndex}) == handler.Stop {
			sig = handler.Stop
		}
		ok = false
	}

	return ok, sig
}

// CheckBlockIndex verifies that block_index < block_count.
func (h BlockHeader) CheckBlockIndex(hd handler.Handler[Event]) (ok bool, sig handler.Signal) {
	if h.BlockIndex >= h.BlockCount {
		var max uint16
		if h.BlockCount > 0 {
			max = h.BlockCount - 1
		}
		return false, hd.On(InvalidBlockIndex{Actual: h.BlockIndex, Max: max})
	}
	return true, handler.Continue
}

func decodeHeader(data []byte) BlockHeader {
	return BlockHeader{
		Version:    binary.BigEndian.Uint32(data[0:4]),
		Checksum:   binary.BigEndian.Uint32(data[4:8]),
		Length:     binary.BigEndian.Uint32(data[8:12]),
		BlockCount: binary.BigEndian.Uint16(data[12:14]),
		BlockIndex: binary.BigEndian.Uint16(data[14:16]),
	}
}
