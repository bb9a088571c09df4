package block

import (
	"github.com/a6tools/a6fw/bitmap"
	"github.com/a6tools/a6fw/handler"
)

// Decoder reassembles a sequence of blocks, in any order, into a single
// firmware image. State (the reference header, the seen bitmap, the image
// buffer) is created lazily on the first accepted block and is never reset;
// one Decoder handles exactly one image.
type Decoder struct {
	capacity uint32

	ref   *BlockHeader
	seen  *bitmap.BoolArray
	image []byte
}

// NewDecoder constructs a Decoder that will refuse any image longer than
// capacity bytes. capacity must not exceed ImageMaxBytes; violating that is
// a programmer error, and this panics rather than return an error.
func NewDecoder(capacity uint32) *Decoder {
	if capacity > ImageMaxBytes {
		panic("block: decoder capacity exceeds maximum image size")
	}
	return &Decoder{capacity: capacity}
}

// Consume validates and incorporates one block into the image under
// reassembly, reporting any problem to hd. The returned signal is Stop only
// if hd itself returned Stop; a rejected block that hd let pass still
// yields Continue so the caller can keep feeding blocks.
func (d *Decoder) Consume(blk Block, hd handler.Handler[Event]) handler.Signal {
	if d.ref == nil {
		var ok, sig = blk.Header.CheckLen(d.capacity, hd)
		if sig == handler.Stop {
			return handler.Stop
		}
		if !ok {
			return handler.Continue
		}
	} else {
		var ok, sig = blk.Header.CheckMatch(*d.ref, hd)
		if sig == handler.Stop {
			return handler.Stop
		}
		if !ok {
			return handler.Continue
		}
	}

	var indexOK, sig = blk.Header.CheckBlockIndex(hd)
	if sig == handler.Stop {
		return handler.Stop
	}
	if !indexOK {
		return handler.Continue
	}

	if d.ref == nil {
		var ref = blk.Header
		d.ref = &ref
		d.seen = bitmap.New(int(blk.Header.BlockCount))
		d.image = make([]byte, int(blk.Header.BlockCount)*DataLen)
	}

	var start = int(blk.Header.BlockIndex) * DataLen
	var wasSet = d.seen.Set(int(blk.Header.BlockIndex))
	copy(d.image[start:start+DataLen], blk.Data)

	if wasSet {
		return hd.On(DuplicateBlock{Index: blk.Header.BlockIndex})
	}
	return handler.Continue
}

// Image finalizes the reassembly: it reports the first missing block (if
// any) and a checksum mismatch (if the assembled bytes don't sum to the
// recorded checksum), then returns the image regardless — the event stream,
// not the return value, tells the caller whether to trust it.
func (d *Decoder) Image(hd handler.Handler[Event]) []byte {
	if d.ref == nil {
		hd.On(MissingBlock{Index: 0})
		return nil
	}

	if i, ok := d.seen.FirstFalse(); ok {
		hd.On(MissingBlock{Index: uint16(i)})
	}

	var img = d.image[:d.ref.Length]

	var sum uint32
	for _, b := range img {
		sum += uint32(b)
	}

	if sum != d.ref.Checksum {
		hd.On(ChecksumMismatch{Actual: sum, Expected: d.ref.Checksum})
	}

	return img
}
