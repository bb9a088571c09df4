package block

// Event is the sealed set of things the block decoder can report. Structural
// events reject a single block in isolation; cross-block events compare a
// block against the reassembly's reference header; image-level events are
// ChecksumMismatch and MissingBlock, reported only from Decoder.Image once
// reassembly is judged complete or abandoned, and DuplicateBlock, reported
// from Decoder.Consume when a block index is written again.
type Event interface {
	isEvent()
}

// InvalidBlockLength reports a byte slice that wasn't exactly HeadLen+DataLen
// bytes long.
type InvalidBlockLength struct {
	Actual int
}

// InvalidImageLength reports a header claiming an image longer than the
// maximum the decoder will accept.
type InvalidImageLength struct {
	Actual uint32
}

// InvalidBlockCount reports a header whose block_count doesn't match
// BlockCountFor(length).
type InvalidBlockCount struct {
	Actual, Expected uint16
}

// InvalidBlockIndex reports a header whose block_index is not less than its
// own block_count.
type InvalidBlockIndex struct {
	Actual, Max uint16
}

// InconsistentVersion reports a block whose version disagrees with the
// reassembly's reference header.
type InconsistentVersion struct {
	Actual, Expected uint32
	Index            uint16
}

// InconsistentChecksum reports a block whose checksum field disagrees with
// the reassembly's reference header.
type InconsistentChecksum struct {
	Actual, Expected uint32
	Index            uint16
}

// InconsistentImageLength reports a block whose length field disagrees with
// the reassembly's reference header.
type InconsistentImageLength struct {
	Actual, Expected uint32
	Index            uint16
}

// InconsistentBlockCount reports a block whose block_count field disagrees
// with the reassembly's reference header.
type InconsistentBlockCount struct {
	Actual, Expected uint16
	Index            uint16
}

// ChecksumMismatch reports that the additive checksum computed over the
// reassembled image doesn't match the checksum recorded in the blocks'
// headers.
type ChecksumMismatch struct {
	Actual, Expected uint32
}

// DuplicateBlock reports a block index written more than once. The later
// write always wins.
type DuplicateBlock struct {
	Index uint16
}

// MissingBlock reports the lowest-indexed block never written. Only the
// first gap is reported, even if more than one block is missing.
type MissingBlock struct {
	Index uint16
}

func (InvalidBlockLength) isEvent()      {}
func (InvalidImageLength) isEvent()      {}
func (InvalidBlockCount) isEvent()       {}
func (InvalidBlockIndex) isEvent()       {}
func (InconsistentVersion) isEvent()     {}
func (InconsistentChecksum) isEvent()    {}
func (InconsistentImageLength) isEvent() {}
func (InconsistentBlockCount) isEvent()  {}
func (ChecksumMismatch) isEvent()        {}
func (DuplicateBlock) isEvent()          {}
func (MissingBlock) isEvent()            {}
