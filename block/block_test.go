package block_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/a6tools/a6fw/block"
	"github.com/a6tools/a6fw/handler"
)

func panicker(t *testing.T) handler.Handler[block.Event] {
	return handler.Func[block.Event](func(e block.Event) handler.Signal {
		t.Fatalf("unexpected event: %#v", e)
		return handler.Stop
	})
}

func headerBytes(header []byte, data []byte) []byte {
	return append(append([]byte{}, header...), data...)
}

func makeBytes(n int, start int) []byte {
	var b = make([]byte, n)
	for i := range b {
		b[i] = byte((start + i) & 0xFF)
	}
	return b
}

func TestBlockFromBytesOK(t *testing.T) {
	var data = headerBytes(makeBytes(0x10, 0x00), makeBytes(0x100, 0x00))

	var blk, outcome = block.FromBytes(data, panicker(t))

	require.Equal(t, block.Decoded, outcome)
	assert.Equal(t, uint32(0x00010203), blk.Header.Version)
	assert.Equal(t, uint32(0x04050607), blk.Header.Checksum)
	assert.Equal(t, uint32(0x08090A0B), blk.Header.Length)
	assert.Equal(t, uint16(0x0C0D), blk.Header.BlockCount)
	assert.Equal(t, uint16(0x0E0F), blk.Header.BlockIndex)
}

func TestBlockFromBytesTooFewContinue(t *testing.T) {
	var data = make([]byte, 42)

	var h = handler.Func[block.Event](func(e block.Event) handler.Signal {
		assert.Equal(t, block.InvalidBlockLength{Actual: 42}, e)
		return handler.Continue
	})

	var _, outcome = block.FromBytes(data, h)
	assert.Equal(t, block.NeedMoreInput, outcome)
}

func TestBlockFromBytesTooFewAbort(t *testing.T) {
	var data = make([]byte, 42)

	var h = handler.Func[block.Event](func(e block.Event) handler.Signal {
		return handler.Stop
	})

	var _, outcome = block.FromBytes(data, h)
	assert.Equal(t, block.Aborted, outcome)
}

func TestBlockFromBytesTooManyContinue(t *testing.T) {
	var data = append(headerBytes(makeBytes(0x10, 0x00), makeBytes(0x100, 0x00)), 0x00)

	var h = handler.Func[block.Event](func(e block.Event) handler.Signal {
		assert.Equal(t, block.InvalidBlockLength{Actual: len(data)}, e)
		return handler.Continue
	})

	var blk, outcome = block.FromBytes(data, h)

	require.Equal(t, block.Decoded, outcome)
	assert.Equal(t, uint32(0x00010203), blk.Header.Version)
	assert.Equal(t, uint16(0x0E0F), blk.Header.BlockIndex)
}

func TestBlockFromBytesTooManyAbort(t *testing.T) {
	var data = append(headerBytes(makeBytes(0x10, 0x00), makeBytes(0x100, 0x00)), 0x00)

	var h = handler.Func[block.Event](func(e block.Event) handler.Signal {
		return handler.Stop
	})

	var _, outcome = block.FromBytes(data, h)
	assert.Equal(t, block.Aborted, outcome)
}

func TestBlockCountFor(t *testing.T) {
	assert.Equal(t, uint16(0), block.BlockCountFor(0))
	assert.Equal(t, uint16(1), block.BlockCountFor(1))
	assert.Equal(t, uint16(1), block.BlockCountFor(256))
	assert.Equal(t, uint16(2), block.BlockCountFor(257))
	assert.Equal(t, uint16(4), block.BlockCountFor(1000))
}

func TestBlockCountForProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var length = uint32(rapid.IntRange(0, 1<<20).Draw(t, "length"))

		var expected uint16
		if length > 0 {
			expected = uint16((length + 255) / 256)
		}

		assert.Equal(t, expected, block.BlockCountFor(length))
	})
}

func TestCheckLenRejectsOversizedImage(t *testing.T) {
	var header = block.BlockHeader{Length: block.ImageMaxBytes + 1}

	var ok, _ = header.CheckLen(block.ImageMaxBytes, handler.Func[block.Event](func(e block.Event) handler.Signal {
		assert.Equal(t, block.InvalidImageLength{Actual: header.Length}, e)
		return handler.Continue
	}))

	assert.False(t, ok)
}

func TestCheckLenRejectsWrongBlockCount(t *testing.T) {
	var header = block.BlockHeader{Length: 1000, BlockCount: 3}

	var ok, _ = header.CheckLen(block.ImageMaxBytes, handler.Func[block.Event](func(e block.Event) handler.Signal {
		assert.Equal(t, block.InvalidBlockCount{Actual: 3, Expected: 4}, e)
		return handler.Continue
	}))

	assert.False(t, ok)
}

func TestCheckMatchReportsAllFourFields(t *testing.T) {
	var ref = block.BlockHeader{Version: 1, Checksum: 2, Length: 3, BlockCount: 4, BlockIndex: 0}
	var bad = block.BlockHeader{Version: 9, Checksum: 9, Length: 9, BlockCount: 9, BlockIndex: 1}

	var got []block.Event
	var ok, sig = bad.CheckMatch(ref, handler.Collect(&got))

	assert.False(t, ok)
	assert.Equal(t, handler.Continue, sig)
	require.Equal(t, []block.Event{
		block.InconsistentVersion{Actual: 9, Expected: 1, Index: 1},
		block.InconsistentChecksum{Actual: 9, Expected: 2, Index: 1},
		block.InconsistentImageLength{Actual: 9, Expected: 3, Index: 1},
		block.InconsistentBlockCount{Actual: 9, Expected: 4, Index: 1},
	}, got)
}

func TestCheckMatchStopHaltsButStillRunsAllChecks(t *testing.T) {
	var ref = block.BlockHeader{Version: 1, Checksum: 2, Length: 3, BlockCount: 4}
	var bad = block.BlockHeader{Version: 9, Checksum: 9, Length: 9, BlockCount: 9}

	var got []block.Event
	var h = handler.Func[block.Event](func(e block.Event) handler.Signal {
		got = append(got, e)
		return handler.Stop
	})

	var ok, sig = bad.CheckMatch(ref, h)

	assert.False(t, ok)
	assert.Equal(t, handler.Stop, sig)
	assert.Len(t, got, 4)
}

func TestCheckBlockIndexOutOfRange(t *testing.T) {
	var header = block.BlockHeader{BlockCount: 4, BlockIndex: 4}

	var ok, _ = header.CheckBlockIndex(handler.Func[block.Event](func(e block.Event) handler.Signal {
		assert.Equal(t, block.InvalidBlockIndex{Actual: 4, Max: 3}, e)
		return handler.Continue
	}))

	assert.False(t, ok)
}

func TestCheckBlockIndexSaturatesAtZeroCount(t *testing.T) {
	var header = block.BlockHeader{BlockCount: 0, BlockIndex: 0}

	var ok, _ = header.CheckBlockIndex(handler.Func[block.Event](func(e block.Event) handler.Signal {
		assert.Equal(t, block.InvalidBlockIndex{Actual: 0, Max: 0}, e)
		return handler.Continue
	}))

	assert.False(t, ok)
}

func firmwareBlock(index, count uint16, length, checksum uint32, fill byte) block.Block {
	return block.Block{
		Header: block.BlockHeader{
			Version:    1,
			Checksum:   checksum,
			Length:     length,
			BlockCount: count,
			BlockIndex: index,
		},
		Data: bytesFilled(block.DataLen, fill),
	}
}

func bytesFilled(n int, fill byte) []byte {
	var b = make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return b
}

// expectedChecksum computes the additive checksum of a length-byte image
// consisting of whole 256-byte blocks filled with 0xA5.
func expectedChecksum(length int) uint32 {
	var sum uint32
	for i := 0; i < length; i++ {
		sum += uint32(0xA5)
	}
	return sum
}

func TestReassembly(t *testing.T) {
	const length = 1000
	const count = 4
	var checksum = expectedChecksum(length)

	var d = block.NewDecoder(block.ImageMaxBytes)

	for _, idx := range []uint16{2, 0, 1, 3} {
		var sig = d.Consume(firmwareBlock(idx, count, length, checksum, 0xA5), panicker(t))
		require.Equal(t, handler.Continue, sig)
	}

	var img = d.Image(panicker(t))

	require.Len(t, img, length)
	for _, b := range img {
		assert.Equal(t, byte(0xA5), b)
	}
}

func TestReassemblyMissingBlock(t *testing.T) {
	const length = 1000
	const count = 4
	var checksum = expectedChecksum(length)

	var d = block.NewDecoder(block.ImageMaxBytes)

	for _, idx := range []uint16{0, 1, 3} { // index 2 never arrives
		var sig = d.Consume(firmwareBlock(idx, count, length, checksum, 0xA5), panicker(t))
		require.Equal(t, handler.Continue, sig)
	}

	var got []block.Event
	var img = d.Image(handler.Collect(&got))

	require.Len(t, img, length)
	require.GreaterOrEqual(t, len(got), 1)
	assert.Equal(t, block.MissingBlock{Index: 2}, got[0])

	var sawChecksumMismatch bool
	for _, e := range got {
		if _, ok := e.(block.ChecksumMismatch); ok {
			sawChecksumMismatch = true
		}
	}
	assert.True(t, sawChecksumMismatch, "expected a ChecksumMismatch alongside the missing block")
}

func TestReassemblyDuplicateBlock(t *testing.T) {
	const length = 1000
	const count = 4
	// The final image holds block 1's 0xFF overwrite, so the recorded
	// checksum accounts for it.
	var checksum = expectedChecksum(length) - block.DataLen*0xA5 + block.DataLen*0xFF

	var d = block.NewDecoder(block.ImageMaxBytes)

	require.Equal(t, handler.Continue, d.Consume(firmwareBlock(0, count, length, checksum, 0xA5), panicker(t)))
	require.Equal(t, handler.Continue, d.Consume(firmwareBlock(1, count, length, checksum, 0xA5), panicker(t)))

	var got []block.Event
	var sig = d.Consume(firmwareBlock(1, count, length, checksum, 0xFF), handler.Collect(&got))

	assert.Equal(t, handler.Continue, sig)
	require.Equal(t, []block.Event{block.DuplicateBlock{Index: 1}}, got)

	require.Equal(t, handler.Continue, d.Consume(firmwareBlock(2, count, length, checksum, 0xA5), panicker(t)))
	require.Equal(t, handler.Continue, d.Consume(firmwareBlock(3, count, length, checksum, 0xA5), panicker(t)))

	var img = d.Image(panicker(t))
	assert.Equal(t, byte(0xFF), img[256]) // second write to block 1 won
}

func TestImageWithNoBlocksEverAccepted(t *testing.T) {
	var d = block.NewDecoder(block.ImageMaxBytes)

	var got []block.Event
	var img = d.Image(handler.Collect(&got))

	assert.Nil(t, img)
	require.Equal(t, []block.Event{block.MissingBlock{Index: 0}}, got)
}

func TestNewDecoderPanicsOnOversizedCapacity(t *testing.T) {
	assert.Panics(t, func() {
		block.NewDecoder(block.ImageMaxBytes + 1)
	})
}

func TestConsumeRejectsOutOfRangeBlockIndexWithoutWriting(t *testing.T) {
	var d = block.NewDecoder(block.ImageMaxBytes)

	var got []block.Event
	var sig = d.Consume(firmwareBlock(9, 4, 1000, 0, 0xA5), handler.Collect(&got))

	assert.Equal(t, handler.Continue, sig)
	require.Equal(t, []block.Event{block.InvalidBlockIndex{Actual: 9, Max: 3}}, got)

	// Nothing was written: the decoder still has no accepted block.
	var final []block.Event
	assert.Nil(t, d.Image(handler.Collect(&final)))
	assert.Equal(t, []block.Event{block.MissingBlock{Index: 0}}, final)
}
