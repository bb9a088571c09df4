// Package capture wires the sysex detector, opcode filter, 7-bit codec, and
// block decoder into the single pipeline described by the firmware-image
// extraction tool: raw bytes in, a reassembled image and an event log out.
package capture

import (
	"bufio"
	"io"

	"github.com/a6tools/a6fw/block"
	"github.com/a6tools/a6fw/codec7"
	"github.com/a6tools/a6fw/handler"
	"github.com/a6tools/a6fw/sysex"
)

// Options configures one Run.
type Options struct {
	ManufacturerID  [4]byte
	Opcodes         []sysex.Opcode
	DetectorCap     int    // payload capacity, in septets, passed to sysex.New
	DecoderCapacity uint32 // max accepted image size, passed to block.NewDecoder
}

// LogEntry is one event from either taxonomy, tagged with the byte offset
// of the SysEx message it came from. Events from the final image check
// belong to no message and carry the total number of bytes consumed.
type LogEntry struct {
	Offset int
	Sysex  sysex.Event // set for detector-level events
	Block  block.Event // set for block-decoder-level events
}

// Result is everything one Run produced.
type Result struct {
	Image    []byte
	Consumed int
	Events   []LogEntry
}

// Run scans r for recognized SysEx messages, decodes and reassembles any
// firmware blocks they carry, and returns the result. It never aborts on
// its own initiative — every structured event is only logged, never acted
// on — so the only error it can return is a genuine I/O failure from r.
func Run(r io.Reader, opts Options) (Result, error) {
	var filter = sysex.NewFilter(opts.ManufacturerID, opts.Opcodes...)
	var detector = sysex.New(opts.DetectorCap)
	var decoder = block.NewDecoder(opts.DecoderCapacity)

	var result Result

	var onSysex = handler.Func[sysex.Event](func(e sysex.Event) handler.Signal {
		msg, ok := e.(sysex.Message)
		if !ok {
			result.Events = append(result.Events, LogEntry{Offset: sysexOffset(e), Sysex: e})
			return handler.Continue
		}

		result.Events = append(result.Events, LogEntry{Offset: msg.Offset, Sysex: msg})

		if filter.Classify(msg.Payload) == sysex.OpUnknown {
			return handler.Continue
		}

		var onBlock = handler.Func[block.Event](func(be block.Event) handler.Signal {
			result.Events = append(result.Events, LogEntry{Offset: msg.Offset, Block: be})
			return handler.Continue
		})

		var octets = codec7.Decode(sysex.Body(msg.Payload))

		var blk, outcome = block.FromBytes(octets, onBlock)
		if outcome != block.Decoded {
			return handler.Continue
		}

		return decoder.Consume(blk, onBlock)
	})

	var _, consumed, err = detector.Scan(bufio.NewReader(r), onSysex)
	result.Consumed = consumed
	if err != nil {
		return result, err
	}

	var onFinal = handler.Func[block.Event](func(be block.Event) handler.Signal {
		result.Events = append(result.Events, LogEntry{Offset: consumed, Block: be})
		return handler.Continue
	})
	result.Image = decoder.Image(onFinal)

	return result, nil
}

func sysexOffset(e sysex.Event) int {
	switch ev := e.(type) {
	case sysex.Message:
		return ev.Offset
	case sysex.SkipNotSysEx:
		return ev.Offset
	case sysex.Overflow:
		return ev.Offset
	case sysex.UnexpectedByte:
		return ev.Offset
	case sysex.UnexpectedEof:
		return ev.Offset
	default:
		return -1
	}
}
