package sysex

import (
	"bufio"
	"io"

	"github.com/a6tools/a6fw/handler"
)

type state int

const (
	outside state = iota
	inside
)

// Detector is a streaming state machine that finds SysEx messages in an
// arbitrary byte stream. It tolerates interleaved System Real-Time bytes
// and reports malformed or out-of-frame regions without losing sync. The
// zero value is not usable; construct with New.
//
// A Detector is driven once, over one input, by Scan; its internal state
// (buffer, offsets, sub-state) persists for the life of that one scan.
type Detector struct {
	capacity int
}

// New constructs a Detector that discards (and reports as Overflow) any
// message payload longer than capacity septets.
func New(capacity int) *Detector {
	if capacity < 0 {
		panic("sysex: negative capacity")
	}
	return &Detector{capacity: capacity}
}

// Scan reads r to completion (or until h requests Stop), invoking h once
// per Event in strict input-offset order. It returns the number of bytes
// consumed and whether the scan ran to completion; a false completed
// means h returned Stop. Any I/O error other than io.EOF aborts the scan
// and is returned; io.EOF is a normal end of input, not an error.
func (d *Detector) Scan(r *bufio.Reader, h handler.Handler[Event]) (completed bool, consumed int, err error) {
	var st = outside

	var pos int

	var skipStart, skipLen int
	var msgStart int
	var payload []byte
	var dataCount int

	emitSkipIfAny := func() handler.Signal {
		if skipLen == 0 {
			return handler.Continue
		}
		var sig = h.On(SkipNotSysEx{Offset: skipStart, Len: skipLen})
		skipLen = 0
		return sig
	}

	beginMessage := func(startOffset int) {
		msgStart = startOffset
		payload = payload[:0]
		dataCount = 0
	}

	for {
		b, readErr := r.ReadByte()
		if readErr != nil {
			if readErr == io.EOF {
				if st == outside {
					if sig := emitSkipIfAny(); sig == handler.Stop {
						return false, pos, nil
					}
					return true, pos, nil
				}

				// Inside: message still open at EOF.
				if h.On(UnexpectedEof{Offset: msgStart, Len: pos - msgStart}) == handler.Stop {
					return false, pos, nil
				}
				return true, pos, nil
			}

			// Go's own I/O stack already retries interrupted reads
			// internally; anything else reaching here is a real,
			// non-transient failure.
			return false, pos, readErr
		}

		var idx = pos
		pos++

		switch st {
		case outside:
			if b == Start {
				if sig := emitSkipIfAny(); sig == handler.Stop {
					// The F0 belongs to the next message, not the
					// reported skip: leave it unread.
					r.UnreadByte()
					return false, idx, nil
				}
				beginMessage(idx)
				st = inside
				continue
			}

			if skipLen == 0 {
				skipStart = idx
			}
			skipLen++

		case inside:
			switch {
			case isRealTime(b):
				// Transparent: passed through without disturbing state.

			case isData(b):
				if len(payload) < d.capacity {
					payload = append(payload, b)
				}
				dataCount++

			case b == End:
				var sig handler.Signal
				if dataCount > d.capacity {
					sig = h.On(Overflow{Offset: msgStart, Len: idx + 1 - msgStart})
				} else {
					sig = h.On(Message{Offset: msgStart, Payload: payload})
				}
				st = outside
				if sig == handler.Stop {
					return false, pos, nil
				}

			case b == Start:
				if h.On(UnexpectedByte{Offset: msgStart, Len: idx + 1 - msgStart}) == handler.Stop {
					return false, pos, nil
				}
				beginMessage(idx)
				// Stays Inside.

			default: // 0x80..0xEF, 0xF1..0xF6
				if h.On(UnexpectedByte{Offset: msgStart, Len: idx + 1 - msgStart}) == handler.Stop {
					return false, pos, nil
				}
				st = outside
			}
		}
	}
}
