package sysex

// Opcode identifies the operation requested by a SysEx message whose
// payload begins with the recognized manufacturer ID.
type Opcode byte

const (
	// OpOSUpdate requests an operating-system firmware update.
	OpOSUpdate Opcode = 0x30
	// OpBootUpdate requests a bootloader update.
	OpBootUpdate Opcode = 0x3F
	// OpUnknown is any opcode this pipeline doesn't consume. The
	// patch/mix/global/edit dispatch table (0x00..0x0E) lives in the
	// synthesizer firmware, not here.
	OpUnknown Opcode = 0xFF
)

// ManufacturerID is the 4-byte device prefix every recognized payload
// starts with.
var ManufacturerID = [4]byte{0x00, 0x00, 0x0E, 0x1D}

const opcodeOffset = len(ManufacturerID)

// Filter keeps only messages addressed to a configured manufacturer ID and
// carrying one of a configured set of recognized opcodes.
type Filter struct {
	manufacturerID [4]byte
	recognized     map[Opcode]bool
}

// NewFilter constructs a Filter for the given manufacturer ID and set of
// recognized opcodes.
func NewFilter(manufacturerID [4]byte, recognized ...Opcode) *Filter {
	var m = make(map[Opcode]bool, len(recognized))
	for _, op := range recognized {
		m[op] = true
	}
	return &Filter{manufacturerID: manufacturerID, recognized: m}
}

// Classify inspects a message payload and reports its opcode, or
// OpUnknown if the payload is too short, doesn't carry f's manufacturer
// ID, or names an opcode f wasn't configured to recognize.
func (f *Filter) Classify(payload []byte) Opcode {
	if len(payload) <= opcodeOffset {
		return OpUnknown
	}
	if [4]byte(payload[:opcodeOffset]) != f.manufacturerID {
		return OpUnknown
	}

	var op = Opcode(payload[opcodeOffset])
	if f.recognized[op] {
		return op
	}
	return OpUnknown
}

// Body returns the payload bytes following the manufacturer ID and
// opcode — the 7-bit-encoded block data. It assumes Classify already
// returned something other than OpUnknown for this payload.
func Body(payload []byte) []byte {
	return payload[opcodeOffset+1:]
}
