package sysex

// MIDI byte classes, per the closed set in spec.md §6.
const (
	DataMin    byte = 0x00 // data byte range, low
	DataMax    byte = 0x7F // data byte range, high
	StatusMin  byte = 0x80 // other status bytes, low (terminator inside SysEx)
	StatusMax  byte = 0xEF // other status bytes, high
	Start      byte = 0xF0 // SysEx start
	SysComMin  byte = 0xF1 // system-common status, low (terminator inside SysEx)
	SysComMax  byte = 0xF6 // system-common status, high
	End        byte = 0xF7 // SysEx end
	RealTimeMin byte = 0xF8 // system real-time, low (transparent)
	RealTimeMax byte = 0xFF // system real-time, high
)

func isData(b byte) bool {
	return b <= DataMax
}

func isRealTime(b byte) bool {
	return b >= RealTimeMin
}
