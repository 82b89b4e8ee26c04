// Package pocsag implements the POCSAG paging protocol encoder: 32-bit
// codewords protected by a BCH(31,21) check and even parity, assembled
// into the preamble/batch structure a pager expects on air.
package pocsag

// Frame words (32 bits, transmitted MSB first)
const (
	SyncWord       = 0x7CD215D8 // frame synchronization codeword, starts every batch
	IdleWord       = 0x7A89C197 // idle codeword, fills unused frame slots
	PreambleWord   = 0xAAAAAAAA // alternating 1/0 bit pattern for receiver lock
	PreambleLength = 18         // preamble words (576 bits)
)

// Batch geometry
const (
	BatchSize = 16 // codewords per batch (after the sync word)
	FrameSize = 2  // codewords per frame; low 3 address bits select the frame
)

// Codeword layout: 1 flag bit + 20 payload bits + 10 check bits + 1 parity bit
const (
	CRCBits      = 10
	CRCGenerator = 0x769 // x^10 + x^9 + x^8 + x^6 + x^5 + x^3 + 1 (0b11101101001)
	PayloadBits  = 21    // flag bit + 20 data bits

	TextBitsPerWord = 20       // payload data bits per message codeword
	BitsPerChar     = 7        // ASCII bits per character, packed LSB first
	MessageFlag     = 0x100000 // bit 20 set marks a message codeword
)

// Address limits
const (
	MaxAddress = 0x1FFFFF // 21-bit RIC: 18 payload bits + 3 frame-select bits
)

// FunctionCode selects one of the four pager functions carried in the
// two low bits of the address codeword payload. Functions 0-2 usually
// trigger tone-only alerts; 3 is alphanumeric. The message body is
// encoded as 7-bit text regardless.
type FunctionCode uint32

const (
	FuncTone0 FunctionCode = 0
	FuncTone1 FunctionCode = 1
	FuncTone2 FunctionCode = 2
	FuncAlpha FunctionCode = 3

	MaxFunction     = FuncAlpha
	DefaultFunction = FuncAlpha
)
