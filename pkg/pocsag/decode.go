package pocsag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSync is returned when a word stream contains no sync codeword.
var ErrNoSync = errors.New("no sync word in stream")

// DecodeTransmission recovers the pages from one encoded word stream.
// It is the encoder's inverse for clean input: preamble words are
// skipped, batch position tracks the frame index to restore the low 3
// address bits, and message payload bits are unpacked back into 7-bit
// characters. Trailing NUL characters produced by zero padding are
// stripped.
//
// This exists for tests and loopback checks. It performs no error
// correction: a codeword with a bad check or parity is an error.
func DecodeTransmission(words []uint32) ([]Message, error) {
	i := 0
	for i < len(words) && words[i] == PreambleWord {
		i++
	}
	if i == len(words) || words[i] != SyncWord {
		return nil, ErrNoSync
	}

	var (
		pages   []Message
		current *Message
		accBits []byte
		pos     int // codewords since the last sync
	)

	finish := func() {
		if current == nil {
			return
		}
		current.Text = charsFromBits(accBits)
		pages = append(pages, *current)
		current = nil
		accBits = accBits[:0]
	}

	for ; i < len(words); i++ {
		w := words[i]
		switch {
		case w == SyncWord:
			pos = 0
		case w == IdleWord:
			finish()
			pos++
		case pos >= BatchSize:
			// Only idle filler may run past a batch without a sync.
			return nil, fmt.Errorf("codeword %08X at word %d outside a synced batch", w, i)
		case !CheckCodeword(w):
			return nil, fmt.Errorf("check/parity mismatch in codeword %08X at word %d", w, i)
		case IsMessageCodeword(w):
			if current == nil {
				return nil, fmt.Errorf("message codeword at word %d before any address", i)
			}
			payload := CodewordPayload(w)
			for bit := TextBitsPerWord - 1; bit >= 0; bit-- {
				accBits = append(accBits, byte(payload>>bit&1))
			}
			pos++
		default:
			finish()
			payload := CodewordPayload(w)
			current = &Message{
				Address:  payload>>2<<3 | uint32(pos/FrameSize),
				Function: FunctionCode(payload & 3),
			}
			pos++
		}
	}
	finish()
	return pages, nil
}

// charsFromBits reassembles 7-bit LSB-first characters from the message
// bit stream, dropping leftover padding bits and trailing NULs.
func charsFromBits(bits []byte) string {
	var sb strings.Builder
	for off := 0; off+BitsPerChar <= len(bits); off += BitsPerChar {
		var c byte
		for j := 0; j < BitsPerChar; j++ {
			c |= bits[off+j] << j
		}
		sb.WriteByte(c)
	}
	return strings.TrimRight(sb.String(), "\x00")
}
