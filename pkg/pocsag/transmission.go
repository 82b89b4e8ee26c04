package pocsag

// AddressOffset returns the number of idle codewords that precede a
// pager's address codeword in its first batch. The low 3 bits of the
// address select the frame (0-7), and each frame holds FrameSize words.
func AddressOffset(address uint32) int {
	return int(address&7) * FrameSize
}

// EncodeTransmission builds the complete word stream for one page:
// preamble, sync, idles up to the pager's frame, the address codeword,
// the 7-bit text packed into message codewords (with a sync starting
// each new batch), a terminating idle, and idle padding out to a whole
// batch. No sync is inserted inside the trailing idle region.
//
// Any address and function fit on air after masking; callers that care
// about range enforce Message.Validate first.
func EncodeTransmission(address uint32, function FunctionCode, text string) []uint32 {
	words := make([]uint32, 0, MessageLength(address, len(text)))

	for i := 0; i < PreambleLength; i++ {
		words = append(words, PreambleWord)
	}
	words = append(words, SyncWord)

	offset := AddressOffset(address)
	for i := 0; i < offset; i++ {
		words = append(words, IdleWord)
	}

	// Address codeword: upper 18 address bits plus the function code in
	// the two low payload bits. The flag bit stays 0.
	words = append(words, EncodeCodeword(address>>3<<2|uint32(function)))

	words = appendText(words, text, offset+1)

	words = append(words, IdleWord)
	body := len(words) - PreambleLength
	for pad := BatchSize + 1 - body%(BatchSize+1); pad > 0; pad-- {
		words = append(words, IdleWord)
	}
	return words
}

// appendText packs the low 7 bits of each byte of text, LSB first, into
// 20-bit message payloads and appends the protected codewords. batchPos
// is the number of codewords already written in the current batch; each
// time it wraps past BatchSize a sync word starts the next batch. A
// trailing partial payload is zero-padded low before encoding.
func appendText(words []uint32, text string, batchPos int) []uint32 {
	var acc uint32
	accBits := 0

	flush := func() {
		words = append(words, EncodeCodeword(acc|MessageFlag))
		acc = 0
		accBits = 0
		batchPos++
		if batchPos == BatchSize {
			words = append(words, SyncWord)
			batchPos = 0
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		for bit := 0; bit < BitsPerChar; bit++ {
			acc = acc<<1 | uint32(c>>bit&1)
			accBits++
			if accBits == TextBitsPerWord {
				flush()
			}
		}
	}
	if accBits > 0 {
		acc <<= TextBitsPerWord - accBits
		flush()
	}
	return words
}

// MessageLength computes the exact word count EncodeTransmission will
// produce for a page without encoding it: frame idles plus address
// word, the message codewords, the terminating idle, batch padding,
// one sync per batch, and the preamble. Used for slice capacity and
// for sizing PCM output ahead of rendering.
func MessageLength(address uint32, charCount int) int {
	n := AddressOffset(address) + 1
	n += (charCount*BitsPerChar + TextBitsPerWord - 1) / TextBitsPerWord
	n++
	n += BatchSize - n%BatchSize
	n += n / BatchSize
	n += PreambleLength
	return n
}
