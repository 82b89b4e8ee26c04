package pocsag

import "math/bits"

// CRC computes the 10 BCH(31,21) check bits for a 21-bit payload.
//
// The payload is shifted up by CRCBits and divided modulo 2 by the
// generator polynomial, MSB first; the 10-bit remainder is the check.
// Bits above the payload width are ignored by the division, so the
// function is total over uint32.
func CRC(payload uint32) uint32 {
	denominator := uint32(CRCGenerator) << 20
	msg := payload << CRCBits
	for column := 0; column <= 20; column++ {
		if msg>>(30-column)&1 != 0 {
			msg ^= denominator
		}
		denominator >>= 1
	}
	return msg & 0x3FF
}

// Parity returns the even-parity bit for x: 1 if the popcount is odd.
func Parity(x uint32) uint32 {
	return uint32(bits.OnesCount32(x)) & 1
}

// EncodeCodeword assembles a transmit-ready codeword from a 21-bit
// payload: payload in bits 31..11, check bits in 10..1, and a final
// parity bit making the whole word even.
func EncodeCodeword(payload uint32) uint32 {
	w := payload<<11 | CRC(payload)<<1
	return w | Parity(w)
}

// CodewordPayload extracts the 21-bit payload from a codeword.
func CodewordPayload(w uint32) uint32 {
	return w >> 11 & 0x1FFFFF
}

// IsMessageCodeword reports whether the codeword's flag bit marks it as
// message data rather than an address.
func IsMessageCodeword(w uint32) bool {
	return w>>31 == 1
}

// CheckCodeword reports whether the check bits and parity of w are
// consistent with its payload.
func CheckCodeword(w uint32) bool {
	return EncodeCodeword(CodewordPayload(w)) == w
}
