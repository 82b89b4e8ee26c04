package testhelpers

import (
	"encoding/binary"

	"github.com/dbehnke/pocsag-nexus/pkg/pcm"
)

// DemodulatePCM recovers codewords from rendered audio by inverting
// the renderer's sample mapping: output sample j carries the bit at
// intermediate index j*SymbolRate/sampleRate. Assumes normal polarity
// (negative samples are 1 bits). Trailing bits that do not fill a
// whole 32-bit word are dropped.
func DemodulatePCM(data []byte, sampleRate, baudRate int) []uint32 {
	if sampleRate == 0 {
		sampleRate = pcm.DefaultSampleRate
	}
	if baudRate == 0 {
		baudRate = pcm.DefaultBaudRate
	}
	repeats := pcm.SymbolRate / baudRate

	sampleCount := len(data) / 2
	if sampleCount == 0 {
		return nil
	}

	bitCount := (sampleCount-1)*pcm.SymbolRate/sampleRate/repeats + 1
	bits := make([]bool, bitCount)
	seen := make([]bool, bitCount)

	for j := 0; j < sampleCount; j++ {
		sample := int16(binary.LittleEndian.Uint16(data[2*j:]))
		bitIdx := j * pcm.SymbolRate / sampleRate / repeats
		if !seen[bitIdx] {
			seen[bitIdx] = true
			bits[bitIdx] = sample < 0
		}
	}

	words := make([]uint32, 0, bitCount/32)
	for i := 0; i+32 <= bitCount; i += 32 {
		var w uint32
		for b := 0; b < 32; b++ {
			w <<= 1
			if bits[i+b] {
				w |= 1
			}
		}
		words = append(words, w)
	}
	return words
}
