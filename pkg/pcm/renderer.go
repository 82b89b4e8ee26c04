// Package pcm renders encoded POCSAG word streams as the 2FSK-keyed
// 16-bit little-endian PCM a transmitter's audio input expects.
package pcm

import (
	"encoding/binary"
	"time"
)

const (
	// SymbolRate is the intermediate rendering rate. It is divisible by
	// every supported baud rate, so bit expansion is exact and only the
	// final resample truncates.
	SymbolRate = 38400

	DefaultSampleRate = 22050
	DefaultBaudRate   = 512

	// Amplitude is half of full-scale int16.
	Amplitude = 32767 / 2
)

// SupportedBaudRates lists the baud rates SymbolRate divides evenly.
var SupportedBaudRates = []int{512, 1200, 2400}

// TransmissionLength returns the PCM byte count for wordCount encoded
// words. Evaluation order matters: the division by baudRate truncates
// before the int16 doubling, matching the rendered output exactly.
func TransmissionLength(sampleRate, baudRate, wordCount int) int {
	return wordCount * 32 * sampleRate / baudRate * 2
}

// Renderer converts word streams to PCM. The zero value renders at
// DefaultSampleRate / DefaultBaudRate with normal polarity.
type Renderer struct {
	SampleRate int
	BaudRate   int
	Inverted   bool // swap the FSK polarity for inverting amplifiers
}

// EffectiveSampleRate returns the sample rate Render uses, resolving
// the zero value to DefaultSampleRate.
func (r Renderer) EffectiveSampleRate() int {
	if r.SampleRate == 0 {
		return DefaultSampleRate
	}
	return r.SampleRate
}

// EffectiveBaudRate returns the baud rate Render uses, resolving the
// zero value to DefaultBaudRate.
func (r Renderer) EffectiveBaudRate() int {
	if r.BaudRate == 0 {
		return DefaultBaudRate
	}
	return r.BaudRate
}

// Length returns the byte count Render will produce for wordCount words.
func (r Renderer) Length(wordCount int) int {
	return TransmissionLength(r.EffectiveSampleRate(), r.EffectiveBaudRate(), wordCount)
}

// Duration returns the on-air time of wordCount words at the renderer's
// baud rate.
func (r Renderer) Duration(wordCount int) time.Duration {
	return time.Duration(wordCount) * 32 * time.Second / time.Duration(r.EffectiveBaudRate())
}

// Render produces the transmission waveform in two stages: expand each
// bit, MSB first, to SymbolRate/baud flat samples (+Amplitude for 0,
// -Amplitude for 1, swapped when Inverted), then resample to the output
// rate by nearest neighbor. Output sample j reads intermediate sample
// j*SymbolRate/sampleRate with integer truncation; that mapping is the
// waveform contract and is pinned by tests.
func (r Renderer) Render(words []uint32) []byte {
	sampleRate, baudRate := r.EffectiveSampleRate(), r.EffectiveBaudRate()
	repeats := SymbolRate / baudRate

	high, low := int16(Amplitude), int16(-Amplitude)
	if r.Inverted {
		high, low = low, high
	}

	intermediate := make([]int16, 0, len(words)*32*repeats)
	for _, w := range words {
		for bit := 31; bit >= 0; bit-- {
			sample := high
			if w>>bit&1 == 1 {
				sample = low
			}
			for i := 0; i < repeats; i++ {
				intermediate = append(intermediate, sample)
			}
		}
	}

	out := make([]byte, TransmissionLength(sampleRate, baudRate, len(words)))
	for j := 0; j < len(out)/2; j++ {
		sample := intermediate[j*SymbolRate/sampleRate]
		binary.LittleEndian.PutUint16(out[2*j:], uint16(sample))
	}
	return out
}

// Silence returns sampleCount zero samples (2 bytes each).
func Silence(sampleCount int) []byte {
	return make([]byte, 2*sampleCount)
}
