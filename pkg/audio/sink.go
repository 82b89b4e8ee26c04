// Package audio provides the output sinks rendered PCM is written to:
// a raw stream (stdout, pipe, file), a WAV file, or the sound card.
package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/dbehnke/pocsag-nexus/pkg/pcm"
)

// Sink receives rendered 16-bit little-endian mono PCM.
type Sink interface {
	Write(pcm []byte) error
	Close() error
}

// StreamSink writes PCM to an io.Writer. Close is a no-op so process
// stdout survives the sink.
type StreamSink struct {
	w io.Writer
}

func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{w: w}
}

func (s *StreamSink) Write(buf []byte) error {
	_, err := s.w.Write(buf)
	return err
}

func (s *StreamSink) Close() error {
	return nil
}

// FileSink writes raw PCM to a file created at construction.
type FileSink struct {
	f *os.File
}

func NewFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Write(buf []byte) error {
	_, err := s.f.Write(buf)
	return err
}

func (s *FileSink) Close() error {
	return s.f.Close()
}

// WAVSink streams PCM into a WAV file; the container sizes are patched
// when the sink is closed.
type WAVSink struct {
	f *os.File
	w *pcm.Writer
}

func NewWAVSink(path string, sampleRate int) (*WAVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating WAV file: %w", err)
	}
	w, err := pcm.NewWriter(f, sampleRate)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("writing WAV header: %w", err)
	}
	return &WAVSink{f: f, w: w}, nil
}

func (s *WAVSink) Write(buf []byte) error {
	_, err := s.w.Write(buf)
	return err
}

func (s *WAVSink) Close() error {
	if err := s.w.Close(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}
