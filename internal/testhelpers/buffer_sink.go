package testhelpers

import (
	"sync"

	"github.com/dbehnke/pocsag-nexus/pkg/audio"
)

// BufferSink is an audio sink that records every write so tests can
// inspect the rendered output. Each Write is kept as its own chunk,
// which lets tests tell transmissions and silence gaps apart.
type BufferSink struct {
	mu     sync.Mutex
	chunks [][]byte
	closed bool
}

var _ audio.Sink = (*BufferSink)(nil)

// NewBufferSink creates an empty recording sink
func NewBufferSink() *BufferSink {
	return &BufferSink{}
}

// Write records a copy of buf as a new chunk
func (s *BufferSink) Write(buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk := make([]byte, len(buf))
	copy(chunk, buf)
	s.chunks = append(s.chunks, chunk)
	return nil
}

// Close marks the sink closed; recorded data stays readable
func (s *BufferSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called
func (s *BufferSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ChunkCount returns how many writes were recorded
func (s *BufferSink) ChunkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

// Chunks returns a snapshot of the recorded writes
func (s *BufferSink) Chunks() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = append([]byte(nil), c...)
	}
	return out
}

// Bytes returns all recorded audio concatenated in write order
func (s *BufferSink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int
	for _, c := range s.chunks {
		total += len(c)
	}
	out := make([]byte, 0, total)
	for _, c := range s.chunks {
		out = append(out, c...)
	}
	return out
}

// Len returns the total number of recorded bytes
func (s *BufferSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int
	for _, c := range s.chunks {
		total += len(c)
	}
	return total
}
