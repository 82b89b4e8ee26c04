package pcm

import (
	"encoding/binary"
	"io"
)

// WAV header for 16-bit mono PCM, written little-endian in one piece.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // 36 + data size
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 = uncompressed PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

const (
	wavHeaderSize    = 44
	wavBitsPerSample = 16
	wavChannels      = 1
)

func newWAVHeader(sampleRate int, dataSize uint32) wavHeader {
	return wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   wavChannels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * wavChannels * wavBitsPerSample / 8),
		BlockAlign:    wavChannels * wavBitsPerSample / 8,
		BitsPerSample: wavBitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}
}

// WriteWAV writes pcm as a complete mono 16-bit WAV file.
func WriteWAV(w io.Writer, sampleRate int, pcm []byte) error {
	hdr := newWAVHeader(sampleRate, uint32(len(pcm)))
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	_, err := w.Write(pcm)
	return err
}

// Writer streams PCM into a WAV container. The header is written with a
// zero data size up front; Close seeks back and patches the RIFF and
// data chunk sizes, so the target must support seeking (a file does).
type Writer struct {
	ws      io.WriteSeeker
	written uint32
}

// NewWriter writes the provisional header and returns a streaming WAV
// writer for 16-bit mono PCM at sampleRate.
func NewWriter(ws io.WriteSeeker, sampleRate int) (*Writer, error) {
	hdr := newWAVHeader(sampleRate, 0)
	if err := binary.Write(ws, binary.LittleEndian, hdr); err != nil {
		return nil, err
	}
	return &Writer{ws: ws}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.ws.Write(p)
	w.written += uint32(n)
	return n, err
}

// Close patches the chunk sizes to match the bytes written and leaves
// the offset at the end of the file. It does not close the underlying
// writer.
func (w *Writer) Close() error {
	if _, err := w.ws.Seek(4, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Write(w.ws, binary.LittleEndian, 36+w.written); err != nil {
		return err
	}
	if _, err := w.ws.Seek(40, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Write(w.ws, binary.LittleEndian, w.written); err != nil {
		return err
	}
	_, err := w.ws.Seek(0, io.SeekEnd)
	return err
}
