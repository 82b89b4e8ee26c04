package pcm

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"
)

func TestWriteWAV(t *testing.T) {
	pcm := Silence(1000)
	var buf bytes.Buffer

	if err := WriteWAV(&buf, 22050, pcm); err != nil {
		t.Fatalf("WriteWAV error: %v", err)
	}

	data := buf.Bytes()
	if len(data) != wavHeaderSize+len(pcm) {
		t.Fatalf("wrote %d bytes, want %d", len(data), wavHeaderSize+len(pcm))
	}

	checks := []struct {
		name   string
		offset int
		want   string
	}{
		{"RIFF tag", 0, "RIFF"},
		{"WAVE tag", 8, "WAVE"},
		{"fmt tag", 12, "fmt "},
		{"data tag", 36, "data"},
	}
	for _, c := range checks {
		if got := string(data[c.offset : c.offset+4]); got != c.want {
			t.Errorf("%s at %d: got %q, want %q", c.name, c.offset, got, c.want)
		}
	}

	le := binary.LittleEndian
	if got := le.Uint32(data[4:]); got != uint32(36+len(pcm)) {
		t.Errorf("chunk size = %d, want %d", got, 36+len(pcm))
	}
	if got := le.Uint16(data[20:]); got != 1 {
		t.Errorf("audio format = %d, want 1 (PCM)", got)
	}
	if got := le.Uint16(data[22:]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := le.Uint32(data[24:]); got != 22050 {
		t.Errorf("sample rate = %d, want 22050", got)
	}
	if got := le.Uint32(data[28:]); got != 44100 {
		t.Errorf("byte rate = %d, want 44100", got)
	}
	if got := le.Uint16(data[32:]); got != 2 {
		t.Errorf("block align = %d, want 2", got)
	}
	if got := le.Uint16(data[34:]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}
	if got := le.Uint32(data[40:]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", got, len(pcm))
	}
	if !bytes.Equal(data[wavHeaderSize:], pcm) {
		t.Error("payload does not match input PCM")
	}
}

func TestWriter_PatchesSizesOnClose(t *testing.T) {
	f, err := os.CreateTemp("", "pocsag_wav_*.wav")
	if err != nil {
		t.Fatalf("CreateTemp error: %v", err)
	}
	defer func() {
		if err := os.Remove(f.Name()); err != nil {
			t.Errorf("failed to remove %s: %v", f.Name(), err)
		}
	}()

	w, err := NewWriter(f, 44100)
	if err != nil {
		t.Fatalf("NewWriter error: %v", err)
	}

	chunk1 := Silence(300)
	chunk2 := Silence(200)
	for _, chunk := range [][]byte{chunk1, chunk2} {
		if _, err := w.Write(chunk); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file close error: %v", err)
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}

	wantData := len(chunk1) + len(chunk2)
	if len(data) != wavHeaderSize+wantData {
		t.Fatalf("file is %d bytes, want %d", len(data), wavHeaderSize+wantData)
	}
	le := binary.LittleEndian
	if got := le.Uint32(data[4:]); got != uint32(36+wantData) {
		t.Errorf("patched chunk size = %d, want %d", got, 36+wantData)
	}
	if got := le.Uint32(data[40:]); got != uint32(wantData) {
		t.Errorf("patched data size = %d, want %d", got, wantData)
	}
	if got := le.Uint32(data[24:]); got != 44100 {
		t.Errorf("sample rate = %d, want 44100", got)
	}
}
