package pocsag

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestAddressOffset(t *testing.T) {
	tests := []struct {
		address uint32
		want    int
	}{
		{0, 0},
		{1, 2},
		{7, 14},
		{8, 0},
		{9, 2},
		{1234567, 14},
		{MaxAddress, 14},
	}

	for _, tt := range tests {
		if got := AddressOffset(tt.address); got != tt.want {
			t.Errorf("AddressOffset(%d) = %d, want %d", tt.address, got, tt.want)
		}
	}
}

// TestEncodeTransmission_Layout pins the exact word stream for address
// 1234567, function 3, text "HI": 18 preamble words, then two batches.
// The low address bits (7) put the address codeword in the last frame,
// so the first batch is sync + 14 idles + address + one message word;
// the second opens with a sync and is all idle filler.
func TestEncodeTransmission_Layout(t *testing.T) {
	words := EncodeTransmission(1234567, FuncAlpha, "HI")

	if len(words) != 52 {
		t.Fatalf("Expected 52 words, got %d", len(words))
	}
	for i := 0; i < 18; i++ {
		if words[i] != PreambleWord {
			t.Fatalf("word %d: expected preamble 0x%08X, got 0x%08X", i, uint32(PreambleWord), words[i])
		}
	}
	if words[18] != SyncWord {
		t.Errorf("word 18: expected sync, got 0x%08X", words[18])
	}
	for i := 19; i < 33; i++ {
		if words[i] != IdleWord {
			t.Errorf("word %d: expected idle, got 0x%08X", i, words[i])
		}
	}
	if words[33] != 0x4B5A1A25 {
		t.Errorf("word 33: expected address codeword 0x4B5A1A25, got 0x%08X", words[33])
	}
	if words[34] != 0x899200DB {
		t.Errorf("word 34: expected message codeword 0x899200DB, got 0x%08X", words[34])
	}
	if words[35] != SyncWord {
		t.Errorf("word 35: expected second batch sync, got 0x%08X", words[35])
	}
	for i := 36; i < 52; i++ {
		if words[i] != IdleWord {
			t.Errorf("word %d: expected trailing idle, got 0x%08X", i, words[i])
		}
	}
}

func TestEncodeTransmission_AddressCodeword(t *testing.T) {
	tests := []struct {
		name     string
		address  uint32
		function FunctionCode
	}{
		{"frame 0 alpha", 40, FuncAlpha},
		{"frame 3 tone", 1030, FuncTone1},
		{"max address", MaxAddress, FuncAlpha},
		{"address zero func zero", 0, FuncTone0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := EncodeTransmission(tt.address, tt.function, "X")

			pos := 18 + 1 + AddressOffset(tt.address)
			w := words[pos]
			if IsMessageCodeword(w) {
				t.Fatalf("address codeword at %d has message flag set", pos)
			}
			if !CheckCodeword(w) {
				t.Fatalf("address codeword 0x%08X fails check", w)
			}
			payload := CodewordPayload(w)
			if got := payload >> 2; got != tt.address>>3 {
				t.Errorf("payload address bits = 0x%X, want 0x%X", got, tt.address>>3)
			}
			if got := FunctionCode(payload & 3); got != tt.function {
				t.Errorf("payload function = %d, want %d", got, tt.function)
			}
		})
	}
}

// Sync placement: the first sync follows the preamble, then one every
// 17 words until the stream ends in idle filler.
func TestEncodeTransmission_SyncPlacement(t *testing.T) {
	words := EncodeTransmission(42, FuncAlpha, strings.Repeat("PAGING TEST ", 12))

	body := words[18:]
	if len(body)%17 != 0 {
		t.Fatalf("body length %d not a multiple of 17", len(body))
	}
	for i := 0; i < len(body); i += 17 {
		if body[i] == SyncWord {
			continue
		}
		// Past the last sync only idle words may remain.
		for j := i; j < len(body); j++ {
			if body[j] != IdleWord {
				t.Fatalf("word %d after missing sync at %d is 0x%08X, not idle", j, i, body[j])
			}
		}
		break
	}
	if body[0] != SyncWord {
		t.Fatalf("body does not open with sync")
	}
}

func TestEncodeTransmission_TrailingIdle(t *testing.T) {
	for _, text := range []string{"", "A", strings.Repeat("B", 57)} {
		words := EncodeTransmission(3, FuncAlpha, text)
		if last := words[len(words)-1]; last != IdleWord {
			t.Errorf("text %q: last word 0x%08X, want idle", text, last)
		}
	}
}

func TestMessageLength(t *testing.T) {
	tests := []struct {
		name      string
		address   uint32
		charCount int
		want      int
	}{
		{"empty text frame 0", 0, 0, 35},
		{"scenario 1234567 HI", 1234567, 2, 52},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MessageLength(tt.address, tt.charCount); got != tt.want {
				t.Errorf("MessageLength(%d, %d) = %d, want %d", tt.address, tt.charCount, got, tt.want)
			}
		})
	}
}

// The analytic length and the encoder must agree for every input; the
// boundary counts (19/20/21 chars around a full payload word, 140 for
// a long page) and a full sweep per frame offset cover the padding
// corner cases (17 trailing idles, 16 batch-pad idles).
func TestMessageLength_MatchesEncoder(t *testing.T) {
	addresses := []uint32{0, 1, 7, 8, 1234567, MaxAddress}
	lengths := []int{0, 1, 19, 20, 21, 140}

	for _, addr := range addresses {
		for _, n := range lengths {
			text := strings.Repeat("M", n)
			got := len(EncodeTransmission(addr, FuncAlpha, text))
			want := MessageLength(addr, n)
			if got != want {
				t.Errorf("addr %d, %d chars: encoder produced %d words, analytic %d", addr, n, got, want)
			}
		}
	}

	for addr := uint32(0); addr < 8; addr++ {
		for n := 0; n <= 60; n++ {
			text := strings.Repeat("x", n)
			got := len(EncodeTransmission(addr, FuncAlpha, text))
			want := MessageLength(addr, n)
			if got != want {
				t.Fatalf("addr %d, %d chars: encoder produced %d words, analytic %d", addr, n, got, want)
			}
		}
	}
}

func TestMessageLength_MatchesEncoder_Random(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		addr := rapid.Uint32Range(0, MaxAddress).Draw(t, "addr")
		text := rapid.StringMatching(`[ -~]{0,300}`).Draw(t, "text")

		got := len(EncodeTransmission(addr, FuncAlpha, text))
		want := MessageLength(addr, len(text))
		if got != want {
			t.Fatalf("addr %d, %d chars: encoder produced %d words, analytic %d", addr, len(text), got, want)
		}
	})
}
