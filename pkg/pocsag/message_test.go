package pocsag

import (
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Message
		wantErr bool
	}{
		{
			name: "address and message",
			line: "1234567:HI",
			want: Message{Address: 1234567, Function: FuncAlpha, Text: "HI"},
		},
		{
			name: "address function message",
			line: "123:0:WAKE UP",
			want: Message{Address: 123, Function: FuncTone0, Text: "WAKE UP"},
		},
		{
			name: "message may contain colons",
			line: "123:3:meet at 12:30:45",
			want: Message{Address: 123, Function: FuncAlpha, Text: "meet at 12:30:45"},
		},
		{
			name: "trailing carriage return stripped",
			line: "42:hello\r",
			want: Message{Address: 42, Function: FuncAlpha, Text: "hello"},
		},
		{
			name: "empty message",
			line: "99:",
			want: Message{Address: 99, Function: FuncAlpha, Text: ""},
		},
		{
			name:    "no colon",
			line:    "1234567",
			wantErr: true,
		},
		{
			name:    "empty line",
			line:    "",
			wantErr: true,
		},
		{
			name:    "non-numeric address",
			line:    "abc:hello",
			wantErr: true,
		},
		{
			name:    "non-numeric function",
			line:    "123:x:hello",
			wantErr: true,
		},
		{
			name:    "negative address",
			line:    "-5:hello",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLine(%q) = %+v, want error", tt.line, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine(%q) error: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"max address", Message{Address: MaxAddress, Function: FuncAlpha}, false},
		{"address too large", Message{Address: MaxAddress + 1, Function: FuncAlpha}, true},
		{"function too large", Message{Address: 1, Function: 4}, true},
		{"zero values", Message{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessage_Encode(t *testing.T) {
	m := Message{Address: 1234567, Function: FuncAlpha, Text: "HI"}

	words := m.Encode()
	if len(words) != m.EncodedLength() {
		t.Errorf("Encode produced %d words, EncodedLength says %d", len(words), m.EncodedLength())
	}
	if words[33] != 0x4B5A1A25 {
		t.Errorf("address codeword = 0x%08X, want 0x4B5A1A25", words[33])
	}
}

func TestMessage_String(t *testing.T) {
	m := Message{Address: 7, Function: FuncTone1, Text: "abc"}
	s := m.String()
	for _, want := range []string{"addr=7", "func=1", "chars=3"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
