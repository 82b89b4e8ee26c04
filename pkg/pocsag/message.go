package pocsag

import (
	"fmt"
	"strconv"
	"strings"
)

// Message is one page request: which pager to alert, the function code,
// and the text body.
type Message struct {
	Address  uint32
	Function FunctionCode
	Text     string
}

// ParseLine parses one intake line. Two forms are accepted:
//
//	address:message
//	address:function:message
//
// Only the first two colons delimit fields, so the message in the
// three-field form may itself contain colons. A trailing carriage
// return is stripped for CRLF input. Address and function must be
// plain decimal; the function defaults to DefaultFunction.
//
// Range checks are separate: callers run Validate on the result.
func ParseLine(line string) (Message, error) {
	line = strings.TrimSuffix(line, "\r")

	parts := strings.SplitN(line, ":", 3)
	if len(parts) < 2 {
		return Message{}, fmt.Errorf("malformed line %q: want address:message or address:function:message", line)
	}

	addr, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Message{}, fmt.Errorf("invalid address %q: %w", parts[0], err)
	}

	msg := Message{Address: uint32(addr), Function: DefaultFunction}
	if len(parts) == 2 {
		msg.Text = parts[1]
		return msg, nil
	}

	fn, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Message{}, fmt.Errorf("invalid function %q: %w", parts[1], err)
	}
	msg.Function = FunctionCode(fn)
	msg.Text = parts[2]
	return msg, nil
}

// Validate checks the limits the encoder itself does not enforce: a
// 21-bit address and a function code of at most MaxFunction.
func (m Message) Validate() error {
	if m.Address > MaxAddress {
		return fmt.Errorf("address %d out of range (max %d)", m.Address, MaxAddress)
	}
	if m.Function > MaxFunction {
		return fmt.Errorf("function %d out of range (max %d)", m.Function, MaxFunction)
	}
	return nil
}

// Encode renders the message to its on-air word stream.
func (m Message) Encode() []uint32 {
	return EncodeTransmission(m.Address, m.Function, m.Text)
}

// EncodedLength is the word count Encode will produce.
func (m Message) EncodedLength() int {
	return MessageLength(m.Address, len(m.Text))
}

func (m Message) String() string {
	return fmt.Sprintf("page addr=%d func=%d chars=%d", m.Address, m.Function, len(m.Text))
}
