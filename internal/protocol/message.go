package protocol

import "fmt"

const (
	delimiter  = ':'
	terminator = '\n'
)

// Message is one decoded frame from the device: a bare opcode, or an opcode
// with a payload when HasData is set.
type Message struct {
	Opcode  Opcode
	HasData bool
	Data    string
}

func (m Message) String() string {
	if m.HasData {
		return fmt.Sprintf("%s:%s", m.Opcode, m.Data)
	}
	return m.Opcode.String()
}

// Command is one outbound frame to the device, mirroring Message.
type Command struct {
	Opcode  Opcode
	HasData bool
	Data    string
}

// SimpleCommand builds a single-byte command frame.
func SimpleCommand(op Opcode) Command {
	return Command{Opcode: op}
}

// DataCommand builds an opcode:payload\n command frame.
func DataCommand(op Opcode, data string) Command {
	return Command{Opcode: op, HasData: true, Data: data}
}

// SetLEDCommand builds the LED command for the given color.
func SetLEDCommand(c Color) Command {
	return DataCommand(CmdSetLEDRGB, c.RGB())
}

// Encode renders the command in wire format: a single opcode byte, or
// opcode ':' payload '\n'.
func (c Command) Encode() []byte {
	if !c.HasData {
		return []byte{byte(c.Opcode)}
	}
	out := make([]byte, 0, len(c.Data)+3)
	out = append(out, byte(c.Opcode), delimiter)
	out = append(out, c.Data...)
	out = append(out, terminator)
	return out
}

func (c Command) String() string {
	if c.HasData {
		return fmt.Sprintf("%s:%s", c.Opcode, c.Data)
	}
	return c.Opcode.String()
}
