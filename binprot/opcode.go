package binprot

// Opcode identifies the operation carried by a request or response frame,
// per the memcached binary protocol.
type Opcode uint8

// Opcodes this package knows how to frame. Values match the protocol spec;
// gaps are opcodes this client has no operation for and are left undefined.
const (
	OpGet       Opcode = 0x00
	OpSet       Opcode = 0x01
	OpAdd       Opcode = 0x02
	OpReplace   Opcode = 0x03
	OpDelete    Opcode = 0x04
	OpIncrement Opcode = 0x05
	OpDecrement Opcode = 0x06
	OpQuit      Opcode = 0x07
	OpFlush     Opcode = 0x08
	OpStat      Opcode = 0x10
	OpQuitQ     Opcode = 0x17
)

func (op Opcode) String() string {
	switch op {
	case OpGet:
		return "Get"
	case OpSet:
		return "Set"
	case OpAdd:
		return "Add"
	case OpReplace:
		return "Replace"
	case OpDelete:
		return "Delete"
	case OpIncrement:
		return "Increment"
	case OpDecrement:
		return "Decrement"
	case OpQuit:
		return "Quit"
	case OpFlush:
		return "Flush"
	case OpStat:
		return "Stat"
	case OpQuitQ:
		return "QuitQ"
	default:
		return "Unknown"
	}
}
