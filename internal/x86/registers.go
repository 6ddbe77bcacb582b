package x86

// General-purpose register names, indexable by the 4-bit REX-extended
// selector (0..15).
var (
	registers8 = [16]string{
		"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh",
		"r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b",
	}
	registers16 = [16]string{
		"ax", "cx", "dx", "bx", "sp", "bp", "si", "di",
		"r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w",
	}
	registers32 = [16]string{
		"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
		"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d",
	}
	registers64 = [16]string{
		"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
	}
)

// registerName selects a register by width and extended index. Memory
// operands always name their base and index registers from the 64-bit table.
func registerName(width int, idx byte) string {
	switch width {
	case 8:
		return registers8[idx&0xf]
	case 16:
		return registers16[idx&0xf]
	case 64:
		return registers64[idx&0xf]
	default:
		return registers32[idx&0xf]
	}
}
