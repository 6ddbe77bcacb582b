package x86

import "testing"

func TestTablesValidate(t *testing.T) {
	if err := validateTables(); err != nil {
		t.Fatalf("table validation: %v", err)
	}
}

func TestModRMPresenceByEncoding(t *testing.T) {
	want := map[OpEnc]bool{
		EncI: false, EncD: false, EncM: true, EncO: false, EncNP: false,
		EncMI: true, EncM1: true, EncMR: true, EncRM: true, EncRMI: true,
		EncOI: false,
	}
	for enc, w := range want {
		if got := hasModRM(enc); got != w {
			t.Errorf("hasModRM(%s) = %v, want %v", enc, got, w)
		}
	}
}

func TestEveryTemplateReachable(t *testing.T) {
	// every operand template must be reachable from some opcode row
	reachable := map[operandKey]bool{}
	for k, row := range opLookup {
		for _, mn := range row {
			reachable[operandKey{k.prefix, mn, k.opcode}] = true
		}
	}
	for k := range operandLookup {
		if !reachable[k] {
			t.Errorf("template (%s, %s, %#02x) unreachable from any opcode row", k.prefix, k.mnemonic, k.opcode)
		}
	}
}

func TestEmbeddedRegisterRuns(t *testing.T) {
	tests := []struct {
		input string
		text  string
	}{
		{"50", "PUSH  eax"},
		{"55", "PUSH  ebp"},
		{"58", "POP  eax"},
		{"5f", "POP  edi"},
		{"48 50", "PUSH  rax"},
		{"48 5d", "POP  rbp"},
		{"91", "XCHG  eax ecx"},
		{"48 97", "XCHG  rax rdi"},
		{"b3 7f", "MOV  bl 0x7f"},
		{"bf 44 33 22 11", "MOV  edi 0x11223344"},
		{"66 bb 22 11", "MOV  bx 0x1122"},
		{"48 b9 88 77 66 55 44 33 22 11", "MOV  rcx 0x1122334455667788"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			inst, err := Decode(mustBytes(t, tt.input), 0)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if inst.Text != tt.text {
				t.Errorf("text = %q, want %q", inst.Text, tt.text)
			}
		})
	}
}

func TestSixteenBitAndStringForms(t *testing.T) {
	tests := []struct {
		input string
		text  string
	}{
		{"66 01 c1", "ADD  cx ax"},
		{"66 98", "CBW"},
		{"98", "CWDE"},
		{"66 99", "CWD"},
		{"99", "CDQ"},
		{"a5", "MOVSD"},
		{"66 a5", "MOVSW"},
		{"ab", "STOSD"},
		{"66 ab", "STOSW"},
		{"66 af", "SCASW"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			inst, err := Decode(mustBytes(t, tt.input), 0)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if inst.Text != tt.text {
				t.Errorf("text = %q, want %q", inst.Text, tt.text)
			}
		})
	}
}

func TestShiftAndUnaryGroups(t *testing.T) {
	tests := []struct {
		input string
		text  string
	}{
		{"c1 e0 04", "SHL  eax 0x04"},
		{"c1 f8 02", "SAR  eax 0x02"},
		{"d1 e0", "SHL  eax one"},
		{"f7 d8", "NEG  eax"},
		{"f7 d0", "NOT  eax"},
		{"f7 e1", "MUL  ecx"},
		{"f7 f9", "IDIV  ecx"},
		{"f7 c0 01 00 00 00", "TEST  eax 0x00000001"},
		{"ff c0", "INC  eax"},
		{"ff c9", "DEC  ecx"},
		{"ff d0", "CALL  eax"},
		{"ff e0", "JMP  eax"},
		{"ff 30", "PUSH  [rax]"},
		{"8f 00", "POP  [rax]"},
		{"48 f7 d8", "NEG  rax"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			inst, err := Decode(mustBytes(t, tt.input), 0)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if inst.Text != tt.text {
				t.Errorf("text = %q, want %q", inst.Text, tt.text)
			}
		})
	}
}

func TestTwoByteOpcodes(t *testing.T) {
	tests := []struct {
		input string
		len   int
		text  string
	}{
		{"0f a2", 2, "CPUID"},
		{"0f 0b", 2, "UD2"},
		{"0f af c1", 3, "IMUL  eax ecx"},
		{"48 0f af c1", 4, "IMUL  rax rcx"},
		{"0f 1f 00", 3, "NOP  [rax]"},
		{"0f 84 10 00 00 00", 6, "JZ  0x00000010"},
		{"0f 85 f0 ff ff ff", 6, "JNZ  0xfffffff0"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			inst, err := Decode(mustBytes(t, tt.input), 0)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if inst.Len != tt.len || inst.Text != tt.text {
				t.Errorf("got (%d, %q), want (%d, %q)", inst.Len, inst.Text, tt.len, tt.text)
			}
		})
	}
}

func TestMoffForms(t *testing.T) {
	tests := []struct {
		input string
		len   int
		text  string
	}{
		{"a1 44 33 22 11", 5, "MOV  eax 0x11223344"},
		{"a3 44 33 22 11", 5, "MOV  0x11223344 eax"},
		{"48 a1 88 77 66 55 44 33 22 11", 10, "MOV  rax 0x1122334455667788"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			inst, err := Decode(mustBytes(t, tt.input), 0)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if inst.Len != tt.len || inst.Text != tt.text {
				t.Errorf("got (%d, %q), want (%d, %q)", inst.Len, inst.Text, tt.len, tt.text)
			}
		})
	}
}
