package usse

import "testing"

func TestOperandString_SwizzleSuffix(t *testing.T) {
	tests := []struct {
		name string
		op   Operand
		mask uint8
		want string
	}{
		{
			name: "full mask identity renders bare",
			op:   Operand{Num: 3, Bank: BankTemp, Swizzle: SwizzleIdentity},
			mask: 0xF,
			want: "r3",
		},
		{
			name: "broadcast renders every masked channel",
			op:   Operand{Num: 3, Bank: BankTemp, Swizzle: Swizzle{ChanY, ChanY, ChanY, ChanY}},
			mask: 0xF,
			want: "r3.yyyy",
		},
		{
			name: "identity prefix under partial mask renders bare",
			op:   Operand{Num: 0, Bank: BankPrimAttr, Swizzle: Swizzle{ChanX, ChanY, ChanW, ChanW}},
			mask: 0x3,
			want: "pa0",
		},
		{
			name: "partial mask selects its own channels",
			op:   Operand{Num: 5, Bank: BankSecAttr, Swizzle: Swizzle{ChanW, ChanW, ChanW, ChanW}},
			mask: 0x5,
			want: "sa5.ww",
		},
		{
			name: "constant channels render digits",
			op:   Operand{Num: 1, Bank: BankOutput, Swizzle: Swizzle{ChanX, ChanY, ChanZ, ChanOne}},
			mask: 0xF,
			want: "o1.xyz1",
		},
		{
			name: "zero mask suppresses the suffix",
			op:   Operand{Num: 2, Bank: BankInternal, Swizzle: Swizzle{ChanW, ChanW, ChanW, ChanW}},
			mask: 0,
			want: "i2",
		},
		{
			name: "undefined channels render placeholders",
			op:   Operand{Num: 0, Bank: BankTemp, Swizzle: SwizzleUndefined},
			mask: 0x3,
			want: "r0.__",
		},
		{
			name: "unprefixed bank renders its name",
			op:   Operand{Num: 7, Bank: BankImmediate, Swizzle: SwizzleIdentity},
			mask: 0xF,
			want: "immediate:7",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OperandString(tt.op, tt.mask); got != tt.want {
				t.Errorf("OperandString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPredicate_String(t *testing.T) {
	tests := []struct {
		pred Predicate
		want string
	}{
		{Predicate{}, ""},
		{Predicate{Ext: ExtPredP0}, "p0 "},
		{Predicate{Ext: ExtPredP3}, "p3 "},
		{Predicate{Ext: ExtPredNegP0}, "!p0 "},
		{Predicate{Ext: ExtPredPN}, "pN "},
		{Predicate{Short: true}, ""},
		{Predicate{Short: true, Sh: ShortPredP1}, "p1 "},
		{Predicate{Short: true, Sh: ShortPredNegP0}, "!p0 "},
	}
	for _, tt := range tests {
		if got := tt.pred.String(); got != tt.want {
			t.Errorf("Predicate%+v.String() = %q, want %q", tt.pred, got, tt.want)
		}
	}
}

func TestInstruction_String(t *testing.T) {
	tests := []struct {
		name string
		in   Instruction
		want string
	}{
		{
			name: "bare mnemonic",
			in:   Instruction{Opcode: OpNOP},
			want: "NOP",
		},
		{
			name: "kill keeps no operands",
			in: Instruction{
				Opcode: OpKILL,
				Pred:   Predicate{Ext: ExtPredNegP0},
			},
			want: "!p0 KILL",
		},
		{
			name: "unary move",
			in: Instruction{
				Opcode:    OpVMOV,
				WriteMask: 0xF,
				Dest:      Operand{Num: 0, Bank: BankOutput, Swizzle: SwizzleIdentity},
				Src0:      Operand{Num: 2, Bank: BankPrimAttr, Swizzle: SwizzleIdentity},
			},
			want: "VMOV o0, pa2",
		},
		{
			name: "predicated binary",
			in: Instruction{
				Opcode:    OpVADD,
				WriteMask: 0xF,
				Pred:      Predicate{Ext: ExtPredP1},
				Dest:      Operand{Num: 1, Bank: BankTemp, Swizzle: SwizzleIdentity},
				Src0:      Operand{Num: 0, Bank: BankTemp, Swizzle: SwizzleIdentity},
				Src1:      Operand{Num: 4, Bank: BankSecAttr, Swizzle: Swizzle{ChanX, ChanX, ChanX, ChanX}},
			},
			want: "p1 VADD r1, r0, sa4.xxxx",
		},
		{
			name: "three source mad",
			in: Instruction{
				Opcode:    OpVMAD,
				WriteMask: 0x7,
				Dest:      Operand{Num: 0, Bank: BankInternal, Swizzle: SwizzleIdentity},
				Src0:      Operand{Num: 0, Bank: BankPrimAttr, Swizzle: SwizzleIdentity},
				Src1:      Operand{Num: 8, Bank: BankSecAttr, Swizzle: SwizzleIdentity},
				Src2:      Operand{Num: 1, Bank: BankTemp, Swizzle: Swizzle{ChanZ, ChanZ, ChanZ, ChanZ}},
			},
			want: "VMAD i0, pa0, sa8, r1.zzz",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSwizzle_IsDefault(t *testing.T) {
	if !SwizzleIdentity.IsDefault(4) {
		t.Error("identity swizzle should be default at width 4")
	}
	s := Swizzle{ChanX, ChanY, ChanOne, ChanOne}
	if !s.IsDefault(2) {
		t.Error("identity prefix should be default at width 2")
	}
	if s.IsDefault(3) {
		t.Error("constant channel should break the default prefix")
	}
	if SwizzleUndefined.IsDefault(1) {
		t.Error("undefined swizzle should never be default")
	}
}
