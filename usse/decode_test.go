package usse

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testOperand carries raw operand fields for word assembly.
type testOperand struct {
	num  uint64
	bank uint64
	swz  uint64
}

// encode assembles one microcode word from raw fields, mirroring the
// documented bit layout.
func encode(op Opcode, shortForm bool, pred uint64, mask uint64, dest, s0, s1, s2 testOperand) uint64 {
	w := uint64(op) << 59
	if shortForm {
		w |= 1 << 58
	}
	w |= pred << 55
	w |= mask << 51
	w |= dest.num<<45 | dest.bank<<41
	w |= s0.num<<35 | s0.bank<<31 | s0.swz<<27
	w |= s1.num<<21 | s1.bank<<17 | s1.swz<<13
	w |= s2.num<<7 | s2.bank<<3 | s2.swz
	return w
}

func TestDecode_Fields(t *testing.T) {
	word := encode(OpVMAD, false, 0, 0xF,
		testOperand{num: 4, bank: uint64(BankTemp)},
		testOperand{num: 0, bank: uint64(BankPrimAttr), swz: 0},
		testOperand{num: 8, bank: uint64(BankSecAttr), swz: 1},
		testOperand{num: 2, bank: uint64(BankInternal), swz: 4})

	got, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := Instruction{
		Opcode:    OpVMAD,
		WriteMask: 0xF,
		Dest:      Operand{Num: 4, Bank: BankTemp, Swizzle: SwizzleIdentity},
		Src0:      Operand{Num: 0, Bank: BankPrimAttr, Swizzle: SwizzleIdentity},
		Src1:      Operand{Num: 8, Bank: BankSecAttr, Swizzle: Swizzle{ChanX, ChanX, ChanX, ChanX}},
		Src2:      Operand{Num: 2, Bank: BankInternal, Swizzle: Swizzle{ChanW, ChanW, ChanW, ChanW}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_SwizzlePresets(t *testing.T) {
	tests := []struct {
		sel  uint64
		want Swizzle
	}{
		{0, Swizzle{ChanX, ChanY, ChanZ, ChanW}},
		{2, Swizzle{ChanY, ChanY, ChanY, ChanY}},
		{9, Swizzle{ChanX, ChanY, ChanZ, ChanZero}},
		{10, Swizzle{ChanX, ChanY, ChanZ, ChanOne}},
		{11, Swizzle{ChanX, ChanY, ChanZ, ChanHalf}},
		{14, Swizzle{ChanHalf, ChanHalf, ChanHalf, ChanHalf}},
		{15, Swizzle{ChanX, ChanX, ChanY, ChanY}},
	}
	for _, tt := range tests {
		word := encode(OpVMOV, false, 0, 0xF,
			testOperand{}, testOperand{swz: tt.sel}, testOperand{}, testOperand{})
		in, err := Decode(word)
		if err != nil {
			t.Fatalf("Decode(sel=%d) error = %v", tt.sel, err)
		}
		if in.Src0.Swizzle != tt.want {
			t.Errorf("selector %d: swizzle = %v, want %v", tt.sel, in.Src0.Swizzle, tt.want)
		}
	}
}

func TestDecode_Src2SwizzleNarrow(t *testing.T) {
	// Src2 carries only the low three selector bits.
	word := encode(OpVMAD, false, 0, 0xF,
		testOperand{}, testOperand{}, testOperand{}, testOperand{swz: 7})
	in, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := Swizzle{ChanY, ChanZ, ChanW, ChanW}
	if in.Src2.Swizzle != want {
		t.Errorf("src2 swizzle = %v, want %v", in.Src2.Swizzle, want)
	}
}

func TestDecode_Predicates(t *testing.T) {
	tests := []struct {
		name  string
		short bool
		value uint64
		want  Predicate
	}{
		{"ext none", false, 0, Predicate{}},
		{"ext p0", false, 1, Predicate{Ext: ExtPredP0}},
		{"ext p3", false, 4, Predicate{Ext: ExtPredP3}},
		{"ext !p1", false, 6, Predicate{Ext: ExtPredNegP1}},
		{"ext pN", false, 7, Predicate{Ext: ExtPredPN}},
		{"short none", true, 0, Predicate{Short: true}},
		{"short p1", true, 2, Predicate{Short: true, Sh: ShortPredP1}},
		{"short !p0", true, 3, Predicate{Short: true, Sh: ShortPredNegP0}},
		// The short form reads only two value bits.
		{"short high bit ignored", true, 5, Predicate{Short: true, Sh: ShortPredP0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word := encode(OpNOP, tt.short, tt.value, 0,
				testOperand{}, testOperand{}, testOperand{}, testOperand{})
			in, err := Decode(word)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if in.Pred != tt.want {
				t.Errorf("Pred = %+v, want %+v", in.Pred, tt.want)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		word uint64
	}{
		{"zero word", 0},
		{"opcode out of range", uint64(opcodeCount) << 59},
		{"bad dest bank", encode(OpVMOV, false, 0, 0xF,
			testOperand{bank: uint64(bankCount)}, testOperand{}, testOperand{}, testOperand{})},
		{"bad src1 bank", encode(OpVADD, false, 0, 0xF,
			testOperand{}, testOperand{}, testOperand{bank: 15}, testOperand{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.word)
			if err == nil {
				t.Fatal("Decode() expected error, got nil")
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("error type = %T, want *DecodeError", err)
			}
			if decodeErr.Word != tt.word {
				t.Errorf("DecodeError.Word = %#x, want %#x", decodeErr.Word, tt.word)
			}
		})
	}
}

func TestDecode_Deterministic(t *testing.T) {
	word := encode(OpVDP, false, 2, 0x7,
		testOperand{num: 1, bank: uint64(BankOutput)},
		testOperand{num: 0, bank: uint64(BankPrimAttr), swz: 6},
		testOperand{num: 4, bank: uint64(BankSecAttr), swz: 8},
		testOperand{})

	first, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := Decode(word)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("Decode() not deterministic (-first +again):\n%s", diff)
		}
	}
}
