// Package usse models the USSE shader-core instruction set: register
// banks, operands, swizzles, predicates and the instruction decoder.
package usse

import "fmt"

// Opcode is the closed set of instructions the decoder understands.
type Opcode uint8

const (
	OpInvalid Opcode = iota
	OpNOP
	OpPHAS
	OpVMOV
	OpVPCKF16F32
	OpVPCKF32F16
	OpVADD
	OpVSUB
	OpVMUL
	OpVMAD
	OpVMIN
	OpVMAX
	OpVFRC
	OpVDP
	OpVRSQ
	OpVRCP
	OpVTST
	OpSMP
	OpKILL

	opcodeCount
)

var opcodeNames = map[Opcode]string{
	OpInvalid:    "INVALID",
	OpNOP:        "NOP",
	OpPHAS:       "PHAS",
	OpVMOV:       "VMOV",
	OpVPCKF16F32: "VPCKF16F32",
	OpVPCKF32F16: "VPCKF32F16",
	OpVADD:       "VADD",
	OpVSUB:       "VSUB",
	OpVMUL:       "VMUL",
	OpVMAD:       "VMAD",
	OpVMIN:       "VMIN",
	OpVMAX:       "VMAX",
	OpVFRC:       "VFRC",
	OpVDP:        "VDP",
	OpVRSQ:       "VRSQ",
	OpVRCP:       "VRCP",
	OpVTST:       "VTST",
	OpSMP:        "SMP",
	OpKILL:       "KILL",
}

// String returns the mnemonic.
func (o Opcode) String() string {
	if s, ok := opcodeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("opcode(%d)", uint8(o))
}

// RegisterBank is an address-space partition of the USSE register file.
type RegisterBank uint8

const (
	BankTemp RegisterBank = iota
	BankPrimAttr
	BankOutput
	BankSecAttr
	BankInternal
	BankSpecial
	BankGlobal
	BankFPConstant
	BankImmediate
	BankIndex
	BankIndexed

	bankCount
	BankInvalid RegisterBank = 0xFF
)

// String returns the bank name.
func (b RegisterBank) String() string {
	switch b {
	case BankTemp:
		return "temp"
	case BankPrimAttr:
		return "primattr"
	case BankOutput:
		return "output"
	case BankSecAttr:
		return "secattr"
	case BankInternal:
		return "internal"
	case BankSpecial:
		return "special"
	case BankGlobal:
		return "global"
	case BankFPConstant:
		return "fpconstant"
	case BankImmediate:
		return "immediate"
	case BankIndex:
		return "index"
	case BankIndexed:
		return "indexed"
	case BankInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("bank(%d)", uint8(b))
	}
}

// SwizzleChannel selects the source of one swizzled component: a
// register channel or a fixed constant.
type SwizzleChannel uint8

const (
	ChanX SwizzleChannel = iota
	ChanY
	ChanZ
	ChanW
	ChanZero
	ChanOne
	ChanHalf
	ChanUndefined
)

// Swizzle is a fixed 4-element channel selection. Swizzle arity is
// always 4; an active channel count narrows which entries matter.
type Swizzle [4]SwizzleChannel

// SwizzleIdentity passes channels through unchanged.
var SwizzleIdentity = Swizzle{ChanX, ChanY, ChanZ, ChanW}

// SwizzleUndefined marks an operand whose swizzle was never decoded.
var SwizzleUndefined = Swizzle{ChanUndefined, ChanUndefined, ChanUndefined, ChanUndefined}

// IsDefault reports whether the first n channels match the identity
// prefix {X, Y, Z, W}.
func (s Swizzle) IsDefault(n int) bool {
	if n > 4 {
		n = 4
	}
	for i := 0; i < n; i++ {
		if s[i] != SwizzleChannel(i) {
			return false
		}
	}
	return true
}

// ExtPredicate is the 8-valued extended predicate encoding.
type ExtPredicate uint8

const (
	ExtPredNone ExtPredicate = iota
	ExtPredP0
	ExtPredP1
	ExtPredP2
	ExtPredP3
	ExtPredNegP0
	ExtPredNegP1
	ExtPredPN // per-instruction predicate register
)

// ShortPredicate is the 4-valued short predicate encoding.
type ShortPredicate uint8

const (
	ShortPredNone ShortPredicate = iota
	ShortPredP0
	ShortPredP1
	ShortPredNegP0
)

// Predicate carries whichever of the two mutually exclusive predicate
// encodings an instruction uses.
type Predicate struct {
	Short bool
	Ext   ExtPredicate
	Sh    ShortPredicate
}

// RegisterFlags carries per-operand modifier bits.
type RegisterFlags uint8

const (
	// RegFlagNegate negates the operand value on read.
	RegFlagNegate RegisterFlags = 1 << iota
	// RegFlagAbs takes the absolute value on read.
	RegFlagAbs
)

// InstructionFlags carries per-instruction modifier bits.
type InstructionFlags uint8

// Operand is a single register reference.
type Operand struct {
	Num     uint8 // 6-bit flat register index
	Bank    RegisterBank
	Flags   RegisterFlags
	Swizzle Swizzle
}

// Instruction is one decoded microcode word.
type Instruction struct {
	Opcode    Opcode
	Dest      Operand
	Src0      Operand
	Src1      Operand
	Src2      Operand
	WriteMask uint8 // 4-bit destination channel mask
	Pred      Predicate
	Flags     InstructionFlags
}
