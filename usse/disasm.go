package usse

import (
	"strconv"
	"strings"
)

// Disassembly renders instructions in the conventional USSE listing
// form: optional predicate prefix, mnemonic, destination, sources.

// String renders the extended predicate prefix, including the trailing
// separator, or "" for no predicate.
func (p ExtPredicate) String() string {
	switch p {
	case ExtPredNone:
		return ""
	case ExtPredP0:
		return "p0 "
	case ExtPredP1:
		return "p1 "
	case ExtPredP2:
		return "p2 "
	case ExtPredP3:
		return "p3 "
	case ExtPredNegP0:
		return "!p0 "
	case ExtPredNegP1:
		return "!p1 "
	case ExtPredPN:
		return "pN "
	default:
		return "invalid"
	}
}

// String renders the short predicate prefix, including the trailing
// separator, or "" for no predicate.
func (p ShortPredicate) String() string {
	switch p {
	case ShortPredNone:
		return ""
	case ShortPredP0:
		return "p0 "
	case ShortPredP1:
		return "p1 "
	case ShortPredNegP0:
		return "!p0 "
	default:
		return "invalid"
	}
}

// String renders the active predicate prefix.
func (p Predicate) String() string {
	if p.Short {
		return p.Sh.String()
	}
	return p.Ext.String()
}

// bankPrefix is the listing prefix for banks with backing storage.
func bankPrefix(b RegisterBank) string {
	switch b {
	case BankPrimAttr:
		return "pa"
	case BankSecAttr:
		return "sa"
	case BankTemp:
		return "r"
	case BankOutput:
		return "o"
	case BankInternal:
		return "i"
	default:
		return b.String() + ":"
	}
}

// channelCode is the single-letter rendering of each swizzle channel.
var channelCode = [8]byte{'x', 'y', 'z', 'w', '0', '1', 'h', '_'}

// OperandString renders an operand as bank prefix + register number,
// followed by a ".swizzle" suffix only when the write mask is non-empty.
// A default swizzle over the active channel count renders no suffix;
// otherwise each masked channel renders via its single-letter code.
func OperandString(op Operand, writeMask uint8) string {
	var sb strings.Builder
	sb.WriteString(bankPrefix(op.Bank))
	sb.WriteString(strconv.Itoa(int(op.Num)))

	if writeMask == 0 {
		return sb.String()
	}

	active := activeChannels(writeMask)
	if op.Swizzle.IsDefault(active) {
		return sb.String()
	}

	sb.WriteByte('.')
	for c := 0; c < 4; c++ {
		if writeMask&(1<<c) == 0 {
			continue
		}
		ch := op.Swizzle[c]
		if ch > ChanUndefined {
			ch = ChanUndefined
		}
		sb.WriteByte(channelCode[ch])
	}
	return sb.String()
}

// String renders the full instruction listing line.
func (in Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(in.Pred.String())
	sb.WriteString(in.Opcode.String())

	switch in.Opcode {
	case OpNOP, OpPHAS, OpKILL:
		return sb.String()
	}

	sb.WriteByte(' ')
	sb.WriteString(OperandString(in.Dest, in.WriteMask))
	sb.WriteString(", ")
	sb.WriteString(OperandString(in.Src0, in.WriteMask))

	switch in.Opcode {
	case OpVADD, OpVSUB, OpVMUL, OpVMIN, OpVMAX, OpVDP, OpVTST, OpSMP:
		sb.WriteString(", ")
		sb.WriteString(OperandString(in.Src1, in.WriteMask))
	case OpVMAD:
		sb.WriteString(", ")
		sb.WriteString(OperandString(in.Src1, in.WriteMask))
		sb.WriteString(", ")
		sb.WriteString(OperandString(in.Src2, in.WriteMask))
	}
	return sb.String()
}

// activeChannels counts set bits of a 4-bit write mask.
func activeChannels(mask uint8) int {
	n := 0
	for c := 0; c < 4; c++ {
		if mask&(1<<c) != 0 {
			n++
		}
	}
	return n
}
