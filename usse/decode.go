package usse

import "fmt"

// Microcode word layout, most significant bit first:
//
//	[63:59] opcode
//	[58]    predicate form (0 = extended, 1 = short)
//	[57:55] predicate value (short form reads the low 2 bits)
//	[54:51] destination write mask
//	[50:45] destination register number
//	[44:41] destination bank selector
//	[40:35] src0 number  [34:31] src0 bank  [30:27] src0 swizzle selector
//	[26:21] src1 number  [20:17] src1 bank  [16:13] src1 swizzle selector
//	[12:7]  src2 number  [6:3]   src2 bank  [2:0]   src2 swizzle selector
//
// Swizzle selectors index the preset table below; src2 carries one bit
// less and can only address the first half of the table. Operand
// modifier flags are not part of this encoding.

// swizzlePresets is the table of standard swizzles addressable by an
// operand's swizzle selector.
var swizzlePresets = [16]Swizzle{
	{ChanX, ChanY, ChanZ, ChanW},
	{ChanX, ChanX, ChanX, ChanX},
	{ChanY, ChanY, ChanY, ChanY},
	{ChanZ, ChanZ, ChanZ, ChanZ},
	{ChanW, ChanW, ChanW, ChanW},
	{ChanX, ChanY, ChanX, ChanY},
	{ChanX, ChanY, ChanZ, ChanX},
	{ChanY, ChanZ, ChanW, ChanW},
	{ChanZ, ChanW, ChanX, ChanY},
	{ChanX, ChanY, ChanZ, ChanZero},
	{ChanX, ChanY, ChanZ, ChanOne},
	{ChanX, ChanY, ChanZ, ChanHalf},
	{ChanZero, ChanZero, ChanZero, ChanZero},
	{ChanOne, ChanOne, ChanOne, ChanOne},
	{ChanHalf, ChanHalf, ChanHalf, ChanHalf},
	{ChanX, ChanX, ChanY, ChanY},
}

// DecodeError reports a malformed or unrecognized microcode word. It is
// fatal to that one instruction only.
type DecodeError struct {
	Word   uint64
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("usse: cannot decode %#016x: %s", e.Word, e.Reason)
}

// Decode decodes one fixed-width microcode word. Decoding is pure and
// deterministic; any opcode or bank selector outside the defined space
// yields a DecodeError.
func Decode(word uint64) (Instruction, error) {
	raw := uint8(word >> 59 & 0x1F)
	if raw == 0 || raw >= uint8(opcodeCount) {
		return Instruction{}, &DecodeError{Word: word, Reason: fmt.Sprintf("unrecognized opcode %d", raw)}
	}

	in := Instruction{
		Opcode:    Opcode(raw),
		WriteMask: uint8(word >> 51 & 0xF),
		Pred:      decodePredicate(word),
	}

	var err error
	if in.Dest, err = decodeOperand(word, word>>45&0x3F, word>>41&0xF, 0, true); err != nil {
		return Instruction{}, err
	}
	if in.Src0, err = decodeOperand(word, word>>35&0x3F, word>>31&0xF, word>>27&0xF, false); err != nil {
		return Instruction{}, err
	}
	if in.Src1, err = decodeOperand(word, word>>21&0x3F, word>>17&0xF, word>>13&0xF, false); err != nil {
		return Instruction{}, err
	}
	if in.Src2, err = decodeOperand(word, word>>7&0x3F, word>>3&0xF, word&0x7, false); err != nil {
		return Instruction{}, err
	}
	return in, nil
}

// decodePredicate extracts whichever predicate encoding the word's form
// bit selects. The encoding width, not the opcode, decides the form.
func decodePredicate(word uint64) Predicate {
	value := uint8(word >> 55 & 0x7)
	if word>>58&1 != 0 {
		return Predicate{Short: true, Sh: ShortPredicate(value & 0x3)}
	}
	return Predicate{Ext: ExtPredicate(value)}
}

func decodeOperand(word, num, bank, swizzleSel uint64, isDest bool) (Operand, error) {
	if bank >= uint64(bankCount) {
		return Operand{}, &DecodeError{Word: word, Reason: fmt.Sprintf("unrecognized bank selector %d", bank)}
	}
	op := Operand{
		Num:     uint8(num),
		Bank:    RegisterBank(bank),
		Swizzle: swizzlePresets[swizzleSel],
	}
	if isDest {
		// Destinations are channel-masked, not swizzled.
		op.Swizzle = SwizzleIdentity
	}
	return op, nil
}
