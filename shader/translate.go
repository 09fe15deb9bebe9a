package shader

import (
	"log/slog"
	"strconv"

	"github.com/gogpu/naga/ir"

	"github.com/bentokun/Vita3K/usse"
)

// translator lowers the decoded instruction stream into the entry
// function body. Translation is a single straight-line pass in source
// order; predication gates each instruction's stores rather than
// branching over its evaluation.
type translator struct {
	b      *moduleBuilder
	params *shaderParams
	log    *slog.Logger

	body  []ir.Statement
	preds [4]uint32

	report TranslationReport
}

func newTranslator(b *moduleBuilder, params *shaderParams, log *slog.Logger) *translator {
	t := &translator{b: b, params: params, log: log}
	boolType := b.boolType()
	for i := range t.preds {
		init := b.expr(ir.Literal{Value: ir.LiteralBool(false)})
		t.preds[i] = b.addLocal("p"+strconv.Itoa(i), boolType, &init)
	}
	b.discardPending()
	return t
}

// translate lowers every code word. No instruction failure aborts the
// pass: undecodable or untranslatable instructions are logged and
// skipped, degrading the output instead of losing it.
func (t *translator) translate(code []uint64) {
	for pc, word := range code {
		instr, err := usse.Decode(word)
		if err != nil {
			t.report.Skipped++
			t.log.Warn("undecodable instruction word, skipping", "pc", pc, "err", err)
			continue
		}
		t.report.Disassembly = append(t.report.Disassembly, instr.String())

		handler := opcodeHandlers[instr.Opcode]
		if handler == nil {
			t.report.Skipped++
			t.b.discardPending()
			t.log.Warn("no translation for opcode, skipping", "pc", pc, "opcode", instr.Opcode)
			continue
		}
		if err := handler(t, instr); err != nil {
			t.report.Skipped++
			t.b.discardPending()
			t.log.Warn("instruction translation failed, skipping",
				"pc", pc, "instr", instr.String(), "err", err)
			continue
		}
		t.report.Instructions++
	}
}

// opcodeHandlers covers the complete opcode enumeration. A nil entry
// means the opcode decodes but has no translation yet.
var opcodeHandlers = map[usse.Opcode]func(*translator, usse.Instruction) error{
	usse.OpInvalid:    nil,
	usse.OpNOP:        func(*translator, usse.Instruction) error { return nil },
	usse.OpPHAS:       func(*translator, usse.Instruction) error { return nil },
	usse.OpVMOV:       (*translator).translateMove,
	usse.OpVPCKF16F32: (*translator).translateMove,
	usse.OpVPCKF32F16: (*translator).translateMove,
	usse.OpVADD: func(t *translator, in usse.Instruction) error {
		return t.translateBinary(in, ir.BinaryAdd)
	},
	usse.OpVSUB: func(t *translator, in usse.Instruction) error {
		return t.translateBinary(in, ir.BinarySubtract)
	},
	usse.OpVMUL: func(t *translator, in usse.Instruction) error {
		return t.translateBinary(in, ir.BinaryMultiply)
	},
	usse.OpVMAD: (*translator).translateMad,
	usse.OpVMIN: func(t *translator, in usse.Instruction) error {
		return t.translateMath2(in, ir.MathMin)
	},
	usse.OpVMAX: func(t *translator, in usse.Instruction) error {
		return t.translateMath2(in, ir.MathMax)
	},
	usse.OpVFRC: func(t *translator, in usse.Instruction) error {
		return t.translateMath1(in, ir.MathFract)
	},
	usse.OpVDP: (*translator).translateDot,
	usse.OpVRSQ: func(t *translator, in usse.Instruction) error {
		return t.translateMath1(in, ir.MathInverseSqrt)
	},
	usse.OpVRCP: (*translator).translateReciprocal,
	usse.OpVTST: (*translator).translateTest,
	usse.OpSMP:  (*translator).translateSample,
	usse.OpKILL: (*translator).translateKill,
}

// maskChannels lists the set channels of a write mask, ascending.
func maskChannels(mask uint8) []int {
	chans := make([]int, 0, 4)
	for c := 0; c < 4; c++ {
		if mask&(1<<c) != 0 {
			chans = append(chans, c)
		}
	}
	return chans
}

// loadChannel produces the value of one swizzled source channel: a
// register component read, or a literal for the constant selectors.
func (t *translator) loadChannel(op usse.Operand, sw usse.SwizzleChannel) (ir.ExpressionHandle, error) {
	switch sw {
	case usse.ChanX, usse.ChanY, usse.ChanZ, usse.ChanW:
		return t.readComponent(op.Bank, uint32(op.Num)+uint32(sw))
	case usse.ChanZero, usse.ChanUndefined:
		return t.b.literalF32(0), nil
	case usse.ChanOne:
		return t.b.literalF32(1), nil
	default: // ChanHalf
		return t.b.literalF32(0.5), nil
	}
}

// loadSource composes a source operand's value over the destination
// channels, then applies the operand modifiers.
func (t *translator) loadSource(op usse.Operand, chans []int) (ir.ExpressionHandle, error) {
	comps := make([]ir.ExpressionHandle, 0, len(chans))
	for _, c := range chans {
		h, err := t.loadChannel(op, op.Swizzle[c])
		if err != nil {
			return 0, err
		}
		comps = append(comps, h)
	}

	var v ir.ExpressionHandle
	if len(comps) == 1 {
		v = comps[0]
	} else {
		v = t.b.expr(ir.ExprCompose{
			Type:       t.b.vecType(uint32(len(comps))),
			Components: comps,
		})
	}
	if op.Flags&usse.RegFlagAbs != 0 {
		v = t.b.expr(ir.ExprMath{Fun: ir.MathAbs, Arg: v})
	}
	if op.Flags&usse.RegFlagNegate != 0 {
		v = t.b.expr(ir.ExprUnary{Op: ir.UnaryNegate, Expr: v})
	}
	return v, nil
}

// readComponent reads one flat register component as a value.
func (t *translator) readComponent(bank usse.RegisterBank, flat uint32) (ir.ExpressionHandle, error) {
	bd, comp, err := t.params.regs.resolve(bank, flat)
	if err != nil {
		return 0, err
	}
	return t.componentExpr(bd, comp)
}

// componentExpr builds the access chain for one component of a
// binding's backing variable.
func (t *translator) componentExpr(bd *binding, comp uint32) (ir.ExpressionHandle, error) {
	var base ir.ExpressionHandle
	switch bd.ref.kind {
	case refArgument:
		base = t.b.expr(ir.ExprFunctionArgument{Index: bd.ref.index})
	case refGlobal:
		base = t.b.expr(ir.ExprGlobalVariable{Variable: ir.GlobalVariableHandle(bd.ref.index)})
	case refLocal:
		base = t.b.expr(ir.ExprLocalVariable{Variable: bd.ref.index})
	default:
		return 0, &UnsupportedFeatureError{Feature: "arithmetic access to a sampler register"}
	}

	if bd.fields != nil {
		var off uint32
		for i, f := range bd.fields {
			if comp < off+f.size {
				member := t.b.expr(ir.ExprAccessIndex{Base: base, Index: uint32(i)})
				if f.size > 1 {
					return t.b.expr(ir.ExprAccessIndex{Base: member, Index: comp - off}), nil
				}
				return member, nil
			}
			off += f.size
		}
	}
	if bd.size == 1 {
		return base, nil
	}
	return t.b.expr(ir.ExprAccessIndex{Base: base, Index: comp}), nil
}

// writePointer builds the store target for one flat register component.
func (t *translator) writePointer(bank usse.RegisterBank, flat uint32) (ir.ExpressionHandle, error) {
	bd, comp, err := t.params.regs.resolve(bank, flat)
	if err != nil {
		return 0, err
	}
	if bd.ref.kind == refArgument || bd.ref.kind == refSampler {
		return 0, &UnsupportedFeatureError{
			Feature: "write to read-only register bank " + bank.String(),
		}
	}
	return t.componentExpr(bd, comp)
}

// storeDest builds the per-channel stores of a result value into the
// write-mask-selected destination components. Unwritten components
// keep their prior contents.
func (t *translator) storeDest(dest usse.Operand, value ir.ExpressionHandle, chans []int) ([]ir.Statement, error) {
	stores := make([]ir.Statement, 0, len(chans))
	for j, c := range chans {
		ptr, err := t.writePointer(dest.Bank, uint32(dest.Num)+uint32(c))
		if err != nil {
			return nil, err
		}
		v := value
		if len(chans) > 1 {
			v = t.b.expr(ir.ExprAccessIndex{Base: value, Index: uint32(j)})
		}
		stores = append(stores, ir.Statement{Kind: ir.StmtStore{Pointer: ptr, Value: v}})
	}
	return stores, nil
}

// predCondition builds the boolean gate for an instruction's
// predicate, or reports that the instruction is unpredicated.
func (t *translator) predCondition(p usse.Predicate) (ir.ExpressionHandle, bool) {
	var idx int
	var neg bool
	if p.Short {
		switch p.Sh {
		case usse.ShortPredNone:
			return 0, false
		case usse.ShortPredP0:
			idx = 0
		case usse.ShortPredP1:
			idx = 1
		default:
			idx, neg = 0, true
		}
	} else {
		switch p.Ext {
		case usse.ExtPredNone:
			return 0, false
		case usse.ExtPredP0, usse.ExtPredP1, usse.ExtPredP2, usse.ExtPredP3:
			idx = int(p.Ext - usse.ExtPredP0)
		case usse.ExtPredNegP0:
			idx, neg = 0, true
		case usse.ExtPredNegP1:
			idx, neg = 1, true
		default: // per-instruction predicate register
			t.log.Warn("per-instance predicate not supported, executing unpredicated")
			return 0, false
		}
	}

	cond := t.b.expr(ir.ExprLocalVariable{Variable: t.preds[idx]})
	if neg {
		cond = t.b.expr(ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: cond})
	}
	return cond, true
}

// commit flushes the instruction's expressions and appends its stores,
// gated on the active predicate when one is set.
func (t *translator) commit(pred usse.Predicate, stores []ir.Statement) {
	cond, predicated := t.predCondition(pred)
	t.b.flushEmit(&t.body)
	if !predicated {
		t.body = append(t.body, stores...)
		return
	}
	t.body = append(t.body, ir.Statement{Kind: ir.StmtIf{
		Condition: cond,
		Accept:    ir.Block(stores),
	}})
}

// translateMove handles plain moves. The f16 pack and unpack forms
// collapse to moves because every value here is already held widened.
func (t *translator) translateMove(in usse.Instruction) error {
	chans := maskChannels(in.WriteMask)
	if len(chans) == 0 {
		return nil
	}
	v, err := t.loadSource(in.Src0, chans)
	if err != nil {
		return err
	}
	stores, err := t.storeDest(in.Dest, v, chans)
	if err != nil {
		return err
	}
	t.commit(in.Pred, stores)
	return nil
}

func (t *translator) translateBinary(in usse.Instruction, op ir.BinaryOperator) error {
	chans := maskChannels(in.WriteMask)
	if len(chans) == 0 {
		return nil
	}
	a, err := t.loadSource(in.Src0, chans)
	if err != nil {
		return err
	}
	b, err := t.loadSource(in.Src1, chans)
	if err != nil {
		return err
	}
	v := t.b.expr(ir.ExprBinary{Op: op, Left: a, Right: b})
	stores, err := t.storeDest(in.Dest, v, chans)
	if err != nil {
		return err
	}
	t.commit(in.Pred, stores)
	return nil
}

func (t *translator) translateMath1(in usse.Instruction, fun ir.MathFunction) error {
	chans := maskChannels(in.WriteMask)
	if len(chans) == 0 {
		return nil
	}
	a, err := t.loadSource(in.Src0, chans)
	if err != nil {
		return err
	}
	v := t.b.expr(ir.ExprMath{Fun: fun, Arg: a})
	stores, err := t.storeDest(in.Dest, v, chans)
	if err != nil {
		return err
	}
	t.commit(in.Pred, stores)
	return nil
}

func (t *translator) translateMath2(in usse.Instruction, fun ir.MathFunction) error {
	chans := maskChannels(in.WriteMask)
	if len(chans) == 0 {
		return nil
	}
	a, err := t.loadSource(in.Src0, chans)
	if err != nil {
		return err
	}
	b, err := t.loadSource(in.Src1, chans)
	if err != nil {
		return err
	}
	v := t.b.expr(ir.ExprMath{Fun: fun, Arg: a, Arg1: &b})
	stores, err := t.storeDest(in.Dest, v, chans)
	if err != nil {
		return err
	}
	t.commit(in.Pred, stores)
	return nil
}

func (t *translator) translateMad(in usse.Instruction) error {
	chans := maskChannels(in.WriteMask)
	if len(chans) == 0 {
		return nil
	}
	a, err := t.loadSource(in.Src0, chans)
	if err != nil {
		return err
	}
	b, err := t.loadSource(in.Src1, chans)
	if err != nil {
		return err
	}
	c, err := t.loadSource(in.Src2, chans)
	if err != nil {
		return err
	}
	v := t.b.expr(ir.ExprMath{Fun: ir.MathFma, Arg: a, Arg1: &b, Arg2: &c})
	stores, err := t.storeDest(in.Dest, v, chans)
	if err != nil {
		return err
	}
	t.commit(in.Pred, stores)
	return nil
}

// translateDot reduces both full source vectors and broadcasts the
// scalar result to every written channel.
func (t *translator) translateDot(in usse.Instruction) error {
	chans := maskChannels(in.WriteMask)
	if len(chans) == 0 {
		return nil
	}
	full := []int{0, 1, 2, 3}
	a, err := t.loadSource(in.Src0, full)
	if err != nil {
		return err
	}
	b, err := t.loadSource(in.Src1, full)
	if err != nil {
		return err
	}
	v := t.b.expr(ir.ExprMath{Fun: ir.MathDot, Arg: a, Arg1: &b})
	if len(chans) > 1 {
		v = t.b.expr(ir.ExprSplat{Size: ir.VectorSize(len(chans)), Value: v})
	}
	stores, err := t.storeDest(in.Dest, v, chans)
	if err != nil {
		return err
	}
	t.commit(in.Pred, stores)
	return nil
}

func (t *translator) translateReciprocal(in usse.Instruction) error {
	chans := maskChannels(in.WriteMask)
	if len(chans) == 0 {
		return nil
	}
	a, err := t.loadSource(in.Src0, chans)
	if err != nil {
		return err
	}
	one := t.b.literalF32(1)
	if len(chans) > 1 {
		one = t.b.expr(ir.ExprSplat{Size: ir.VectorSize(len(chans)), Value: one})
	}
	v := t.b.expr(ir.ExprBinary{Op: ir.BinaryDivide, Left: one, Right: a})
	stores, err := t.storeDest(in.Dest, v, chans)
	if err != nil {
		return err
	}
	t.commit(in.Pred, stores)
	return nil
}

// translateTest compares the first active channel of both sources and
// latches the result into the predicate register the destination
// selects.
func (t *translator) translateTest(in usse.Instruction) error {
	a, err := t.loadChannel(in.Src0, in.Src0.Swizzle[0])
	if err != nil {
		return err
	}
	b, err := t.loadChannel(in.Src1, in.Src1.Swizzle[0])
	if err != nil {
		return err
	}
	cmp := t.b.expr(ir.ExprBinary{Op: ir.BinaryLess, Left: a, Right: b})
	pred := t.b.expr(ir.ExprLocalVariable{Variable: t.preds[in.Dest.Num&3]})
	stores := []ir.Statement{{Kind: ir.StmtStore{Pointer: pred, Value: cmp}}}
	t.commit(in.Pred, stores)
	return nil
}

// translateSample emits a 2D texture sample with automatic level of
// detail. Src0 names the sampler binding, Src1 the coordinate pair.
func (t *translator) translateSample(in usse.Instruction) error {
	chans := maskChannels(in.WriteMask)
	if len(chans) == 0 {
		return nil
	}
	bd, _, err := t.params.regs.resolve(in.Src0.Bank, uint32(in.Src0.Num))
	if err != nil {
		return err
	}
	if bd.ref.kind != refSampler {
		return &UnsupportedFeatureError{Feature: "sample from a non-sampler register"}
	}

	image := t.b.expr(ir.ExprGlobalVariable{Variable: ir.GlobalVariableHandle(bd.ref.index)})
	sampler := t.b.expr(ir.ExprGlobalVariable{Variable: bd.ref.sampler})

	u, err := t.loadChannel(in.Src1, in.Src1.Swizzle[0])
	if err != nil {
		return err
	}
	v, err := t.loadChannel(in.Src1, in.Src1.Swizzle[1])
	if err != nil {
		return err
	}
	coord := t.b.expr(ir.ExprCompose{
		Type:       t.b.vecType(2),
		Components: []ir.ExpressionHandle{u, v},
	})

	sample := t.b.expr(ir.ExprImageSample{
		Image:      image,
		Sampler:    sampler,
		Coordinate: coord,
		Level:      ir.SampleLevelAuto{},
	})

	// Re-select from the full sample result so the written channels
	// pick up their own texel components.
	var value ir.ExpressionHandle
	if len(chans) == 1 {
		value = t.b.expr(ir.ExprAccessIndex{Base: sample, Index: uint32(chans[0])})
	} else {
		comps := make([]ir.ExpressionHandle, 0, len(chans))
		for _, c := range chans {
			comps = append(comps, t.b.expr(ir.ExprAccessIndex{Base: sample, Index: uint32(c)}))
		}
		value = t.b.expr(ir.ExprCompose{
			Type:       t.b.vecType(uint32(len(chans))),
			Components: comps,
		})
	}

	stores, err := t.storeDest(in.Dest, value, chans)
	if err != nil {
		return err
	}
	t.commit(in.Pred, stores)
	return nil
}

func (t *translator) translateKill(in usse.Instruction) error {
	t.commit(in.Pred, []ir.Statement{{Kind: ir.StmtKill{}}})
	return nil
}
