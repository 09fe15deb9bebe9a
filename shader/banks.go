package shader

import (
	"github.com/gogpu/naga/ir"

	"github.com/bentokun/Vita3K/usse"
)

// varRefKind says what kind of backend value a binding resolves to.
type varRefKind uint8

const (
	refArgument varRefKind = iota // entry function argument, read-only
	refGlobal                     // module global variable
	refLocal                      // entry function local variable
	refSampler                    // combined image + sampler handle pair
)

// varRef identifies the backend variable behind a register binding.
type varRef struct {
	kind    varRefKind
	index   uint32                  // argument index, global handle or local index
	sampler ir.GlobalVariableHandle // refSampler only: the shared sampler
}

// bindingField describes one member of a struct-typed binding, in
// declaration order.
type bindingField struct {
	typ  ir.TypeHandle
	size uint32 // component count
}

// binding maps a contiguous register range to one declared variable.
// Bindings within a bank never overlap and are ordered by ascending
// offset.
type binding struct {
	typ    ir.TypeHandle
	ref    varRef
	offset uint32
	size   uint32
	fields []bindingField // non-nil for interface-block bindings
}

// regBank holds the ordered bindings of one register bank.
type regBank struct {
	bindings []binding
	next     uint32
}

// push appends a binding occupying size address units at the bank's
// next free offset.
func (b *regBank) push(typ ir.TypeHandle, ref varRef, size uint32, fields []bindingField) {
	b.bindings = append(b.bindings, binding{
		typ:    typ,
		ref:    ref,
		offset: b.next,
		size:   size,
		fields: fields,
	})
	b.next += size
}

// size returns the total address units consumed by the bank.
func (b *regBank) size() uint32 {
	var total uint32
	for _, bd := range b.bindings {
		total += bd.size
	}
	return total
}

// find locates the binding whose [offset, offset+size) range contains
// index, returning the component offset within it.
func (b *regBank) find(index uint32) (*binding, uint32, bool) {
	for i := range b.bindings {
		bd := &b.bindings[i]
		if index >= bd.offset && index < bd.offset+bd.size {
			return bd, index - bd.offset, true
		}
	}
	return nil, 0, false
}

// registerFile groups the banks that have backing storage.
type registerFile struct {
	temps     regBank // r
	primAttrs regBank // pa
	outputs   regBank // o
	secAttrs  regBank // sa
	internals regBank // i
}

// bank returns the storage for a register bank, or nil for banks with
// no backing storage in this core.
func (rf *registerFile) bank(bank usse.RegisterBank) *regBank {
	switch bankStorageClass(bank) {
	case storageFunction:
		return &rf.temps
	case storageInput:
		return &rf.primAttrs
	case storageOutput:
		return &rf.outputs
	case storageUniform:
		return &rf.secAttrs
	case storagePrivate:
		return &rf.internals
	default:
		return nil
	}
}

// resolve finds the binding covering a flat register index within a
// bank. The returned component offset is always in [0, binding.size).
func (rf *registerFile) resolve(bank usse.RegisterBank, index uint32) (*binding, uint32, error) {
	storage := rf.bank(bank)
	if storage == nil {
		return nil, 0, &UnsupportedFeatureError{Feature: "register bank " + bank.String() + " has no backing storage"}
	}
	bd, comp, ok := storage.find(index)
	if !ok {
		return nil, 0, &RegisterResolutionError{Bank: bank, Index: index}
	}
	return bd, comp, nil
}

// storageClass is the backend storage a register bank maps to.
type storageClass uint8

const (
	storageFunction storageClass = iota // function-local
	storageInput                        // stage input
	storageOutput                       // stage output
	storageUniform                      // uniform-constant
	storagePrivate                      // module-private
	storageNone                         // no backing storage in this core
)

// bankStorageClass is the fixed, total bank-to-storage mapping. Banks
// without a mapping return storageNone explicitly; callers needing
// those banks must handle them outside this core.
func bankStorageClass(bank usse.RegisterBank) storageClass {
	switch bank {
	case usse.BankTemp:
		return storageFunction
	case usse.BankPrimAttr:
		return storageInput
	case usse.BankOutput:
		return storageOutput
	case usse.BankSecAttr:
		return storageUniform
	case usse.BankInternal:
		return storagePrivate
	default:
		return storageNone
	}
}
