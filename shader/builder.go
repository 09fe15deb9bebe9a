package shader

import (
	"github.com/gogpu/naga/ir"
)

// moduleBuilder accumulates one IR module and its single entry
// function. A builder belongs to one recompilation and must not be
// shared across goroutines.
type moduleBuilder struct {
	types *ir.TypeRegistry

	module ir.Module
	fn     ir.Function

	// emitted marks the start of the expression range not yet covered
	// by an emit statement.
	emitted ir.ExpressionHandle
}

func newModuleBuilder() *moduleBuilder {
	return &moduleBuilder{types: ir.NewTypeRegistry()}
}

// typeHandle registers a type, deduplicating structurally identical
// ones.
func (b *moduleBuilder) typeHandle(name string, inner ir.TypeInner) ir.TypeHandle {
	return b.types.GetOrCreate(name, inner)
}

func f32Scalar() ir.ScalarType {
	return ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
}

// f32Type returns the canonical 32-bit float type.
func (b *moduleBuilder) f32Type() ir.TypeHandle {
	return b.typeHandle("", f32Scalar())
}

// vecType returns a float vector type of the given component count,
// or the scalar float type for count 1.
func (b *moduleBuilder) vecType(count uint32) ir.TypeHandle {
	if count <= 1 {
		return b.f32Type()
	}
	return b.typeHandle("", ir.VectorType{Size: ir.VectorSize(count), Scalar: f32Scalar()})
}

// boolType returns the canonical bool type.
func (b *moduleBuilder) boolType() ir.TypeHandle {
	return b.typeHandle("", ir.ScalarType{Kind: ir.ScalarBool, Width: 1})
}

// addGlobal appends a module global.
func (b *moduleBuilder) addGlobal(g ir.GlobalVariable) ir.GlobalVariableHandle {
	handle := ir.GlobalVariableHandle(len(b.module.GlobalVariables))
	b.module.GlobalVariables = append(b.module.GlobalVariables, g)
	return handle
}

// addLocal appends a local variable to the entry function.
func (b *moduleBuilder) addLocal(name string, typ ir.TypeHandle, init *ir.ExpressionHandle) uint32 {
	index := uint32(len(b.fn.LocalVars))
	b.fn.LocalVars = append(b.fn.LocalVars, ir.LocalVariable{Name: name, Type: typ, Init: init})
	return index
}

// addArgument appends an entry function argument.
func (b *moduleBuilder) addArgument(name string, typ ir.TypeHandle, binding ir.Binding) uint32 {
	index := uint32(len(b.fn.Arguments))
	arg := ir.FunctionArgument{Name: name, Type: typ}
	if binding != nil {
		arg.Binding = &binding
	}
	b.fn.Arguments = append(b.fn.Arguments, arg)
	return index
}

// expr appends an expression to the entry function's arena, resolving
// and recording its type alongside.
func (b *moduleBuilder) expr(kind ir.ExpressionKind) ir.ExpressionHandle {
	b.module.Types = b.types.GetTypes()

	handle := ir.ExpressionHandle(len(b.fn.Expressions))
	b.fn.Expressions = append(b.fn.Expressions, ir.Expression{Kind: kind})

	resolution, err := ir.ResolveExpressionType(&b.module, &b.fn, handle)
	if err != nil {
		resolution = ir.TypeResolution{}
	}
	b.fn.ExpressionTypes = append(b.fn.ExpressionTypes, resolution)
	return handle
}

// literalF32 appends a float literal expression.
func (b *moduleBuilder) literalF32(v float32) ir.ExpressionHandle {
	return b.expr(ir.Literal{Value: ir.LiteralF32(v)})
}

// flushEmit appends an emit statement covering all expressions created
// since the last flush, making them visible to following statements.
func (b *moduleBuilder) flushEmit(target *[]ir.Statement) {
	end := ir.ExpressionHandle(len(b.fn.Expressions))
	if end == b.emitted {
		return
	}
	*target = append(*target, ir.Statement{Kind: ir.StmtEmit{
		Range: ir.Range{Start: b.emitted, End: end},
	}})
	b.emitted = end
}

// discardPending abandons the expressions created since the last
// flush. They stay in the arena but are never emitted or referenced.
func (b *moduleBuilder) discardPending() {
	b.emitted = ir.ExpressionHandle(len(b.fn.Expressions))
}

// finish seals the entry function and registers the entry point.
func (b *moduleBuilder) finish(entryName string, stage ir.ShaderStage, body []ir.Statement) *ir.Module {
	b.fn.Name = entryName
	b.fn.Body = body
	b.module.Types = b.types.GetTypes()

	fnHandle := ir.FunctionHandle(len(b.module.Functions))
	b.module.Functions = append(b.module.Functions, b.fn)
	b.module.EntryPoints = append(b.module.EntryPoints, ir.EntryPoint{
		Name:     entryName,
		Stage:    stage,
		Function: fnHandle,
	})
	return &b.module
}
