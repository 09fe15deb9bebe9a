package shader

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gogpu/naga/ir"

	"github.com/bentokun/Vita3K/gxp"
)

// outputVar records one stage output: the local it accumulates in and
// the binding it takes in the entry result struct.
type outputVar struct {
	name    string
	local   uint32
	typ     ir.TypeHandle
	count   uint32
	binding ir.Binding
}

// shaderParams is the frozen result of parameter reconstruction: the
// register file plus the stage output records the epilogue needs.
type shaderParams struct {
	regs    registerFile
	outputs []outputVar
}

// paramBuilder walks the parameter table once, in order, and populates
// the register file and the entry function's interface.
type paramBuilder struct {
	b    *moduleBuilder
	prog *gxp.Program
	log  *slog.Logger

	out shaderParams

	inLoc  uint32
	outLoc uint32

	// struct accumulator: empty structName means idle.
	structName   string
	structParams []gxp.Parameter

	sampler    ir.GlobalVariableHandle
	hasSampler bool
	f16Warned  bool
}

// buildParameters reconstructs typed variables from the program's
// parameter table and stage linkage masks.
func buildParameters(b *moduleBuilder, prog *gxp.Program, log *slog.Logger) *shaderParams {
	pb := &paramBuilder{b: b, prog: prog, log: log}

	for _, param := range prog.Parameters {
		pb.add(param)
	}
	pb.closeStruct()

	pb.addStageIO()
	pb.addTemps()
	pb.addInternals()
	pb.patchBlendInput()

	return &pb.out
}

// scalarFor maps a parameter component type onto the backend scalar
// model. F16 has no backend representation and widens to F32.
func (pb *paramBuilder) scalarFor(t gxp.ParameterType) ir.ScalarType {
	switch t {
	case gxp.TypeF32:
		return ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	case gxp.TypeF16:
		if !pb.f16Warned {
			pb.log.Warn("f16 parameters widened to f32", "program", pb.prog.Type)
			pb.f16Warned = true
		}
		return ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	case gxp.TypeU8:
		return ir.ScalarType{Kind: ir.ScalarUint, Width: 1}
	case gxp.TypeS8:
		return ir.ScalarType{Kind: ir.ScalarSint, Width: 1}
	case gxp.TypeU16:
		return ir.ScalarType{Kind: ir.ScalarUint, Width: 2}
	case gxp.TypeS16:
		return ir.ScalarType{Kind: ir.ScalarSint, Width: 2}
	case gxp.TypeU32:
		return ir.ScalarType{Kind: ir.ScalarUint, Width: 4}
	default:
		return ir.ScalarType{Kind: ir.ScalarSint, Width: 4}
	}
}

// paramType builds the IR type for one parameter.
func (pb *paramBuilder) paramType(param gxp.Parameter) ir.TypeHandle {
	scalar := pb.scalarFor(param.Type)
	if param.ComponentCount <= 1 {
		return pb.b.typeHandle("", scalar)
	}
	return pb.b.typeHandle("", ir.VectorType{
		Size:   ir.VectorSize(param.ComponentCount),
		Scalar: scalar,
	})
}

// sanitizeName flattens a dotted struct path into a single identifier
// and collapses runs of underscores left by the substitution.
func sanitizeName(name string) string {
	flat := strings.ReplaceAll(name, ".", "_")
	for strings.Contains(flat, "__") {
		flat = strings.ReplaceAll(flat, "__", "_")
	}
	return flat
}

// add dispatches one parameter table entry.
func (pb *paramBuilder) add(param gxp.Parameter) {
	switch param.Category {
	case gxp.CategoryAttribute, gxp.CategoryUniform:
		if sn := param.StructName(); sn != "" {
			if sn != pb.structName {
				pb.closeStruct()
				pb.structName = sn
			}
			pb.structParams = append(pb.structParams, param)
			return
		}
		pb.closeStruct()
		pb.addPlain(param)

	case gxp.CategorySampler:
		pb.closeStruct()
		pb.addSampler(param)

	default:
		pb.closeStruct()
		pb.log.Error("parameter category not supported, skipping",
			"severity", "critical",
			"name", param.NameRaw(),
			"category", param.Category)
	}
}

// addPlain declares one non-struct attribute or uniform, one variable
// per array element.
func (pb *paramBuilder) addPlain(param gxp.Parameter) {
	typ := pb.paramType(param)
	for i := uint16(0); i < param.ArraySize; i++ {
		name := sanitizeName(param.NameRaw())
		if param.ArraySize > 1 {
			name += "_" + strconv.Itoa(int(i))
		}
		if param.Category == gxp.CategoryAttribute {
			pb.pushInput(name, typ, uint32(param.ComponentCount))
		} else {
			pb.pushUniform(name, typ, uint32(param.ComponentCount))
		}
	}
}

// pushInput declares a stage input argument bound to the primary
// attribute bank.
func (pb *paramBuilder) pushInput(name string, typ ir.TypeHandle, count uint32) {
	arg := pb.b.addArgument(name, typ, ir.LocationBinding{Location: pb.inLoc})
	pb.inLoc++
	pb.out.regs.primAttrs.push(typ, varRef{kind: refArgument, index: arg}, count, nil)
}

// pushUniform declares a uniform global bound to the secondary
// attribute bank.
func (pb *paramBuilder) pushUniform(name string, typ ir.TypeHandle, count uint32) {
	handle := pb.b.addGlobal(ir.GlobalVariable{
		Name:  name,
		Space: ir.SpaceUniform,
		Type:  typ,
	})
	pb.out.regs.secAttrs.push(typ, varRef{kind: refGlobal, index: uint32(handle)}, count, nil)
}

// closeStruct finalizes any accumulating struct parameter group.
//
// Attribute structs become a single struct-typed entry argument with
// per-member locations; the backend flattens the members into separate
// stage inputs. Uniform structs have no block representation here and
// flatten to independent variables with the dot replaced by an
// underscore, which can collide with a plain parameter of the same
// spelling.
func (pb *paramBuilder) closeStruct() {
	if pb.structName == "" {
		return
	}
	params := pb.structParams
	pb.structName = ""
	pb.structParams = nil

	if params[0].Category == gxp.CategoryUniform {
		pb.log.Warn("flattening uniform struct members", "struct", params[0].StructName())
		for _, param := range params {
			pb.addPlain(param)
		}
		return
	}

	members := make([]ir.StructMember, 0, len(params))
	fields := make([]bindingField, 0, len(params))
	var units uint32
	for _, param := range params {
		typ := pb.paramType(param)
		count := uint32(param.ComponentCount)
		for i := uint16(0); i < param.ArraySize; i++ {
			name := sanitizeName(param.Name())
			if param.ArraySize > 1 {
				name += "_" + strconv.Itoa(int(i))
			}
			var binding ir.Binding = ir.LocationBinding{Location: pb.inLoc}
			pb.inLoc++
			members = append(members, ir.StructMember{
				Name:    name,
				Type:    typ,
				Binding: &binding,
				Offset:  units * 4,
			})
			fields = append(fields, bindingField{typ: typ, size: count})
			units += count
		}
	}

	structType := pb.b.typeHandle(sanitizeName(params[0].StructName()), ir.StructType{
		Members: members,
		Span:    units * 4,
	})
	arg := pb.b.addArgument(sanitizeName(params[0].StructName()), structType, nil)
	pb.out.regs.primAttrs.push(structType, varRef{kind: refArgument, index: arg}, units, fields)
}

// addSampler declares a combined 2D image + sampler pair. A sampler
// always consumes exactly two secondary attribute units, regardless of
// its declared array size.
func (pb *paramBuilder) addSampler(param gxp.Parameter) {
	if !pb.hasSampler {
		pb.sampler = pb.b.addGlobal(ir.GlobalVariable{
			Name:  "samp",
			Space: ir.SpaceHandle,
			Type:  pb.b.typeHandle("", ir.SamplerType{}),
		})
		pb.hasSampler = true
	}

	imageType := pb.b.typeHandle("", ir.ImageType{
		Dim:   ir.Dim2D,
		Class: ir.ImageClassSampled,
	})
	image := pb.b.addGlobal(ir.GlobalVariable{
		Name:  sanitizeName(param.NameRaw()),
		Space: ir.SpaceHandle,
		Type:  imageType,
	})
	pb.out.regs.secAttrs.push(imageType, varRef{
		kind:    refSampler,
		index:   uint32(image),
		sampler: pb.sampler,
	}, 2, nil)
}

// addStageIO declares the stage-fixed linkage variables from the
// program's output/input masks.
func (pb *paramBuilder) addStageIO() {
	if pb.prog.Type == gxp.Vertex {
		pb.prog.VertexOutputs.Each(func(bit gxp.VertexOutputFlags, prop gxp.LinkageProperty) {
			var binding ir.Binding
			if bit == gxp.VertexOutputPosition {
				binding = ir.BuiltinBinding{Builtin: ir.BuiltinPosition}
			} else {
				binding = ir.LocationBinding{Location: pb.outLoc}
				pb.outLoc++
			}
			pb.pushOutput(prop.Name, prop.ComponentCount, binding)
		})
		return
	}

	pb.prog.FragmentInputs.Each(func(_ gxp.FragmentInputFlags, prop gxp.LinkageProperty) {
		typ := pb.b.vecType(prop.ComponentCount)
		pb.pushInput(prop.Name, typ, prop.ComponentCount)
	})

	// A fragment program writes a single color to the first output
	// register, whatever the surface format.
	pb.pushOutput("out_color", 4, ir.LocationBinding{Location: 0})
}

// pushOutput declares one stage output local bound to the output bank.
func (pb *paramBuilder) pushOutput(name string, count uint32, binding ir.Binding) {
	typ := pb.b.vecType(count)
	local := pb.b.addLocal(name, typ, nil)
	pb.out.regs.outputs.push(typ, varRef{kind: refLocal, index: local}, count, nil)
	pb.out.outputs = append(pb.out.outputs, outputVar{
		name:    name,
		local:   local,
		typ:     typ,
		count:   count,
		binding: binding,
	})
}

// addTemps declares the temporary register locals, one vec4 each.
func (pb *paramBuilder) addTemps() {
	typ := pb.b.vecType(4)
	for i := uint16(0); i < pb.prog.TempRegCount; i++ {
		local := pb.b.addLocal("r"+strconv.Itoa(int(i)), typ, nil)
		pb.out.regs.temps.push(typ, varRef{kind: refLocal, index: local}, 4, nil)
	}
}

// internalRegCount is the fixed number of internal accumulator
// registers, each reserving 16 address units.
const internalRegCount = 3

func (pb *paramBuilder) addInternals() {
	typ := pb.b.vecType(4)
	for i := 0; i < internalRegCount; i++ {
		handle := pb.b.addGlobal(ir.GlobalVariable{
			Name:  "i" + strconv.Itoa(i),
			Space: ir.SpacePrivate,
			Type:  typ,
		})
		pb.out.regs.internals.push(typ, varRef{kind: refGlobal, index: uint32(handle)}, 16, nil)
	}
}

// patchBlendInput covers the primary attribute registers the blend
// setup of a non-native-color fragment program occupies. Those
// registers hold the destination surface color, which is not
// reconstructible here, so they get a placeholder the translated code
// can still address.
func (pb *paramBuilder) patchBlendInput() {
	if pb.prog.Type != gxp.Fragment || pb.prog.NativeColor {
		return
	}
	declared := uint32(pb.prog.PrimaryRegCount)
	built := pb.out.regs.primAttrs.size()
	if declared <= built {
		return
	}
	shortfall := declared - built
	if shortfall > 2 {
		pb.log.Error("primary attribute shortfall too large for blend patch",
			"declared", declared, "built", built)
		return
	}

	typ := pb.b.vecType(2 * shortfall)
	handle := pb.b.addGlobal(ir.GlobalVariable{
		Name:  "pa0_blend",
		Space: ir.SpacePrivate,
		Type:  typ,
	})
	pb.out.regs.primAttrs.push(typ, varRef{kind: refGlobal, index: uint32(handle)}, shortfall, nil)
}
