package gxp

import (
	"fmt"
	"strings"
)

// ParameterCategory classifies a parameter table entry.
type ParameterCategory uint8

const (
	CategoryAttribute ParameterCategory = iota
	CategoryUniform
	CategorySampler
	CategoryAuxiliarySurface
	CategoryUniformBuffer
)

// String returns the category name.
func (c ParameterCategory) String() string {
	switch c {
	case CategoryAttribute:
		return "attribute"
	case CategoryUniform:
		return "uniform"
	case CategorySampler:
		return "sampler"
	case CategoryAuxiliarySurface:
		return "auxiliary_surface"
	case CategoryUniformBuffer:
		return "uniform_buffer"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// ParameterType is the scalar component type of a parameter.
type ParameterType uint8

const (
	TypeU8 ParameterType = iota
	TypeS8
	TypeU16
	TypeS16
	TypeU32
	TypeS32
	TypeF16
	TypeF32
)

// String returns the type name.
func (t ParameterType) String() string {
	switch t {
	case TypeU8:
		return "u8"
	case TypeS8:
		return "s8"
	case TypeU16:
		return "u16"
	case TypeS16:
		return "s16"
	case TypeU32:
		return "u32"
	case TypeS32:
		return "s32"
	case TypeF16:
		return "f16"
	case TypeF32:
		return "f32"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// GenericType is the broad shape of a parameter.
type GenericType uint8

const (
	GenericScalar GenericType = iota
	GenericVector
	GenericMatrix
)

// Parameter is one immutable entry of the program parameter table.
type Parameter struct {
	Category       ParameterCategory
	Type           ParameterType
	ComponentCount uint8
	ArraySize      uint16
	Semantic       uint16
	ResourceIndex  uint32

	name string
}

// NameRaw returns the full parameter name as stored in the blob,
// including any dotted struct path ("Matrices.mvp").
func (p Parameter) NameRaw() string { return p.name }

// Name returns the display name: the last segment of a dotted struct
// path, or the whole name for plain parameters.
func (p Parameter) Name() string {
	if i := strings.LastIndexByte(p.name, '.'); i >= 0 {
		return p.name[i+1:]
	}
	return p.name
}

// StructName returns the struct path prefix, or "" when the parameter
// is not a struct field.
func (p Parameter) StructName() string {
	if i := strings.IndexByte(p.name, '.'); i >= 0 {
		return p.name[:i]
	}
	return ""
}

// GenericType classifies the parameter shape from its component count.
// The metadata keeps no matrix flag, so multi-element aggregates can
// only be recovered as vectors.
func (p Parameter) GenericType() GenericType {
	if p.ComponentCount > 1 {
		return GenericVector
	}
	return GenericScalar
}

// NewParameter builds a parameter view directly, bypassing blob
// parsing. Intended for program construction in tests and tooling.
func NewParameter(name string, category ParameterCategory, typ ParameterType, componentCount uint8, arraySize uint16) Parameter {
	if arraySize == 0 {
		arraySize = 1
	}
	return Parameter{
		Category:       category,
		Type:           typ,
		ComponentCount: componentCount,
		ArraySize:      arraySize,
		name:           name,
	}
}
