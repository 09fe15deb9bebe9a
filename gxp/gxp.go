// Package gxp provides read-only views over GXP shader program binaries.
//
// A GXP blob is the compiled output of the platform shader compiler: a
// header describing the program stage and register usage, an ordered
// parameter metadata table, and the USSE microcode itself. Load parses a
// blob into a Program; all views into the result are immutable.
package gxp

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ProgramType identifies the shader stage a program was compiled for.
type ProgramType uint8

const (
	Vertex ProgramType = iota
	Fragment
)

// String returns the stage name.
func (t ProgramType) String() string {
	switch t {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	default:
		return fmt.Sprintf("program_type(%d)", uint8(t))
	}
}

// Program flag bits.
const flagNativeColor = 1 << 0

var magic = [4]byte{'G', 'X', 'P', 0}

// headerSize is the fixed byte length of the blob header.
const headerSize = 48

// paramEntrySize is the byte length of one parameter table entry.
const paramEntrySize = 16

// Program is a parsed GXP program binary.
//
// The fields are populated once by Load and must not be mutated
// afterwards; the recompiler treats a Program as a read-only view over
// the original blob.
type Program struct {
	Type        ProgramType
	NativeColor bool

	Parameters []Parameter
	Code       []uint64

	TempRegCount    uint16
	PrimaryRegCount uint16

	VertexOutputs  VertexOutputFlags
	FragmentInputs FragmentInputFlags
}

// header mirrors the on-disk layout of the blob header.
type header struct {
	Magic            [4]byte
	Version          uint32
	Type             uint32
	Flags            uint32
	ParameterCount   uint32
	ParametersOffset uint32
	CodeOffset       uint32
	CodeInstrCount   uint32
	TempRegCount     uint16
	PrimaryRegCount  uint16
	VertexOutputs    uint32
	FragmentInputs   uint32
	Reserved         uint32
}

// Load parses a GXP blob. The returned Program does not alias data:
// names and code words are copied out, so the caller may reuse the
// input buffer.
func Load(data []byte) (*Program, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("gxp: blob too short: %d bytes", len(data))
	}

	var h header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("gxp: header: %w", err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("gxp: bad magic %q", h.Magic[:])
	}
	if h.Version != 1 {
		return nil, fmt.Errorf("gxp: unsupported version %d", h.Version)
	}
	if h.Type > uint32(Fragment) {
		return nil, fmt.Errorf("gxp: unknown program type %d", h.Type)
	}

	prog := &Program{
		Type:            ProgramType(h.Type),
		NativeColor:     h.Flags&flagNativeColor != 0,
		TempRegCount:    h.TempRegCount,
		PrimaryRegCount: h.PrimaryRegCount,
		VertexOutputs:   VertexOutputFlags(h.VertexOutputs),
		FragmentInputs:  FragmentInputFlags(h.FragmentInputs),
	}

	params, err := loadParameters(data, h.ParametersOffset, h.ParameterCount)
	if err != nil {
		return nil, err
	}
	prog.Parameters = params

	code, err := loadCode(data, h.CodeOffset, h.CodeInstrCount)
	if err != nil {
		return nil, err
	}
	prog.Code = code

	return prog, nil
}

func loadParameters(data []byte, offset, count uint32) ([]Parameter, error) {
	if count == 0 {
		return nil, nil
	}
	end := uint64(offset) + uint64(count)*paramEntrySize
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("gxp: parameter table out of range: offset %d count %d", offset, count)
	}

	params := make([]Parameter, count)
	for i := range params {
		entry := data[offset+uint32(i)*paramEntrySize:]

		nameOffset := binary.LittleEndian.Uint32(entry[0:])
		name, err := loadName(data, nameOffset)
		if err != nil {
			return nil, fmt.Errorf("gxp: parameter %d: %w", i, err)
		}

		params[i] = Parameter{
			Category:       ParameterCategory(entry[4]),
			Type:           ParameterType(entry[5]),
			ComponentCount: entry[6],
			ArraySize:      binary.LittleEndian.Uint16(entry[8:]),
			Semantic:       binary.LittleEndian.Uint16(entry[10:]),
			ResourceIndex:  binary.LittleEndian.Uint32(entry[12:]),
			name:           name,
		}
		if params[i].ArraySize == 0 {
			params[i].ArraySize = 1
		}
	}
	return params, nil
}

func loadName(data []byte, offset uint32) (string, error) {
	if uint64(offset) >= uint64(len(data)) {
		return "", fmt.Errorf("name offset %d out of range", offset)
	}
	nul := bytes.IndexByte(data[offset:], 0)
	if nul < 0 {
		return "", fmt.Errorf("unterminated name at offset %d", offset)
	}
	return string(data[offset : offset+uint32(nul)]), nil
}

func loadCode(data []byte, offset, count uint32) ([]uint64, error) {
	if count == 0 {
		return nil, nil
	}
	end := uint64(offset) + uint64(count)*8
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("gxp: code out of range: offset %d count %d", offset, count)
	}
	code := make([]uint64, count)
	for i := range code {
		code[i] = binary.LittleEndian.Uint64(data[offset+uint32(i)*8:])
	}
	return code, nil
}
