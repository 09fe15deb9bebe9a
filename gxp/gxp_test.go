package gxp

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

// blobParam is the raw form of one parameter entry for blob assembly.
type blobParam struct {
	name           string
	category       ParameterCategory
	typ            ParameterType
	componentCount uint8
	arraySize      uint16
	resourceIndex  uint32
}

// buildBlob assembles a valid GXP binary: header, parameter table,
// name table, code words.
func buildBlob(t *testing.T, progType ProgramType, flags uint32, params []blobParam, code []uint64) []byte {
	t.Helper()

	paramsOffset := uint32(headerSize)
	namesOffset := paramsOffset + uint32(len(params))*paramEntrySize

	var names bytes.Buffer
	nameOffsets := make([]uint32, len(params))
	for i, p := range params {
		nameOffsets[i] = namesOffset + uint32(names.Len())
		names.WriteString(p.name)
		names.WriteByte(0)
	}
	codeOffset := namesOffset + uint32(names.Len())

	var buf bytes.Buffer
	h := header{
		Magic:            magic,
		Version:          1,
		Type:             uint32(progType),
		Flags:            flags,
		ParameterCount:   uint32(len(params)),
		ParametersOffset: paramsOffset,
		CodeOffset:       codeOffset,
		CodeInstrCount:   uint32(len(code)),
		TempRegCount:     2,
		PrimaryRegCount:  4,
		VertexOutputs:    uint32(VertexOutputPosition | VertexOutputTexCoord0),
		FragmentInputs:   uint32(FragmentInputTexCoord0),
	}
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		t.Fatalf("write header: %v", err)
	}

	for i, p := range params {
		entry := struct {
			NameOffset     uint32
			Category       uint8
			Type           uint8
			ComponentCount uint8
			Pad            uint8
			ArraySize      uint16
			Semantic       uint16
			ResourceIndex  uint32
		}{
			NameOffset:     nameOffsets[i],
			Category:       uint8(p.category),
			Type:           uint8(p.typ),
			ComponentCount: p.componentCount,
			ArraySize:      p.arraySize,
			ResourceIndex:  p.resourceIndex,
		}
		if err := binary.Write(&buf, binary.LittleEndian, entry); err != nil {
			t.Fatalf("write parameter %d: %v", i, err)
		}
	}

	buf.Write(names.Bytes())
	for _, w := range code {
		if err := binary.Write(&buf, binary.LittleEndian, w); err != nil {
			t.Fatalf("write code: %v", err)
		}
	}
	return buf.Bytes()
}

func TestLoad(t *testing.T) {
	params := []blobParam{
		{name: "position", category: CategoryAttribute, typ: TypeF32, componentCount: 4},
		{name: "Matrices.mvp", category: CategoryUniform, typ: TypeF32, componentCount: 4, arraySize: 4},
		{name: "diffuse", category: CategorySampler, typ: TypeF32, componentCount: 4},
	}
	code := []uint64{0x0800000000000000, 0x1000000000000000}

	blob := buildBlob(t, Vertex, flagNativeColor, params, code)
	prog, err := Load(blob)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if prog.Type != Vertex {
		t.Errorf("Type = %v, want vertex", prog.Type)
	}
	if !prog.NativeColor {
		t.Error("NativeColor = false, want true")
	}
	if prog.TempRegCount != 2 || prog.PrimaryRegCount != 4 {
		t.Errorf("register counts = %d/%d, want 2/4", prog.TempRegCount, prog.PrimaryRegCount)
	}
	if prog.VertexOutputs&VertexOutputPosition == 0 {
		t.Error("VertexOutputs missing position bit")
	}

	if len(prog.Parameters) != 3 {
		t.Fatalf("len(Parameters) = %d, want 3", len(prog.Parameters))
	}
	p := prog.Parameters[1]
	if p.NameRaw() != "Matrices.mvp" || p.Name() != "mvp" || p.StructName() != "Matrices" {
		t.Errorf("name views = %q/%q/%q", p.NameRaw(), p.Name(), p.StructName())
	}
	if p.ArraySize != 4 || p.ComponentCount != 4 || p.Category != CategoryUniform {
		t.Errorf("parameter fields = %+v", p)
	}
	if prog.Parameters[0].GenericType() != GenericVector {
		t.Errorf("GenericType = %v, want vector", prog.Parameters[0].GenericType())
	}

	if len(prog.Code) != 2 || prog.Code[0] != code[0] || prog.Code[1] != code[1] {
		t.Errorf("Code = %#x, want %#x", prog.Code, code)
	}
}

func TestLoad_ArraySizeZeroBecomesOne(t *testing.T) {
	blob := buildBlob(t, Fragment, 0, []blobParam{
		{name: "tint", category: CategoryUniform, typ: TypeF32, componentCount: 4, arraySize: 0},
	}, nil)
	prog, err := Load(blob)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if prog.Parameters[0].ArraySize != 1 {
		t.Errorf("ArraySize = %d, want 1", prog.Parameters[0].ArraySize)
	}
	if prog.NativeColor {
		t.Error("NativeColor = true, want false")
	}
}

func TestLoad_NoAliasing(t *testing.T) {
	blob := buildBlob(t, Vertex, 0, []blobParam{
		{name: "position", category: CategoryAttribute, typ: TypeF32, componentCount: 4},
	}, []uint64{0x0800000000000000})
	prog, err := Load(blob)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for i := range blob {
		blob[i] = 0xFF
	}
	if prog.Parameters[0].NameRaw() != "position" {
		t.Error("parameter name aliases the input buffer")
	}
	if prog.Code[0] != 0x0800000000000000 {
		t.Error("code aliases the input buffer")
	}
}

func TestLoad_Errors(t *testing.T) {
	valid := buildBlob(t, Vertex, 0, nil, nil)

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "XXXX")

	badVersion := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badVersion[4:], 9)

	badType := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badType[8:], 7)

	paramsOOB := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(paramsOOB[16:], 2)      // parameter count
	binary.LittleEndian.PutUint32(paramsOOB[20:], 0xFFFF) // parameters offset

	codeOOB := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(codeOOB[28:], 100) // code instruction count

	tests := []struct {
		name string
		blob []byte
		want string
	}{
		{"short blob", valid[:10], "too short"},
		{"bad magic", badMagic, "bad magic"},
		{"bad version", badVersion, "unsupported version"},
		{"bad type", badType, "unknown program type"},
		{"parameters out of range", paramsOOB, "parameter table out of range"},
		{"code out of range", codeOOB, "code out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.blob)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestLinkageFlags_Each(t *testing.T) {
	mask := VertexOutputTexCoord1 | VertexOutputPosition | VertexOutputPointSize

	var names []string
	var counts []uint32
	mask.Each(func(_ VertexOutputFlags, prop LinkageProperty) {
		names = append(names, prop.Name)
		counts = append(counts, prop.ComponentCount)
	})

	wantNames := []string{"out_Position", "out_TexCoord1", "out_Psize"}
	wantCounts := []uint32{4, 2, 1}
	if len(names) != len(wantNames) {
		t.Fatalf("visited %d bits, want %d", len(names), len(wantNames))
	}
	for i := range wantNames {
		if names[i] != wantNames[i] || counts[i] != wantCounts[i] {
			t.Errorf("bit %d = %s/%d, want %s/%d", i, names[i], counts[i], wantNames[i], wantCounts[i])
		}
	}

	var frag []string
	FragmentInputSpriteCoord.Each(func(_ FragmentInputFlags, prop LinkageProperty) {
		frag = append(frag, prop.Name)
	})
	if len(frag) != 1 || frag[0] != "in_SpriteCoord" {
		t.Errorf("fragment visit = %v, want [in_SpriteCoord]", frag)
	}
}
