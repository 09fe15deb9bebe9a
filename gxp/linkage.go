package gxp

// VertexOutputFlags is the stage-fixed vertex output bitmask.
type VertexOutputFlags uint32

const (
	VertexOutputPosition VertexOutputFlags = 1 << iota
	VertexOutputFog
	VertexOutputColor0
	VertexOutputColor1
	VertexOutputTexCoord0
	VertexOutputTexCoord1
	VertexOutputTexCoord2
	VertexOutputTexCoord3
	VertexOutputTexCoord4
	VertexOutputTexCoord5
	VertexOutputTexCoord6
	VertexOutputTexCoord7
	VertexOutputTexCoord8
	VertexOutputTexCoord9
	VertexOutputPointSize
	VertexOutputClip0
	VertexOutputClip1
	VertexOutputClip2
	VertexOutputClip3
	VertexOutputClip4
	VertexOutputClip5
	VertexOutputClip6
	VertexOutputClip7

	vertexOutputLast
)

// FragmentInputFlags is the stage-fixed fragment input bitmask.
type FragmentInputFlags uint32

const (
	FragmentInputPosition FragmentInputFlags = 1 << iota
	FragmentInputFog
	FragmentInputColor0
	FragmentInputColor1
	FragmentInputTexCoord0
	FragmentInputTexCoord1
	FragmentInputTexCoord2
	FragmentInputTexCoord3
	FragmentInputTexCoord4
	FragmentInputTexCoord5
	FragmentInputTexCoord6
	FragmentInputTexCoord7
	FragmentInputTexCoord8
	FragmentInputTexCoord9
	FragmentInputSpriteCoord

	fragmentInputLast
)

// LinkageProperty describes one stage-fixed linkage variable: its
// conventional name and fixed component count.
type LinkageProperty struct {
	Name           string
	ComponentCount uint32
}

// vertexOutputProperties maps each vertex output bit to its variable
// name and component count. Component counts follow the GXM linkage
// conventions: position, clips, colors and fog interpolate as vec4,
// texture coordinates as vec2, point size as a scalar.
var vertexOutputProperties = map[VertexOutputFlags]LinkageProperty{
	VertexOutputPosition:  {"out_Position", 4},
	VertexOutputFog:       {"out_Fog", 4},
	VertexOutputColor0:    {"out_Color0", 4},
	VertexOutputColor1:    {"out_Color1", 4},
	VertexOutputTexCoord0: {"out_TexCoord0", 2},
	VertexOutputTexCoord1: {"out_TexCoord1", 2},
	VertexOutputTexCoord2: {"out_TexCoord2", 2},
	VertexOutputTexCoord3: {"out_TexCoord3", 2},
	VertexOutputTexCoord4: {"out_TexCoord4", 2},
	VertexOutputTexCoord5: {"out_TexCoord5", 2},
	VertexOutputTexCoord6: {"out_TexCoord6", 2},
	VertexOutputTexCoord7: {"out_TexCoord7", 2},
	VertexOutputTexCoord8: {"out_TexCoord8", 2},
	VertexOutputTexCoord9: {"out_TexCoord9", 2},
	VertexOutputPointSize: {"out_Psize", 1},
	VertexOutputClip0:     {"out_Clip0", 4},
	VertexOutputClip1:     {"out_Clip1", 4},
	VertexOutputClip2:     {"out_Clip2", 4},
	VertexOutputClip3:     {"out_Clip3", 4},
	VertexOutputClip4:     {"out_Clip4", 4},
	VertexOutputClip5:     {"out_Clip5", 4},
	VertexOutputClip6:     {"out_Clip6", 4},
	VertexOutputClip7:     {"out_Clip7", 4},
}

// fragmentInputProperties maps each fragment input bit to its variable
// name and component count.
var fragmentInputProperties = map[FragmentInputFlags]LinkageProperty{
	FragmentInputPosition:    {"in_Position", 4},
	FragmentInputFog:         {"in_Fog", 4},
	FragmentInputColor0:      {"in_Color0", 4},
	FragmentInputColor1:      {"in_Color1", 4},
	FragmentInputTexCoord0:   {"in_TexCoord0", 2},
	FragmentInputTexCoord1:   {"in_TexCoord1", 2},
	FragmentInputTexCoord2:   {"in_TexCoord2", 2},
	FragmentInputTexCoord3:   {"in_TexCoord3", 2},
	FragmentInputTexCoord4:   {"in_TexCoord4", 2},
	FragmentInputTexCoord5:   {"in_TexCoord5", 2},
	FragmentInputTexCoord6:   {"in_TexCoord6", 2},
	FragmentInputTexCoord7:   {"in_TexCoord7", 2},
	FragmentInputTexCoord8:   {"in_TexCoord8", 2},
	FragmentInputTexCoord9:   {"in_TexCoord9", 2},
	FragmentInputSpriteCoord: {"in_SpriteCoord", 2},
}

// Each calls fn for each set bit of the mask, in ascending bit order.
func (f VertexOutputFlags) Each(fn func(bit VertexOutputFlags, prop LinkageProperty)) {
	for bit := VertexOutputPosition; bit < vertexOutputLast; bit <<= 1 {
		if f&bit != 0 {
			fn(bit, vertexOutputProperties[bit])
		}
	}
}

// Each calls fn for each set bit of the mask, in ascending bit order.
func (f FragmentInputFlags) Each(fn func(bit FragmentInputFlags, prop LinkageProperty)) {
	for bit := FragmentInputPosition; bit < fragmentInputLast; bit <<= 1 {
		if f&bit != 0 {
			fn(bit, fragmentInputProperties[bit])
		}
	}
}
