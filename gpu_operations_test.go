package atrium

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

func TestGpu_SceneVertexLayout(t *testing.T) {
	layout := createVertexBufferLayout(SceneVertex{})

	if layout.ArrayStride != 32 {
		t.Errorf("scene vertex stride %d, want 32", layout.ArrayStride)
	}
	if layout.StepMode != wgpu.VertexStepModeVertex {
		t.Errorf("unexpected step mode %v", layout.StepMode)
	}
	if len(layout.Attributes) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(layout.Attributes))
	}

	wantOffsets := []uint64{0, 12, 24}
	wantFormats := []wgpu.VertexFormat{wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x2}
	for i, attr := range layout.Attributes {
		if attr.ShaderLocation != uint32(i) {
			t.Errorf("attribute %d bound to location %d", i, attr.ShaderLocation)
		}
		if attr.Offset != wantOffsets[i] {
			t.Errorf("attribute %d at offset %d, want %d", i, attr.Offset, wantOffsets[i])
		}
		if attr.Format != wantFormats[i] {
			t.Errorf("attribute %d has format %v, want %v", i, attr.Format, wantFormats[i])
		}
	}
}

func TestGpu_TextVertexLayout(t *testing.T) {
	layout := createVertexBufferLayout(TextVertex{})

	if layout.ArrayStride != 32 {
		t.Errorf("text vertex stride %d, want 32", layout.ArrayStride)
	}
	wantOffsets := []uint64{0, 8, 16}
	wantFormats := []wgpu.VertexFormat{wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x4}
	if len(layout.Attributes) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(layout.Attributes))
	}
	for i, attr := range layout.Attributes {
		if attr.Offset != wantOffsets[i] || attr.Format != wantFormats[i] {
			t.Errorf("attribute %d is %v at offset %d, want %v at %d",
				i, attr.Format, attr.Offset, wantFormats[i], wantOffsets[i])
		}
	}
}

func TestGpu_VertexLayoutSkipsUntaggedFields(t *testing.T) {
	type mixedVertex struct {
		Pos   [2]float32 `atrium:"layout" format:"float2" location:"0"`
		Extra uint32
		Color [4]float32 `atrium:"layout" format:"float4" location:"1"`
	}

	layout := createVertexBufferLayout(mixedVertex{})
	if len(layout.Attributes) != 2 {
		t.Fatalf("untagged fields must not become attributes, got %d", len(layout.Attributes))
	}
	// The untagged field still advances the offset.
	if layout.Attributes[1].Offset != 12 {
		t.Errorf("second attribute at offset %d, want 12", layout.Attributes[1].Offset)
	}
	if layout.ArrayStride != 28 {
		t.Errorf("stride %d, want 28", layout.ArrayStride)
	}
}

func TestGpu_VertexLayoutPanicsOnNonStruct(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for a non-struct vertex type")
		}
	}()
	createVertexBufferLayout(42)
}

func TestGpu_VertexLayoutPanicsWithoutLocation(t *testing.T) {
	type badVertex struct {
		Pos [2]float32 `atrium:"layout" format:"float2"`
	}
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for a layout field without a location")
		}
	}()
	createVertexBufferLayout(badVertex{})
}

func TestGpu_ParseFormat(t *testing.T) {
	cases := map[string]wgpu.VertexFormat{
		"float2": wgpu.VertexFormatFloat32x2,
		"float3": wgpu.VertexFormatFloat32x3,
		"float4": wgpu.VertexFormatFloat32x4,
	}
	for tag, want := range cases {
		if got := parseFormat(tag); got != want {
			t.Errorf("parseFormat(%q) = %v, want %v", tag, got, want)
		}
	}

	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for an unknown format")
		}
	}()
	parseFormat("double7")
}

func TestGpu_UniformByteSizes(t *testing.T) {
	// These must match the WGSL struct sizes exactly or the bind groups
	// reject the buffers.
	if n := len(toBufferBytes(spotLightUniform{})); n != 48 {
		t.Errorf("spot light uniform is %d bytes, want 48", n)
	}
	if n := len(toBufferBytes(frameUniforms{})); n != 496 {
		t.Errorf("frame uniforms are %d bytes, want 496", n)
	}
	if n := len(toBufferBytes(modelUniforms{})); n != 64 {
		t.Errorf("model uniforms are %d bytes, want 64", n)
	}
}

func TestGpu_UniformBytesLittleEndianFieldOrder(t *testing.T) {
	u := spotLightUniform{Position: mgl32.Vec4{1, 0, 0, 0}}
	data := toBufferBytes(u)

	// float32(1) little-endian.
	if data[0] != 0 || data[1] != 0 || data[2] != 0x80 || data[3] != 0x3f {
		t.Errorf("first float encodes as % x", data[:4])
	}

	viaPointer := toBufferBytes(&u)
	if len(viaPointer) != len(data) {
		t.Fatalf("pointer flattening differs: %d vs %d bytes", len(viaPointer), len(data))
	}
	for i := range data {
		if viaPointer[i] != data[i] {
			t.Fatalf("pointer flattening differs at byte %d", i)
		}
	}
}

func TestGpu_AnySlice(t *testing.T) {
	s := MakeAnySlice([]uint16{1, 2, 3})
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
	if s.ElementSize() != 2 {
		t.Errorf("ElementSize = %d, want 2", s.ElementSize())
	}

	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for a non-slice value")
		}
	}()
	MakeAnySlice("not a slice")
}

func TestGpu_UntypedSliceBytes(t *testing.T) {
	data := untypedSliceToWgpuBytes(MakeAnySlice([]float32{1}))
	if len(data) != 4 {
		t.Fatalf("one float32 flattens to %d bytes", len(data))
	}
	if data[0] != 0 || data[1] != 0 || data[2] != 0x80 || data[3] != 0x3f {
		t.Errorf("float32(1) encodes as % x", data)
	}

	if got := untypedSliceToWgpuBytes(MakeAnySlice([]float32{})); got != nil {
		t.Errorf("empty slice must flatten to nil, got %d bytes", len(got))
	}
}

func TestGpu_WrapModes(t *testing.T) {
	cases := map[string]wgpu.AddressMode{
		"clamp":  wgpu.AddressModeClampToEdge,
		"wrap":   wgpu.AddressModeRepeat,
		"repeat": wgpu.AddressModeRepeat,
		"mirror": wgpu.AddressModeMirrorRepeat,
	}
	for tag, want := range cases {
		if got := wgpuWrapMode(tag); got != want {
			t.Errorf("wgpuWrapMode(%q) = %v, want %v", tag, got, want)
		}
	}

	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for an unknown wrap mode")
		}
	}()
	wgpuWrapMode("tile")
}

func TestGpu_FilterModes(t *testing.T) {
	if got := wgpuFilterMode("linear"); got != wgpu.FilterModeLinear {
		t.Errorf("linear maps to %v", got)
	}
	if got := wgpuFilterMode("nearest"); got != wgpu.FilterModeNearest {
		t.Errorf("nearest maps to %v", got)
	}

	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for an unknown filter mode")
		}
	}()
	wgpuFilterMode("cubic")
}

func TestGpu_AlphaBlendIsOverOperator(t *testing.T) {
	blend := alphaBlendState()

	if blend.Color.SrcFactor != wgpu.BlendFactorSrcAlpha || blend.Color.DstFactor != wgpu.BlendFactorOneMinusSrcAlpha {
		t.Errorf("color blend %v over %v", blend.Color.SrcFactor, blend.Color.DstFactor)
	}
	if blend.Alpha.SrcFactor != wgpu.BlendFactorOne || blend.Alpha.DstFactor != wgpu.BlendFactorOneMinusSrcAlpha {
		t.Errorf("alpha blend %v over %v", blend.Alpha.SrcFactor, blend.Alpha.DstFactor)
	}
	if blend.Color.Operation != wgpu.BlendOperationAdd || blend.Alpha.Operation != wgpu.BlendOperationAdd {
		t.Errorf("blend operations must both be add")
	}
}
