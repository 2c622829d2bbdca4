package atrium

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
)

type GpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
}

func createGpuState(s *WindowState) *GpuState {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	// wraps the GLFW window into a wgpu surface
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(s.win))
	// finds a suitable GPU (discrete preferred)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		panic(err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	// Fifo blocks Present until vblank, which is what paces the frame loop.
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(s.Width),
		Height:      uint32(s.Height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}

	surface.Configure(adapter, device, &surfaceConfig)

	return &GpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
	}
}

// resize reconfigures the swapchain for a new framebuffer size. Zero sizes
// (minimized window) are ignored.
func (g *GpuState) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	g.surfaceConfig.Width = uint32(width)
	g.surfaceConfig.Height = uint32(height)
	g.surface.Configure(g.adapter, g.device, g.surfaceConfig)
}

// createRenderPipeline builds a triangle-list pipeline for one WGSL
// listing. The vertex layout is read from the vertexType's struct tags.
// blend nil means opaque; cullMode is CullModeNone for screen-space quads.
func createRenderPipeline(name string, shaderCode string, vertexType any, blend *wgpu.BlendState, cullMode wgpu.CullMode, gpuState *GpuState) *wgpu.RenderPipeline {
	shader, err := gpuState.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaderCode},
	})
	if err != nil {
		panic(err)
	}
	defer shader.Release()

	vertexBufferLayout := createVertexBufferLayout(vertexType)

	pipeline, err := gpuState.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: name,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    gpuState.surfaceConfig.Format,
					Blend:     blend,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode,
		},
		DepthStencil: nil,
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		panic(err)
	}
	return pipeline
}

// alphaBlendState is the over operator for HUD quads and glyphs.
func alphaBlendState() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}
}

func createVertexIndexBuffers(vertices AnySlice, indices []uint16, device *wgpu.Device) (vertexBuf *wgpu.Buffer, indexBuf *wgpu.Buffer) {
	vertexBuf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Vertex Buffer",
		Contents: untypedSliceToWgpuBytes(vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		panic(err)
	}
	indexBuf, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Index Buffer",
		Contents: wgpu.ToBytes(indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		panic(err)
	}
	return vertexBuf, indexBuf
}

// growBuffer returns a dynamic vertex buffer of at least size bytes,
// recreating only when the current one is too small.
func growBuffer(current *wgpu.Buffer, size uint64, label string, gpuState *GpuState) *wgpu.Buffer {
	if current != nil && current.GetSize() >= size {
		return current
	}
	if current != nil {
		current.Release()
	}
	buf, err := gpuState.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	return buf
}

// createTextureFromAsset uploads an RGBA8 texture asset.
func createTextureFromAsset(txAsset *TextureAsset, gpuState *GpuState) *wgpu.TextureView {
	textureExtent := wgpu.Extent3D{
		Width:              txAsset.width,
		Height:             txAsset.height,
		DepthOrArrayLayers: 1,
	}
	texture, err := gpuState.device.CreateTexture(&wgpu.TextureDescriptor{
		Size:          textureExtent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	defer texture.Release()

	textureView, err := texture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	err = gpuState.queue.WriteTexture(
		texture.AsImageCopy(),
		txAsset.texels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  txAsset.width * 4,
			RowsPerImage: txAsset.height,
		},
		&textureExtent,
	)
	if err != nil {
		panic(err)
	}
	return textureView
}

// createAlphaTexture uploads a single-channel image as R8Unorm. The glyph
// atlas goes up this way.
func createAlphaTexture(img *image.Alpha, gpuState *GpuState) *wgpu.TextureView {
	w := uint32(img.Bounds().Dx())
	h := uint32(img.Bounds().Dy())
	extent := wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	texture, err := gpuState.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Glyph Atlas",
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	defer texture.Release()

	textureView, err := texture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	err = gpuState.queue.WriteTexture(
		texture.AsImageCopy(),
		img.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  w,
			RowsPerImage: h,
		},
		&extent,
	)
	if err != nil {
		panic(err)
	}
	return textureView
}

func createSamplerFromAsset(smAsset *SamplerAsset, gpuState *GpuState) *wgpu.Sampler {
	wrap := wgpuWrapMode(smAsset.wrap)
	filter := wgpuFilterMode(smAsset.filter)

	sampler, err := gpuState.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wrap,
		AddressModeV:  wrap,
		AddressModeW:  wrap,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   1,
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: 1,
	})
	if err != nil {
		panic(err)
	}
	return sampler
}

func createBuffer(name string, data any, gpuState *GpuState, usage wgpu.BufferUsage) *wgpu.Buffer {
	buffer, err := gpuState.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    name,
		Contents: toBufferBytes(data),
		Usage:    usage,
	})
	if err != nil {
		panic(err)
	}
	return buffer
}

// toBufferBytes flattens a uniform struct to little-endian bytes in field
// order. Callers are responsible for WGSL-compatible field alignment.
func toBufferBytes(data any) []byte {
	val := reflect.ValueOf(data)
	buf := new(bytes.Buffer)
	readUniformsBytes(val, buf)
	return buf.Bytes()
}

func readUniformsBytes(val reflect.Value, buf *bytes.Buffer) {
	switch val.Kind() {
	case reflect.Pointer, reflect.Interface:
		readUniformsBytes(val.Elem(), buf)
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			readUniformsBytes(val.Field(i), buf)
		}
	case reflect.Array, reflect.Slice:
		for i := 0; i < val.Len(); i++ {
			readUniformsBytes(val.Index(i), buf)
		}
	default:
		if err := binary.Write(buf, binary.LittleEndian, val.Interface()); err != nil {
			panic(fmt.Sprintf("uniform field of type %s: %v", val.Type(), err))
		}
	}
}

// createVertexBufferLayout scans a vertex struct for atrium:"layout" tags
// and derives attribute offsets from the field layout.
func createVertexBufferLayout(vertexType any) wgpu.VertexBufferLayout {
	t := reflect.TypeOf(vertexType)
	if t.Kind() != reflect.Struct {
		panic("vertex type must be a struct")
	}

	var attributes []wgpu.VertexAttribute
	var offset uint64 = 0

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Tag.Get("atrium") == "layout" {
			format := parseFormat(field.Tag.Get("format"))
			location, err := strconv.Atoi(field.Tag.Get("location"))
			if err != nil {
				panic(fmt.Sprintf("vertex field %s.%s has no location tag: %v", t.Name(), field.Name, err))
			}

			attributes = append(attributes, wgpu.VertexAttribute{
				ShaderLocation: uint32(location),
				Offset:         offset,
				Format:         format,
			})
		}

		offset += uint64(field.Type.Size())
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}
}

func parseFormat(format string) wgpu.VertexFormat {
	switch format {
	case "float2":
		return wgpu.VertexFormatFloat32x2
	case "float3":
		return wgpu.VertexFormatFloat32x3
	case "float4":
		return wgpu.VertexFormatFloat32x4
	default:
		panic(fmt.Sprintf("unsupported vertex format %q", format))
	}
}

func wgpuWrapMode(wrap string) wgpu.AddressMode {
	switch wrap {
	case "clamp":
		return wgpu.AddressModeClampToEdge
	case "wrap", "repeat":
		return wgpu.AddressModeRepeat
	case "mirror":
		return wgpu.AddressModeMirrorRepeat
	default:
		panic(fmt.Sprintf("unsupported wrap mode %q", wrap))
	}
}

func wgpuFilterMode(filter string) wgpu.FilterMode {
	switch filter {
	case "linear":
		return wgpu.FilterModeLinear
	case "nearest":
		return wgpu.FilterModeNearest
	default:
		panic(fmt.Sprintf("unsupported filter mode %q", filter))
	}
}

func createBindGroup(pipeline *wgpu.RenderPipeline, groupId uint32, entries []wgpu.BindGroupEntry, device *wgpu.Device) *wgpu.BindGroup {
	layout := pipeline.GetBindGroupLayout(groupId)
	defer layout.Release()

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		panic(err)
	}
	return bindGroup
}

// AnySlice carries a slice whose element type is only known at runtime,
// so mesh assets can hold any vertex struct.
type AnySlice struct {
	value reflect.Value
}

func MakeAnySlice(slice any) AnySlice {
	v := reflect.ValueOf(slice)
	if v.Kind() != reflect.Slice {
		panic(fmt.Sprintf("want a slice, got %T", slice))
	}
	return AnySlice{value: v}
}

func (s AnySlice) Len() int {
	return s.value.Len()
}

func (s AnySlice) ElementSize() uintptr {
	return s.value.Type().Elem().Size()
}

func untypedSliceToWgpuBytes(slice AnySlice) []byte {
	n := slice.Len() * int(slice.ElementSize())
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(slice.value.UnsafePointer()), n)
}
