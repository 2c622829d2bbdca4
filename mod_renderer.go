package atrium

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/atrium3d/atrium/shaders"
)

const maxSceneLights = 8

var sceneClearColor = wgpu.Color{R: 0.015, G: 0.015, B: 0.02, A: 1}

// MeshComponent binds an entity to GPU-side assets. The room shell draws
// first in construction order; its interior is convex, so back-face
// culling alone resolves it. Fixture meshes draw afterwards, far to near,
// which layers wall furniture correctly without a depth buffer.
type MeshComponent struct {
	Mesh     AssetId
	Texture  AssetId
	Sampler  AssetId
	Material AssetId
	Fixture  bool
}

// SceneVertex is the layout every gallery material is compiled against.
type SceneVertex struct {
	Position [3]float32 `atrium:"layout" format:"float3" location:"0"`
	Normal   [3]float32 `atrium:"layout" format:"float3" location:"1"`
	UV       [2]float32 `atrium:"layout" format:"float2" location:"2"`
}

// Uniform layouts mirror the WGSL structs field for field; everything is
// vec4-aligned so the reflected byte stream needs no padding.
type spotLightUniform struct {
	Position  mgl32.Vec4
	Direction mgl32.Vec4 // w: cos of the cone half-angle
	Color     mgl32.Vec4 // w: intensity
}

type frameUniforms struct {
	ViewProj   mgl32.Mat4
	CameraPos  mgl32.Vec4
	Ambient    mgl32.Vec4
	LightCount mgl32.Vec4 // x: active light count
	Lights     [maxSceneLights]spotLightUniform
}

type modelUniforms struct {
	Model mgl32.Mat4
}

type pipelineGpu struct {
	pipeline       *wgpu.RenderPipeline
	frameBindGroup *wgpu.BindGroup
}

type meshGpu struct {
	pipe       *pipelineGpu
	vertexBuf  *wgpu.Buffer
	indexBuf   *wgpu.Buffer
	indexCount uint32
	modelBuf   *wgpu.Buffer
	bindGroup  *wgpu.BindGroup
}

type rendererState struct {
	gpu      *GpuState
	frameBuf *wgpu.Buffer

	// Assets are immutable once registered, so GPU-side entries are
	// created lazily and never invalidated.
	pipelines    map[AssetId]*pipelineGpu
	meshes       map[EntityId]*meshGpu
	textureViews map[AssetId]*wgpu.TextureView
	samplers     map[AssetId]*wgpu.Sampler

	atlas        *TextAtlas
	hudPipeline  *wgpu.RenderPipeline
	hudBindGroup *wgpu.BindGroup
	hudBuf       *wgpu.Buffer
	hudVerts     []TextVertex

	liveIds []EntityId
}

// SceneRendererModule draws the world and the HUD into the platform
// window. It expects PlatformWindowModule to be installed first.
type SceneRendererModule struct{}

func (SceneRendererModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, string(RendererWGPU))

	winState := resourceOf[WindowState](app)
	if winState == nil || winState.win == nil {
		panic("SceneRendererModule requires a platform window; install PlatformWindowModule first")
	}
	app.Logger().Infof("renderer selected: %s", RendererWGPU)

	gpu := createGpuState(winState)
	atlas := ensureTextAtlas(app, cmd)

	state := &rendererState{
		gpu:          gpu,
		frameBuf:     createBuffer("Frame Uniforms", frameUniforms{}, gpu, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst),
		pipelines:    map[AssetId]*pipelineGpu{},
		meshes:       map[EntityId]*meshGpu{},
		textureViews: map[AssetId]*wgpu.TextureView{},
		samplers:     map[AssetId]*wgpu.Sampler{},
		atlas:        atlas,
	}

	state.hudPipeline = createRenderPipeline("HUD", shaders.HudWGSL, TextVertex{}, alphaBlendState(), wgpu.CullModeNone, gpu)
	atlasView := createAlphaTexture(atlas.Image(), gpu)
	atlasSampler := createSamplerFromAsset(&SamplerAsset{filter: "linear", wrap: "clamp"}, gpu)
	state.hudBindGroup = createBindGroup(state.hudPipeline, 0, []wgpu.BindGroupEntry{
		{Binding: 0, TextureView: atlasView},
		{Binding: 1, Sampler: atlasSampler},
	}, gpu.device)

	if resourceOf[CameraLens](app) == nil {
		lens := DefaultCameraLens(float32(winState.Width) / float32(winState.Height))
		cmd.AddResources(&lens)
	}
	if resourceOf[HudModel](app) == nil {
		cmd.AddResources(&HudModel{})
	}

	app.UseSystem(
		System(renderSystem).
			InStage(Render).
			RunAlways(),
	)
	if app.stateful {
		// Exit phases run the stages in order, so this fires before the
		// Finale window teardown destroys the surface's window.
		app.UseSystem(System(rendererTeardownSystem).InStage(PostRender).InState(OnExit(ModeShutdown)))
	}

	cmd.AddResources(state)
}

// releaseGpu frees every GPU object the renderer created. Runs once; later
// calls are no-ops. The device, adapter and surface stay with GpuState and
// fall with the process, matching how the pack's renderers wind down.
func (state *rendererState) releaseGpu() {
	if state.gpu == nil {
		return
	}
	for _, g := range state.meshes {
		releaseMeshGpu(g)
	}
	state.meshes = nil
	for _, p := range state.pipelines {
		p.frameBindGroup.Release()
		p.pipeline.Release()
	}
	state.pipelines = nil
	for _, view := range state.textureViews {
		view.Release()
	}
	state.textureViews = nil
	for _, sampler := range state.samplers {
		sampler.Release()
	}
	state.samplers = nil

	if state.hudBuf != nil {
		state.hudBuf.Release()
		state.hudBuf = nil
	}
	state.hudBindGroup.Release()
	state.hudPipeline.Release()
	state.frameBuf.Release()
	state.gpu = nil
}

func releaseMeshGpu(g *meshGpu) {
	g.bindGroup.Release()
	g.modelBuf.Release()
	g.indexBuf.Release()
	g.vertexBuf.Release()
}

func rendererTeardownSystem(state *rendererState) {
	state.releaseGpu()
}

// pruneMeshes drops GPU entries whose entities despawned (a layout reload
// replaces the whole gallery). Pipelines, textures and samplers key on
// asset ids and stay cached.
func (state *rendererState) pruneMeshes() {
	live := make(map[EntityId]bool, len(state.liveIds))
	for _, id := range state.liveIds {
		live[id] = true
	}
	for id, g := range state.meshes {
		if !live[id] {
			releaseMeshGpu(g)
			delete(state.meshes, id)
		}
	}
}

func (state *rendererState) ensurePipeline(id AssetId, server *AssetServer) *pipelineGpu {
	if pipe, ok := state.pipelines[id]; ok {
		return pipe
	}
	mat, ok := server.material(id)
	if !ok {
		panic(fmt.Sprintf("unknown material asset %s", id))
	}
	pipeline := createRenderPipeline(mat.name, mat.source, mat.vertexType, nil, wgpu.CullModeBack, state.gpu)
	pipe := &pipelineGpu{
		pipeline: pipeline,
		frameBindGroup: createBindGroup(pipeline, 0, []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: state.frameBuf, Size: wgpu.WholeSize},
		}, state.gpu.device),
	}
	state.pipelines[id] = pipe
	return pipe
}

func (state *rendererState) ensureTexture(id AssetId, server *AssetServer) *wgpu.TextureView {
	if view, ok := state.textureViews[id]; ok {
		return view
	}
	tx, ok := server.texture(id)
	if !ok {
		panic(fmt.Sprintf("unknown texture asset %s", id))
	}
	view := createTextureFromAsset(&tx, state.gpu)
	state.textureViews[id] = view
	return view
}

func (state *rendererState) ensureSampler(id AssetId, server *AssetServer) *wgpu.Sampler {
	if sampler, ok := state.samplers[id]; ok {
		return sampler
	}
	sm, ok := server.sampler(id)
	if !ok {
		panic(fmt.Sprintf("unknown sampler asset %s", id))
	}
	sampler := createSamplerFromAsset(&sm, state.gpu)
	state.samplers[id] = sampler
	return sampler
}

func (state *rendererState) ensureMesh(id EntityId, mesh *MeshComponent, server *AssetServer) *meshGpu {
	if g, ok := state.meshes[id]; ok {
		return g
	}
	meshAsset, ok := server.mesh(mesh.Mesh)
	if !ok {
		panic(fmt.Sprintf("unknown mesh asset %s", mesh.Mesh))
	}

	pipe := state.ensurePipeline(mesh.Material, server)
	vertexBuf, indexBuf := createVertexIndexBuffers(meshAsset.vertices, meshAsset.indices, state.gpu.device)
	modelBuf := createBuffer("Model Uniforms", modelUniforms{Model: mgl32.Ident4()}, state.gpu, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)

	g := &meshGpu{
		pipe:       pipe,
		vertexBuf:  vertexBuf,
		indexBuf:   indexBuf,
		indexCount: uint32(len(meshAsset.indices)),
		modelBuf:   modelBuf,
		bindGroup: createBindGroup(pipe.pipeline, 1, []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: modelBuf, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: state.ensureTexture(mesh.Texture, server)},
			{Binding: 2, Sampler: state.ensureSampler(mesh.Sampler, server)},
		}, state.gpu.device),
	}
	state.meshes[id] = g
	return g
}

type drawEntry struct {
	mesh     *meshGpu
	fixture  bool
	distance float32
}

func renderSystem(cmd *Commands, state *rendererState, winState *WindowState, lens *CameraLens, server *AssetServer, hud *HudModel) {
	if winState.win == nil {
		return
	}

	if winState.Resized {
		state.gpu.resize(winState.Width, winState.Height)
		if winState.Height > 0 {
			lens.Aspect = float32(winState.Width) / float32(winState.Height)
		}
		winState.Resized = false
	}

	var eye mgl32.Vec3
	var view mgl32.Mat4
	haveViewer := false
	MakeQuery1[PoseComponent](cmd).Map(func(_ EntityId, pose *PoseComponent) bool {
		eye = pose.Position
		view = pose.ViewMatrix()
		haveViewer = true
		return false
	})
	if !haveViewer {
		return
	}

	frame := frameUniforms{
		ViewProj:  lens.Projection().Mul4(view),
		CameraPos: eye.Vec4(1),
		Ambient:   mgl32.Vec4{0.32, 0.31, 0.30, 1},
	}
	lightCount := 0
	MakeQuery2[SpotLightComponent, TransformComponent](cmd).Map(func(_ EntityId, light *SpotLightComponent, tf *TransformComponent) bool {
		if lightCount >= maxSceneLights {
			return false
		}
		dir := light.Direction
		if dir.Len() == 0 {
			dir = mgl32.Vec3{0, -1, 0}
		}
		cutoff := cosf(mgl32.DegToRad(light.CutoffDeg) / 2)
		frame.Lights[lightCount] = spotLightUniform{
			Position:  tf.Position.Vec4(1),
			Direction: dir.Normalize().Vec4(cutoff),
			Color:     mgl32.Vec4{light.Color[0], light.Color[1], light.Color[2], light.Intensity},
		}
		lightCount++
		return true
	})
	frame.LightCount[0] = float32(lightCount)
	state.gpu.queue.WriteBuffer(state.frameBuf, 0, toBufferBytes(frame))

	var draws []drawEntry
	state.liveIds = state.liveIds[:0]
	MakeQuery2[MeshComponent, TransformComponent](cmd).Map(func(id EntityId, mesh *MeshComponent, tf *TransformComponent) bool {
		g := state.ensureMesh(id, mesh, server)
		state.gpu.queue.WriteBuffer(g.modelBuf, 0, toBufferBytes(modelUniforms{Model: tf.ModelMatrix()}))
		state.liveIds = append(state.liveIds, id)
		draws = append(draws, drawEntry{
			mesh:     g,
			fixture:  mesh.Fixture,
			distance: tf.Position.Sub(eye).Len(),
		})
		return true
	})
	if len(state.meshes) > len(state.liveIds) {
		state.pruneMeshes()
	}
	slices.SortStableFunc(draws, func(a, b drawEntry) int {
		if a.fixture != b.fixture {
			if a.fixture {
				return 1
			}
			return -1
		}
		if !a.fixture {
			return 0
		}
		switch {
		case a.distance > b.distance:
			return -1
		case a.distance < b.distance:
			return 1
		}
		return 0
	})

	state.hudVerts = state.hudVerts[:0]
	for _, q := range hud.Quads {
		state.hudVerts = state.atlas.BuildQuad(state.hudVerts, q.X, q.Y, q.W, q.H, winState.Width, winState.Height, q.Color)
	}
	state.hudVerts = state.atlas.BuildText(state.hudVerts, hud.Texts, winState.Width, winState.Height)
	hudCount := uint32(len(state.hudVerts))
	if hudCount > 0 {
		size := uint64(len(state.hudVerts)) * uint64(unsafe.Sizeof(TextVertex{}))
		state.hudBuf = growBuffer(state.hudBuf, size, "HUD VB", state.gpu)
		state.gpu.queue.WriteBuffer(state.hudBuf, 0, untypedSliceToWgpuBytes(MakeAnySlice(state.hudVerts)))
	}

	logger := cmd.app.Logger()
	nextTexture, err := state.gpu.surface.GetCurrentTexture()
	if err != nil {
		logger.Errorf("swapchain acquire failed, skipping frame: %v", err)
		return
	}
	defer nextTexture.Release()

	targetView, err := nextTexture.CreateView(nil)
	if err != nil {
		logger.Errorf("swapchain view failed, skipping frame: %v", err)
		return
	}
	defer targetView.Release()

	encoder, err := state.gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		logger.Errorf("command encoder failed, skipping frame: %v", err)
		return
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       targetView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: sceneClearColor,
		}},
	})
	defer pass.Release()

	var lastPipe *pipelineGpu
	for _, d := range draws {
		if d.mesh.pipe != lastPipe {
			pass.SetPipeline(d.mesh.pipe.pipeline)
			pass.SetBindGroup(0, d.mesh.pipe.frameBindGroup, nil)
			lastPipe = d.mesh.pipe
		}
		pass.SetBindGroup(1, d.mesh.bindGroup, nil)
		pass.SetVertexBuffer(0, d.mesh.vertexBuf, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(d.mesh.indexBuf, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		pass.DrawIndexed(d.mesh.indexCount, 1, 0, 0, 0)
	}

	if hudCount > 0 {
		pass.SetPipeline(state.hudPipeline)
		pass.SetBindGroup(0, state.hudBindGroup, nil)
		pass.SetVertexBuffer(0, state.hudBuf, 0, wgpu.WholeSize)
		pass.Draw(hudCount, 1, 0, 0)
	}

	if err := pass.End(); err != nil {
		logger.Errorf("render pass end failed: %v", err)
		return
	}

	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		logger.Errorf("encoder finish failed: %v", err)
		return
	}
	defer cmdBuf.Release()

	state.gpu.queue.Submit(cmdBuf)
	state.gpu.surface.Present()
}
