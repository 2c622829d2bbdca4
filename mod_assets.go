package atrium

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	"github.com/google/uuid"
)

type AssetId string

// AssetServer holds the CPU-side assets the renderer uploads: meshes,
// RGBA textures, sampler settings and shader materials. Ids are opaque
// uuids; components reference assets by id only.
type AssetServer struct {
	meshes    map[AssetId]MeshAsset
	textures  map[AssetId]TextureAsset
	samplers  map[AssetId]SamplerAsset
	materials map[AssetId]MaterialAsset
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(NewAssetServer())
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		meshes:    make(map[AssetId]MeshAsset),
		textures:  make(map[AssetId]TextureAsset),
		samplers:  make(map[AssetId]SamplerAsset),
		materials: make(map[AssetId]MaterialAsset),
	}
}

type MeshAsset struct {
	version  uint
	vertices AnySlice
	indices  []uint16
}

// TextureAsset is always tightly packed RGBA8.
type TextureAsset struct {
	version uint
	texels  []uint8
	width   uint32
	height  uint32
}

type SamplerAsset struct {
	version uint
	filter  string // "linear" or "nearest"
	wrap    string // "clamp", "wrap" or "mirror"
}

type MaterialAsset struct {
	version    uint
	name       string
	source     string // WGSL listing
	vertexType any
}

func (server *AssetServer) RegisterMesh(vertices any, indices []uint16) AssetId {
	id := makeAssetId()
	server.meshes[id] = MeshAsset{
		vertices: MakeAnySlice(vertices),
		indices:  indices,
	}
	return id
}

func (server *AssetServer) CreateTexture(texels []uint8, width uint32, height uint32) AssetId {
	if uint32(len(texels)) != width*height*4 {
		panic(fmt.Sprintf("texture data is %d bytes, want %d for %dx%d rgba", len(texels), width*height*4, width, height))
	}
	id := makeAssetId()
	server.textures[id] = TextureAsset{
		texels: texels,
		width:  width,
		height: height,
	}
	return id
}

// CreateTextureImage registers any image, converting to tightly packed
// RGBA first.
func (server *AssetServer) CreateTextureImage(img image.Image) AssetId {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return server.CreateTexture(rgba.Pix, uint32(bounds.Dx()), uint32(bounds.Dy()))
}

func (server *AssetServer) LoadTexture(filename string) (AssetId, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("open texture %s: %w", filename, err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode texture %s: %w", filename, err)
	}
	return server.CreateTextureImage(img), nil
}

func (server *AssetServer) CreateSampler(filter string, wrap string) AssetId {
	id := makeAssetId()
	server.samplers[id] = SamplerAsset{filter: filter, wrap: wrap}
	return id
}

// LoadMaterialSource registers a WGSL listing together with the vertex
// struct its pipeline is laid out for.
func (server *AssetServer) LoadMaterialSource(name string, source string, vertexType any) AssetId {
	id := makeAssetId()
	server.materials[id] = MaterialAsset{
		name:       name,
		source:     source,
		vertexType: vertexType,
	}
	return id
}

func (server *AssetServer) LoadMaterial(filename string, vertexType any) (AssetId, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("read shader %s: %w", filename, err)
	}
	return server.LoadMaterialSource(filename, string(source), vertexType), nil
}

func (server *AssetServer) mesh(id AssetId) (MeshAsset, bool) {
	m, ok := server.meshes[id]
	return m, ok
}

func (server *AssetServer) texture(id AssetId) (TextureAsset, bool) {
	t, ok := server.textures[id]
	return t, ok
}

func (server *AssetServer) sampler(id AssetId) (SamplerAsset, bool) {
	s, ok := server.samplers[id]
	return s, ok
}

func (server *AssetServer) material(id AssetId) (MaterialAsset, bool) {
	m, ok := server.materials[id]
	return m, ok
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
